package validator

import (
	"errors"
	"testing"

	"ctchen222/fatty-hosting/internal/api/apperror"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Email string `json:"email" binding:"required,email"`
	Name  string `json:"name" binding:"required,notblank"`
	Count int    `json:"count" binding:"min=1,max=5"`
	Kind  string `json:"kind" binding:"omitempty,oneof=java bedrock"`
}

func fieldMessages(t *testing.T, err error) map[string]string {
	t.Helper()
	var appErr *apperror.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.KindValidation, appErr.Kind)

	out := make(map[string]string, len(appErr.Fields))
	for _, f := range appErr.Fields {
		out[f.Field] = f.Message
	}
	return out
}

func TestStruct_Valid(t *testing.T) {
	assert.NoError(t, Struct(sample{Email: "a@b.co", Name: "Ann", Count: 3}))
}

func TestStruct_FieldMessages(t *testing.T) {
	err := Struct(sample{Email: "nope", Name: "   ", Count: 9, Kind: "forge"})

	got := fieldMessages(t, err)
	assert.Equal(t, map[string]string{
		"email": "email must be a valid email address",
		"name":  "name is required",
		"count": "count must be at most 5",
		"kind":  "kind must be one of: java, bedrock",
	}, got)
}

func TestTranslate_NonValidationError(t *testing.T) {
	appErr := Translate(errors.New("unexpected EOF"))

	assert.Equal(t, apperror.KindValidation, appErr.Kind)
	require.Len(t, appErr.Fields, 1)
	assert.Equal(t, "body", appErr.Fields[0].Field)
}

func TestGinValidator_IgnoresNonStructs(t *testing.T) {
	v := GinValidator{}
	var nilPtr *sample

	assert.NoError(t, v.ValidateStruct(nil))
	assert.NoError(t, v.ValidateStruct(nilPtr))
	assert.NoError(t, v.ValidateStruct([]int{1}))
	assert.Error(t, v.ValidateStruct(&sample{}))
}

func TestGinValidator_EngineIsSharedValidator(t *testing.T) {
	engine, ok := GinValidator{}.Engine().(*validator.Validate)
	require.True(t, ok)
	assert.Same(t, validate, engine)

	err := engine.Struct(sample{Email: "a@b.co", Name: " ", Count: 1})
	assert.Error(t, err, "notblank registered on the engine gin sees")
}
