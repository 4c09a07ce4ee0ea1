package validator

import (
	"reflect"

	"github.com/gin-gonic/gin/binding"
)

// GinValidator adapts the shared validator to gin's binding.StructValidator.
type GinValidator struct{}

var _ binding.StructValidator = GinValidator{}

// ValidateStruct validates structs and pointers to structs; other values pass.
func (GinValidator) ValidateStruct(obj any) error {
	if obj == nil {
		return nil
	}
	v := reflect.ValueOf(obj)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil
	}
	return validate.Struct(obj)
}

func (GinValidator) Engine() any {
	return validate
}

// InstallGin makes gin's ShouldBind* use the shared validator.
func InstallGin() {
	binding.Validator = GinValidator{}
}
