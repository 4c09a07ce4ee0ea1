package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		err  *Error
		want int
	}{
		{Validation("bad"), http.StatusBadRequest},
		{Conflict("dup"), http.StatusBadRequest},
		{Auth("nope"), http.StatusUnauthorized},
		{Authorization("forbidden"), http.StatusForbidden},
		{NotFound("missing"), http.StatusNotFound},
		{Delivery("mail", errors.New("x")), http.StatusInternalServerError},
		{Unknown("boom", errors.New("x")), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.err.HTTPStatus(), string(tc.err.Kind))
	}
}

func TestFrom(t *testing.T) {
	nf := NotFound("request not found")
	wrapped := fmt.Errorf("approve: %w", nf)

	assert.Same(t, nf, From(wrapped, "ignored"))

	plain := errors.New("disk full")
	got := From(plain, "Failed to fetch requests")
	assert.Equal(t, KindUnknown, got.Kind)
	assert.Equal(t, "Failed to fetch requests", got.Message)
	assert.ErrorIs(t, got, plain)

	assert.Nil(t, From(nil, "x"))
}

func TestIsKind(t *testing.T) {
	err := fmt.Errorf("wrap: %w", Delivery("mail failed", errors.New("smtp")))
	assert.True(t, IsKind(err, KindDelivery))
	assert.False(t, IsKind(err, KindNotFound))
	assert.False(t, IsKind(errors.New("plain"), KindUnknown))
}
