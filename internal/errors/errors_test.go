package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCode_HTTPStatus(t *testing.T) {
	tests := []struct {
		code Code
		want int
	}{
		{CodeNotFound, http.StatusNotFound},
		{CodeNotAllowed, http.StatusForbidden},
		{CodeAlreadyExists, http.StatusConflict},
		{CodeUnauthorized, http.StatusUnauthorized},
		{CodeInvalidCredentials, http.StatusUnauthorized},
		{CodeTokenExpired, http.StatusUnauthorized},
		{CodeValidation, http.StatusBadRequest},
		{CodeRateLimited, http.StatusTooManyRequests},
		{CodeInternal, http.StatusInternalServerError},
		{Code("SOMETHING_ELSE"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.code.HTTPStatus())
		})
	}
}

func TestError_IsMatchesByCode(t *testing.T) {
	err := NotAllowedf("%s is not the author of label %s", "user-1", "label-1")

	assert.True(t, Is(err, ErrNotAllowed))
	assert.False(t, Is(err, ErrNotFound))
	assert.Equal(t, "user-1 is not the author of label label-1", err.Error())
}

func TestError_WrappedStillMatches(t *testing.T) {
	inner := NotFound("label label-1 does not exist")
	wrapped := fmt.Errorf("generate feed: %w", inner)

	assert.True(t, Is(wrapped, ErrNotFound))

	var domainErr *Error
	assert.True(t, As(wrapped, &domainErr))
	assert.Equal(t, CodeNotFound, domainErr.Code)
}

func TestError_WithCause(t *testing.T) {
	cause := fmt.Errorf("disk full")
	err := Internal("failed to save label").WithCause(cause)

	assert.Equal(t, "failed to save label: disk full", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, http.StatusInternalServerError, err.HTTPStatus())
}

func TestError_WithDetailsKeepsOriginal(t *testing.T) {
	base := Validation("validation failed")
	detailed := base.WithDetails(map[string]string{"name": "is required"})

	assert.Nil(t, base.Details)
	assert.Equal(t, map[string]string{"name": "is required"}, detailed.Details)
	assert.Equal(t, base.Code, detailed.Code)
}
