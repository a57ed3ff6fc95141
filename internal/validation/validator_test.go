package validation_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/circleapp/circle-server/internal/errors"
	"github.com/circleapp/circle-server/internal/validation"
)

type registerRequest struct {
	Username string `json:"username" validate:"required,min=1,max=64,username"`
	Password string `json:"password" validate:"required,min=8,max=1024"`
	Color    string `json:"background_color,omitempty" validate:"omitempty,hexcolor"`
}

func TestValidator_ValidateSuccess(t *testing.T) {
	v := validation.New()

	err := v.Validate(registerRequest{Username: "alice.b", Password: "password123", Color: "#ffcc00"})
	assert.NoError(t, err)
}

func TestValidator_ValidateErrors(t *testing.T) {
	v := validation.New()

	tests := []struct {
		name      string
		req       registerRequest
		wantField string
		wantMsg   string
	}{
		{"missing username", registerRequest{Password: "password123"}, "username", "is required"},
		{"username with spaces", registerRequest{Username: "al ice", Password: "password123"}, "username", "may only contain"},
		{"username too long", registerRequest{Username: strings.Repeat("a", 65), Password: "password123"}, "username", "must not exceed 64"},
		{"password too short", registerRequest{Username: "alice", Password: "short"}, "password", "at least 8"},
		{"password too long", registerRequest{Username: "alice", Password: strings.Repeat("p", 1025)}, "password", "must not exceed 1024"},
		{"bad color", registerRequest{Username: "alice", Password: "password123", Color: "blue"}, "background_color", "hex color"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.req)
			require.Error(t, err)
			assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation))

			var derr *domainerrors.Error
			require.True(t, domainerrors.As(err, &derr))
			details, ok := derr.Details.(map[string]string)
			require.True(t, ok)
			assert.Contains(t, details[tt.wantField], tt.wantMsg)
			assert.Contains(t, derr.Message, tt.wantField)
		})
	}
}

func TestValidator_JSONFieldNames(t *testing.T) {
	v := validation.New()

	err := v.Validate(registerRequest{Password: "password123"})
	require.Error(t, err)

	assert.Contains(t, err.Error(), "username")
	assert.NotContains(t, err.Error(), "Username")
}

func TestValidator_Var(t *testing.T) {
	v := validation.New()

	assert.NoError(t, v.Var("name", "Close friends", "notblank,max=100"))

	err := v.Var("name", "   ", "notblank,max=100")
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation))
	assert.Equal(t, "name is required", err.Error())
}
