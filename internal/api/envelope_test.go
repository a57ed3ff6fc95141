package api

import (
	"encoding/json/v2"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/circleapp/circle-server/internal/errors"
)

func marshalEnvelope(t *testing.T, v any) map[string]any {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func TestEnvelopeTransformer_Success(t *testing.T) {
	result, err := EnvelopeTransformer(nil, "200", map[string]string{"id": "post-123"})
	require.NoError(t, err)

	out := marshalEnvelope(t, result)
	assert.Equal(t, float64(1), out["v"])
	assert.Equal(t, true, out["success"])
	assert.Equal(t, map[string]any{"id": "post-123"}, out["data"])
	assert.NotContains(t, out, "error")
}

func TestEnvelopeTransformer_NullData(t *testing.T) {
	result, err := EnvelopeTransformer(nil, "204", nil)
	require.NoError(t, err)

	out := marshalEnvelope(t, result)
	assert.Equal(t, true, out["success"])
	assert.NotContains(t, out, "data")
	assert.NotContains(t, out, "version")
}

func TestEnvelopeTransformer_Error(t *testing.T) {
	result, err := EnvelopeTransformer(nil, "409", &APIError{
		status:  409,
		Code:    "ALREADY_EXISTS",
		Message: "Username is taken",
		Details: map[string]string{"username": "alice"},
	})
	require.NoError(t, err)

	out := marshalEnvelope(t, result)
	assert.Equal(t, false, out["success"])
	assert.NotContains(t, out, "data")

	apiErr, ok := out["error"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "ALREADY_EXISTS", apiErr["code"])
	assert.Equal(t, "Username is taken", apiErr["message"])
	assert.Equal(t, map[string]any{"username": "alice"}, apiErr["details"])
}

func TestEnvelopeTransformer_ForeignStatusError(t *testing.T) {
	result, err := EnvelopeTransformer(nil, "404", &huma.ErrorModel{Status: 404, Detail: "missing"})
	require.NoError(t, err)

	env, ok := result.(*Envelope)
	require.True(t, ok)
	assert.False(t, env.Success)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
}

func TestEnvelopeTransformer_RewrittenErrorBody(t *testing.T) {
	result, err := EnvelopeTransformer(nil, "403", struct{ Foo string }{"bar"})
	require.NoError(t, err)

	env, ok := result.(*Envelope)
	require.True(t, ok)
	assert.False(t, env.Success)
	assert.Equal(t, "NOT_ALLOWED", env.Error.Code)
}

func TestRegisterErrorHandler_MapsDomainErrors(t *testing.T) {
	RegisterErrorHandler()

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{"not found", domainerrors.NotFound("label does not exist"), 404, "NOT_FOUND", "label does not exist"},
		{"not allowed", domainerrors.NotAllowed("You are not the author of this label"), 403, "NOT_ALLOWED", "You are not the author of this label"},
		{"wrapped", errors.Join(errors.New("context"), domainerrors.AlreadyExists("taken")), 409, "ALREADY_EXISTS", "taken"},
		{"rate limited", domainerrors.RateLimited("slow down"), 429, "RATE_LIMITED", "slow down"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			se := huma.NewError(500, "unexpected error occurred", tt.err)
			apiErr, ok := se.(*APIError)
			require.True(t, ok)
			assert.Equal(t, tt.wantStatus, apiErr.GetStatus())
			assert.Equal(t, tt.wantCode, apiErr.Code)
			assert.Equal(t, tt.wantMsg, apiErr.Message)
		})
	}
}

func TestStatusToCode(t *testing.T) {
	assert.Equal(t, "VALIDATION", statusToCode(400))
	assert.Equal(t, "VALIDATION", statusToCode(422))
	assert.Equal(t, "UNAUTHORIZED", statusToCode(401))
	assert.Equal(t, "NOT_ALLOWED", statusToCode(403))
	assert.Equal(t, "NOT_FOUND", statusToCode(404))
	assert.Equal(t, "ALREADY_EXISTS", statusToCode(409))
	assert.Equal(t, "INTERNAL", statusToCode(502))
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, errorEnvelope(http.StatusUnauthorized, "Authentication required"))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, false, out["success"])
	assert.Equal(t, map[string]any{"code": "UNAUTHORIZED", "message": "Authentication required"}, out["error"])
}
