package api

import (
	"net/http"
	"strconv"

	"github.com/danielgtaylor/huma/v2"
)

// envelopeVersion is bumped when the envelope shape changes.
const envelopeVersion = 1

// Envelope wraps every JSON response body.
type Envelope struct {
	Version int       `json:"v"`
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *APIError `json:"error,omitempty"`
}

// EnvelopeTransformer is a huma.Transformer that wraps handler output in an
// Envelope. Error bodies become {"success": false, "error": {...}}.
func EnvelopeTransformer(_ huma.Context, status string, v any) (any, error) {
	switch body := v.(type) {
	case *Envelope, Envelope:
		return v, nil
	case *APIError:
		return &Envelope{Version: envelopeVersion, Error: body}, nil
	case huma.StatusError:
		return errorEnvelope(body.GetStatus(), body.Error()), nil
	}

	// An error body some other transformer already rewrote.
	if code, err := strconv.Atoi(status); err == nil && code >= http.StatusBadRequest {
		return errorEnvelope(code, http.StatusText(code)), nil
	}

	return &Envelope{Version: envelopeVersion, Success: true, Data: v}, nil
}

func errorEnvelope(status int, msg string) *Envelope {
	return &Envelope{
		Version: envelopeVersion,
		Error: &APIError{
			status:  status,
			Code:    statusToCode(status),
			Message: msg,
		},
	}
}
