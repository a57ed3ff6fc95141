package api

import (
	"encoding/json/v2"
	"net/http"
)

// registerEventRoutes mounts the SSE stream on the chi router directly;
// huma operations cannot hold a response open.
func (s *Server) registerEventRoutes() {
	if s.sseHandler == nil {
		return
	}
	s.router.Get("/api/v1/events", s.handleEvents)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserID(r.Context())
	if err != nil {
		writeError(w, errorEnvelope(http.StatusUnauthorized, "Authentication required"))
		return
	}

	s.sseHandler.ServeHTTP(w, r, userID)
}

// writeError renders an error envelope outside huma.
func writeError(w http.ResponseWriter, env *Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(env.Error.GetStatus())
	_ = json.MarshalWrite(w, env)
}
