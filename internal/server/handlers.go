package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/CaliberConsultingLLC/LEP-2-sub001/internal/core"
	"github.com/CaliberConsultingLLC/LEP-2-sub001/internal/llm"
	"github.com/CaliberConsultingLLC/LEP-2-sub001/internal/parser"
	"github.com/CaliberConsultingLLC/LEP-2-sub001/internal/persistence"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// HealthResponse is the /health body
type HealthResponse struct {
	Status string `json:"status"`
	Uptime string `json:"uptime"`
}

// ErrorResponse is the body of every non-2xx response
type ErrorResponse struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

var serverStartTime = time.Now()

// handleHealth handles the /health endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Uptime: time.Since(serverStartTime).Round(time.Second).String(),
	})
}

// respondJSON writes a JSON response
func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error("Failed to encode JSON response", "error", err)
	}
}

// respondError writes a short error message
func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, ErrorResponse{Error: message})
}

// respondFailure maps err to a status. Validation problems are echoed back;
// anything unexpected is logged and answered with a generic message.
func (s *Server) respondFailure(w http.ResponseWriter, r *http.Request, action string, err error) {
	var verr *core.ValidationError
	var perr *parser.ParseError

	switch {
	case errors.As(err, &verr):
		s.respondJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid request", Details: verr.Problems})
	case errors.Is(err, persistence.ErrNotFound):
		s.respondError(w, http.StatusNotFound, "Not found")
	case errors.Is(err, llm.ErrRateLimited):
		s.log.Warn("Model rate limit exhausted", "action", action, "error", err)
		s.respondError(w, http.StatusTooManyRequests, "The model is busy, please retry shortly")
	case errors.As(err, &perr):
		s.log.Error("Model returned malformed output", "error", err, "action", action, "path", r.URL.Path)
		s.respondError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to %s, please retry", action))
	default:
		s.log.Error("Request failed", "error", err, "action", action, "path", r.URL.Path)
		s.respondError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to %s", action))
	}
}

// decodeJSON reads a bounded JSON body into v.
func decodeJSON(r *http.Request, v any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		return &core.ValidationError{Problems: []string{"failed to read request body"}}
	}
	if len(body) > maxBodyBytes {
		return &core.ValidationError{Problems: []string{"request body too large"}}
	}
	if err := json.Unmarshal(body, v); err != nil {
		return &core.ValidationError{Problems: []string{"invalid JSON body: " + err.Error()}}
	}
	return nil
}
