// Package api serves the JSON envelope protocol over a thin net/http
// surface: one handler per orchestrator operation, each translating a
// request body into a service-layer call and wrapping the result (or
// error) in a uniform envelope.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/jwwelbor/shark-orchestrator/internal/models"
)

// Envelope is the uniform response shape for every operation.
type Envelope struct {
	Success  bool          `json:"success"`
	Message  string        `json:"message,omitempty"`
	Data     any           `json:"data,omitempty"`
	Metadata any           `json:"metadata,omitempty"`
	Error    *ErrorDetail  `json:"error,omitempty"`
}

// ErrorDetail carries a machine-readable error code alongside the
// human-readable message already in Envelope.Message.
type ErrorDetail struct {
	Code    string `json:"code"`
	Details string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, env Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}

func writeOK(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, Envelope{Success: true, Data: data})
}

func writeOKMeta(w http.ResponseWriter, data any, metadata any) {
	writeJSON(w, http.StatusOK, Envelope{Success: true, Data: data, Metadata: metadata})
}

// writeErr classifies err against the structured error types and picks
// the matching HTTP status and error code.
func writeErr(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	code := "internal_error"

	switch e := err.(type) {
	case *models.ValidationError:
		status, code = http.StatusBadRequest, "validation_error"
		_ = e
	case *models.NotFoundError:
		status, code = http.StatusNotFound, "not_found"
	case *models.ConflictError:
		status, code = http.StatusConflict, "conflict"
	case *models.DatabaseError:
		status, code = http.StatusInternalServerError, "database_error"
	case *models.ConfigError:
		status, code = http.StatusInternalServerError, "config_error"
	}

	writeJSON(w, status, Envelope{
		Success: false,
		Message: err.Error(),
		Error:   &ErrorDetail{Code: code},
	})
}

func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
