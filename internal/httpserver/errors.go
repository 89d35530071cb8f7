package httpserver

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"
)

// Stable error codes returned in the "error" field.
const (
	codeBadJSON        = "bad_json"
	codeNoSession      = "no_session"
	codeInvalidSession = "invalid_session"
	codeNotFound       = "not_found"
	codeInternal       = "internal_error"
)

// errorResponse is the body of every failed request.
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// respondError writes a standardized error response.
func respondError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: code, Message: message})
}

// respondInternal logs err and hides it from the client.
func respondInternal(w http.ResponseWriter, logger zerolog.Logger, err error) {
	logger.Error().Err(err).Msg("request failed")
	respondError(w, http.StatusInternalServerError, codeInternal, "internal error")
}
