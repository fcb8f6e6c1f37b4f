package http

import (
	"encoding/json"
	"net/http"

	"github.com/atinyakov/daybook/internal/apperr"
)

// Response is the JSON envelope of every API reply.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeOK(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, Response{Success: true, Message: message, Data: data})
}

// writeError renders err with the status of its kind. Causes never reach the client.
func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(apperr.KindOf(err)), Response{Message: apperr.Message(err)})
}

func statusFor(k apperr.Kind) int {
	switch k {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// decode reads a JSON body into v, answering 400 itself on failure.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, apperr.Validation("invalid request"))
		return false
	}
	return true
}
