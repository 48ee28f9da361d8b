package server

import (
	"net/http"

	json "github.com/goccy/go-json"
)

// Error codes carried in error responses.
const (
	CodeInvalidPayload = "INVALID_PAYLOAD"
	CodeNotFound       = "NOT_FOUND"
	CodeInternal       = "INTERNAL_ERROR"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, title, msg string) {
	writeJSON(w, status, ErrorResponse{Error: title, Message: msg, Code: code})
}

func invalidPayload(w http.ResponseWriter, msg string) {
	writeError(w, http.StatusBadRequest, CodeInvalidPayload, "Invalid Payload", msg)
}

func notFound(w http.ResponseWriter, msg string) {
	writeError(w, http.StatusNotFound, CodeNotFound, "Not Found", msg)
}

func internalError(w http.ResponseWriter, msg string) {
	writeError(w, http.StatusInternalServerError, CodeInternal, "Internal Error", msg)
}
