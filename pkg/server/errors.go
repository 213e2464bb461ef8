package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"congress-hq/dashboard/pkg/congress"
	"congress-hq/dashboard/pkg/console"
	"congress-hq/dashboard/pkg/history"
)

// Error codes returned in ErrorResponse.
const (
	CodeBadRequest = "bad_request"
	CodeNotFound   = "not_found"
	CodeBackend    = "backend_error"
	CodeTimeout    = "timeout"
	CodeInternal   = "internal_error"
)

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail describes one error.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// statusFor maps an error to its HTTP status and code.
func statusFor(err error) (int, string) {
	var backendErr *congress.BackendError
	switch {
	case congress.IsNotFound(err), errors.Is(err, history.ErrNotFound):
		return http.StatusNotFound, CodeNotFound
	case errors.Is(err, console.ErrInvalidKind):
		return http.StatusBadRequest, CodeBadRequest
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest, CodeBadRequest
	case errors.As(err, &backendErr):
		return http.StatusBadGateway, CodeBackend
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}

var errBadRequest = errors.New("bad request")

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Error: ErrorDetail{Code: code, Message: message}})
}
