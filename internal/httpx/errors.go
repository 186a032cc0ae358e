package httpx

import (
	"net/http"

	"github.com/go-chi/render"

	"github.com/AngelCh415/adsdash/internal/export"
)

// APIError is the JSON error body of every failed request.
type APIError struct {
	StatusCode int    `json:"status_code"`
	ErrorCode  string `json:"error_code"`
	Message    string `json:"message"`
	Details    any    `json:"details,omitempty"`
}

func (e *APIError) Error() string { return e.Message }

func (e *APIError) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.StatusCode)
	return nil
}

func errInvalid(field, msg string) *APIError {
	return &APIError{StatusCode: http.StatusBadRequest, ErrorCode: "VALIDATION_FAILED", Message: "Request validation failed", Details: map[string]string{"field": field, "message": msg}}
}

func errBadRequest(err error) *APIError {
	return &APIError{StatusCode: http.StatusBadRequest, ErrorCode: "INVALID_REQUEST", Message: "Invalid request format", Details: err.Error()}
}

func errNotReady() *APIError {
	return &APIError{StatusCode: http.StatusServiceUnavailable, ErrorCode: "LOADING", Message: "Dashboard data is still loading"}
}

func errSinkNotConfigured() *APIError {
	return &APIError{StatusCode: http.StatusBadRequest, ErrorCode: "SINK_NOT_CONFIGURED", Message: export.ErrSinkNotConfigured.Error()}
}

func errUpstream(err error) *APIError {
	return &APIError{StatusCode: http.StatusBadGateway, ErrorCode: "UPSTREAM_FAILED", Message: err.Error()}
}

func errInternal(err error) *APIError {
	return &APIError{StatusCode: http.StatusInternalServerError, ErrorCode: "INTERNAL_SERVER_ERROR", Message: "Internal server error", Details: err.Error()}
}

func writeErr(w http.ResponseWriter, r *http.Request, e *APIError) {
	_ = render.Render(w, r, e)
}
