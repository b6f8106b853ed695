// Package response renders JSON bodies for the schema API.
package response

import (
	"encoding/json"
	"net/http"
)

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Error       string   `json:"error"`
	Message     string   `json:"message"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// JSON encodes v and writes it with status. The body is encoded before any
// header is written, so an encoding failure still yields a clean 500.
func JSON(w http.ResponseWriter, status int, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

// RenderError writes an ErrorResponse whose error code is derived from status
func RenderError(w http.ResponseWriter, status int, message string) error {
	return JSON(w, status, ErrorResponse{Error: CodeFromStatus(status), Message: message})
}

// RenderNotFound writes a 404 carrying "did you mean" suggestions
func RenderNotFound(w http.ResponseWriter, message string, suggestions []string) error {
	return JSON(w, http.StatusNotFound, ErrorResponse{
		Error:       CodeFromStatus(http.StatusNotFound),
		Message:     message,
		Suggestions: suggestions,
	})
}

// CodeFromStatus maps the statuses the API produces to error codes
func CodeFromStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "bad_request"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusMethodNotAllowed:
		return "method_not_allowed"
	case http.StatusInternalServerError:
		return "internal_server_error"
	case http.StatusServiceUnavailable:
		return "unavailable"
	default:
		return "error"
	}
}
