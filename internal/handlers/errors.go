package handlers

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

// Client-facing error messages.
const (
	MsgUploadFailed   = "File upload failed."
	MsgUploadError    = "Failed to upload file."
	MsgURLRequired    = "URL is required."
	MsgCodeInUse      = "Custom code already in use."
	MsgShortenError   = "Failed to shorten URL."
	MsgResolveFailure = "Failed to resolve code."
)

// APIError is the JSON error body returned by every operation.
type APIError struct {
	Status  int    `json:"-"`
	Message string `json:"error"`
}

func (e *APIError) Error() string {
	return e.Message
}

// GetStatus implements huma.StatusError.
func (e *APIError) GetStatus() int {
	return e.Status
}

// NewError replaces huma.NewError so that framework errors share the
// {"error": "..."} shape. Validation failures are reported as 400.
func NewError(status int, msg string, _ ...error) huma.StatusError {
	if status == http.StatusUnprocessableEntity {
		status = http.StatusBadRequest
	}

	return &APIError{Status: status, Message: msg}
}

func badRequest(msg string) error {
	return &APIError{Status: http.StatusBadRequest, Message: msg}
}

func internalError(msg string) error {
	return &APIError{Status: http.StatusInternalServerError, Message: msg}
}

func badGateway(msg string) error {
	return &APIError{Status: http.StatusBadGateway, Message: msg}
}
