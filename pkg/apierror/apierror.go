package apierror

import (
	"fmt"
	"net/http"
)

type APIError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Details    string `json:"details,omitempty"`
	HTTPStatus int    `json:"-"`
}

func (e *APIError) Error() string {
	if e == nil {
		return ""
	}

	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}

	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func New(code string, message string, details string, status int) *APIError {
	return &APIError{Code: code, Message: message, Details: details, HTTPStatus: status}
}

// FromStatus builds an error for a response that carried no usable body.
// The code is derived from the standard status text.
func FromStatus(status int, message string) *APIError {
	code := http.StatusText(status)
	if code == "" {
		code = "UNKNOWN"
	}
	if message == "" {
		message = "request failed"
	}
	return &APIError{Code: code, Message: message, HTTPStatus: status}
}
