package agentapi

import (
	"errors"
	"fmt"
)

// ErrorCode classifies agent service failures for logging and user-facing
// messaging.
type ErrorCode string

const (
	// ErrCodeConnection indicates a network-level failure reaching the service.
	ErrCodeConnection ErrorCode = "CONNECTION_ERROR"

	// ErrCodeTimeout indicates the bounded wait elapsed before a response.
	ErrCodeTimeout ErrorCode = "TIMEOUT_ERROR"

	// ErrCodeStatus indicates a non-2xx response from the service.
	ErrCodeStatus ErrorCode = "STATUS_ERROR"

	// ErrCodeDecode indicates a malformed response payload.
	ErrCodeDecode ErrorCode = "DECODE_ERROR"

	// ErrCodeInternal indicates an unexpected client-side failure.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// Error is a structured agent service error. The raw upstream status and
// body text are preserved so the front-end can surface them verbatim.
type Error struct {
	Code       ErrorCode
	Message    string
	StatusCode int    // HTTP status, when the request completed
	Body       string // raw upstream response text, truncated
	Err        error
}

func (e *Error) Error() string {
	switch {
	case e.Body != "":
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Body)
	case e.Err != nil:
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	default:
		return fmt.Sprintf("[%s] %s", e.Code, e.Message)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Code extracts the ErrorCode from err, defaulting to ErrCodeInternal for
// foreign errors.
func Code(err error) ErrorCode {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return ErrCodeInternal
}

func errConnection(message string, err error) *Error {
	return &Error{Code: ErrCodeConnection, Message: message, Err: err}
}

func errTimeout(message string, err error) *Error {
	return &Error{Code: ErrCodeTimeout, Message: message, Err: err}
}

func errStatus(message string, status int, body string) *Error {
	return &Error{Code: ErrCodeStatus, Message: message, StatusCode: status, Body: body}
}

func errDecode(message string, err error) *Error {
	return &Error{Code: ErrCodeDecode, Message: message, Err: err}
}
