package model

import (
	"errors"
	"fmt"
)

// Application sentinel errors. Callers compare with errors.Is; AppError wraps them.
var (
	ErrNotFound       = errors.New("resource not found")
	ErrInvalidInput   = errors.New("invalid input")
	ErrInternalServer = errors.New("internal server error")
	ErrConflict       = errors.New("resource conflict")

	// ErrVersionConflict is returned by the progress store when a versioned write
	// loses an optimistic-concurrency race. It is retried and never surfaced as-is.
	ErrVersionConflict = errors.New("progress record version conflict")
)

// AppError carries a client-facing code and message together with the sentinel
// that decides the HTTP status.
type AppError struct {
	Code    string
	Message string
	Field   string
	Err     error
}

func NewAppError(code, message, field string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Field:   field,
		Err:     err,
	}
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Detail returns the client-facing part of the error.
func (e *AppError) Detail() ErrorDetail {
	return ErrorDetail{
		Code:    e.Code,
		Message: e.Message,
		Field:   e.Field,
	}
}

// ErrorDetail is the body of an error response.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// APIErrorResponse is the JSON envelope returned for every failed request.
type APIErrorResponse struct {
	Error ErrorDetail `json:"error"`
}
