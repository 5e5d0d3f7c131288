package errors

import "fmt"

// ErrorType represents different types of errors that can occur
type ErrorType string

const (
	// ErrorTypeDecode means the image bytes could not be decoded as a
	// supported raster format. Not retryable: the observation is skipped.
	ErrorTypeDecode ErrorType = "decode"
	// ErrorTypeStore covers I/O failures against the durable ledger store.
	ErrorTypeStore ErrorType = "store"
	// ErrorTypeConfig covers invalid or missing configuration.
	ErrorTypeConfig ErrorType = "config"
	ErrorTypeUnknown ErrorType = "unknown"
)

// Error represents a ledger error with type information
type Error struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s error: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s error: %s", e.Type, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a typed error without an underlying cause
func New(errorType ErrorType, message string) *Error {
	return &Error{Type: errorType, Message: message}
}

// Wrap creates a typed error wrapping an underlying cause
func Wrap(errorType ErrorType, message string, err error) *Error {
	return &Error{Type: errorType, Message: message, Err: err}
}

// IsRetryable checks if an error type should be retried
func IsRetryable(errorType ErrorType) bool {
	switch errorType {
	case ErrorTypeStore:
		return true
	case ErrorTypeDecode, ErrorTypeConfig:
		return false
	default:
		return false
	}
}
