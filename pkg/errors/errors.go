package errors

import (
	"errors"
	"fmt"
	"time"
)

// ErrorType represents different types of errors that can occur
type ErrorType string

const (
	ErrorTypeConfiguration ErrorType = "configuration"
	ErrorTypeAuth          ErrorType = "auth"
	ErrorTypeNotFound      ErrorType = "not_found"
	ErrorTypeRateLimit     ErrorType = "rate_limit"
	ErrorTypeNetwork       ErrorType = "network"
	ErrorTypeDownload      ErrorType = "download"
	ErrorTypeFilesystem    ErrorType = "filesystem"
	ErrorTypeParsing       ErrorType = "parsing"
	ErrorTypeUnknown       ErrorType = "unknown"
)

// Error represents a pipeline error with type information.
// ResetAt is only set for rate limit errors and carries the
// API-reported time after which requests may resume.
type Error struct {
	Type    ErrorType
	Message string
	Code    int
	ResetAt time.Time
}

func (e *Error) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("%s error (code %d): %s", e.Type, e.Code, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Type, e.Message)
}

// New creates a typed error
func New(errorType ErrorType, message string) *Error {
	return &Error{Type: errorType, Message: message}
}

// Newf creates a typed error with a formatted message
func Newf(errorType ErrorType, format string, args ...interface{}) *Error {
	return &Error{Type: errorType, Message: fmt.Sprintf(format, args...)}
}

// NewRateLimit creates a rate limit error carrying the reset time
func NewRateLimit(resetAt time.Time) *Error {
	return &Error{
		Type:    ErrorTypeRateLimit,
		Message: fmt.Sprintf("rate limit exceeded, resets at %s", resetAt.UTC().Format(time.RFC3339)),
		Code:    429,
		ResetAt: resetAt,
	}
}

// IsType checks whether err is a typed error of the given kind
func IsType(err error, errorType ErrorType) bool {
	var typed *Error
	if errors.As(err, &typed) {
		return typed.Type == errorType
	}
	return false
}

// IsRateLimit checks whether err is a rate limit error
func IsRateLimit(err error) bool {
	return IsType(err, ErrorTypeRateLimit)
}

// RateLimitReset extracts the reset time from a rate limit error.
// The zero time is returned when err is not a rate limit error.
func RateLimitReset(err error) time.Time {
	var typed *Error
	if errors.As(err, &typed) && typed.Type == ErrorTypeRateLimit {
		return typed.ResetAt
	}
	return time.Time{}
}

// IsRetryable checks if an error type should be retried
func IsRetryable(errorType ErrorType) bool {
	switch errorType {
	case ErrorTypeNetwork, ErrorTypeRateLimit:
		return true
	default:
		return false
	}
}

// IsRetryableStatusCode checks if an HTTP status code indicates a retryable error
func IsRetryableStatusCode(statusCode int) bool {
	switch statusCode {
	case 0: // Network error
		return true
	case 429: // Too Many Requests
		return true
	case 401, 403, 404: // Client errors that won't change
		return false
	default:
		return statusCode >= 500
	}
}
