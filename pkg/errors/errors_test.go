package errors

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestErrorFormatting(t *testing.T) {
	err := New(ErrorTypeNotFound, "user @ghost not found")
	assert.Equal(t, "not_found error: user @ghost not found", err.Error())

	withCode := &Error{Type: ErrorTypeAuth, Message: "invalid credentials", Code: 401}
	assert.Equal(t, "auth error (code 401): invalid credentials", withCode.Error())
}

func TestNewf(t *testing.T) {
	err := Newf(ErrorTypeDownload, "failed after %d bytes", 512)
	assert.Equal(t, ErrorTypeDownload, err.Type)
	assert.Contains(t, err.Message, "512")
}

func TestIsType(t *testing.T) {
	err := New(ErrorTypeNetwork, "connection reset")

	assert.True(t, IsType(err, ErrorTypeNetwork))
	assert.False(t, IsType(err, ErrorTypeAuth))
	assert.False(t, IsType(nil, ErrorTypeNetwork))
	assert.False(t, IsType(fmt.Errorf("plain error"), ErrorTypeNetwork))

	// Wrapped typed errors are still recognized
	wrapped := fmt.Errorf("fetch: %w", err)
	assert.True(t, IsType(wrapped, ErrorTypeNetwork))
}

func TestRateLimitErrors(t *testing.T) {
	resetAt := time.Date(2025, 6, 1, 12, 15, 0, 0, time.UTC)
	err := NewRateLimit(resetAt)

	assert.True(t, IsRateLimit(err))
	assert.Equal(t, 429, err.Code)
	assert.Equal(t, resetAt, RateLimitReset(err))
	assert.Contains(t, err.Error(), "2025-06-01T12:15:00Z")

	assert.False(t, IsRateLimit(New(ErrorTypeNetwork, "nope")))
	assert.True(t, RateLimitReset(New(ErrorTypeNetwork, "nope")).IsZero())
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(ErrorTypeNetwork))
	assert.True(t, IsRetryable(ErrorTypeRateLimit))
	assert.False(t, IsRetryable(ErrorTypeAuth))
	assert.False(t, IsRetryable(ErrorTypeNotFound))
	assert.False(t, IsRetryable(ErrorTypeConfiguration))
}

func TestIsRetryableStatusCode(t *testing.T) {
	retryable := []int{0, 429, 500, 502, 503}
	for _, code := range retryable {
		assert.True(t, IsRetryableStatusCode(code), "code %d", code)
	}

	permanent := []int{200, 401, 403, 404, 400}
	for _, code := range permanent {
		assert.False(t, IsRetryableStatusCode(code), "code %d", code)
	}
}
