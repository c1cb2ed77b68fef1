package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorType
	}{
		{name: "nil", err: nil, want: ""},
		{
			name: "provider error keeps its type",
			err:  &ProviderError{Provider: "openai", StatusCode: 401, Type: ErrorTypeAuth},
			want: ErrorTypeAuth,
		},
		{
			name: "wrapped provider error",
			err:  fmt.Errorf("call failed: %w", &ProviderError{Provider: "google", Type: ErrorTypeQuota}),
			want: ErrorTypeQuota,
		},
		{name: "rate limit error", err: &RateLimitError{Provider: "local"}, want: ErrorTypeRateLimit},
		{
			name: "malformed output",
			err:  &MalformedOutputError{Provider: "anthropic", Reason: "no object"},
			want: ErrorTypeMalformedOutput,
		},
		{name: "deadline", err: fmt.Errorf("do: %w", context.DeadlineExceeded), want: ErrorTypeTimeout},
		{name: "sentinel no json", err: ErrNoJSONObject, want: ErrorTypeMalformedOutput},
		{name: "sentinel unavailable", err: ErrProviderUnavailable, want: ErrorTypeProvider},
		{name: "message quota", err: errors.New("monthly quota reached"), want: ErrorTypeQuota},
		{name: "message connection", err: errors.New("connection reset by peer"), want: ErrorTypeNetwork},
		{name: "unknown", err: errors.New("boom"), want: ErrorTypeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}

func TestProviderError(t *testing.T) {
	err := &ProviderError{Provider: "openai", StatusCode: 429, Message: "slow down", Type: ErrorTypeRateLimit, RetryAfter: 3}

	assert.Equal(t, "openai error (status 429): slow down", err.Error())
	assert.True(t, err.IsTransient())
	assert.Equal(t, "3s", err.GetRetryAfter().String())

	auth := &ProviderError{Provider: "openai", StatusCode: 401, Type: ErrorTypeAuth}
	assert.False(t, auth.IsTransient())
	assert.Zero(t, auth.GetRetryAfter())
}

func TestRateLimitError_UnwrapsSentinel(t *testing.T) {
	err := &RateLimitError{Provider: "local", RetryAfter: 2}

	assert.ErrorIs(t, err, ErrRateLimitExceeded)
	assert.Equal(t, "rate limit exceeded for local, retry after 2 seconds", err.Error())
}

func TestMalformedOutputError(t *testing.T) {
	cause := errors.New("unexpected end of JSON input")
	err := &MalformedOutputError{Provider: "openai", Reason: "decode failed", Excerpt: "{\"a\":", Cause: cause}

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "decode failed")
	assert.Contains(t, err.Error(), "output begins")
}
