package errors

import (
	"context"
	"errors"
	"net"
	"strings"
)

// Classify maps an LLM operation error onto an ErrorType. Typed errors are
// examined first, then sentinels, then message patterns.
func Classify(err error) ErrorType {
	if err == nil {
		return ""
	}

	var providerErr *ProviderError
	if errors.As(err, &providerErr) {
		return providerErr.Type
	}

	var rateLimitErr *RateLimitError
	if errors.As(err, &rateLimitErr) {
		return ErrorTypeRateLimit
	}

	var malformedErr *MalformedOutputError
	if errors.As(err, &malformedErr) {
		return ErrorTypeMalformedOutput
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return ErrorTypeTimeout
	case errors.Is(err, ErrRateLimitExceeded):
		return ErrorTypeRateLimit
	case errors.Is(err, ErrProviderUnavailable):
		return ErrorTypeProvider
	case errors.Is(err, ErrNoJSONObject), errors.Is(err, ErrInvalidResponse):
		return ErrorTypeMalformedOutput
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return ErrorTypeTimeout
		}
		return ErrorTypeNetwork
	}

	return classifyMessage(err)
}

// classifyMessage falls back to message patterns for untyped errors.
func classifyMessage(err error) ErrorType {
	errMsg := strings.ToLower(err.Error())

	switch {
	case strings.Contains(errMsg, "rate limit"):
		return ErrorTypeRateLimit
	case strings.Contains(errMsg, "timeout") || strings.Contains(errMsg, "deadline"):
		return ErrorTypeTimeout
	case strings.Contains(errMsg, "unauthorized") || strings.Contains(errMsg, "authentication"):
		return ErrorTypeAuth
	case strings.Contains(errMsg, "forbidden") || strings.Contains(errMsg, "permission"):
		return ErrorTypePermission
	case strings.Contains(errMsg, "quota"):
		return ErrorTypeQuota
	case strings.Contains(errMsg, "network") || strings.Contains(errMsg, "connection"):
		return ErrorTypeNetwork
	default:
		return ErrorTypeUnknown
	}
}
