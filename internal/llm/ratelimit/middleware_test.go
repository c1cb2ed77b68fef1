package ratelimit

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-appraise/internal/llm/configuration"
	llmerrors "github.com/ahrav/go-appraise/internal/llm/errors"
	"github.com/ahrav/go-appraise/internal/llm/transport"
)

func countingHandler(calls *atomic.Int32) transport.Handler {
	return transport.HandlerFunc(func(context.Context, *transport.Request) (*transport.Response, error) {
		calls.Add(1)
		return &transport.Response{Content: "ok"}, nil
	})
}

func TestNewRateLimitMiddleware_Validation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     configuration.LocalRateLimitConfig
		wantErr bool
	}{
		{name: "disabled ignores values", cfg: configuration.LocalRateLimitConfig{Enabled: false}},
		{name: "valid", cfg: configuration.LocalRateLimitConfig{Enabled: true, TokensPerSecond: 1, BurstSize: 1}},
		{name: "zero rate", cfg: configuration.LocalRateLimitConfig{Enabled: true, BurstSize: 1}, wantErr: true},
		{name: "zero burst", cfg: configuration.LocalRateLimitConfig{Enabled: true, TokensPerSecond: 1}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mw, err := NewRateLimitMiddleware(tt.cfg, nil)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, mw)
		})
	}
}

func TestRateLimit_BurstPassesThrough(t *testing.T) {
	var calls atomic.Int32
	mw, err := NewRateLimitMiddleware(configuration.LocalRateLimitConfig{Enabled: true, TokensPerSecond: 1, BurstSize: 3}, nil)
	require.NoError(t, err)
	h := mw(countingHandler(&calls))

	for range 3 {
		_, err := h.Handle(context.Background(), &transport.Request{Provider: "openai", Model: "m"})
		require.NoError(t, err)
	}
	assert.Equal(t, int32(3), calls.Load())
}

func TestRateLimit_ExhaustedWithShortDeadline(t *testing.T) {
	var calls atomic.Int32
	mw, err := NewRateLimitMiddleware(configuration.LocalRateLimitConfig{Enabled: true, TokensPerSecond: 0.01, BurstSize: 1}, nil)
	require.NoError(t, err)
	h := mw(countingHandler(&calls))
	req := &transport.Request{Provider: "openai", Model: "m"}

	_, err = h.Handle(context.Background(), req)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = h.Handle(ctx, req)

	var rlErr *llmerrors.RateLimitError
	require.ErrorAs(t, err, &rlErr)
	assert.True(t, rlErr.LocalLimit)
	assert.Equal(t, "openai", rlErr.Provider)
	assert.Equal(t, int32(1), calls.Load())
}

func TestRateLimit_KeysAreIndependent(t *testing.T) {
	var calls atomic.Int32
	mw, err := NewRateLimitMiddleware(configuration.LocalRateLimitConfig{Enabled: true, TokensPerSecond: 0.01, BurstSize: 1}, nil)
	require.NoError(t, err)
	h := mw(countingHandler(&calls))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = h.Handle(ctx, &transport.Request{Provider: "openai", Model: "a"})
	require.NoError(t, err)
	_, err = h.Handle(ctx, &transport.Request{Provider: "anthropic", Model: "a"})
	require.NoError(t, err)

	assert.Equal(t, int32(2), calls.Load())
}
