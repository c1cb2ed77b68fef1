// Package ratelimit throttles outbound LLM requests with per provider/model
// token buckets.
package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"

	"golang.org/x/time/rate"

	"github.com/ahrav/go-appraise/internal/llm/configuration"
	llmerrors "github.com/ahrav/go-appraise/internal/llm/errors"
	"github.com/ahrav/go-appraise/internal/llm/transport"
)

// rateLimitMiddleware holds one token bucket per provider/model key.
// Requests wait for a token instead of failing; a request whose context
// cannot outlast the wait is rejected with a RateLimitError.
type rateLimitMiddleware struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	config   configuration.LocalRateLimitConfig
	logger   *slog.Logger
}

// NewRateLimitMiddleware creates a throttling middleware. A disabled config
// yields a pass-through middleware.
func NewRateLimitMiddleware(cfg configuration.LocalRateLimitConfig, logger *slog.Logger) (transport.Middleware, error) {
	if !cfg.Enabled {
		return func(next transport.Handler) transport.Handler { return next }, nil
	}
	if cfg.TokensPerSecond <= 0 || math.IsInf(cfg.TokensPerSecond, 0) || math.IsNaN(cfg.TokensPerSecond) {
		return nil, fmt.Errorf("invalid tokens per second: %v", cfg.TokensPerSecond)
	}
	if cfg.BurstSize < 1 {
		return nil, fmt.Errorf("invalid burst size: %d", cfg.BurstSize)
	}
	if logger == nil {
		logger = slog.Default()
	}

	r := &rateLimitMiddleware{
		limiters: make(map[string]*rate.Limiter),
		config:   cfg,
		logger:   logger,
	}
	return r.middleware, nil
}

func (r *rateLimitMiddleware) middleware(next transport.Handler) transport.Handler {
	return transport.HandlerFunc(func(ctx context.Context, req *transport.Request) (*transport.Response, error) {
		key := limiterKey(req)
		limiter := r.getOrCreateLimiter(key)

		reservation := limiter.Reserve()
		if delay := reservation.Delay(); delay > 0 {
			reservation.Cancel()
			r.logger.Debug("throttling LLM request", "key", key, "delay_ms", delay.Milliseconds())
			if err := limiter.Wait(ctx); err != nil {
				return nil, &llmerrors.RateLimitError{
					Provider:   req.Provider,
					RetryAfter: int(math.Ceil(delay.Seconds())),
					Limit:      int(r.config.TokensPerSecond),
					LocalLimit: true,
				}
			}
		}

		return next.Handle(ctx, req)
	})
}

func (r *rateLimitMiddleware) getOrCreateLimiter(key string) *rate.Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()

	if l, ok := r.limiters[key]; ok {
		return l
	}
	l := rate.NewLimiter(rate.Limit(r.config.TokensPerSecond), r.config.BurstSize)
	r.limiters[key] = l
	return l
}

func limiterKey(req *transport.Request) string {
	return req.Provider + ":" + req.Model
}
