// Package ratelimit throttles inbound websocket actions per client,
// backed by Redis when available and falling back to an in-memory store
// in single-instance/dev deployments. Grounded on the teacher's
// ulule/limiter wiring, narrowed from a multi-tier HTTP-API rate limiter
// (global/public/rooms/messages/ws-ip/ws-user) to the single concern this
// domain has: a connected client sending too many game actions.
package ratelimit

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"

	"github.com/shedserver/shedserver/internal/v1/config"
	"github.com/shedserver/shedserver/internal/v1/logging"
	"github.com/shedserver/shedserver/internal/v1/metrics"
)

// RateLimiter enforces the per-client inbound action rate.
type RateLimiter struct {
	wsActions   *limiter.Limiter
	store       limiter.Store
	redisClient *redis.Client
}

// NewRateLimiter constructs a RateLimiter from the configured rate. When
// redisClient is nil (single-instance/dev mode) it falls back to an
// in-memory store.
func NewRateLimiter(cfg *config.Config, redisClient *redis.Client) (*RateLimiter, error) {
	rate, err := limiter.NewRateFromFormatted(cfg.RateLimitWsActions)
	if err != nil {
		return nil, fmt.Errorf("invalid ws action rate: %w", err)
	}

	var store limiter.Store
	if redisClient != nil {
		s, err := sredis.NewStoreWithOptions(redisClient, limiter.StoreOptions{
			Prefix: "limiter:v1:",
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create redis store: %w", err)
		}
		store = s
		logging.Info(context.Background(), "rate limiter using Redis store")
	} else {
		store = memory.NewStore()
		logging.Warn(context.Background(), "rate limiter using memory store (Redis disabled or unavailable)")
	}

	return &RateLimiter{
		wsActions:   limiter.New(store, rate),
		store:       store,
		redisClient: redisClient,
	}, nil
}

// CheckAction reports whether clientID may perform another inbound
// action right now. On store failure it fails open (allows the action)
// and logs — availability over strictness, matching the teacher's
// fail-open posture for rate limiter backend errors.
func (rl *RateLimiter) CheckAction(ctx context.Context, clientID string) bool {
	result, err := rl.wsActions.Get(ctx, clientID)
	if err != nil {
		logging.Error(ctx, "rate limiter store failed")
		return true
	}

	if result.Reached {
		metrics.RateLimitExceeded.WithLabelValues("websocket_action", "client").Inc()
		return false
	}

	metrics.RateLimitRequests.WithLabelValues("websocket_action").Inc()
	return true
}
