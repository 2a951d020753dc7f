package rate

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	redis_rate "github.com/go-redis/redis_rate/v10"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const swipeKeyPrefix = "rate:swipes:"

type allower interface {
	Allow(ctx context.Context, key string, limit redis_rate.Limit) (*redis_rate.Result, error)
}

// Limiter throttles swipe bursts per user. Redis holds the shared budget;
// when Redis fails each process falls back to a local token bucket with the
// same rate.
type Limiter struct {
	remote allower
	limit  redis_rate.Limit
	logger *zap.Logger

	mu    sync.Mutex
	local map[string]*rate.Limiter
}

func NewLimiter(client *goredis.Client, perMinute int, logger *zap.Logger) *Limiter {
	var remote allower
	if client != nil {
		remote = redis_rate.NewLimiter(client)
	}
	return newLimiter(remote, perMinute, logger)
}

func newLimiter(remote allower, perMinute int, logger *zap.Logger) *Limiter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Limiter{
		remote: remote,
		limit:  redis_rate.PerMinute(perMinute),
		logger: logger,
		local:  make(map[string]*rate.Limiter),
	}
}

// Enabled is false when the configured rate is zero.
func (l *Limiter) Enabled() bool {
	return l != nil && l.limit.Rate > 0
}

// AllowSwipe reports whether userID may swipe now and, if not, how many
// seconds to wait.
func (l *Limiter) AllowSwipe(ctx context.Context, userID string) (int64, bool, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return 0, false, fmt.Errorf("invalid user id")
	}
	if !l.Enabled() {
		return 0, true, nil
	}

	key := swipeKeyPrefix + userID
	if l.remote != nil {
		res, err := l.remote.Allow(ctx, key, l.limit)
		if err == nil {
			if res.Allowed > 0 {
				return 0, true, nil
			}
			return ceilSeconds(res.RetryAfter), false, nil
		}
		l.logger.Warn("swipe rate limiter unavailable, using local bucket", zap.Error(err))
	}

	if l.localBucket(key).Allow() {
		return 0, true, nil
	}
	return ceilSeconds(time.Duration(float64(l.limit.Period) / float64(l.limit.Rate))), false, nil
}

func (l *Limiter) localBucket(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	b, ok := l.local[key]
	if !ok {
		perSecond := float64(l.limit.Rate) / l.limit.Period.Seconds()
		b = rate.NewLimiter(rate.Limit(perSecond), l.limit.Burst)
		l.local[key] = b
	}
	return b
}

func ceilSeconds(d time.Duration) int64 {
	if d <= 0 {
		return 1
	}
	return int64(math.Ceil(d.Seconds()))
}
