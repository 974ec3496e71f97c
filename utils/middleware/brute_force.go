package middleware

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/teachme/platform-api/utils/logger"
	"github.com/teachme/platform-api/utils/response"
	"go.uber.org/zap"
)

// AttemptStore is the subset of cache operations login throttling needs.
// *cache.RedisCache satisfies it.
type AttemptStore interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, key string) (bool, error)
	Increment(ctx context.Context, key string) (int64, error)
	Expire(ctx context.Context, key string, expiration time.Duration) error
	TTL(ctx context.Context, key string) (time.Duration, error)
}

// attemptWindow is how long failed attempts are remembered
const attemptWindow = 15 * time.Minute

// BruteForceProtection locks out IPs after repeated failed logins
type BruteForceProtection struct {
	store AttemptStore
}

// NewBruteForceProtection creates a new brute force protection instance
func NewBruteForceProtection(store AttemptStore) *BruteForceProtection {
	return &BruteForceProtection{store: store}
}

func attemptKey(ip string) string { return fmt.Sprintf("brute_force:attempts:%s", ip) }
func lockKey(ip string) string    { return fmt.Sprintf("brute_force:lock:%s", ip) }

// lockoutFor returns the lock duration after the given number of failures
func lockoutFor(attempts int64) time.Duration {
	switch {
	case attempts >= 25:
		return 24 * time.Hour
	case attempts >= 10:
		return time.Hour
	case attempts >= 5:
		return 2 * time.Minute
	default:
		return 0
	}
}

// Check rejects requests from locked IPs. Cache failures let the request through.
func (b *BruteForceProtection) Check() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ip := c.IP()
		locked, err := b.store.Exists(c.UserContext(), lockKey(ip))
		if err != nil {
			logger.L().Warn("brute force check unavailable", zap.Error(err))
			return c.Next()
		}
		if !locked {
			return c.Next()
		}

		retryAfter := 60
		if ttl, err := b.store.TTL(c.UserContext(), lockKey(ip)); err == nil && ttl > 0 {
			retryAfter = int(ttl.Seconds())
		}
		c.Set(fiber.HeaderRetryAfter, strconv.Itoa(retryAfter))
		return response.TooManyRequests(c, fmt.Sprintf("Too many failed attempts. Try again in %d seconds", retryAfter))
	}
}

// RecordFailure counts a failed login for ip and applies progressive lockouts
func (b *BruteForceProtection) RecordFailure(ctx context.Context, ip string) {
	attempts, err := b.store.Increment(ctx, attemptKey(ip))
	if err != nil {
		logger.L().Warn("failed to record login failure", zap.Error(err))
		return
	}
	if attempts == 1 {
		_ = b.store.Expire(ctx, attemptKey(ip), attemptWindow)
	}

	if d := lockoutFor(attempts); d > 0 {
		if err := b.store.Set(ctx, lockKey(ip), "locked", d); err != nil {
			logger.L().Warn("failed to lock ip", zap.Error(err))
			return
		}
		logger.L().Info("login locked", zap.String("ip", ip), zap.Int64("attempts", attempts), zap.Duration("duration", d))
	}
}

// RecordSuccess clears failed attempts and any lock for ip
func (b *BruteForceProtection) RecordSuccess(ctx context.Context, ip string) {
	_ = b.store.Delete(ctx, attemptKey(ip), lockKey(ip))
}
