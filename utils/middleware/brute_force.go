package middleware

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/devcamper-api/utils/apperror"
	"github.com/sahilchouksey/devcamper-api/utils/cache"
	"go.uber.org/zap"
)

// BruteForceProtection locks out client IPs after repeated failed logins
type BruteForceProtection struct {
	redisCache *cache.RedisCache
	logger     *zap.Logger
}

// NewBruteForceProtection creates a new brute force protection instance
func NewBruteForceProtection(redisCache *cache.RedisCache, logger *zap.Logger) *BruteForceProtection {
	return &BruteForceProtection{
		redisCache: redisCache,
		logger:     logger,
	}
}

func attemptKey(ip string) string {
	return fmt.Sprintf("brute_force:attempts:%s", ip)
}

func lockKey(ip string) string {
	return fmt.Sprintf("brute_force:lock:%s", ip)
}

// CheckAndRecordAttempt middleware checks if IP is locked out
func (b *BruteForceProtection) CheckAndRecordAttempt() fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := lockKey(c.IP())

		locked, err := b.redisCache.Exists(c.UserContext(), key)
		if err != nil {
			// Redis being down must not lock everyone out
			b.logger.Warn("brute force check failed", zap.Error(err))
			return c.Next()
		}

		if locked {
			ttl, _ := b.redisCache.TTL(c.UserContext(), key)
			retryAfter := int(ttl.Seconds())
			if retryAfter < 0 {
				retryAfter = 60
			}

			c.Set(fiber.HeaderRetryAfter, fmt.Sprintf("%d", retryAfter))
			return apperror.New(apperror.KindTooManyRequests, "Too many failed attempts. Try again in %d seconds", retryAfter)
		}

		return c.Next()
	}
}

// RecordFailedAttempt records a failed login attempt and applies progressive lockouts
func (b *BruteForceProtection) RecordFailedAttempt(c *fiber.Ctx) {
	ctx := c.UserContext()
	ip := c.IP()

	attempts, err := b.redisCache.Increment(ctx, attemptKey(ip))
	if err != nil {
		b.logger.Warn("record failed login", zap.String("ip", ip), zap.Error(err))
		return
	}

	// 15 minute window
	if attempts == 1 {
		b.redisCache.Expire(ctx, attemptKey(ip), 15*time.Minute)
	}

	var lockDuration time.Duration
	switch {
	case attempts >= 25:
		lockDuration = 24 * time.Hour
	case attempts >= 10:
		lockDuration = 1 * time.Hour
	case attempts >= 5:
		lockDuration = 2 * time.Minute
	default:
		return
	}

	if err := b.redisCache.Set(ctx, lockKey(ip), "locked", lockDuration); err != nil {
		b.logger.Warn("lock out client", zap.String("ip", ip), zap.Error(err))
	}
}

// RecordSuccessfulAttempt clears failed attempts on successful login
func (b *BruteForceProtection) RecordSuccessfulAttempt(c *fiber.Ctx) {
	ip := c.IP()
	if err := b.redisCache.Delete(c.UserContext(), attemptKey(ip), lockKey(ip)); err != nil {
		b.logger.Warn("clear login attempts", zap.String("ip", ip), zap.Error(err))
	}
}
