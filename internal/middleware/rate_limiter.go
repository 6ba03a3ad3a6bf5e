package middleware

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type RateLimitStore interface {
	// Increment bumps the counter for key and returns the new value. The
	// window starts with the first hit.
	Increment(ctx context.Context, key string, window time.Duration) (int, error)
}

type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// incrementScript starts the window on the first hit only, so later hits
// never extend it.
var incrementScript = redis.NewScript(`
local count = redis.call("INCR", KEYS[1])
if count == 1 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return count
`)

func (s *RedisStore) Increment(ctx context.Context, key string, window time.Duration) (int, error) {
	return incrementScript.Run(ctx, s.client, []string{key}, window.Milliseconds()).Int()
}

type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*rateLimitEntry
	now     func() time.Time
}

type rateLimitEntry struct {
	count     int
	expiresAt time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]*rateLimitEntry),
		now:     time.Now,
	}
}

func (s *MemoryStore) Increment(_ context.Context, key string, window time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for k, entry := range s.entries {
		if !now.Before(entry.expiresAt) {
			delete(s.entries, k)
		}
	}

	entry, ok := s.entries[key]
	if !ok {
		entry = &rateLimitEntry{expiresAt: now.Add(window)}
		s.entries[key] = entry
	}
	entry.count++
	return entry.count, nil
}

type RateLimitConfig struct {
	Enabled bool
	Limit   int
	Window  time.Duration
}

type RateLimiter struct {
	store RateLimitStore
	log   *zap.SugaredLogger
}

func NewRateLimiter(store RateLimitStore, log *zap.SugaredLogger) *RateLimiter {
	return &RateLimiter{
		store: store,
		log:   log,
	}
}

// RateLimit counts requests per client IP and, once the tenant is resolved,
// per tenant so one tenant's login storm cannot lock out another's users.
// A failing store lets the request through.
func (r *RateLimiter) RateLimit(config RateLimitConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !config.Enabled || config.Limit <= 0 {
			return c.Next()
		}

		key := fmt.Sprintf("rate_limit:ip:%s", c.IP())
		if tenant, ok := TenantFrom(c); ok {
			key = fmt.Sprintf("rate_limit:tenant:%d:ip:%s", tenant.ID, c.IP())
		}

		count, err := r.store.Increment(c.UserContext(), key, config.Window)
		if err != nil {
			r.log.Warnw("rate limit store unavailable", "key", key, "error", err)
			return c.Next()
		}
		if count > config.Limit {
			c.Set(fiber.HeaderRetryAfter, fmt.Sprintf("%d", int(config.Window.Seconds())))
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests",
			})
		}

		return c.Next()
	}
}
