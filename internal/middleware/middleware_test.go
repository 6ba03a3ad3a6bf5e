package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/tajious/backoffice/internal/auth"
	"github.com/tajious/backoffice/internal/provision"
	"github.com/tajious/backoffice/internal/storage"
	"go.uber.org/zap"
)

func TestMemoryStore_WindowExpires(t *testing.T) {
	store := NewMemoryStore()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	for want := 1; want <= 3; want++ {
		got, err := store.Increment(ctx, "k", time.Minute)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}

	other, err := store.Increment(ctx, "other", time.Minute)
	require.NoError(t, err)
	require.Equal(t, 1, other)

	now = now.Add(time.Minute)
	got, err := store.Increment(ctx, "k", time.Minute)
	require.NoError(t, err)
	require.Equal(t, 1, got)
}

func TestStatusOf(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{auth.ErrMissingTenantIdentifier, http.StatusBadRequest},
		{auth.ErrTenantNotFound, http.StatusNotFound},
		{auth.ErrTenantInactive, http.StatusForbidden},
		{auth.ErrTenantMisconfigured, http.StatusInternalServerError},
		{auth.ErrInvalidCredentials, http.StatusUnauthorized},
		{auth.ErrAccountInactive, http.StatusForbidden},
		{auth.ErrTokenExpired, http.StatusUnauthorized},
		{auth.ErrIdentityMismatch, http.StatusForbidden},
		{auth.ErrForbidden, http.StatusForbidden},
		{fmt.Errorf("create admin: %w", storage.ErrDuplicate), http.StatusConflict},
		{provision.ErrDuplicateTenant, http.StatusConflict},
		{fmt.Errorf("%w: commit: boom", provision.ErrServer), http.StatusInternalServerError},
		{ErrProvisioningDisabled, http.StatusServiceUnavailable},
		{fiber.ErrMethodNotAllowed, http.StatusMethodNotAllowed},
		{context.DeadlineExceeded, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		status, message := StatusOf(tt.err)
		require.Equal(t, tt.status, status, tt.err.Error())
		require.NotEmpty(t, message)
	}

	// Internal detail never reaches the client.
	_, message := StatusOf(fmt.Errorf("%w: commit: pq: connection refused", provision.ErrServer))
	require.Equal(t, "Internal server error", message)
}

func TestRateLimit_FailsOpenOnStoreError(t *testing.T) {
	app := fiber.New()
	limiter := NewRateLimiter(brokenStore{}, zap.NewNop().Sugar())
	app.Post("/login", limiter.RateLimit(RateLimitConfig{Enabled: true, Limit: 1, Window: time.Minute}), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	for i := 0; i < 3; i++ {
		resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/login", nil))
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}
}

func TestRedisStore_UnreachableFailsOpen(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })
	store := NewRedisStore(client)

	_, err := store.Increment(context.Background(), "rate_limit:ip:0.0.0.0", time.Minute)
	require.Error(t, err)

	app := fiber.New()
	limiter := NewRateLimiter(store, zap.NewNop().Sugar())
	app.Post("/login", limiter.RateLimit(RateLimitConfig{Enabled: true, Limit: 1, Window: time.Minute}), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	for i := 0; i < 2; i++ {
		resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/login", nil), -1)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}
}

type brokenStore struct{}

func (brokenStore) Increment(context.Context, string, time.Duration) (int, error) {
	return 0, fmt.Errorf("redis: connection refused")
}

func TestRequireRole_WithoutIdentityFailsClosed(t *testing.T) {
	log := zap.NewNop().Sugar()
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(log)})
	m := NewAuthMiddleware(nil)
	app.Get("/", m.RequireRole("admin"), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}
