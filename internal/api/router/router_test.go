package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"github.com/tajious/backoffice/internal/api/handlers"
	"github.com/tajious/backoffice/internal/auth"
	"github.com/tajious/backoffice/internal/events"
	"github.com/tajious/backoffice/internal/metrics"
	"github.com/tajious/backoffice/internal/middleware"
	"github.com/tajious/backoffice/internal/provision"
	"github.com/tajious/backoffice/internal/storage"
	"go.uber.org/zap"
)

const (
	rootKey       = "root-key"
	adminPassword = "s3cret-pass"
)

type envConfig struct {
	apiKey     string
	loginLimit int
}

type testEnv struct {
	app *fiber.App
}

func newTestEnv(t *testing.T, cfg envConfig) *testEnv {
	t.Helper()

	log := zap.NewNop().Sugar()
	store := storage.NewInMemoryStorage()
	m := metrics.New()
	svc := auth.NewService(store, auth.Options{BaseDomain: "shop.test"}, log, m)

	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler(log)})
	NewRouter(app, Options{
		AuthHandler:     handlers.NewAuthHandler(svc),
		CustomerHandler: handlers.NewCustomerHandler(store),
		StaffHandler:    handlers.NewStaffHandler(store, svc),
		SettingsHandler: handlers.NewSettingsHandler(store, log),
		TenantHandler:   handlers.NewTenantHandler(store, provision.NewOrchestrator(store, events.NewLogPublisher(log), log, m)),
		ProductHandler:  handlers.NewProductHandler(store),
		Tenants:         middleware.NewTenantMiddleware(svc, "X-Client-Id"),
		AuthMiddleware:  middleware.NewAuthMiddleware(svc),
		RateLimiter:     middleware.NewRateLimiter(middleware.NewMemoryStore(), log),
		LoginLimit: middleware.RateLimitConfig{
			Enabled: cfg.loginLimit > 0,
			Limit:   cfg.loginLimit,
			Window:  time.Minute,
		},
		SuperAdminKey: cfg.apiKey,
		Registry:      m.Registry,
	}).SetupRoutes()

	return &testEnv{app: app}
}

func defaultEnv(t *testing.T) *testEnv {
	return newTestEnv(t, envConfig{apiKey: rootKey})
}

type call struct {
	method string
	path   string
	host   string
	tenant string
	token  string
	apiKey string
	body   any
}

func (e *testEnv) do(t *testing.T, c call) (int, map[string]any) {
	t.Helper()

	var body io.Reader
	if c.body != nil {
		raw, err := json.Marshal(c.body)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}
	host := c.host
	if host == "" {
		host = "api.test"
	}
	req := httptest.NewRequest(c.method, "http://"+host+c.path, body)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	if c.tenant != "" {
		req.Header.Set("X-Client-Id", c.tenant)
	}
	if c.token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+c.token)
	}
	if c.apiKey != "" {
		req.Header.Set(middleware.HeaderAPIKey, c.apiKey)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := map[string]any{}
	if len(raw) > 0 && strings.HasPrefix(resp.Header.Get(fiber.HeaderContentType), fiber.MIMEApplicationJSON) {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

func (e *testEnv) provision(t *testing.T, handle string) int64 {
	t.Helper()
	status, body := e.do(t, call{
		method: http.MethodPost,
		path:   "/api/v1/admin/tenants",
		apiKey: rootKey,
		body: map[string]any{
			"client_name":    strings.ToUpper(handle) + " Ltd",
			"handle":         handle,
			"admin_email":    "owner@" + handle + ".test",
			"admin_password": adminPassword,
			"credentials":    map[string]any{"courier": "key-" + handle},
		},
	})
	require.Equal(t, http.StatusCreated, status, body)
	return int64(body["id"].(float64))
}

func (e *testEnv) login(t *testing.T, tenant, path, email, password string) string {
	t.Helper()
	status, body := e.do(t, call{
		method: http.MethodPost,
		path:   path,
		tenant: tenant,
		body:   map[string]any{"email": email, "password": password},
	})
	require.Equal(t, http.StatusOK, status, body)
	return body["token"].(string)
}

func (e *testEnv) adminToken(t *testing.T, handle string) string {
	return e.login(t, handle, "/api/v1/auth/login", "owner@"+handle+".test", adminPassword)
}

func TestHealthAndMetrics(t *testing.T) {
	e := defaultEnv(t)

	status, body := e.do(t, call{method: http.MethodGet, path: "/healthz"})
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "ok", body["status"])

	e.provision(t, "acme")
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, string(raw), `backoffice_tenant_provisioning_total{outcome="ok"} 1`)
}

func TestProvision_Flow(t *testing.T) {
	e := defaultEnv(t)

	status, body := e.do(t, call{
		method: http.MethodPost,
		path:   "/api/v1/admin/tenants",
		apiKey: rootKey,
		body: map[string]any{
			"client_name":    "Acme Ltd",
			"handle":         "acme",
			"admin_email":    "Owner@Acme.test",
			"admin_password": adminPassword,
		},
	})
	require.Equal(t, http.StatusCreated, status, body)
	require.Equal(t, float64(storage.SequenceBaseline+1), body["id"])
	require.Equal(t, "acme", body["handle"])
	require.Equal(t, "owner@acme.test", body["admin_email"])
	require.Len(t, body, 4)

	status, body = e.do(t, call{
		method: http.MethodPost,
		path:   "/api/v1/admin/tenants",
		apiKey: rootKey,
		body: map[string]any{
			"client_name":    "Acme Ltd",
			"handle":         "acme",
			"admin_email":    "other@acme.test",
			"admin_password": adminPassword,
		},
	})
	require.Equal(t, http.StatusConflict, status)
	require.Equal(t, "Tenant already exists", body["error"])

	status, _ = e.do(t, call{
		method: http.MethodPost,
		path:   "/api/v1/admin/tenants",
		apiKey: rootKey,
		body:   map[string]any{"client_name": "Bad", "handle": "Not A Handle", "admin_email": "x@y.test", "admin_password": adminPassword},
	})
	require.Equal(t, http.StatusBadRequest, status)

	status, body = e.do(t, call{method: http.MethodGet, path: "/api/v1/admin/tenants", apiKey: rootKey})
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, float64(1), body["total"])
	tenant := body["tenants"].([]any)[0].(map[string]any)
	require.NotContains(t, tenant, "signing_secret")
	require.NotContains(t, tenant, "config")
}

func TestProvision_NumericHandleRejected(t *testing.T) {
	e := defaultEnv(t)
	e.provision(t, "acme")

	status, _ := e.do(t, call{
		method: http.MethodPost,
		path:   "/api/v1/admin/tenants",
		apiKey: rootKey,
		body: map[string]any{
			"client_name":    "Numbers Inc",
			"handle":         "1001",
			"admin_email":    "owner@1001.test",
			"admin_password": adminPassword,
		},
	})
	require.Equal(t, http.StatusBadRequest, status)

	status, body := e.do(t, call{method: http.MethodGet, path: "/api/v1/admin/tenants", apiKey: rootKey})
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, float64(1), body["total"])
}

func TestPasswordOverBcryptLimitIsClientError(t *testing.T) {
	e := defaultEnv(t)
	long := strings.Repeat("é", 40)
	require.Greater(t, len(long), 72)

	status, _ := e.do(t, call{
		method: http.MethodPost,
		path:   "/api/v1/admin/tenants",
		apiKey: rootKey,
		body: map[string]any{
			"client_name":    "Acme Ltd",
			"handle":         "acme",
			"admin_email":    "owner@acme.test",
			"admin_password": long,
		},
	})
	require.Equal(t, http.StatusBadRequest, status)

	// The rejected attempt consumed no tenant id.
	id := e.provision(t, "acme")
	require.Equal(t, storage.SequenceBaseline+1, id)
	admin := e.adminToken(t, "acme")

	status, _ = e.do(t, call{
		method: http.MethodPost,
		path:   "/api/v1/customers/register",
		tenant: "acme",
		body:   map[string]any{"email": "shopper@mail.test", "password": long},
	})
	require.Equal(t, http.StatusBadRequest, status)

	status, _ = e.do(t, call{
		method: http.MethodPost,
		path:   "/api/v1/staff",
		tenant: "acme",
		token:  admin,
		body:   map[string]any{"email": "packer@acme.test", "password": long, "role": "stock_agent"},
	})
	require.Equal(t, http.StatusBadRequest, status)
}

func TestSuperAdminGate(t *testing.T) {
	e := defaultEnv(t)

	status, body := e.do(t, call{method: http.MethodGet, path: "/api/v1/admin/tenants"})
	require.Equal(t, http.StatusUnauthorized, status)
	require.Equal(t, "Invalid API key", body["error"])

	status, _ = e.do(t, call{method: http.MethodGet, path: "/api/v1/admin/tenants", apiKey: "root-kez"})
	require.Equal(t, http.StatusUnauthorized, status)

	disabled := newTestEnv(t, envConfig{})
	status, body = disabled.do(t, call{method: http.MethodGet, path: "/api/v1/admin/tenants", apiKey: rootKey})
	require.Equal(t, http.StatusServiceUnavailable, status)
	require.Equal(t, "Provisioning is disabled", body["error"])
}

func TestTenantResolution(t *testing.T) {
	e := defaultEnv(t)
	id := e.provision(t, "acme")

	status, body := e.do(t, call{method: http.MethodGet, path: "/api/v1/store/products"})
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, "Missing tenant identifier", body["error"])

	status, _ = e.do(t, call{method: http.MethodGet, path: "/api/v1/store/products", tenant: "nobody"})
	require.Equal(t, http.StatusNotFound, status)

	status, _ = e.do(t, call{method: http.MethodGet, path: "/api/v1/store/products", tenant: fmt.Sprint(id)})
	require.Equal(t, http.StatusOK, status)

	status, _ = e.do(t, call{method: http.MethodGet, path: "/api/v1/store/products", host: "acme.shop.test"})
	require.Equal(t, http.StatusOK, status)

	token := e.adminToken(t, "acme")
	setActive := func(active bool) {
		status, _ := e.do(t, call{
			method: http.MethodPatch,
			path:   fmt.Sprintf("/api/v1/admin/tenants/%d/status", id),
			apiKey: rootKey,
			body:   map[string]any{"active": active},
		})
		require.Equal(t, http.StatusOK, status)
	}
	setActive(false)

	status, body = e.do(t, call{method: http.MethodGet, path: "/api/v1/store/products", tenant: "acme"})
	require.Equal(t, http.StatusForbidden, status)
	require.Equal(t, "Tenant is inactive", body["error"])

	// Tokens issued before deactivation are refused while it lasts.
	status, body = e.do(t, call{method: http.MethodGet, path: "/api/v1/auth/me", tenant: "acme", token: token})
	require.Equal(t, http.StatusForbidden, status)
	require.Equal(t, "Tenant is inactive", body["error"])

	setActive(true)
	status, _ = e.do(t, call{method: http.MethodGet, path: "/api/v1/auth/me", tenant: "acme", token: token})
	require.Equal(t, http.StatusOK, status)

	status, _ = e.do(t, call{
		method: http.MethodPatch,
		path:   "/api/v1/admin/tenants/4242/status",
		apiKey: rootKey,
		body:   map[string]any{"active": true},
	})
	require.Equal(t, http.StatusNotFound, status)
}

func TestStaffLogin(t *testing.T) {
	e := defaultEnv(t)
	e.provision(t, "acme")

	token := e.adminToken(t, "acme")

	status, body := e.do(t, call{method: http.MethodGet, path: "/api/v1/auth/me", tenant: "acme", token: token})
	require.Equal(t, http.StatusOK, status)
	user := body["user"].(map[string]any)
	require.Equal(t, "owner@acme.test", user["email"])
	require.Equal(t, "admin", user["role"])
	require.NotContains(t, user, "password")

	_, unknown := e.do(t, call{
		method: http.MethodPost, path: "/api/v1/auth/login", tenant: "acme",
		body: map[string]any{"email": "ghost@acme.test", "password": adminPassword},
	})
	status, wrong := e.do(t, call{
		method: http.MethodPost, path: "/api/v1/auth/login", tenant: "acme",
		body: map[string]any{"email": "owner@acme.test", "password": "not-it"},
	})
	require.Equal(t, http.StatusUnauthorized, status)
	require.Equal(t, unknown, wrong)

	status, _ = e.do(t, call{method: http.MethodGet, path: "/api/v1/auth/me", tenant: "acme"})
	require.Equal(t, http.StatusUnauthorized, status)

	status, _ = e.do(t, call{method: http.MethodGet, path: "/api/v1/auth/me", tenant: "acme", token: "junk"})
	require.Equal(t, http.StatusUnauthorized, status)
}

func TestTokenIsBoundToTenant(t *testing.T) {
	e := defaultEnv(t)
	e.provision(t, "acme")
	e.provision(t, "globex")

	token := e.adminToken(t, "acme")

	status, body := e.do(t, call{method: http.MethodGet, path: "/api/v1/auth/me", tenant: "globex", token: token})
	require.Equal(t, http.StatusUnauthorized, status)
	require.Equal(t, "Invalid token", body["error"])

	status, _ = e.do(t, call{method: http.MethodGet, path: "/api/v1/auth/me", host: "acme.shop.test", token: token})
	require.Equal(t, http.StatusOK, status)
}

func TestRoleGate(t *testing.T) {
	e := defaultEnv(t)
	e.provision(t, "acme")
	admin := e.adminToken(t, "acme")

	status, body := e.do(t, call{
		method: http.MethodPost, path: "/api/v1/staff", tenant: "acme", token: admin,
		body: map[string]any{"email": "stock@acme.test", "password": "agent-pass", "role": "stock_agent"},
	})
	require.Equal(t, http.StatusCreated, status, body)
	agentID := body["id"].(string)

	status, _ = e.do(t, call{
		method: http.MethodPost, path: "/api/v1/staff", tenant: "acme", token: admin,
		body: map[string]any{"email": "STOCK@acme.test", "password": "agent-pass", "role": "confirmation_agent"},
	})
	require.Equal(t, http.StatusConflict, status)

	status, _ = e.do(t, call{
		method: http.MethodPost, path: "/api/v1/staff", tenant: "acme", token: admin,
		body: map[string]any{"email": "boss@acme.test", "password": "agent-pass", "role": "overlord"},
	})
	require.Equal(t, http.StatusBadRequest, status)

	agent := e.login(t, "acme", "/api/v1/auth/login", "stock@acme.test", "agent-pass")

	status, body = e.do(t, call{method: http.MethodGet, path: "/api/v1/staff", tenant: "acme", token: agent})
	require.Equal(t, http.StatusForbidden, status)
	require.Equal(t, "Insufficient permissions", body["error"])

	status, _ = e.do(t, call{method: http.MethodGet, path: "/api/v1/settings", tenant: "acme", token: agent})
	require.Equal(t, http.StatusForbidden, status)

	status, _ = e.do(t, call{
		method: http.MethodPost, path: "/api/v1/products", tenant: "acme", token: agent,
		body: map[string]any{"title": "Mug", "price_cents": 900, "stock": 3},
	})
	require.Equal(t, http.StatusCreated, status)

	status, body = e.do(t, call{method: http.MethodGet, path: "/api/v1/staff?sort_by=email&sort_dir=asc", tenant: "acme", token: admin})
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, float64(2), body["total"])

	// Demotion applies to the agent's existing token.
	status, _ = e.do(t, call{
		method: http.MethodPatch, path: "/api/v1/staff/" + agentID, tenant: "acme", token: admin,
		body: map[string]any{"role": "confirmation_agent"},
	})
	require.Equal(t, http.StatusOK, status)

	status, _ = e.do(t, call{
		method: http.MethodPost, path: "/api/v1/products", tenant: "acme", token: agent,
		body: map[string]any{"title": "Teapot", "price_cents": 2500},
	})
	require.Equal(t, http.StatusForbidden, status)

	// Disabling locks the account out at once.
	status, _ = e.do(t, call{
		method: http.MethodPatch, path: "/api/v1/staff/" + agentID, tenant: "acme", token: admin,
		body: map[string]any{"active": false},
	})
	require.Equal(t, http.StatusOK, status)

	status, _ = e.do(t, call{method: http.MethodGet, path: "/api/v1/auth/me", tenant: "acme", token: agent})
	require.Equal(t, http.StatusUnauthorized, status)

	status, body = e.do(t, call{
		method: http.MethodPost, path: "/api/v1/auth/login", tenant: "acme",
		body: map[string]any{"email": "stock@acme.test", "password": "agent-pass"},
	})
	require.Equal(t, http.StatusForbidden, status)
	require.Equal(t, "Account is inactive", body["error"])
}

func TestAdminCannotLockThemselvesOut(t *testing.T) {
	e := defaultEnv(t)
	e.provision(t, "acme")
	admin := e.adminToken(t, "acme")

	_, me := e.do(t, call{method: http.MethodGet, path: "/api/v1/auth/me", tenant: "acme", token: admin})
	id := me["user"].(map[string]any)["id"].(string)

	status, _ := e.do(t, call{
		method: http.MethodPatch, path: "/api/v1/staff/" + id, tenant: "acme", token: admin,
		body: map[string]any{"active": false},
	})
	require.Equal(t, http.StatusBadRequest, status)
}

func TestCustomers(t *testing.T) {
	e := defaultEnv(t)
	e.provision(t, "acme")
	e.provision(t, "globex")

	register := func(tenant string) int {
		status, _ := e.do(t, call{
			method: http.MethodPost, path: "/api/v1/customers/register", tenant: tenant,
			body: map[string]any{"email": "jo@shop.test", "password": "shopper-pass", "name": "Jo"},
		})
		return status
	}
	require.Equal(t, http.StatusCreated, register("acme"))
	require.Equal(t, http.StatusConflict, register("acme"))
	require.Equal(t, http.StatusCreated, register("globex"))

	token := e.login(t, "acme", "/api/v1/customers/login", "jo@shop.test", "shopper-pass")

	status, body := e.do(t, call{method: http.MethodGet, path: "/api/v1/customers/me", tenant: "acme", token: token})
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "jo@shop.test", body["user"].(map[string]any)["email"])

	status, body = e.do(t, call{method: http.MethodGet, path: "/api/v1/auth/me", tenant: "acme", token: token})
	require.Equal(t, http.StatusForbidden, status)
	require.Equal(t, "Token not accepted on this route", body["error"])

	staff := e.adminToken(t, "acme")
	status, _ = e.do(t, call{method: http.MethodGet, path: "/api/v1/customers/me", tenant: "acme", token: staff})
	require.Equal(t, http.StatusForbidden, status)

	status, _ = e.do(t, call{method: http.MethodGet, path: "/api/v1/products", tenant: "acme", token: token})
	require.Equal(t, http.StatusForbidden, status)
}

func TestProducts(t *testing.T) {
	e := defaultEnv(t)
	e.provision(t, "acme")
	e.provision(t, "globex")
	acme := e.adminToken(t, "acme")
	globex := e.adminToken(t, "globex")

	status, body := e.do(t, call{
		method: http.MethodPost, path: "/api/v1/products", tenant: "acme", token: acme,
		body: map[string]any{"title": "Mug", "price_cents": 900, "stock": 3},
	})
	require.Equal(t, http.StatusCreated, status)
	mugID := body["id"].(string)

	status, _ = e.do(t, call{
		method: http.MethodPost, path: "/api/v1/products", tenant: "acme", token: acme,
		body: map[string]any{"title": "Teapot", "price_cents": 2500, "active": false},
	})
	require.Equal(t, http.StatusCreated, status)

	status, _ = e.do(t, call{
		method: http.MethodPost, path: "/api/v1/products", tenant: "acme", token: acme,
		body: map[string]any{"title": "", "price_cents": -1},
	})
	require.Equal(t, http.StatusBadRequest, status)

	status, body = e.do(t, call{method: http.MethodGet, path: "/api/v1/products", tenant: "acme", token: acme})
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, float64(2), body["total"])

	status, body = e.do(t, call{method: http.MethodGet, path: "/api/v1/store/products", tenant: "acme"})
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, float64(1), body["total"])

	status, body = e.do(t, call{method: http.MethodGet, path: "/api/v1/store/products", tenant: "globex"})
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, float64(0), body["total"])
	require.Empty(t, body["products"])

	status, _ = e.do(t, call{method: http.MethodGet, path: "/api/v1/products/" + mugID, tenant: "globex", token: globex})
	require.Equal(t, http.StatusNotFound, status)
	status, _ = e.do(t, call{method: http.MethodDelete, path: "/api/v1/products/" + mugID, tenant: "globex", token: globex})
	require.Equal(t, http.StatusNotFound, status)

	status, body = e.do(t, call{
		method: http.MethodPut, path: "/api/v1/products/" + mugID, tenant: "acme", token: acme,
		body: map[string]any{"title": "Big Mug", "price_cents": 1200, "stock": 1},
	})
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "Big Mug", body["title"])

	status, _ = e.do(t, call{method: http.MethodDelete, path: "/api/v1/products/" + mugID, tenant: "acme", token: acme})
	require.Equal(t, http.StatusNoContent, status)
	status, _ = e.do(t, call{method: http.MethodGet, path: "/api/v1/products/" + mugID, tenant: "acme", token: acme})
	require.Equal(t, http.StatusNotFound, status)
}

func TestSettings(t *testing.T) {
	e := defaultEnv(t)
	e.provision(t, "acme")
	admin := e.adminToken(t, "acme")

	status, body := e.do(t, call{method: http.MethodGet, path: "/api/v1/settings", tenant: "acme", token: admin})
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, []any{"courier"}, body["credentials"])
	require.NotContains(t, body, "signing_secret")

	status, body = e.do(t, call{
		method: http.MethodPut, path: "/api/v1/settings/credentials", tenant: "acme", token: admin,
		body: map[string]any{"credentials": map[string]any{"payments": "pk", "courier": "key-2"}},
	})
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, []any{"courier", "payments"}, body["credentials"])

	// Rotation revokes every outstanding token, the caller's included.
	status, _ = e.do(t, call{method: http.MethodPost, path: "/api/v1/settings/rotate-secret", tenant: "acme", token: admin})
	require.Equal(t, http.StatusOK, status)

	status, _ = e.do(t, call{method: http.MethodGet, path: "/api/v1/settings", tenant: "acme", token: admin})
	require.Equal(t, http.StatusUnauthorized, status)

	fresh := e.adminToken(t, "acme")
	status, body = e.do(t, call{method: http.MethodGet, path: "/api/v1/settings", tenant: "acme", token: fresh})
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, []any{"courier", "payments"}, body["credentials"])
}

func TestLoginRateLimit(t *testing.T) {
	e := newTestEnv(t, envConfig{apiKey: rootKey, loginLimit: 2})
	e.provision(t, "acme")
	e.provision(t, "globex")

	attempt := func(tenant string) int {
		status, _ := e.do(t, call{
			method: http.MethodPost, path: "/api/v1/auth/login", tenant: tenant,
			body: map[string]any{"email": "owner@" + tenant + ".test", "password": "wrong"},
		})
		return status
	}

	require.Equal(t, http.StatusUnauthorized, attempt("acme"))
	require.Equal(t, http.StatusUnauthorized, attempt("acme"))
	require.Equal(t, http.StatusTooManyRequests, attempt("acme"))

	// Counters are kept per tenant.
	require.Equal(t, http.StatusUnauthorized, attempt("globex"))
}
