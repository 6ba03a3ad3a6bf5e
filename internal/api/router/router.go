package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tajious/backoffice/internal/api/handlers"
	"github.com/tajious/backoffice/internal/middleware"
	"github.com/tajious/backoffice/internal/models"
)

type Router struct {
	app             *fiber.App
	authHandler     *handlers.AuthHandler
	customerHandler *handlers.CustomerHandler
	staffHandler    *handlers.StaffHandler
	settingsHandler *handlers.SettingsHandler
	tenantHandler   *handlers.TenantHandler
	productHandler  *handlers.ProductHandler
	tenants         *middleware.TenantMiddleware
	authMiddleware  *middleware.AuthMiddleware
	rateLimiter     *middleware.RateLimiter
	loginLimit      middleware.RateLimitConfig
	superAdminKey   string
	registry        *prometheus.Registry
}

type Options struct {
	AuthHandler     *handlers.AuthHandler
	CustomerHandler *handlers.CustomerHandler
	StaffHandler    *handlers.StaffHandler
	SettingsHandler *handlers.SettingsHandler
	TenantHandler   *handlers.TenantHandler
	ProductHandler  *handlers.ProductHandler
	Tenants         *middleware.TenantMiddleware
	AuthMiddleware  *middleware.AuthMiddleware
	RateLimiter     *middleware.RateLimiter
	LoginLimit      middleware.RateLimitConfig
	SuperAdminKey   string
	Registry        *prometheus.Registry
}

func NewRouter(app *fiber.App, opts Options) *Router {
	return &Router{
		app:             app,
		authHandler:     opts.AuthHandler,
		customerHandler: opts.CustomerHandler,
		staffHandler:    opts.StaffHandler,
		settingsHandler: opts.SettingsHandler,
		tenantHandler:   opts.TenantHandler,
		productHandler:  opts.ProductHandler,
		tenants:         opts.Tenants,
		authMiddleware:  opts.AuthMiddleware,
		rateLimiter:     opts.RateLimiter,
		loginLimit:      opts.LoginLimit,
		superAdminKey:   opts.SuperAdminKey,
		registry:        opts.Registry,
	}
}

func (r *Router) SetupRoutes() {
	r.app.Get("/healthz", handlers.Health)
	if r.registry != nil {
		r.app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})))
	}

	api := r.app.Group("/api/v1")
	resolve := r.tenants.Resolve()
	limit := r.rateLimiter.RateLimit(r.loginLimit)
	staff := r.authMiddleware.Authenticate(models.IdentityStaff)
	customer := r.authMiddleware.Authenticate(models.IdentityCustomer)
	adminOnly := r.authMiddleware.RequireRole(models.RoleAdmin)

	// Platform operator routes, not tenant scoped
	admin := api.Group("/admin", middleware.SuperAdmin(r.superAdminKey))
	admin.Post("/tenants", r.tenantHandler.CreateTenant)
	admin.Get("/tenants", r.tenantHandler.ListTenants)
	admin.Patch("/tenants/:id/status", r.tenantHandler.UpdateStatus)

	// Staff
	authGroup := api.Group("/auth", resolve)
	authGroup.Post("/login", limit, r.authHandler.StaffLogin)
	authGroup.Get("/me", staff, r.authHandler.Me)

	staffGroup := api.Group("/staff", resolve, staff, adminOnly)
	staffGroup.Post("/", r.staffHandler.Create)
	staffGroup.Get("/", r.staffHandler.List)
	staffGroup.Patch("/:id", r.staffHandler.Update)

	settings := api.Group("/settings", resolve, staff, adminOnly)
	settings.Get("/", r.settingsHandler.Get)
	settings.Put("/credentials", r.settingsHandler.UpdateCredentials)
	settings.Post("/rotate-secret", r.settingsHandler.RotateSecret)

	products := api.Group("/products", resolve, staff)
	catalogueWrite := r.authMiddleware.RequireRole(models.RoleAdmin, models.RoleStockAgent)
	products.Get("/", r.productHandler.List)
	products.Post("/", catalogueWrite, r.productHandler.Create)
	products.Get("/:id", r.productHandler.Get)
	products.Put("/:id", catalogueWrite, r.productHandler.Update)
	products.Delete("/:id", catalogueWrite, r.productHandler.Delete)

	// Customers and storefront
	customers := api.Group("/customers", resolve)
	customers.Post("/register", limit, r.customerHandler.Register)
	customers.Post("/login", limit, r.authHandler.CustomerLogin)
	customers.Get("/me", customer, r.authHandler.Me)

	store := api.Group("/store", resolve)
	store.Get("/products", r.productHandler.StoreList)
}
