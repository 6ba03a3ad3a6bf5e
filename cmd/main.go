package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"github.com/tajious/backoffice/internal/api/handlers"
	"github.com/tajious/backoffice/internal/api/router"
	"github.com/tajious/backoffice/internal/auth"
	"github.com/tajious/backoffice/internal/config"
	"github.com/tajious/backoffice/internal/events"
	"github.com/tajious/backoffice/internal/logging"
	"github.com/tajious/backoffice/internal/metrics"
	"github.com/tajious/backoffice/internal/middleware"
	"github.com/tajious/backoffice/internal/models"
	"github.com/tajious/backoffice/internal/provision"
	"github.com/tajious/backoffice/internal/storage"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logging.New("").Fatalw("Failed to load configuration", "error", err)
	}

	log := logging.New(cfg.Server.Environment)
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize storage
	store, err := storage.Open(ctx, cfg.Database)
	if err != nil {
		log.Fatalw("Failed to initialize storage", "driver", cfg.Database.Driver, "error", err)
	}

	m := metrics.New()

	var publisher events.Publisher = events.NewLogPublisher(log)
	if cfg.NATS.URL != "" {
		natsPublisher, err := events.NewNATSPublisher(cfg.NATS.URL)
		if err != nil {
			log.Fatalw("Failed to connect to NATS", "url", cfg.NATS.URL, "error", err)
		}
		defer func() {
			if err := natsPublisher.Close(); err != nil {
				log.Warnw("Failed to drain NATS connection", "error", err)
			}
		}()
		publisher = natsPublisher
	}

	var limitStore middleware.RateLimitStore = middleware.NewMemoryStore()
	if cfg.Redis.Enabled {
		client := redis.NewClient(&redis.Options{
			Addr:     net.JoinHostPort(cfg.Redis.Host, cfg.Redis.Port),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer client.Close()

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := client.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			log.Fatalw("Failed to connect to Redis", "error", err)
		}
		limitStore = middleware.NewRedisStore(client)
	}

	staffRoles := make([]models.Role, 0, len(cfg.Server.StaffRoles))
	for _, r := range cfg.Server.StaffRoles {
		staffRoles = append(staffRoles, models.Role(r))
	}
	authService := auth.NewService(store, auth.Options{
		BaseDomain:  cfg.Server.BaseDomain,
		StaffTTL:    cfg.JWT.StaffExpiration,
		CustomerTTL: cfg.JWT.CustomerExpiration,
		StaffRoles:  staffRoles,
	}, log, m)
	orchestrator := provision.NewOrchestrator(store, publisher, log, m)

	if cfg.SuperAdmin.APIKey == "" {
		log.Warn("SUPER_ADMIN_API_KEY is not set, tenant provisioning is disabled")
	}

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Backoffice",
		ErrorHandler: middleware.ErrorHandler(log),
	})

	// Middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(cors.New())
	app.Use(logger.New())

	// Initialize router
	apiRouter := router.NewRouter(app, router.Options{
		AuthHandler:     handlers.NewAuthHandler(authService),
		CustomerHandler: handlers.NewCustomerHandler(store),
		StaffHandler:    handlers.NewStaffHandler(store, authService),
		SettingsHandler: handlers.NewSettingsHandler(store, log),
		TenantHandler:   handlers.NewTenantHandler(store, orchestrator),
		ProductHandler:  handlers.NewProductHandler(store),
		Tenants:         middleware.NewTenantMiddleware(authService, cfg.Server.TenantHeader),
		AuthMiddleware:  middleware.NewAuthMiddleware(authService),
		RateLimiter:     middleware.NewRateLimiter(limitStore, log),
		LoginLimit: middleware.RateLimitConfig{
			Enabled: cfg.Server.RateLimit.Enabled,
			Limit:   cfg.Server.RateLimit.Limit,
			Window:  cfg.Server.RateLimit.Window,
		},
		SuperAdminKey: cfg.SuperAdmin.APIKey,
		Registry:      m.Registry,
	})

	// Setup routes
	apiRouter.SetupRoutes()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.Errorw("Server shutdown failed", "error", err)
		}
	}()

	// Start server
	log.Infow("Server starting", "port", cfg.Server.Port, "driver", cfg.Database.Driver)
	if err := app.Listen(":" + cfg.Server.Port); err != nil {
		log.Fatalw("Failed to start server", "error", err)
	}
}
