package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	JWT        JWTConfig
	SuperAdmin SuperAdminConfig
	NATS       NATSConfig
}

type ServerConfig struct {
	Port         string
	Environment  string
	BaseDomain   string
	TenantHeader string
	StaffRoles   []string
	RateLimit    RateLimitConfig
}

type DatabaseConfig struct {
	Driver   string
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	MongoURI string
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     string
	Password string
	DB       int
}

type JWTConfig struct {
	StaffExpiration    time.Duration
	CustomerExpiration time.Duration
}

type SuperAdminConfig struct {
	APIKey string
}

type NATSConfig struct {
	URL string
}

type RateLimitConfig struct {
	Enabled bool
	Limit   int
	Window  time.Duration
}

// Load reads the process environment, after merging an optional .env file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	rateLimit, _ := strconv.Atoi(getEnv("RATE_LIMIT", "5"))
	rateLimitWindow, _ := strconv.Atoi(getEnv("RATE_LIMIT_WINDOW", "60"))
	staffDays, _ := strconv.Atoi(getEnv("JWT_STAFF_EXPIRATION_DAYS", "30"))
	customerDays, _ := strconv.Atoi(getEnv("JWT_CUSTOMER_EXPIRATION_DAYS", "7"))

	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			Environment:  getEnv("ENVIRONMENT", "development"),
			BaseDomain:   getEnv("BASE_DOMAIN", ""),
			TenantHeader: getEnv("TENANT_HEADER", "X-Client-Id"),
			StaffRoles:   splitList(getEnv("STAFF_ROLES", "admin,confirmation_agent,stock_agent")),
			RateLimit: RateLimitConfig{
				Enabled: getEnv("RATE_LIMIT_ENABLED", "true") == "true",
				Limit:   rateLimit,
				Window:  time.Duration(rateLimitWindow) * time.Second,
			},
		},
		Database: DatabaseConfig{
			Driver:   getEnv("DB_DRIVER", "postgres"),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "backoffice"),
			SSLMode:  getEnv("DB_SSL_MODE", "disable"),
			MongoURI: getEnv("MONGO_URI", ""),
		},
		Redis: RedisConfig{
			Enabled:  getEnv("REDIS_ENABLED", "false") == "true",
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		JWT: JWTConfig{
			StaffExpiration:    time.Duration(staffDays) * time.Hour * 24,
			CustomerExpiration: time.Duration(customerDays) * time.Hour * 24,
		},
		SuperAdmin: SuperAdminConfig{
			APIKey: getEnv("SUPER_ADMIN_API_KEY", ""),
		},
		NATS: NATSConfig{
			URL: getEnv("NATS_URL", ""),
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
