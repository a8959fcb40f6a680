package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Security  SecurityConfig
	RateLimit RateLimitConfig
	Transfer  TransferConfig
	Webhook   WebhookConfig
	Audit     AuditConfig
}

type ServerConfig struct {
	Port             string
	Host             string
	Environment      string
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	CORSAllowOrigins []string
}

type DatabaseConfig struct {
	Driver          string
	URL             string
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxConnections  int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	AutoMigrate     bool
	Seed            bool
}

type JWTConfig struct {
	SecretKey           string
	AccessTokenDuration time.Duration
	Issuer              string
}

type SecurityConfig struct {
	BCryptCost         int
	RateLimitPerSecond int
	RateLimitBurst     int
}

// RateLimitConfig holds the per-route fixed window limits, in requests per minute
type RateLimitConfig struct {
	BalancePerMin  int
	TransferPerMin int
}

type TransferConfig struct {
	AsyncDelay     time.Duration
	IdempotencyTTL time.Duration
	Workers        int
}

type WebhookConfig struct {
	URL     string
	Timeout time.Duration
}

// AuditConfig controls how long audit rows are kept. Zero keeps them forever.
type AuditConfig struct {
	Retention time.Duration
}

func Load() *Config {
	config := &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			Host:         getEnv("SERVER_HOST", "0.0.0.0"),
			Environment:  getEnv("APP_ENV", "development"),
			ReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 15*time.Second),
		},
		Database: DatabaseConfig{
			Driver:          getEnv("DB_DRIVER", "postgres"),
			URL:             getEnv("DATABASE_URL", ""),
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "bank"),
			Password:        getEnv("DB_PASSWORD", "bank"),
			Name:            getEnv("DB_NAME", "mockbank"),
			SSLMode:         getEnv("DB_SSL_MODE", "disable"),
			MaxConnections:  getIntEnv("DB_MAX_CONNECTIONS", 25),
			MaxIdleConns:    getIntEnv("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getDurationEnv("DB_CONN_MAX_LIFETIME", time.Hour),
			AutoMigrate:     getBoolEnv("AUTO_MIGRATE", true),
			Seed:            getBoolEnv("SEED_DATABASE", true),
		},
		JWT: JWTConfig{
			SecretKey:           getEnv("SECRET_KEY", ""),
			AccessTokenDuration: time.Duration(getIntEnv("ACCESS_TOKEN_EXPIRE_MIN", 30)) * time.Minute,
			Issuer:              getEnv("JWT_ISSUER", "mockbank-api"),
		},
		Security: SecurityConfig{
			BCryptCost:         getIntEnv("BCRYPT_COST", 12),
			RateLimitPerSecond: getIntEnv("RATE_LIMIT_PER_SECOND", 20),
			RateLimitBurst:     getIntEnv("RATE_LIMIT_BURST", 40),
		},
		RateLimit: RateLimitConfig{
			BalancePerMin:  getIntEnv("RATE_LIMIT_PER_MIN_BALANCE", 60),
			TransferPerMin: getIntEnv("RATE_LIMIT_PER_MIN_TRANSFER", 10),
		},
		Transfer: TransferConfig{
			AsyncDelay:     getDurationEnv("ASYNC_TRANSFER_DELAY", 2*time.Second),
			IdempotencyTTL: getDurationEnv("IDEMPOTENCY_TTL", 24*time.Hour),
			Workers:        getIntEnv("TRANSFER_WORKERS", 4),
		},
		Webhook: WebhookConfig{
			URL:     getEnv("WEBHOOK_URL", ""),
			Timeout: getDurationEnv("WEBHOOK_TIMEOUT", 3*time.Second),
		},
		Audit: AuditConfig{
			Retention: getDurationEnv("AUDIT_RETENTION", 90*24*time.Hour),
		},
	}

	config.Server.CORSAllowOrigins = config.loadCORSAllowOrigins()

	if config.JWT.SecretKey == "" {
		if config.IsProduction() {
			log.Fatal("SECRET_KEY must be set in production environments")
		}
		log.Println("SECRET_KEY not set, using an insecure development key")
		config.JWT.SecretKey = "dev-secret-change-me"
	}

	return config
}

// DSN returns DATABASE_URL when set, otherwise a key/value postgres DSN built from the DB_* parts.
// For the sqlite driver the name is used as the file path.
func (c *DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	if c.Driver == "sqlite" {
		return c.Name
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

func (c *Config) IsDevelopment() bool {
	return c.Server.Environment == "development"
}

func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// loadCORSAllowOrigins reads CORS_ORIGINS as a comma separated list
func (c *Config) loadCORSAllowOrigins() []string {
	corsOrigins := os.Getenv("CORS_ORIGINS")

	if corsOrigins == "" {
		log.Println("INFO: CORS_ORIGINS not set, allowing the local dashboard origin")
		return []string{"http://localhost:3000"}
	}

	origins := strings.Split(corsOrigins, ",")
	result := make([]string, 0, len(origins))
	for _, origin := range origins {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			result = append(result, trimmed)
		}
	}

	log.Printf("CORS allowed origins configured: %v", result)
	return result
}
