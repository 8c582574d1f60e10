package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config captures everything the service reads from the environment.
type Config struct {
	DatabaseURL string // postgres DSN; empty means a local SQLite file
	SQLitePath  string
	JWTSecret   []byte
	TokenTTL    time.Duration
	Port        string
	Env         string
	TaxRate     decimal.Decimal
	CORSOrigin  string
}

const devSecret = "food-marketplace-dev-secret"

// Load builds a Config from the environment, reading a .env file when present.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		DatabaseURL: strings.TrimSpace(os.Getenv("DATABASE_URL")),
		SQLitePath:  getEnv("SQLITE_PATH", "food_marketplace.db"),
		Port:        getEnv("PORT", "8080"),
		Env:         appEnv(),
		TokenTTL:    7 * 24 * time.Hour,
		CORSOrigin:  getEnv("CORS_ORIGIN", "*"),
	}

	secret := strings.TrimSpace(os.Getenv("JWT_SECRET"))
	if secret == "" {
		if cfg.IsProduction() {
			return cfg, errors.New("JWT_SECRET must be set in production")
		}
		secret = devSecret
	}
	cfg.JWTSecret = []byte(secret)

	rate, err := decimal.NewFromString(getEnv("TAX_RATE", "0"))
	if err != nil || rate.IsNegative() {
		return cfg, errors.New("TAX_RATE must be a non-negative decimal")
	}
	cfg.TaxRate = rate

	if cfg.IsProduction() && cfg.CORSOrigin == "*" {
		return cfg, errors.New("CORS_ORIGIN must not be a wildcard in production")
	}
	return cfg, nil
}

func (c Config) IsProduction() bool {
	return c.Env == "production"
}

// appEnv reads APP_ENV, honoring NODE_ENV for compatibility with earlier
// deployments of this service.
func appEnv() string {
	if v := strings.TrimSpace(os.Getenv("APP_ENV")); v != "" {
		return v
	}
	if v := strings.TrimSpace(os.Getenv("NODE_ENV")); v != "" {
		return v
	}
	return "development"
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
