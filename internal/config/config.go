package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Auth     AuthConfig
	Gateway  GatewayConfig
	Fees     FeeConfig
	Worker   WorkerConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

type DatabaseConfig struct {
	DSN string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	// PropertyTTL bounds staleness of cached property reads.
	PropertyTTL time.Duration
}

type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

type GatewayConfig struct {
	BaseURL   string
	SecretKey string
	Timeout   time.Duration
}

// FeeConfig holds the checkout fee schedule. Rates are fractions of the
// subtotal. They are configuration rather than constants so regional or
// per-property schedules can be introduced without code changes.
type FeeConfig struct {
	CleaningRate float64
	ServiceRate  float64
	TaxRate      float64
	Currency     string
}

type WorkerConfig struct {
	ReconcileInterval time.Duration
	// StaleAfter is how long a transaction may sit in processing before
	// the reconciler asks the gateway what happened to it.
	StaleAfter time.Duration
}

func Load() *Config {
	_ = godotenv.Load()

	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))

	return &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
			Env:  getEnv("ENV", "development"),
		},
		Database: DatabaseConfig{
			DSN: getEnv("DATABASE_URL", "stayhub.db"),
		},
		Redis: RedisConfig{
			Addr:        getEnv("REDIS_ADDR", ""),
			Password:    getEnv("REDIS_PASSWORD", ""),
			DB:          redisDB,
			PropertyTTL: getDuration("REDIS_PROPERTY_TTL", 5*time.Minute),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", ""),
			TokenTTL:  getDuration("JWT_TTL", 24*time.Hour),
		},
		Gateway: GatewayConfig{
			BaseURL:   getEnv("PAYMENT_GATEWAY_URL", "https://api.stripe.com/v1"),
			SecretKey: getEnv("PAYMENT_GATEWAY_SECRET", ""),
			Timeout:   getDuration("PAYMENT_GATEWAY_TIMEOUT", 15*time.Second),
		},
		Fees: FeeConfig{
			CleaningRate: getFloat("FEE_CLEANING_RATE", 0.05),
			ServiceRate:  getFloat("FEE_SERVICE_RATE", 0.08),
			TaxRate:      getFloat("FEE_TAX_RATE", 0.12),
			Currency:     getEnv("DEFAULT_CURRENCY", "USD"),
		},
		Worker: WorkerConfig{
			ReconcileInterval: getDuration("RECONCILE_INTERVAL", 5*time.Minute),
			StaleAfter:        getDuration("RECONCILE_STALE_AFTER", 30*time.Minute),
		},
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
