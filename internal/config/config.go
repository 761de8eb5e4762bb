package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"posledger/internal/logger"
)

// Storage drivers.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

// Oversell policies.
const (
	OversellFloor  = "floor"
	OversellReject = "reject"
)

type Config struct {
	Port     string
	AppEnv   string
	LogLevel string

	StorageDriver string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string

	CORSOrigins []string

	DefaultExchangeRate decimal.Decimal
	OversellPolicy      string
	PhoneRegion         string

	SwaggerEnabled bool
}

// Load reads configs/.env when present and then the process environment.
func Load() *Config {
	if err := godotenv.Load("configs/.env"); err != nil {
		logger.Logger.Info().Msg("No configs/.env file found or error loading it")
	}

	cfg := &Config{
		Port:          getEnv("PORT", "8080"),
		AppEnv:        getEnv("APP_ENV", "development"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		StorageDriver: strings.ToLower(getEnv("STORAGE_DRIVER", DriverMemory)),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "postgres"),
		DBName:     getEnv("DB_NAME", "postgres"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		RedisPrefix:   getEnv("REDIS_PREFIX", "pos:"),

		CORSOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173")),

		DefaultExchangeRate: getEnvDecimal("DEFAULT_EXCHANGE_RATE", decimal.NewFromInt(1400)),
		OversellPolicy:      strings.ToLower(getEnv("OVERSELL_POLICY", OversellFloor)),
		PhoneRegion:         strings.ToUpper(getEnv("PHONE_REGION", "IQ")),

		SwaggerEnabled: getEnvBool("SWAGGER_ENABLED", true),
	}

	if cfg.OversellPolicy != OversellFloor && cfg.OversellPolicy != OversellReject {
		logger.Logger.Warn().Str("policy", cfg.OversellPolicy).Msg("unknown OVERSELL_POLICY, using floor")
		cfg.OversellPolicy = OversellFloor
	}

	return cfg
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// DSN builds the postgres connection URL.
func (c *Config) DSN() string {
	return "postgres://" + c.DBUser + ":" + c.DBPassword + "@" + c.DBHost + ":" + c.DBPort + "/" + c.DBName + "?sslmode=" + c.DBSSLMode
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return def
	}
	return v
}

func getEnvBool(key string, def bool) bool {
	v, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return def
	}
	return v
}

func getEnvDecimal(key string, def decimal.Decimal) decimal.Decimal {
	v, err := decimal.NewFromString(getEnv(key, ""))
	if err != nil || !v.IsPositive() {
		return def
	}
	return v
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
