package config

import (
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/shopspring/decimal"
)

// Config holds all configuration values
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	JWT        JWTConfig
	Accrual    AccrualConfig
	Withdrawal WithdrawalConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           string
	Env            string
	AllowedOrigins []string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	// AutoMigrate creates missing tables on boot
	AutoMigrate bool
}

// URL returns the database connection URL
func (c DatabaseConfig) URL() string {
	return "postgres://" + c.User + ":" + c.Password + "@" + c.Host + ":" + strconv.Itoa(c.Port) + "/" + c.DBName + "?sslmode=" + c.SSLMode
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	URL      string
	Password string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret       string
	Issuer       string
	AccessExpiry time.Duration
}

// AccrualConfig holds the daily sweep schedule
type AccrualConfig struct {
	Enabled    bool
	Schedule   string
	Timezone   string
	Workers    int
	RunLockTTL time.Duration

	// RetryAttempts bounds same-day reruns after a sweep leaves investments unpaid
	RetryAttempts int
	RetryDelay    time.Duration
}

// Location resolves Timezone, falling back to UTC
func (c AccrualConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// WithdrawalConfig holds withdrawal limits
type WithdrawalConfig struct {
	MinAmount decimal.Decimal
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           getEnv("SERVER_PORT", "8080"),
			Env:            getEnv("SERVER_ENV", "development"),
			AllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "onectraders"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),

			AutoMigrate: getEnvAsBool("DB_AUTO_MIGRATE", false),
		},
		Redis: RedisConfig{
			URL:      getEnv("REDIS_URL", "redis://localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
		},
		JWT: JWTConfig{
			Secret:       getEnv("JWT_SECRET", "change-this-in-production"),
			Issuer:       getEnv("JWT_ISSUER", "onec-traders"),
			AccessExpiry: getEnvAsDuration("JWT_ACCESS_EXPIRY", 15*time.Minute),
		},
		Accrual: AccrualConfig{
			Enabled:       getEnvAsBool("ACCRUAL_ENABLED", true),
			Schedule:      getEnv("ACCRUAL_SCHEDULE", "5 0 * * *"),
			Timezone:      getEnv("ACCRUAL_TIMEZONE", "UTC"),
			Workers:       getEnvAsInt("ACCRUAL_WORKERS", 8),
			RunLockTTL:    getEnvAsDuration("ACCRUAL_RUN_LOCK_TTL", 6*time.Hour),
			RetryAttempts: getEnvAsInt("ACCRUAL_RETRY_ATTEMPTS", 3),
			RetryDelay:    getEnvAsDuration("ACCRUAL_RETRY_DELAY", 10*time.Minute),
		},
		Withdrawal: WithdrawalConfig{
			MinAmount: getEnvAsDecimal("WITHDRAWAL_MIN_AMOUNT", decimal.NewFromInt(10)),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsDecimal(key string, defaultValue decimal.Decimal) decimal.Decimal {
	if value := os.Getenv(key); value != "" {
		if d, err := decimal.NewFromString(value); err == nil {
			return d
		}
	}
	return defaultValue
}
