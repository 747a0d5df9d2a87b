package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config holds all configuration for the application
type Config struct {
	Port     string
	DBDriver string
	DBURL    string
	LogLevel string

	JWTSecret   string
	JWTExpiry   time.Duration
	BcryptCost  int
	CORSOrigins []string

	CacheHost         string
	CachePort         string
	CachePassword     string
	DashboardCacheTTL time.Duration

	TwilioAccountSID     string
	TwilioAuthToken      string
	TwilioPhoneNumber    string
	TwilioWhatsAppNumber string
	ReminderSchedule     string
	ReminderDays         int

	FreezeExtendsExpiry bool

	SeedAdminUsername  string
	SeedAdminPassword  string
	LoginRatePerMinute int
}

// Load reads configuration from the environment, after merging a .env file
// when one is present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:                 getEnvOrDefault("PORT", "8080"),
		DBDriver:             strings.ToLower(getEnvOrDefault("DB_DRIVER", DriverPostgres)),
		DBURL:                os.Getenv("DB_URL"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		JWTSecret:            os.Getenv("JWT_SECRET"),
		CORSOrigins:          splitList(getEnvOrDefault("CORS_ORIGINS", "http://localhost:3000")),
		CacheHost:            os.Getenv("CACHE_HOST"),
		CachePort:            getEnvOrDefault("CACHE_PORT", "6379"),
		CachePassword:        os.Getenv("CACHE_PASSWORD"),
		TwilioAccountSID:     os.Getenv("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:      os.Getenv("TWILIO_AUTH_TOKEN"),
		TwilioPhoneNumber:    os.Getenv("TWILIO_PHONE_NUMBER"),
		TwilioWhatsAppNumber: os.Getenv("TWILIO_WHATSAPP_NUMBER"),
		ReminderSchedule:     getEnvOrDefault("REMINDER_SCHEDULE", "0 9 * * *"),
		SeedAdminUsername:    os.Getenv("SEED_ADMIN_USERNAME"),
		SeedAdminPassword:    os.Getenv("SEED_ADMIN_PASSWORD"),
	}

	var err error
	if cfg.JWTExpiry, err = getHours("JWT_EXPIRY_HOURS", 24); err != nil {
		return nil, err
	}
	if cfg.BcryptCost, err = getInt("BCRYPT_COST", 14); err != nil {
		return nil, err
	}
	if cfg.ReminderDays, err = getInt("REMINDER_DAYS", 7); err != nil {
		return nil, err
	}
	if cfg.LoginRatePerMinute, err = getInt("LOGIN_RATE_PER_MINUTE", 5); err != nil {
		return nil, err
	}
	if cfg.DashboardCacheTTL, err = time.ParseDuration(getEnvOrDefault("DASHBOARD_CACHE_TTL", "30s")); err != nil {
		return nil, fmt.Errorf("invalid DASHBOARD_CACHE_TTL: %w", err)
	}
	if cfg.FreezeExtendsExpiry, err = strconv.ParseBool(getEnvOrDefault("FREEZE_EXTENDS_EXPIRY", "false")); err != nil {
		return nil, fmt.Errorf("invalid FREEZE_EXTENDS_EXPIRY: %w", err)
	}

	// Required environment variables
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is required")
	}
	switch cfg.DBDriver {
	case DriverPostgres:
		if cfg.DBURL == "" {
			return nil, fmt.Errorf("DB_URL environment variable is required")
		}
	case DriverMemory:
	default:
		return nil, fmt.Errorf("unknown DB_DRIVER %q", cfg.DBDriver)
	}

	return cfg, nil
}

// RemindersEnabled reports whether Twilio credentials are configured.
func (c *Config) RemindersEnabled() bool {
	return c.TwilioAccountSID != "" && c.TwilioAuthToken != ""
}

func (c *Config) CacheEnabled() bool {
	return c.CacheHost != ""
}

// getEnvOrDefault returns environment variable value or default if not set
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getHours(key string, defaultValue int) (time.Duration, error) {
	n, err := getInt(key, defaultValue)
	if err != nil {
		return 0, err
	}
	return time.Duration(n) * time.Hour, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
