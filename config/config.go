package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"golang.org/x/crypto/bcrypt"
)

type Config struct {
	Environment string
	Port        string
	LogLevel    string

	DatabaseURL string
	DBDebug     bool

	RedisURL        string
	SummaryCacheTTL time.Duration

	JWTSecret         string
	JWTExpiry         time.Duration
	BcryptCost        int
	AllowRegistration bool
	CORSOrigins       []string

	// Calendar days in reports and date filters are cut in this zone.
	ReportTimezone string

	TwilioAccountSID    string
	TwilioAuthToken     string
	TwilioFromNumber    string
	NotifyVisitReceipts bool
	OwnerPhone          string
	DailySummaryCron    string

	SlowRequestThreshold time.Duration

	location *time.Location
}

// Load reads .env (if present) and the process environment.
func Load() *Config {
	_ = godotenv.Load()

	databaseURL := getEnv("DB_URL", "")
	if databaseURL == "" {
		databaseURL = getEnv("DATABASE_URL", "")
	}

	return &Config{
		Environment:          getEnv("ENV", "development"),
		Port:                 getEnv("PORT", "8080"),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		DatabaseURL:          databaseURL,
		DBDebug:              getEnvBool("DB_DEBUG", false),
		RedisURL:             getEnv("REDIS_URL", ""),
		SummaryCacheTTL:      getEnvDuration("SUMMARY_CACHE_TTL", time.Minute),
		JWTSecret:            getEnv("JWT_SECRET", ""),
		JWTExpiry:            time.Duration(getEnvInt("JWT_EXPIRY_HOURS", 24*7)) * time.Hour,
		BcryptCost:           getEnvInt("BCRYPT_COST", 12),
		AllowRegistration:    getEnvBool("ALLOW_REGISTRATION", false),
		CORSOrigins:          getEnvList("CORS_ORIGINS", []string{"http://localhost:3000"}),
		ReportTimezone:       getEnv("REPORT_TIMEZONE", "UTC"),
		TwilioAccountSID:     getEnv("TWILIO_ACCOUNT_SID", ""),
		TwilioAuthToken:      getEnv("TWILIO_AUTH_TOKEN", ""),
		TwilioFromNumber:     getEnv("TWILIO_PHONE_NUMBER", ""),
		NotifyVisitReceipts:  getEnvBool("NOTIFY_VISIT_RECEIPTS", false),
		OwnerPhone:           getEnv("OWNER_PHONE", ""),
		DailySummaryCron:     getEnv("DAILY_SUMMARY_CRON", "0 21 * * *"),
		SlowRequestThreshold: getEnvDuration("SLOW_REQUEST_THRESHOLD", 200*time.Millisecond),
	}
}

// ValidateDatabase checks the settings every command needs.
func (c *Config) ValidateDatabase() error {
	if c.DatabaseURL == "" {
		return errors.New("DB_URL is required")
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("invalid BCRYPT_COST %d: must be between %d and %d", c.BcryptCost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	return c.resolveLocation()
}

// Validate checks everything the HTTP server needs.
func (c *Config) Validate() error {
	if err := c.ValidateDatabase(); err != nil {
		return err
	}

	port, err := strconv.Atoi(c.Port)
	if err != nil {
		return fmt.Errorf("invalid port '%s': must be a number", c.Port)
	}
	if port < 1 || port > 65535 {
		return fmt.Errorf("invalid port %d: must be between 1 and 65535", port)
	}

	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.JWTExpiry <= 0 {
		return errors.New("JWT_EXPIRY_HOURS must be positive")
	}
	if c.SummaryCacheTTL <= 0 {
		return errors.New("SUMMARY_CACHE_TTL must be positive")
	}

	if c.DailySummaryCron != "" {
		if _, err := cron.ParseStandard(c.DailySummaryCron); err != nil {
			return fmt.Errorf("invalid DAILY_SUMMARY_CRON %q: %w", c.DailySummaryCron, err)
		}
	}
	if c.NotifyVisitReceipts && !c.TwilioEnabled() {
		return errors.New("NOTIFY_VISIT_RECEIPTS requires TWILIO_ACCOUNT_SID, TWILIO_AUTH_TOKEN and TWILIO_PHONE_NUMBER")
	}
	return nil
}

func (c *Config) resolveLocation() error {
	loc, err := time.LoadLocation(c.ReportTimezone)
	if err != nil {
		return fmt.Errorf("invalid REPORT_TIMEZONE %q: %w", c.ReportTimezone, err)
	}
	c.location = loc
	return nil
}

// Location is the report timezone. Before validation it falls back to UTC.
func (c *Config) Location() *time.Location {
	if c.location == nil {
		return time.UTC
	}
	return c.location
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c *Config) TwilioEnabled() bool {
	return c.TwilioAccountSID != "" && c.TwilioAuthToken != "" && c.TwilioFromNumber != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
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
	return out
}
