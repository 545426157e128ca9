package config

import (
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		Port:             "8080",
		DatabaseURL:      "postgres://localhost/salonbook",
		JWTSecret:        "secret",
		JWTExpiry:        time.Hour,
		BcryptCost:       10,
		SummaryCacheTTL:  time.Minute,
		ReportTimezone:   "UTC",
		DailySummaryCron: "0 21 * * *",
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		wantErr     bool
		errorString string
	}{
		{
			name:    "valid config",
			mutate:  func(*Config) {},
			wantErr: false,
		},
		{
			name:        "invalid port - non-numeric",
			mutate:      func(c *Config) { c.Port = "abc" },
			wantErr:     true,
			errorString: "invalid port 'abc': must be a number",
		},
		{
			name:        "invalid port - out of range high",
			mutate:      func(c *Config) { c.Port = "70000" },
			wantErr:     true,
			errorString: "invalid port 70000: must be between 1 and 65535",
		},
		{
			name:        "missing database url",
			mutate:      func(c *Config) { c.DatabaseURL = "" },
			wantErr:     true,
			errorString: "DB_URL is required",
		},
		{
			name:        "missing jwt secret",
			mutate:      func(c *Config) { c.JWTSecret = "" },
			wantErr:     true,
			errorString: "JWT_SECRET is required",
		},
		{
			name:        "bcrypt cost too high",
			mutate:      func(c *Config) { c.BcryptCost = 40 },
			wantErr:     true,
			errorString: "invalid BCRYPT_COST 40: must be between 4 and 31",
		},
		{
			name:    "unknown timezone",
			mutate:  func(c *Config) { c.ReportTimezone = "Mars/Olympus" },
			wantErr: true,
		},
		{
			name:    "bad cron spec",
			mutate:  func(c *Config) { c.DailySummaryCron = "every evening" },
			wantErr: true,
		},
		{
			name:        "receipts without twilio",
			mutate:      func(c *Config) { c.NotifyVisitReceipts = true },
			wantErr:     true,
			errorString: "NOTIFY_VISIT_RECEIPTS requires TWILIO_ACCOUNT_SID, TWILIO_AUTH_TOKEN and TWILIO_PHONE_NUMBER",
		},
		{
			name: "receipts with twilio",
			mutate: func(c *Config) {
				c.NotifyVisitReceipts = true
				c.TwilioAccountSID = "AC123"
				c.TwilioAuthToken = "token"
				c.TwilioFromNumber = "+15550000000"
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error but got none")
				}
				if tt.errorString != "" && err.Error() != tt.errorString {
					t.Errorf("expected error %q, got %q", tt.errorString, err.Error())
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestConfig_Location(t *testing.T) {
	cfg := validConfig()
	if cfg.Location() != time.UTC {
		t.Error("unvalidated config should fall back to UTC")
	}

	cfg.ReportTimezone = "Asia/Karachi"
	if err := cfg.Validate(); err != nil {
		t.Skipf("timezone data unavailable: %v", err)
	}
	if cfg.Location().String() != "Asia/Karachi" {
		t.Errorf("Location() = %s", cfg.Location())
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("JWT_EXPIRY_HOURS", "")
	t.Setenv("REPORT_TIMEZONE", "")
	t.Setenv("DB_URL", "")
	t.Setenv("DATABASE_URL", "postgres://fallback/db")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")

	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("Port = %s", cfg.Port)
	}
	if cfg.JWTExpiry != 168*time.Hour {
		t.Errorf("JWTExpiry = %v", cfg.JWTExpiry)
	}
	if cfg.ReportTimezone != "UTC" {
		t.Errorf("ReportTimezone = %s", cfg.ReportTimezone)
	}
	if cfg.DatabaseURL != "postgres://fallback/db" {
		t.Errorf("DatabaseURL = %s", cfg.DatabaseURL)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://b.example" {
		t.Errorf("CORSOrigins = %v", cfg.CORSOrigins)
	}
}
