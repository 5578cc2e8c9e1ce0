package config

import (
	"testing"
	"time"
)

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{"7d", 7 * 24 * time.Hour, false},
		{" 1d ", 24 * time.Hour, false},
		{"90m", 90 * time.Minute, false},
		{"1h30m", 90 * time.Minute, false},
		{"xd", 0, true},
		{"soon", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseDuration(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("parseDuration(%q) expected error", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseDuration(%q) unexpected error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("parseDuration(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("STORE_DRIVER", "")
	t.Setenv("APP_TIMEZONE", "")
	t.Setenv("JWT_EXPIRES_IN", "")
	t.Setenv("APP_ENV", "development")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if cfg.Store.Driver != "memory" {
		t.Errorf("Store.Driver = %q, want memory", cfg.Store.Driver)
	}
	if cfg.JWT.ExpiresIn != 7*24*time.Hour {
		t.Errorf("JWT.ExpiresIn = %v, want 168h", cfg.JWT.ExpiresIn)
	}
	loc, err := cfg.Location()
	if err != nil || loc != time.UTC {
		t.Errorf("Location() = %v, %v; want UTC", loc, err)
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unknown driver", map[string]string{"STORE_DRIVER": "mongo"}},
		{"unknown timezone", map[string]string{"APP_TIMEZONE": "Mars/Olympus"}},
		{"bad jwt expiry", map[string]string{"JWT_EXPIRES_IN": "forever"}},
		{"zero rate limit", map[string]string{"RATE_LIMIT_REQUESTS": "0"}},
		{"default secret in production", map[string]string{"APP_ENV": "production", "JWT_SECRET": "your-secret-key"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := LoadConfig(); err == nil {
				t.Errorf("LoadConfig() expected error for %s", tt.name)
			}
		})
	}
}

func TestLocation_Named(t *testing.T) {
	cfg := &Config{App: AppConfig{Timezone: "Asia/Bangkok"}}
	loc, err := cfg.Location()
	if err != nil {
		t.Fatalf("Location() error: %v", err)
	}
	if loc.String() != "Asia/Bangkok" {
		t.Errorf("Location() = %s, want Asia/Bangkok", loc)
	}
}
