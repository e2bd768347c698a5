package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"ENV", "PORT", "DB_DRIVER", "JWT_SECRET", "JWT_EXPIRES_IN", "AUDIT_WRITE_TIMEOUT", "REDIS_URL"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.DBDriver != "postgres" {
		t.Errorf("DBDriver = %q, want postgres", cfg.DBDriver)
	}
	if cfg.JWTExpirationDur != 24*time.Hour {
		t.Errorf("JWTExpirationDur = %s, want 24h", cfg.JWTExpirationDur)
	}
	if cfg.AuditWriteTimeout != 5*time.Second {
		t.Errorf("AuditWriteTimeout = %s, want 5s", cfg.AuditWriteTimeout)
	}
	if cfg.RedisURL != "" {
		t.Errorf("RedisURL = %q, want empty (dead-letter queue disabled)", cfg.RedisURL)
	}
}

func TestLoadDurations(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  time.Duration
	}{
		{name: "valid", value: "90m", want: 90 * time.Minute},
		{name: "invalid_falls_back", value: "soon", want: 24 * time.Hour},
		{name: "negative_falls_back", value: "-1h", want: 24 * time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("ENV", "")
			t.Setenv("DB_DRIVER", "")
			t.Setenv("JWT_EXPIRES_IN", tt.value)

			cfg, err := Load()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if cfg.JWTExpirationDur != tt.want {
				t.Errorf("JWTExpirationDur = %s, want %s", cfg.JWTExpirationDur, tt.want)
			}
		})
	}
}

func TestLoadRejectsDevSecretInProduction(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("DB_DRIVER", "")
	t.Setenv("JWT_SECRET", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error when production runs with the development secret")
	}

	t.Setenv("JWT_SECRET", "a-real-secret")
	if _, err := Load(); err != nil {
		t.Fatalf("unexpected error with explicit secret: %v", err)
	}
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Setenv("ENV", "")
	t.Setenv("DB_DRIVER", "mysql")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for unsupported DB_DRIVER")
	}
}
