package database

import (
	"testing"

	"storefront/internal/config"
)

func TestNewConfig(t *testing.T) {
	cfg := NewConfig(&config.Config{
		DBDriver:   "postgres",
		DBHost:     "db",
		DBPort:     "5433",
		DBUser:     "shop",
		DBPassword: "p@ss word",
		DBName:     "storefront",
		DBSSLMode:  "require",
	})

	wantDSN := "host=db port=5433 user=shop password=p@ss word dbname=storefront sslmode=require"
	if got := cfg.DSN(); got != wantDSN {
		t.Errorf("DSN() = %q, want %q", got, wantDSN)
	}

	wantURL := "postgres://shop:p%40ss%20word@db:5433/storefront?sslmode=require"
	if got := cfg.MigrateURL(); got != wantURL {
		t.Errorf("MigrateURL() = %q, want %q", got, wantURL)
	}
}

func TestNewManagerRejectsUnknownDriver(t *testing.T) {
	if _, err := NewManager(&Config{Driver: "mysql"}); err == nil {
		t.Fatal("expected error for unsupported driver")
	}
}

func TestSQLiteMigrate(t *testing.T) {
	mgr, err := NewManager(&Config{Driver: "sqlite", SQLitePath: "file::memory:"})
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	defer mgr.Close()

	if err := mgr.Migrate(); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	if !mgr.DB().Migrator().HasTable("audit_logs") {
		t.Error("audit_logs table should exist after migration")
	}
}
