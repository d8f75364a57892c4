package main

import (
	"strings"
	"testing"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "DATABASE_PATH", "CATALOG_FILE", "JWT_SECRET", "JWT_EXPIRES_DAYS", "STARTING_MANA", "NODE_ENV", "LOG_FORMAT", "PROFILE_STORE"} {
		t.Setenv(k, "")
	}
	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Port != "5175" || cfg.DatabasePath != "./data/app.db" || cfg.CatalogFile != "" {
		t.Errorf("Unexpected defaults %+v", cfg)
	}
	if cfg.HTTP.StartingMana != 100 || cfg.HTTP.JWTExpiresDays != 14 || cfg.HTTP.Production {
		t.Errorf("Unexpected http defaults %+v", cfg.HTTP)
	}
	if cfg.HTTP.JWTSecret != devJWTSecret || cfg.HTTP.CookieName != "kp_token" {
		t.Errorf("Unexpected auth defaults %+v", cfg.HTTP)
	}
	if cfg.ProfileStore != "sqlite" {
		t.Errorf("Expected sqlite profile store, got %s", cfg.ProfileStore)
	}
	if cfg.LogFormat != "json" {
		t.Errorf("Expected json log format, got %s", cfg.LogFormat)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("STARTING_MANA", "250")
	t.Setenv("JWT_EXPIRES_DAYS", "3")
	t.Setenv("NODE_ENV", "production")
	t.Setenv("LOG_FORMAT", "Console")
	t.Setenv("PROFILE_STORE", "Memory")

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Port != "9000" || cfg.HTTP.StartingMana != 250 || !cfg.HTTP.Production {
		t.Errorf("Unexpected config %+v", cfg)
	}
	if cfg.HTTP.JWTExpiresDays != 3 {
		t.Errorf("Expected 3 days, got %d", cfg.HTTP.JWTExpiresDays)
	}
	if cfg.LogFormat != "console" || cfg.ProfileStore != "memory" {
		t.Errorf("Expected lowercased console/memory, got %s/%s", cfg.LogFormat, cfg.ProfileStore)
	}
}

func TestLoadConfigMalformedInt(t *testing.T) {
	for _, k := range []string{"JWT_EXPIRES_DAYS", "STARTING_MANA"} {
		t.Run(k, func(t *testing.T) {
			t.Setenv(k, "soon")

			_, err := loadConfig()
			if err == nil {
				t.Fatal("Expected an error for a malformed integer")
			}
			if !strings.Contains(err.Error(), "parse env:") || !strings.Contains(err.Error(), "soon") {
				t.Errorf("Expected parse env error naming the value, got %v", err)
			}
		})
	}
}
