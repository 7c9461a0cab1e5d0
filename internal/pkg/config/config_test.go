package config

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET": "s3cret",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != "8080" || cfg.Env != "development" || cfg.LogLevel != "info" || cfg.LogPretty {
		t.Errorf("unexpected top-level defaults: %+v", cfg)
	}
	if cfg.Auth.TokenTTL != 24*time.Hour {
		t.Errorf("expected 24h token ttl, got %v", cfg.Auth.TokenTTL)
	}
	if cfg.Auth.SeedUsername != "doctor" || cfg.Auth.SeedPassword != "" {
		t.Errorf("unexpected seed defaults: %+v", cfg.Auth)
	}
	if len(cfg.HTTP.AllowedOrigins) != 1 || cfg.HTTP.AllowedOrigins[0] != "http://localhost:3000" {
		t.Errorf("unexpected CORS origins: %v", cfg.HTTP.AllowedOrigins)
	}
	if cfg.Postgres.MaxOpenConns != 10 || !strings.HasPrefix(cfg.Postgres.URL, "postgres://") {
		t.Errorf("unexpected postgres defaults: %+v", cfg.Postgres)
	}
	if cfg.Mongo.Database != "health_records" {
		t.Errorf("unexpected mongo database: %s", cfg.Mongo.Database)
	}
	if cfg.Redis.ProgramTTL != 5*time.Minute {
		t.Errorf("unexpected cache ttl: %v", cfg.Redis.ProgramTTL)
	}
	if cfg.Audit.Workers != 4 || cfg.Audit.Buffer != 256 {
		t.Errorf("unexpected audit defaults: %+v", cfg.Audit)
	}
	if cfg.IsProduction() {
		t.Error("development must not report production")
	}
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET":           "s3cret",
		"ENV":                  "production",
		"TOKEN_TTL":            "30m",
		"CORS_ALLOWED_ORIGINS": "https://clinic.example.org,https://admin.example.org",
		"AUDIT_WORKERS":        "8",
		"CLINICIAN_PASSWORD":   "password",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !cfg.IsProduction() {
		t.Error("expected production")
	}
	if cfg.Auth.TokenTTL != 30*time.Minute {
		t.Errorf("expected 30m, got %v", cfg.Auth.TokenTTL)
	}
	if len(cfg.HTTP.AllowedOrigins) != 2 {
		t.Errorf("expected two origins, got %v", cfg.HTTP.AllowedOrigins)
	}
	if cfg.Audit.Workers != 8 {
		t.Errorf("expected 8 workers, got %d", cfg.Audit.Workers)
	}
	if cfg.Auth.SeedPassword != "password" {
		t.Errorf("expected seed password, got %q", cfg.Auth.SeedPassword)
	}
}

func TestPrettyLogs(t *testing.T) {
	cases := []struct {
		env    string
		pretty bool
		want   bool
	}{
		{"development", true, true},
		{"development", false, false},
		{"production", true, false},
	}
	for _, tc := range cases {
		cfg := &Config{Env: tc.env, LogPretty: tc.pretty}
		if got := cfg.PrettyLogs(); got != tc.want {
			t.Errorf("env=%s pretty=%v: expected %v, got %v", tc.env, tc.pretty, tc.want, got)
		}
	}
}

func TestLoad_MissingSecret(t *testing.T) {
	_, err := load(context.Background(), envconfig.MapLookuper(map[string]string{}))
	if err == nil {
		t.Fatal("expected error when JWT_SECRET is missing")
	}
}

func TestLoad_InvalidDuration(t *testing.T) {
	_, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET": "s3cret",
		"TOKEN_TTL":  "forever",
	}))
	if err == nil {
		t.Fatal("expected error for malformed TOKEN_TTL")
	}
}
