package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	if cfg.Server.Port != "3100" {
		t.Errorf("expected port 3100, got %s", cfg.Server.Port)
	}
	if cfg.Postgres.MaxConns != 15 {
		t.Errorf("expected max_conns 15, got %d", cfg.Postgres.MaxConns)
	}
	if cfg.Auth.TokenExpiry != 24*time.Hour {
		t.Errorf("expected token expiry 24h, got %v", cfg.Auth.TokenExpiry)
	}
	if cfg.Updates.Services["n8n"].Repo != "n8n-io/n8n" {
		t.Errorf("expected n8n tracked by default, got %+v", cfg.Updates.Services)
	}
}

func TestLoadYAMLOverride(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "test.yaml")

	content := `
server:
  port: "9090"
  cors_origin: "http://example.com"
odoo:
  host: "http://odoo.internal:8069"
  database: "prod"
updates:
  services:
    odoo:
      repo: "odoo/odoo"
      current_version: "17.0"
logging:
  level: "debug"
`
	if err := os.WriteFile(yamlPath, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := Defaults()
	if err := loadYAML(&cfg, yamlPath); err != nil {
		t.Fatal(err)
	}

	if cfg.Server.Port != "9090" {
		t.Errorf("expected port 9090, got %s", cfg.Server.Port)
	}
	if cfg.Odoo.Host != "http://odoo.internal:8069" {
		t.Errorf("expected odoo host override, got %s", cfg.Odoo.Host)
	}
	if cfg.Odoo.Database != "prod" {
		t.Errorf("expected odoo database prod, got %s", cfg.Odoo.Database)
	}
	if cfg.Updates.Services["odoo"].Repo != "odoo/odoo" {
		t.Errorf("expected odoo service tracked, got %+v", cfg.Updates.Services)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level debug, got %s", cfg.Logging.Level)
	}
	// Unchanged fields keep defaults
	if cfg.Odoo.MasterDB != "master" {
		t.Errorf("expected default master db, got %s", cfg.Odoo.MasterDB)
	}
}

func TestLoadYAMLMissingFileIsNotError(t *testing.T) {
	cfg := Defaults()
	if err := loadYAML(&cfg, filepath.Join(t.TempDir(), "absent.yaml")); err != nil {
		t.Fatalf("missing yaml should not error, got %v", err)
	}
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("MCP_PORT", "4000")
	t.Setenv("ODOO_HOST", "http://odoo-env:8069")
	t.Setenv("MCP_JWT_SECRET", "env-secret")
	t.Setenv("N8N_VERSION", "2.1.0")

	cfg := Defaults()
	loadEnv(&cfg)

	if cfg.Server.Port != "4000" {
		t.Errorf("expected port 4000, got %s", cfg.Server.Port)
	}
	if cfg.Odoo.Host != "http://odoo-env:8069" {
		t.Errorf("expected odoo host from env, got %s", cfg.Odoo.Host)
	}
	if cfg.Auth.JWTSecret != "env-secret" {
		t.Errorf("expected jwt secret from env, got %s", cfg.Auth.JWTSecret)
	}
	if cfg.Updates.Services["n8n"].CurrentVersion != "2.1.0" {
		t.Errorf("expected n8n version from env, got %s", cfg.Updates.Services["n8n"].CurrentVersion)
	}
}

func TestAdminPasswordWinsOverTokenAlias(t *testing.T) {
	t.Setenv("ODOO_ADMIN_PASSWORD", "the-password")
	t.Setenv("ODOO_ADMIN_TOKEN", "the-token")

	cfg := Defaults()
	loadEnv(&cfg)

	if cfg.Odoo.AdminPassword != "the-password" {
		t.Errorf("expected ODOO_ADMIN_PASSWORD to win, got %s", cfg.Odoo.AdminPassword)
	}
}

func TestAdminTokenAliasUsedWhenPasswordUnset(t *testing.T) {
	t.Setenv("ODOO_ADMIN_PASSWORD", "")
	t.Setenv("ODOO_ADMIN_TOKEN", "the-token")

	cfg := Defaults()
	loadEnv(&cfg)

	if cfg.Odoo.AdminPassword != "the-token" {
		t.Errorf("expected ODOO_ADMIN_TOKEN fallback, got %s", cfg.Odoo.AdminPassword)
	}
}

func TestValidate(t *testing.T) {
	cfg := Defaults()
	if err := validate(&cfg); err != nil {
		t.Fatalf("defaults should validate, got %v", err)
	}

	cfg.Server.Port = ""
	if err := validate(&cfg); err == nil {
		t.Error("expected error for empty port")
	}

	cfg = Defaults()
	cfg.Auth.TokenExpiry = 0
	if err := validate(&cfg); err == nil {
		t.Error("expected error for zero token expiry")
	}
}
