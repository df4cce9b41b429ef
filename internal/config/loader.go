package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the path checked for YAML configuration.
const DefaultConfigFile = "smartermcp.yaml"

// Load returns a Config using the hierarchy: defaults < YAML < ENV.
// YAML file is optional; missing file is not an error.
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigFile)
}

// LoadFrom returns a Config loaded from the given YAML path using the
// hierarchy: defaults < YAML < ENV. The YAML file is optional.
func LoadFrom(yamlPath string) (*Config, error) {
	cfg := Defaults()

	if err := loadYAML(&cfg, yamlPath); err != nil {
		return nil, fmt.Errorf("config yaml: %w", err)
	}

	loadEnv(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validate: %w", err)
	}

	return &cfg, nil
}

// loadYAML reads the YAML file and unmarshals it over cfg.
// Returns nil if the file does not exist.
func loadYAML(cfg *Config, path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is validated by caller
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	return nil
}

// loadEnv overlays environment variables onto cfg.
// Only non-empty env values override the current config.
func loadEnv(cfg *Config) {
	setString(&cfg.Server.Port, "MCP_PORT")
	setString(&cfg.Server.CORSOrigin, "SMARTERMCP_CORS_ORIGIN")
	setString(&cfg.Postgres.DSN, "DATABASE_URL")
	setInt32(&cfg.Postgres.MaxConns, "SMARTERMCP_PG_MAX_CONNS")
	setInt32(&cfg.Postgres.MinConns, "SMARTERMCP_PG_MIN_CONNS")
	setDuration(&cfg.Postgres.MaxConnLifetime, "SMARTERMCP_PG_MAX_CONN_LIFETIME")
	setDuration(&cfg.Postgres.MaxConnIdleTime, "SMARTERMCP_PG_MAX_CONN_IDLE_TIME")
	setDuration(&cfg.Postgres.HealthCheck, "SMARTERMCP_PG_HEALTH_CHECK")
	setString(&cfg.NATS.URL, "NATS_URL")

	setString(&cfg.Odoo.Host, "ODOO_HOST")
	setString(&cfg.Odoo.Database, "ODOO_DB")
	setString(&cfg.Odoo.Username, "ODOO_USERNAME")
	setString(&cfg.Odoo.Password, "ODOO_PASSWORD")
	setString(&cfg.Odoo.MasterDB, "ODOO_MASTER_DB")
	// ODOO_ADMIN_PASSWORD wins over the legacy ODOO_ADMIN_TOKEN alias.
	setString(&cfg.Odoo.AdminPassword, "ODOO_ADMIN_TOKEN")
	setString(&cfg.Odoo.AdminPassword, "ODOO_ADMIN_PASSWORD")
	setString(&cfg.Odoo.BaseDomain, "ODOO_BASE_DOMAIN")
	setDuration(&cfg.Odoo.Timeout, "ODOO_TIMEOUT")

	setString(&cfg.Auth.JWTSecret, "MCP_JWT_SECRET")
	setDuration(&cfg.Auth.TokenExpiry, "SMARTERMCP_TOKEN_EXPIRY")
	setBool(&cfg.MCP.Enabled, "SMARTERMCP_MCP_ENABLED")
	setString(&cfg.MCP.APIKey, "SMARTERMCP_MCP_API_KEY")

	if svc, ok := cfg.Updates.Services["n8n"]; ok {
		setString(&svc.CurrentVersion, "N8N_VERSION")
		cfg.Updates.Services["n8n"] = svc
	}
	setDuration(&cfg.Updates.FetchTimeout, "SMARTERMCP_UPDATES_FETCH_TIMEOUT")
	setDuration(&cfg.Updates.CacheTTL, "SMARTERMCP_UPDATES_CACHE_TTL")

	setString(&cfg.Logging.Level, "SMARTERMCP_LOG_LEVEL")
	setString(&cfg.Logging.Service, "SMARTERMCP_LOG_SERVICE")
	setInt(&cfg.Breaker.MaxFailures, "SMARTERMCP_BREAKER_MAX_FAILURES")
	setDuration(&cfg.Breaker.Timeout, "SMARTERMCP_BREAKER_TIMEOUT")
	setString(&cfg.Otel.Endpoint, "OTEL_EXPORTER_OTLP_ENDPOINT")
}

// validate checks that required fields are set.
func validate(cfg *Config) error {
	if cfg.Server.Port == "" {
		return errors.New("server.port is required")
	}
	if cfg.Postgres.DSN == "" {
		return errors.New("postgres.dsn is required")
	}
	if cfg.Postgres.MaxConns < 1 {
		return errors.New("postgres.max_conns must be >= 1")
	}
	if cfg.Auth.TokenExpiry <= 0 {
		return errors.New("auth.token_expiry must be positive")
	}
	if cfg.Breaker.MaxFailures < 1 {
		return errors.New("breaker.max_failures must be >= 1")
	}
	if cfg.Updates.FetchTimeout <= 0 {
		return errors.New("updates.fetch_timeout must be positive")
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setInt32(dst *int32, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 32); err == nil {
			*dst = int32(n)
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
