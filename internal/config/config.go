package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Config captures runtime configuration sourced from environment variables.
type Config struct {
	Environment    string
	HTTPPort       string
	DatabasePath   string
	NginxConfigDir string
	JWTSecret      string
	LogDir         string
	AuditSchedule  string
	ShoutrrrURL    string
}

// Load reads env vars and falls back to defaults so the server can boot with
// zero configuration.
func Load() (Config, error) {
	cfg := Config{
		Environment:    getEnv("NGF_ENV", "development"),
		HTTPPort:       getEnv("NGF_HTTP_PORT", "8080"),
		DatabasePath:   getEnv("NGF_DB_PATH", filepath.Join("data", "nginxforge.db")),
		NginxConfigDir: getEnv("NGF_NGINX_CONFIG_DIR", filepath.Join("data", "nginx")),
		JWTSecret:      getEnv("NGF_JWT_SECRET", ""),
		LogDir:         getEnv("NGF_LOG_DIR", filepath.Join("data", "logs")),
		AuditSchedule:  getEnv("NGF_AUDIT_SCHEDULE", "0 3 * * *"),
		ShoutrrrURL:    getEnv("NGF_SHOUTRRR_URL", ""),
	}

	if cfg.Environment == "production" && cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("NGF_JWT_SECRET is required in production")
	}
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "nginxforge-dev-secret"
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DatabasePath), 0o755); err != nil {
		return Config{}, fmt.Errorf("ensure data directory: %w", err)
	}
	if err := os.MkdirAll(cfg.NginxConfigDir, 0o755); err != nil {
		return Config{}, fmt.Errorf("ensure nginx config directory: %w", err)
	}

	return cfg, nil
}

// IsProduction reports whether the server runs with production hardening.
func (c Config) IsProduction() bool {
	return c.Environment == "production" || c.Environment == "prod"
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}

	return fallback
}
