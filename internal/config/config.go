// Package config loads server configuration from YAML with environment
// overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the runtime settings for the API server.
type Config struct {
	Addr           string   `yaml:"addr"`
	DatabaseURL    string   `yaml:"database_url"`
	JWTSecret      string   `yaml:"jwt_secret"`
	TokenTTL       Duration `yaml:"token_ttl"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	RateLimit      RateCfg  `yaml:"rate_limit"`
	AuditLogPath   string   `yaml:"audit_log_path"`
	Admin          AdminCfg `yaml:"admin"`
}

// RateCfg tunes the per-caller token bucket.
type RateCfg struct {
	RequestsPerSecond int `yaml:"requests_per_second"`
	Burst             int `yaml:"burst"`
}

// AdminCfg seeds the initial administrator account on startup.
type AdminCfg struct {
	Username string `yaml:"username"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
}

// Duration parses YAML durations given as Go duration strings ("24h").
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the duration as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Addr:           ":8080",
		TokenTTL:       Duration(24 * time.Hour),
		AllowedOrigins: []string{"*"},
		RateLimit:      RateCfg{RequestsPerSecond: 20, Burst: 40},
	}
}

// Load reads the YAML config at path when it exists, then applies
// environment overrides. A missing file is not an error; environment
// variables alone can configure the server.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		case !os.IsNotExist(err):
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("jwt secret is required (JWT_SECRET)")
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := strings.TrimSpace(os.Getenv("ADDR")); v != "" {
		c.Addr = v
	}
	if v := strings.TrimSpace(os.Getenv("DATABASE_URL")); v != "" {
		c.DatabaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv("JWT_SECRET")); v != "" {
		c.JWTSecret = v
	}
	if v := strings.TrimSpace(os.Getenv("TOKEN_TTL")); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			c.TokenTTL = Duration(parsed)
		}
	}
	if v := strings.TrimSpace(os.Getenv("ALLOWED_ORIGINS")); v != "" {
		c.AllowedOrigins = splitAndTrim(v)
	}
	if v := strings.TrimSpace(os.Getenv("RATE_LIMIT_RPS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.RateLimit.RequestsPerSecond = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("RATE_LIMIT_BURST")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.RateLimit.Burst = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("AUDIT_LOG_PATH")); v != "" {
		c.AuditLogPath = v
	}
	if v := strings.TrimSpace(os.Getenv("ADMIN_USERNAME")); v != "" {
		c.Admin.Username = v
	}
	if v := strings.TrimSpace(os.Getenv("ADMIN_EMAIL")); v != "" {
		c.Admin.Email = v
	}
	if v := strings.TrimSpace(os.Getenv("ADMIN_PASSWORD")); v != "" {
		c.Admin.Password = v
	}
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
