// Package config loads server configuration from defaults, an optional YAML
// file and environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// MinJWTSecretLength is the shortest HS256 signing secret accepted.
const MinJWTSecretLength = 32

// Config is the server configuration.
type Config struct {
	Port           int           `yaml:"port"`
	DBPath         string        `yaml:"db_path"`
	StaticPath     string        `yaml:"static_path"`
	JWTSecret      string        `yaml:"jwt_secret"`
	TokenTTL       time.Duration `yaml:"token_ttl"`
	LogLevel       string        `yaml:"log_level"`
	CurrencySymbol string        `yaml:"currency_symbol"`
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		Port:           8080,
		DBPath:         "./data/settleup.db",
		StaticPath:     "../frontend/static",
		TokenTTL:       7 * 24 * time.Hour,
		LogLevel:       "info",
		CurrencySymbol: "₹",
	}
}

// Load builds the configuration. SETTLEUP_CONFIG names an optional YAML
// file; PORT, DB_PATH, STATIC_PATH, JWT_SECRET, TOKEN_TTL, LOG_LEVEL and
// CURRENCY_SYMBOL override it.
func Load() (Config, error) {
	cfg := Default()

	if path := os.Getenv("SETTLEUP_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("PORT: %w", err)
		}
		cfg.Port = port
	}
	if v := os.Getenv("TOKEN_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return cfg, fmt.Errorf("TOKEN_TTL: %w", err)
		}
		cfg.TokenTTL = ttl
	}
	cfg.DBPath = getenvDefault("DB_PATH", cfg.DBPath)
	cfg.StaticPath = getenvDefault("STATIC_PATH", cfg.StaticPath)
	cfg.JWTSecret = getenvDefault("JWT_SECRET", cfg.JWTSecret)
	cfg.LogLevel = getenvDefault("LOG_LEVEL", cfg.LogLevel)
	cfg.CurrencySymbol = getenvDefault("CURRENCY_SYMBOL", cfg.CurrencySymbol)

	return cfg, cfg.Validate()
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("config: port %d out of range", c.Port)
	}
	if c.DBPath == "" {
		return errors.New("config: db path required")
	}
	if len(c.JWTSecret) < MinJWTSecretLength {
		return fmt.Errorf("config: jwt secret must be at least %d bytes", MinJWTSecretLength)
	}
	if c.TokenTTL <= 0 {
		return errors.New("config: token ttl must be positive")
	}
	return nil
}

// Addr is the listen address for the configured port.
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}
