// Package config loads storefront configuration.
package config

import (
	"crypto/rand"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DefaultCatalogURL is the public product API the catalog is seeded from.
// limit=0 asks for the whole collection in one page.
const DefaultCatalogURL = "https://dummyjson.com/products?limit=0"

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Catalog  CatalogConfig
	Auth     AuthConfig
	Log      LogConfig
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            int
	ShutdownTimeout time.Duration
}

// DatabaseConfig holds the SQLite file location
type DatabaseConfig struct {
	Path string
}

// CatalogConfig controls the startup import
type CatalogConfig struct {
	URL           string
	Timeout       time.Duration // 0 means no timeout
	ImportOnStart bool
}

// AuthConfig holds session token settings
type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration

	// GeneratedSecret is set when no secret was configured and JWTSecret
	// was filled with a random per-process value.
	GeneratedSecret bool
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string // debug, info, warn, error
}

// Load loads configuration from an optional YAML file and environment variables.
// Priority (highest to lowest):
// 1. Environment variables with STOREFRONT_ prefix (e.g., STOREFRONT_DATABASE_PATH)
// 2. configFile, or storefront.yaml in the working directory
// 3. Built-in defaults
func Load(configFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("storefront")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("STOREFRONT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		Server: ServerConfig{
			Port:            v.GetInt("server.port"),
			ShutdownTimeout: v.GetDuration("server.shutdown_timeout"),
		},
		Database: DatabaseConfig{
			Path: v.GetString("database.path"),
		},
		Catalog: CatalogConfig{
			URL:           v.GetString("catalog.url"),
			Timeout:       v.GetDuration("catalog.timeout"),
			ImportOnStart: v.GetBool("catalog.import_on_start"),
		},
		Auth: AuthConfig{
			JWTSecret: v.GetString("auth.jwt_secret"),
			TokenTTL:  v.GetDuration("auth.token_ttl"),
		},
		Log: LogConfig{
			Level: v.GetString("log.level"),
		},
	}

	// Sessions signed with a generated secret do not survive a restart.
	if cfg.Auth.JWTSecret == "" {
		cfg.Auth.JWTSecret = rand.Text()
		cfg.Auth.GeneratedSecret = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("database.path", "./data/database.db")
	v.SetDefault("catalog.url", DefaultCatalogURL)
	v.SetDefault("catalog.timeout", time.Duration(0))
	v.SetDefault("catalog.import_on_start", true)
	v.SetDefault("auth.token_ttl", 24*time.Hour)
	v.SetDefault("log.level", "info")
}

// Validate checks the loaded values for obvious mistakes.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Database.Path == "" {
		return errors.New("database path is required")
	}
	u, err := url.Parse(c.Catalog.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid catalog url: %q", c.Catalog.URL)
	}
	if c.Catalog.Timeout < 0 {
		return fmt.Errorf("catalog timeout must not be negative: %s", c.Catalog.Timeout)
	}
	if c.Auth.JWTSecret == "" {
		return errors.New("auth jwt secret is required")
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("auth token ttl must be positive: %s", c.Auth.TokenTTL)
	}
	return nil
}
