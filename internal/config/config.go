package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultJWTSecret = "supersecretkey"

	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	Env            string        `yaml:"env"`
	Addr           string        `yaml:"addr"`
	JWTSecret      string        `yaml:"jwt_secret"`
	APITimeout     time.Duration `yaml:"timeout"`
	DatabaseDriver string        `yaml:"database_driver"`
	DatabaseDSN    string        `yaml:"database_dsn"`
	TokenDuration  time.Duration `yaml:"token_duration"`
	MigrateOnStart bool          `yaml:"migrate_on_start"`
	LogLevel       string        `yaml:"log_level"`
	Ads            AdsConfig     `yaml:"ads"`
	Feed           FeedConfig    `yaml:"feed"`
}

type AdsConfig struct {
	DefaultLimit int `yaml:"default_limit"`
	MaxLimit     int `yaml:"max_limit"`
}

type FeedConfig struct {
	DefaultLimit int `yaml:"default_limit"`
}

// LoadConfig builds the configuration from environment defaults and then
// overlays the YAML file at path, if any.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{
		Env:            getEnv("BUDDYUP_ENV", "development"),
		Addr:           getEnv("BUDDYUP_ADDR", ":8080"),
		JWTSecret:      getEnv("BUDDYUP_JWT_SECRET", DefaultJWTSecret),
		APITimeout:     15 * time.Second,
		DatabaseDriver: getEnv("BUDDYUP_DATABASE_DRIVER", DriverSQLite),
		DatabaseDSN:    getEnv("BUDDYUP_DATABASE_DSN", "buddyup.db"),
		TokenDuration:  24 * time.Hour,
		MigrateOnStart: true,
		LogLevel:       getEnv("BUDDYUP_LOG_LEVEL", "info"),
		Ads:            AdsConfig{DefaultLimit: 10, MaxLimit: 100},
		Feed:           FeedConfig{DefaultLimit: 20},
	}
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		dec := yaml.NewDecoder(f)
		if err := dec.Decode(cfg); err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
	}

	return cfg, nil
}

// Validate rejects configurations the server cannot run safely with.
func (c *Config) Validate() error {
	var errs []error

	if c.JWTSecret == "" {
		errs = append(errs, errors.New("jwt_secret is required"))
	} else if c.JWTSecret == DefaultJWTSecret && c.Env != "development" {
		errs = append(errs, fmt.Errorf("default jwt_secret is only allowed in development (env=%q)", c.Env))
	}
	if c.DatabaseDriver != DriverSQLite && c.DatabaseDriver != DriverPostgres {
		errs = append(errs, fmt.Errorf("unsupported database_driver %q", c.DatabaseDriver))
	}
	if strings.TrimSpace(c.DatabaseDSN) == "" {
		errs = append(errs, errors.New("database_dsn is required"))
	}
	if c.APITimeout <= 0 {
		errs = append(errs, errors.New("timeout must be positive"))
	}
	if c.TokenDuration <= 0 {
		errs = append(errs, errors.New("token_duration must be positive"))
	}
	if c.Ads.DefaultLimit <= 0 || c.Ads.MaxLimit <= 0 || c.Ads.DefaultLimit > c.Ads.MaxLimit {
		errs = append(errs, fmt.Errorf("invalid ads limits: default=%d max=%d", c.Ads.DefaultLimit, c.Ads.MaxLimit))
	}
	if c.Feed.DefaultLimit <= 0 {
		errs = append(errs, errors.New("feed.default_limit must be positive"))
	}
	if _, err := c.SlogLevel(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// SlogLevel parses LogLevel.
func (c *Config) SlogLevel() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log_level %q", c.LogLevel)
	}
	return lvl, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return def
}
