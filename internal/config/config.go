package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config 应用配置
type Config struct {
	Port      string `yaml:"port"`
	DBPath    string `yaml:"db_path"`
	JWTSecret string `yaml:"jwt_secret"`

	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		File   string `yaml:"file"`
	} `yaml:"log"`

	// DefaultEpsilon is the clustering radius, in degrees per axis, used when a
	// request does not specify one.
	DefaultEpsilon float64 `yaml:"default_epsilon"`

	RateLimit struct {
		RequestsPerSecond float64 `yaml:"requests_per_second"`
		Burst             int     `yaml:"burst"`
	} `yaml:"rate_limit"`
}

// DefaultJWTSecret is the placeholder secret used when none is configured
const DefaultJWTSecret = "your-secret-key-change-in-production"

// Default returns the built-in configuration
func Default() *Config {
	cfg := &Config{
		Port:           ":8080",
		DBPath:         "./data/sdr/records.db",
		JWTSecret:      DefaultJWTSecret,
		DefaultEpsilon: 0.0001,
	}
	cfg.Log.Level = "info"
	cfg.Log.Format = "json"
	cfg.RateLimit.RequestsPerSecond = 20
	cfg.RateLimit.Burst = 40
	return cfg
}

// Load 加载配置: defaults, then CONFIG_FILE (YAML), then environment.
// A .env file in the working directory is loaded first when present.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("cannot read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("cannot parse YAML: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	setString("PORT", &c.Port)
	setString("DB_PATH", &c.DBPath)
	setString("JWT_SECRET", &c.JWTSecret)
	setString("LOG_LEVEL", &c.Log.Level)
	setString("LOG_FORMAT", &c.Log.Format)
	setString("LOG_FILE", &c.Log.File)

	if v := os.Getenv("DEFAULT_EPSILON"); v != "" {
		eps, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid DEFAULT_EPSILON %q: %w", v, err)
		}
		c.DefaultEpsilon = eps
	}
	if v := os.Getenv("RATE_LIMIT_RPS"); v != "" {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid RATE_LIMIT_RPS %q: %w", v, err)
		}
		c.RateLimit.RequestsPerSecond = rps
	}
	if v := os.Getenv("RATE_LIMIT_BURST"); v != "" {
		burst, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid RATE_LIMIT_BURST %q: %w", v, err)
		}
		c.RateLimit.Burst = burst
	}

	return nil
}

// Validate checks the values that would otherwise fail at request time
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("port must not be empty")
	}
	if c.DBPath == "" {
		return errors.New("db_path must not be empty")
	}
	if !(c.DefaultEpsilon >= 0) {
		return fmt.Errorf("default_epsilon must be a non-negative number, got %v", c.DefaultEpsilon)
	}
	if c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.Burst <= 0 {
		return fmt.Errorf("rate limit must be positive, got %v rps / burst %d", c.RateLimit.RequestsPerSecond, c.RateLimit.Burst)
	}
	return nil
}

// UsesDefaultJWTSecret reports whether tokens are signed with the placeholder secret
func (c *Config) UsesDefaultJWTSecret() bool {
	return c.JWTSecret == DefaultJWTSecret
}
