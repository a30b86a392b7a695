package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// Config holds server configuration.
type Config struct {
	Port        string        `yaml:"port"`
	LogLevel    string        `yaml:"log_level"`
	RulesDir    string        `yaml:"rules_dir"`
	PackVersion string        `yaml:"pack_version"`
	Currency    string        `yaml:"currency"`
	RedisAddr   string        `yaml:"redis_addr"`
	RedisTTL    time.Duration `yaml:"redis_ttl"`
	Metrics     bool          `yaml:"metrics"`
}

func Default() *Config {
	return &Config{
		Port:        "8080",
		LogLevel:    "info",
		RulesDir:    "data/conditions",
		PackVersion: "latest",
		Currency:    "AOA",
		RedisTTL:    24 * time.Hour,
		Metrics:     true,
	}
}

// Load applies defaults, then the optional YAML file at path, then
// CART_PRICING_* environment variables.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
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

func (c *Config) applyEnv() error {
	stringVars := map[string]*string{
		"CART_PRICING_PORT":         &c.Port,
		"CART_PRICING_LOG_LEVEL":    &c.LogLevel,
		"CART_PRICING_RULES_DIR":    &c.RulesDir,
		"CART_PRICING_PACK_VERSION": &c.PackVersion,
		"CART_PRICING_CURRENCY":     &c.Currency,
		"CART_PRICING_REDIS_ADDR":   &c.RedisAddr,
	}
	for key, dst := range stringVars {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	if v := os.Getenv("CART_PRICING_METRICS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("CART_PRICING_METRICS: %w", err)
		}
		c.Metrics = b
	}
	if v := os.Getenv("CART_PRICING_REDIS_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("CART_PRICING_REDIS_TTL: %w", err)
		}
		c.RedisTTL = d
	}
	return nil
}

func (c *Config) Validate() error {
	var errs []error
	if n, err := strconv.Atoi(c.Port); err != nil || n <= 0 || n > 65535 {
		errs = append(errs, fmt.Errorf("invalid port %q", c.Port))
	}
	if _, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel)); err != nil {
		errs = append(errs, fmt.Errorf("invalid log level %q", c.LogLevel))
	}
	if c.RulesDir == "" {
		errs = append(errs, errors.New("rules dir must be set"))
	}
	if c.RedisTTL < 0 {
		errs = append(errs, errors.New("redis ttl cannot be negative"))
	}
	return errors.Join(errs...)
}

// Level is the zerolog level named by LogLevel.
func (c *Config) Level() zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel))
	if err != nil {
		return zerolog.InfoLevel
	}
	return lvl
}

func (c *Config) Addr() string { return ":" + c.Port }
