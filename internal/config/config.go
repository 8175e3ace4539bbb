package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const insecureJWTSecret = "supersecretkey"

type Config struct {
	Addr           string        `yaml:"addr"`
	JWTSecret      string        `yaml:"jwt_secret"`
	APITimeout     time.Duration `yaml:"timeout"`
	DatabasePath   string        `yaml:"database_path"`
	TokenDuration  time.Duration `yaml:"token_duration"`
	MigrateOnStart bool          `yaml:"migrate_on_start"`
	LogLevel       string        `yaml:"log_level"`

	Notify    NotifyConfig    `yaml:"notify"`
	Reviews   ReviewConfig    `yaml:"reviews"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// NotifyConfig controls the background delivery of notifications.
type NotifyConfig struct {
	// Async routes notifications through the persistent job queue. When false
	// notifications are written inline after the triggering change commits.
	Async        bool          `yaml:"async"`
	Workers      int           `yaml:"workers"`
	MaxAttempts  int           `yaml:"max_attempts"`
	PollInterval time.Duration `yaml:"poll_interval"`
}

type ReviewConfig struct {
	FlagThreshold int `yaml:"flag_threshold"`
}

type RateLimitConfig struct {
	RedisAddr string        `yaml:"redis_addr"`
	Limit     int           `yaml:"limit"`
	Window    time.Duration `yaml:"window"`
}

func LoadConfig(path string) (*Config, error) {
	apiTimeout := 15 * time.Second
	tokenDuration := 1 * time.Hour

	cfg := &Config{
		Addr:           getEnv("JOBBOARD_ADDR", ":8080"),
		JWTSecret:      getEnv("JOBBOARD_JWT_SECRET", insecureJWTSecret),
		APITimeout:     apiTimeout,
		DatabasePath:   getEnv("JOBBOARD_DATABASE_PATH", "jobboard.db"),
		TokenDuration:  tokenDuration,
		MigrateOnStart: getEnvBool("JOBBOARD_MIGRATE_ON_START", true),
		LogLevel:       getEnv("JOBBOARD_LOG_LEVEL", "info"),
		Notify: NotifyConfig{
			Async: getEnvBool("JOBBOARD_NOTIFY_ASYNC", true),
		},
		RateLimit: RateLimitConfig{
			RedisAddr: getEnv("JOBBOARD_REDIS_ADDR", ""),
		},
	}
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		dec := yaml.NewDecoder(f)
		if err := dec.Decode(cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// Validate checks required settings and fills defaults for optional ones.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return errors.New("addr is required")
	}
	if c.DatabasePath == "" {
		return errors.New("database_path is required")
	}
	if c.JWTSecret == "" {
		return errors.New("jwt_secret is required")
	}
	if c.JWTSecret == insecureJWTSecret && os.Getenv("JOBBOARD_ENV") != "development" {
		return fmt.Errorf("jwt_secret uses the built-in default; set JOBBOARD_JWT_SECRET or JOBBOARD_ENV=development")
	}
	if c.APITimeout <= 0 {
		c.APITimeout = 15 * time.Second
	}
	if c.TokenDuration <= 0 {
		c.TokenDuration = time.Hour
	}
	switch c.LogLevel {
	case "":
		c.LogLevel = "info"
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log_level %q", c.LogLevel)
	}

	if c.Notify.Workers <= 0 {
		c.Notify.Workers = 2
	}
	if c.Notify.MaxAttempts <= 0 {
		c.Notify.MaxAttempts = 5
	}
	if c.Notify.PollInterval <= 0 {
		c.Notify.PollInterval = 500 * time.Millisecond
	}
	if c.Reviews.FlagThreshold <= 0 {
		c.Reviews.FlagThreshold = 3
	}
	if c.RateLimit.Limit <= 0 {
		c.RateLimit.Limit = 60
	}
	if c.RateLimit.Window <= 0 {
		c.RateLimit.Window = time.Minute
	}

	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return def
}

func getEnvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
