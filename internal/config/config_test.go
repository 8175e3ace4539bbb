package config_test

import (
	"os"
	"testing"
	"time"

	"github.com/garnizeh/jobboard/internal/config"
)

func baseConfig(secret string) *config.Config {
	return &config.Config{
		Addr:          ":8080",
		JWTSecret:     secret,
		APITimeout:    5 * time.Second,
		DatabasePath:  "jobboard.db",
		TokenDuration: 1 * time.Hour,
	}
}

func TestValidate_InsecureJWT_FailsWhenNotDevelopment(t *testing.T) {
	t.Setenv("JOBBOARD_ENV", "production")

	if err := baseConfig("supersecretkey").Validate(); err == nil {
		t.Fatalf("expected Validate to fail for insecure JWT in non-development env")
	}
}

func TestValidate_InsecureJWT_AllowsDevelopment(t *testing.T) {
	t.Setenv("JOBBOARD_ENV", "development")

	if err := baseConfig("supersecretkey").Validate(); err != nil {
		t.Fatalf("expected Validate to succeed in development env, got: %v", err)
	}
}

func TestValidate_MissingDatabasePath(t *testing.T) {
	t.Setenv("JOBBOARD_ENV", "development")

	cfg := baseConfig("strongsecret")
	cfg.DatabasePath = ""
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected Validate to fail when database_path is empty")
	}
}

func TestValidate_BadLogLevel(t *testing.T) {
	cfg := baseConfig("strongsecret")
	cfg.LogLevel = "verbose"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected Validate to fail for unknown log level")
	}
}

func TestValidate_DefaultsPopulated(t *testing.T) {
	cfg := baseConfig("strongsecret")
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate failed unexpectedly: %v", err)
	}

	if cfg.Notify.Workers <= 0 {
		t.Fatalf("expected Notify.Workers default > 0, got %d", cfg.Notify.Workers)
	}
	if cfg.Notify.MaxAttempts <= 0 {
		t.Fatalf("expected Notify.MaxAttempts default > 0")
	}
	if cfg.Notify.PollInterval <= 0 {
		t.Fatalf("expected Notify.PollInterval default > 0")
	}
	if cfg.Reviews.FlagThreshold != 3 {
		t.Fatalf("expected flag threshold 3, got %d", cfg.Reviews.FlagThreshold)
	}
	if cfg.RateLimit.Limit <= 0 || cfg.RateLimit.Window <= 0 {
		t.Fatalf("expected rate limit defaults, got %+v", cfg.RateLimit)
	}
	if cfg.LogLevel != "info" {
		t.Fatalf("expected log level info, got %q", cfg.LogLevel)
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	for _, k := range []string{"JOBBOARD_ADDR", "JOBBOARD_JWT_SECRET", "JOBBOARD_DATABASE_PATH", "JOBBOARD_NOTIFY_ASYNC", "JOBBOARD_REDIS_ADDR"} {
		t.Setenv(k, "")
	}

	cfg, err := config.LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig returned error for empty path: %v", err)
	}

	if cfg.Addr != ":8080" {
		t.Fatalf("unexpected Addr: got %q want %q", cfg.Addr, ":8080")
	}
	if cfg.JWTSecret != "supersecretkey" {
		t.Fatalf("unexpected JWTSecret: got %q", cfg.JWTSecret)
	}
	if cfg.DatabasePath != "jobboard.db" {
		t.Fatalf("unexpected DatabasePath: got %q", cfg.DatabasePath)
	}
	if cfg.APITimeout != 15*time.Second {
		t.Fatalf("unexpected APITimeout: got %v", cfg.APITimeout)
	}
	if !cfg.Notify.Async {
		t.Fatalf("expected async notifications by default")
	}
	if cfg.RateLimit.RedisAddr != "" {
		t.Fatalf("expected no redis by default, got %q", cfg.RateLimit.RedisAddr)
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("JOBBOARD_ADDR", ":7070")
	t.Setenv("JOBBOARD_NOTIFY_ASYNC", "false")

	cfg, err := config.LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Addr != ":7070" {
		t.Fatalf("unexpected Addr: %q", cfg.Addr)
	}
	if cfg.Notify.Async {
		t.Fatalf("expected async disabled from env")
	}
}

func TestLoadConfig_FromFile(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "config-*.yaml")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	f.Close()

	content := []byte("addr: \":9090\"\njwt_secret: \"filekey\"\ntimeout: \"30s\"\ndatabase_path: \"test.db\"\ntoken_duration: \"2h\"\n" +
		"notify:\n  async: false\n  workers: 4\nreviews:\n  flag_threshold: 5\nrate_limit:\n  redis_addr: \"localhost:6379\"\n  limit: 10\n  window: \"30s\"\n")
	if err := os.WriteFile(f.Name(), content, 0o600); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	cfg, err := config.LoadConfig(f.Name())
	if err != nil {
		t.Fatalf("LoadConfig returned error for file: %v", err)
	}

	if cfg.Addr != ":9090" || cfg.JWTSecret != "filekey" || cfg.DatabasePath != "test.db" {
		t.Fatalf("unexpected basic fields: %+v", cfg)
	}
	if cfg.APITimeout != 30*time.Second || cfg.TokenDuration != 2*time.Hour {
		t.Fatalf("unexpected durations: %v %v", cfg.APITimeout, cfg.TokenDuration)
	}
	if cfg.Notify.Async || cfg.Notify.Workers != 4 {
		t.Fatalf("unexpected notify config: %+v", cfg.Notify)
	}
	if cfg.Reviews.FlagThreshold != 5 {
		t.Fatalf("unexpected flag threshold: %d", cfg.Reviews.FlagThreshold)
	}
	if cfg.RateLimit.RedisAddr != "localhost:6379" || cfg.RateLimit.Limit != 10 || cfg.RateLimit.Window != 30*time.Second {
		t.Fatalf("unexpected rate limit config: %+v", cfg.RateLimit)
	}
}

func TestLoadConfig_BadPath(t *testing.T) {
	if _, err := config.LoadConfig("/path/that/does/not/exist.yaml"); err == nil {
		t.Fatalf("expected error for nonexistent path, got nil")
	}
}

func TestLoadConfig_BadYAML(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "bad-*.yaml")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	f.Close()

	if err := os.WriteFile(f.Name(), []byte("addr: [unclosed\n"), 0o600); err != nil {
		t.Fatalf("failed to write bad yaml: %v", err)
	}

	if _, err := config.LoadConfig(f.Name()); err == nil {
		t.Fatalf("expected YAML decode error, got nil")
	}
}
