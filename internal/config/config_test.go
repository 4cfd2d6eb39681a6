package config_test

import (
	"os"
	"testing"
	"time"

	"github.com/hirepipe/hirepipe/internal/config"
)

func TestLoadConfig_Defaults(t *testing.T) {
	_ = os.Unsetenv("HIREPIPE_ADDR")
	_ = os.Unsetenv("HIREPIPE_JWT_SECRET")
	_ = os.Unsetenv("HIREPIPE_DATABASE_PATH")

	cfg, err := config.LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig returned error for empty path: %v", err)
	}

	if cfg.Addr != ":8080" {
		t.Fatalf("unexpected Addr: got %q want %q", cfg.Addr, ":8080")
	}
	if cfg.DatabasePath != "hirepipe.db" {
		t.Fatalf("unexpected DatabasePath: got %q want %q", cfg.DatabasePath, "hirepipe.db")
	}
	if cfg.APITimeout != 15*time.Second {
		t.Fatalf("unexpected APITimeout: got %v want %v", cfg.APITimeout, 15*time.Second)
	}
	if cfg.TokenDuration != 1*time.Hour {
		t.Fatalf("unexpected TokenDuration: got %v want %v", cfg.TokenDuration, 1*time.Hour)
	}
}

func TestLoadConfig_FromFile(t *testing.T) {
	f, err := os.CreateTemp("", "config-*.yaml")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	defer os.Remove(f.Name())
	f.Close()

	content := []byte("addr: \":9090\"\njwt_secret: \"filekey\"\ntimeout: \"30s\"\ndatabase_path: \"test.db\"\nengine:\n  model: \"llama3\"\n  shortlist_threshold: 0.5\npanel_slots:\n  backend_engineer:\n    - \"2025-12-13 10:00\"\n    - \"2025-12-13 11:00\"\n")
	if err := os.WriteFile(f.Name(), content, 0o600); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	cfg, err := config.LoadConfig(f.Name())
	if err != nil {
		t.Fatalf("LoadConfig returned error for file: %v", err)
	}

	if cfg.Addr != ":9090" {
		t.Fatalf("unexpected Addr: got %q want %q", cfg.Addr, ":9090")
	}
	if cfg.JWTSecret != "filekey" {
		t.Fatalf("unexpected JWTSecret: got %q want %q", cfg.JWTSecret, "filekey")
	}
	if cfg.Engine.Model != "llama3" {
		t.Fatalf("unexpected Engine.Model: got %q", cfg.Engine.Model)
	}
	if cfg.Engine.ShortlistThreshold != 0.5 {
		t.Fatalf("unexpected ShortlistThreshold: got %v", cfg.Engine.ShortlistThreshold)
	}
	if len(cfg.PanelSlots["backend_engineer"]) != 2 {
		t.Fatalf("unexpected panel slots: %v", cfg.PanelSlots)
	}
}

func TestLoadConfig_BadPath(t *testing.T) {
	if _, err := config.LoadConfig("/path/that/does/not/exist.yaml"); err == nil {
		t.Fatalf("expected error for nonexistent path, got nil")
	}
}

func TestLoadConfig_BadYAML(t *testing.T) {
	f, err := os.CreateTemp("", "bad-*.yaml")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	defer os.Remove(f.Name())
	f.Close()

	if err := os.WriteFile(f.Name(), []byte("::: not yaml :::"), 0o600); err != nil {
		t.Fatalf("failed to write bad yaml: %v", err)
	}

	if _, err := config.LoadConfig(f.Name()); err == nil {
		t.Fatalf("expected YAML decode error, got nil")
	}
}

func TestValidate_InsecureJWT_FailsWhenNotDevelopment(t *testing.T) {
	os.Setenv("HIREPIPE_ENV", "production")
	defer os.Unsetenv("HIREPIPE_ENV")

	cfg := &config.Config{
		Addr:         ":8080",
		JWTSecret:    "supersecretkey",
		DatabasePath: "hirepipe.db",
		Engine:       config.EngineConfig{Model: "m"},
	}

	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected Validate to fail for insecure JWT in non-development env")
	}
}

func TestValidate_InsecureJWT_AllowsDevelopment(t *testing.T) {
	os.Setenv("HIREPIPE_ENV", "development")
	defer os.Unsetenv("HIREPIPE_ENV")

	cfg := &config.Config{
		Addr:         ":8080",
		JWTSecret:    "supersecretkey",
		DatabasePath: "hirepipe.db",
		Engine:       config.EngineConfig{Model: "m"},
	}

	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected Validate to succeed in development env, got: %v", err)
	}
}

func TestValidate_MissingEngineModel(t *testing.T) {
	os.Setenv("HIREPIPE_ENV", "development")
	defer os.Unsetenv("HIREPIPE_ENV")

	cfg := &config.Config{
		Addr:      ":8080",
		JWTSecret: "strongsecret",
		Engine:    config.EngineConfig{Model: ""},
	}

	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected Validate to fail when engine.model is empty")
	}
}

func TestValidate_DefaultsPopulated(t *testing.T) {
	os.Setenv("HIREPIPE_ENV", "development")
	defer os.Unsetenv("HIREPIPE_ENV")

	cfg := &config.Config{
		Addr:      ":8080",
		JWTSecret: "strongsecret",
		Engine:    config.EngineConfig{Model: "m"},
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate failed unexpectedly: %v", err)
	}

	if cfg.Engine.ShortlistThreshold != 0.7 {
		t.Fatalf("expected shortlist threshold default 0.7, got %v", cfg.Engine.ShortlistThreshold)
	}
	if cfg.Engine.MaxRounds != 3 {
		t.Fatalf("expected max rounds default 3, got %d", cfg.Engine.MaxRounds)
	}
	if cfg.Ollama.BaseURL == "" {
		t.Fatalf("expected Ollama.BaseURL to be populated, got empty")
	}
	if cfg.Ollama.Timeout <= 0 {
		t.Fatalf("expected Ollama.Timeout to be > 0")
	}
	if cfg.Workers != 2 {
		t.Fatalf("expected workers default 2, got %d", cfg.Workers)
	}
}
