package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/hirepipe/hirepipe/pkg/ollama"
)

type Config struct {
	Addr          string              `yaml:"addr"`
	JWTSecret     string              `yaml:"jwt_secret"`
	APITimeout    time.Duration       `yaml:"timeout"`
	DatabasePath  string              `yaml:"database_path"`
	TokenDuration time.Duration       `yaml:"token_duration"`
	Workers       int                 `yaml:"workers"`
	Engine        EngineConfig        `yaml:"engine"`
	Ollama        ollama.Config       `yaml:"ollama"`
	PanelSlots    map[string][]string `yaml:"panel_slots"`
}

// EngineConfig tunes the screening engine and workflow limits.
type EngineConfig struct {
	Model string `yaml:"model"`
	// TemplateVersion selects the prompt template row for every task.
	TemplateVersion string        `yaml:"template_version"`
	Timeout         time.Duration `yaml:"timeout"`
	// ShortlistThreshold is the minimum screening score to advance a
	// candidate when the model omits an explicit decision.
	ShortlistThreshold float64 `yaml:"shortlist_threshold"`
	// MaxRounds caps interview rounds per candidate.
	MaxRounds int `yaml:"max_rounds"`
}

const insecureJWTSecret = "supersecretkey"

func LoadConfig(path string) (*Config, error) {
	// .env is optional; real env vars win over it
	_ = godotenv.Load()

	cfg := &Config{
		Addr:          getEnv("HIREPIPE_ADDR", ":8080"),
		JWTSecret:     getEnv("HIREPIPE_JWT_SECRET", insecureJWTSecret),
		APITimeout:    15 * time.Second,
		DatabasePath:  getEnv("HIREPIPE_DATABASE_PATH", "hirepipe.db"),
		TokenDuration: 1 * time.Hour,
		Engine: EngineConfig{
			Model: getEnv("HIREPIPE_MODEL", ""),
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

// Validate checks required settings and fills defaults for the optional ones.
func (c *Config) Validate() error {
	if c.JWTSecret == insecureJWTSecret && os.Getenv("HIREPIPE_ENV") != "development" {
		return fmt.Errorf("jwt_secret uses the insecure default outside development")
	}
	if c.Engine.Model == "" {
		return fmt.Errorf("engine.model is required")
	}

	if c.Engine.TemplateVersion == "" {
		c.Engine.TemplateVersion = "v1"
	}
	if c.Engine.Timeout <= 0 {
		c.Engine.Timeout = 20 * time.Second
	}
	if c.Engine.ShortlistThreshold <= 0 {
		c.Engine.ShortlistThreshold = 0.7
	}
	if c.Engine.MaxRounds <= 0 {
		c.Engine.MaxRounds = 3
	}
	if c.Workers <= 0 {
		c.Workers = 2
	}

	if c.Ollama.BaseURL == "" {
		c.Ollama = ollama.DefaultConfig()
	}
	if c.Ollama.Timeout <= 0 {
		c.Ollama.Timeout = ollama.DefaultConfig().Timeout
	}
	if c.Ollama.Retries <= 0 {
		c.Ollama.Retries = ollama.DefaultConfig().Retries
	}

	if c.PanelSlots == nil {
		c.PanelSlots = map[string][]string{}
	}

	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return def
}
