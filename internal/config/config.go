// Package config loads the YAML configuration and resolves API keys and
// filesystem paths. Secrets never live in the config file: they come from
// the process environment, optionally seeded from a .env file.
package config

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/Tanya-123182/digest-microsite/internal/interest"
)

//go:embed default_config.yaml
var defaultConfigFS embed.FS

const appDir = "digest"

type Config struct {
	Country         string   `yaml:"country"`
	Language        string   `yaml:"language"`
	Interests       []string `yaml:"interests"`
	Frequency       string   `yaml:"frequency"`
	RefreshInterval string   `yaml:"refresh_interval"`
	Retention       string   `yaml:"retention"`
	DataDir         string   `yaml:"data_dir,omitempty"`
}

// LoadEnv seeds the process environment from a .env file if one exists.
// Absence is not an error.
func LoadEnv() {
	_ = godotenv.Load()
}

// NewsAPIKey returns the search-provider key from the environment.
func NewsAPIKey() string {
	return os.Getenv("NEWS_API_KEY")
}

// GeminiAPIKey returns the generative-backend key from the environment.
func GeminiAPIKey() string {
	return os.Getenv("GEMINI_API_KEY")
}

func DefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, appDir, "config.yaml")
}

// DefaultDataDir is where the user stores live unless data_dir overrides it.
func DefaultDataDir() string {
	return filepath.Join(xdg.DataHome, appDir)
}

func CachePath() string {
	return filepath.Join(xdg.CacheHome, appDir, "articles.db")
}

// ResolvedDataDir returns the configured data dir or the default.
func (c *Config) ResolvedDataDir() string {
	if c.DataDir != "" {
		return c.DataDir
	}
	return DefaultDataDir()
}

func (c *Config) RefreshDuration() time.Duration {
	d, err := time.ParseDuration(c.RefreshInterval)
	if err != nil {
		return 6 * time.Hour
	}
	return d
}

func (c *Config) RetentionDuration() time.Duration {
	if c.Retention == "" {
		return 30 * 24 * time.Hour
	}
	// Support "Nd" day syntax
	if len(c.Retention) > 1 && c.Retention[len(c.Retention)-1] == 'd' {
		var days int
		if _, err := fmt.Sscanf(c.Retention, "%dd", &days); err == nil {
			return time.Duration(days) * 24 * time.Hour
		}
	}
	d, err := time.ParseDuration(c.Retention)
	if err != nil {
		return 30 * 24 * time.Hour
	}
	return d
}

func loadDefaults() (*Config, error) {
	data, err := defaultConfigFS.ReadFile("default_config.yaml")
	if err != nil {
		return nil, fmt.Errorf("reading embedded config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded config: %w", err)
	}
	return &cfg, nil
}

func Load(path string) (*Config, error) {
	defaults, err := loadDefaults()
	if err != nil {
		return nil, err
	}

	if path == "" {
		path = DefaultConfigPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Write defaults to config path on first run
			if err := writeDefaults(path); err != nil {
				// Non-fatal: just use embedded defaults
				return defaults, nil
			}
			return defaults, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func writeDefaults(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, _ := defaultConfigFS.ReadFile("default_config.yaml")
	return os.WriteFile(path, data, 0o644)
}

func validate(cfg *Config) error {
	if cfg.Frequency != "" {
		if _, err := interest.ParseFrequency(cfg.Frequency); err != nil {
			return err
		}
	}
	for _, name := range cfg.Interests {
		if _, err := interest.Resolve(name); err != nil {
			return err
		}
	}
	return nil
}
