package config

import (
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"

	// ConfigPathEnv names the config file when no flag does.
	ConfigPathEnv = "AUTOHIDE_CONFIG"
)

type Config struct {
	Env     string  `yaml:"env" env:"AUTOHIDE_ENV" env-default:"local"`
	Sweep   Sweep   `yaml:"sweep"`
	Watch   Watch   `yaml:"watch"`
	Journal Journal `yaml:"journal"`
}

type Sweep struct {
	Workers int `yaml:"workers" env:"AUTOHIDE_SWEEP_WORKERS" env-default:"4"`
}

type Watch struct {
	Debounce       time.Duration `yaml:"debounce" env:"AUTOHIDE_DEBOUNCE" env-default:"300ms"`
	QueueSize      int           `yaml:"queue_size" env:"AUTOHIDE_QUEUE_SIZE" env-default:"256"`
	IgnorePatterns []string      `yaml:"ignore_patterns" env:"AUTOHIDE_IGNORE_PATTERNS" env-separator:","`
}

// Journal is written unless Disabled is set.
type Journal struct {
	Disabled bool   `yaml:"disabled" env:"AUTOHIDE_JOURNAL_DISABLED"`
	Path     string `yaml:"path" env:"AUTOHIDE_JOURNAL_PATH"`
}

// Load reads the configuration. Priority: path argument > AUTOHIDE_CONFIG >
// environment and defaults only.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(ConfigPathEnv)
	}

	var cfg Config
	if path == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("cannot read environment: %w", err)
		}
		return &cfg, cfg.validate()
	}

	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("cannot read config: %w", err)
	}
	return &cfg, cfg.validate()
}

func (c *Config) validate() error {
	switch c.Env {
	case EnvLocal, EnvDev, EnvProd:
	default:
		return fmt.Errorf("unknown env %q, want %s, %s or %s", c.Env, EnvLocal, EnvDev, EnvProd)
	}
	if c.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative, got %s", c.Watch.Debounce)
	}
	return nil
}

// Usage describes every environment variable the config reads.
func Usage() (string, error) {
	var cfg Config
	return cleanenv.GetDescription(&cfg, nil)
}
