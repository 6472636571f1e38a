// Package config loads the xchg configuration.
//
// Values are layered, each layer overriding the previous one:
//
//  1. built-in defaults
//  2. the YAML file given to Load, when it exists
//  3. a .env file in the working directory, when it exists
//  4. XCHG_* environment variables
//
// Command line flags are applied by the caller on top of the result.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Default values.
const (
	DefaultListen    = ":8080"
	DefaultStore     = "exchange_db.txt"
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
)

// Config is the complete xchg configuration.
type Config struct {
	// Listen is the TCP address the server listens on.
	Listen string `yaml:"listen" env:"XCHG_LISTEN"`
	// Store is the path of the store file.
	Store string `yaml:"store" env:"XCHG_STORE"`
	// Metrics is the HTTP address exposing /metrics. Empty disables it.
	Metrics string `yaml:"metrics" env:"XCHG_METRICS"`

	Log Log `yaml:"log"`
}

// Log configures logging.
type Log struct {
	Level  string `yaml:"level" env:"XCHG_LOG_LEVEL"`
	Format string `yaml:"format" env:"XCHG_LOG_FORMAT"` // text or json
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Listen: DefaultListen,
		Store:  DefaultStore,
		Log: Log{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}

// Load builds the configuration. path names an optional YAML file; an empty
// path or a missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return cfg, err
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, fmt.Errorf("could not read .env: %w", err)
	}

	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return cfg, fmt.Errorf("could not decode environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("could not read config %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("could not parse config %q: %w", path, err)
	}
	return nil
}

// Validate checks the configuration values.
func (c Config) Validate() error {
	switch {
	case c.Listen == "":
		return errors.New("listen address is required")
	case c.Store == "":
		return errors.New("store path is required")
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q (text or json)", c.Log.Format)
	}
	return nil
}
