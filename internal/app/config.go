package app

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all the necessary configuration for an App instance to run.
// Every field can be set through a GOBATIS_* environment variable; the CLI
// overrides them with flags.
type Config struct {
	ConfigPath  string `env:"GOBATIS_CONFIG"`
	Environment string `env:"GOBATIS_ENV"`

	// Statement is the ID of the mapped statement Run executes.
	Statement string   `env:"GOBATIS_RUN"`
	Args      []string `env:"GOBATIS_ARGS" envSeparator:","`
	Dump      bool     `env:"GOBATIS_DUMP"`

	LogFormat string `env:"GOBATIS_LOG_FORMAT" envDefault:"text"`
	LogLevel  string `env:"GOBATIS_LOG_LEVEL" envDefault:"info"`
	HTTPPort  int    `env:"GOBATIS_HTTP_PORT"`
}

// LoadEnv reads the optional dotenv files (".env" when none are given) into
// the process environment and parses Config from it. Variables already set
// in the environment win over the files.
func LoadEnv(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// NewConfig validates cfg and normalizes its enumerations.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.ConfigPath == "" {
		return nil, errors.New("ConfigPath is a required configuration field and cannot be empty")
	}

	cfg.LogFormat = strings.ToLower(cfg.LogFormat)
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, errors.New("invalid log-format: must be 'text' or 'json'")
	}

	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	if _, err := parseLevel(cfg.LogLevel); err != nil {
		return nil, err
	}

	if cfg.HTTPPort < 0 || cfg.HTTPPort > 65535 {
		return nil, fmt.Errorf("invalid http-port %d", cfg.HTTPPort)
	}
	return &cfg, nil
}
