// Package config loads lt-proc defaults from a YAML file and the
// environment. Command-line flags override what it returns.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
)

// PathEnv names the environment variable holding the YAML file path.
const PathEnv = "LTPROC_CONFIG"

// Config is the root lt-proc configuration.
type Config struct {
	Dictionary DictionaryConfig `yaml:"dictionary"`
	Compound   CompoundConfig   `yaml:"compound"`
	Log        LogConfig        `yaml:"log"`
}

// DictionaryConfig holds dictionary loading settings.
type DictionaryConfig struct {
	IndexCacheDir string `yaml:"index_cache_dir" env:"LTPROC_INDEX_CACHE_DIR"`
	Eager         bool   `yaml:"eager"           env:"LTPROC_EAGER"           env-default:"false"`
	CacheSize     int    `yaml:"cache_size"      env:"LTPROC_CACHE_SIZE"      env-default:"8"`
}

// CompoundConfig holds compound decomposition limits.
type CompoundConfig struct {
	MaxThreads  int `yaml:"max_threads"  env:"LTPROC_COMPOUND_MAX_THREADS"  env-default:"500"`
	MaxElements int `yaml:"max_elements" env:"LTPROC_COMPOUND_MAX_ELEMENTS" env-default:"4"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `yaml:"level" env:"LTPROC_LOG_LEVEL" env-default:"info"`
}

// Load reads the configuration. Priority: ENV > YAML > defaults. The YAML
// file is read only when LTPROC_CONFIG is set, and must exist then.
func Load() (*Config, error) {
	var cfg Config

	if path := os.Getenv(PathEnv); path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config: read env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}
	return &cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	var errs []error
	if c.Compound.MaxThreads < 1 {
		errs = append(errs, fmt.Errorf("compound.max_threads must be positive, got %d", c.Compound.MaxThreads))
	}
	if c.Compound.MaxElements < 1 {
		errs = append(errs, fmt.Errorf("compound.max_elements must be positive, got %d", c.Compound.MaxElements))
	}
	if c.Dictionary.CacheSize < 1 {
		errs = append(errs, fmt.Errorf("dictionary.cache_size must be positive, got %d", c.Dictionary.CacheSize))
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// SlogLevel parses the configured log level.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(l.Level))); err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}
