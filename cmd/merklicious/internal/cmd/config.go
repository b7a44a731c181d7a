package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/datatrails/go-datatrails-merklicious/merklicious"
	"github.com/datatrails/go-datatrails-merklicious/merklicious/ledger"
)

const (
	ConfigFileName = "merklicious.toml"

	DefaultStorePath = "merklicious.db"

	// DefaultLogLevel keeps the command output free of log lines.
	DefaultLogLevel = "NOOP"
)

var (
	ErrInvalidConfig = errors.New("configuration is not valid")
)

// Config is the configuration of the merklicious command, read from a TOML
// file and overridden by the global flags.
type Config struct {
	// StorePath is the leveldb directory holding the trees.
	StorePath string `toml:"store_path"`

	LogLevel string `toml:"log_level"`

	// EntropySize is the number of entropy bytes read for a tree created
	// without explicit entropy.
	EntropySize int `toml:"entropy_size"`

	// ContextTimeoutSeconds bounds each store operation.
	ContextTimeoutSeconds int `toml:"context_timeout_seconds"`
}

func DefaultConfig() *Config {
	return &Config{
		StorePath:             DefaultStorePath,
		LogLevel:              DefaultLogLevel,
		EntropySize:           merklicious.DefaultEntropySize,
		ContextTimeoutSeconds: int(ledger.DefaultContextTimeout / time.Second),
	}
}

// LoadConfig returns the configuration read from the given file, with
// defaults for the settings the file leaves out. An empty file name gives
// the defaults.
func LoadConfig(file string) (*Config, error) {
	conf := DefaultConfig()
	if file == "" {
		return conf, nil
	}

	if _, err := toml.DecodeFile(file, conf); err != nil {
		return nil, fmt.Errorf("Failed to load config: %w", err)
	}
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return conf, nil
}

func (c *Config) Validate() error {
	if c.StorePath == "" {
		return fmt.Errorf("%w: store_path is required", ErrInvalidConfig)
	}
	if c.EntropySize <= 0 {
		return fmt.Errorf("%w: entropy_size must be positive, got %d", ErrInvalidConfig, c.EntropySize)
	}
	if c.ContextTimeoutSeconds <= 0 {
		return fmt.Errorf("%w: context_timeout_seconds must be positive, got %d", ErrInvalidConfig, c.ContextTimeoutSeconds)
	}
	return nil
}

func (c *Config) ContextTimeout() time.Duration {
	return time.Duration(c.ContextTimeoutSeconds) * time.Second
}
