// Package config holds the TOML configuration for the sievecheck CLI
// and its HTTP validation API.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// LoggingConfig controls log output, format and verbosity.
type LoggingConfig struct {
	Output string `toml:"output"` // "stderr", "stdout", "syslog" or a file path
	Format string `toml:"format"` // "console" or "json"
	Level  string `toml:"level"`  // "debug", "info", "warn", "error"
}

// AnalyzerConfig tailors the semantic analyzer.
type AnalyzerConfig struct {
	// SupportedExtensions restricts the extension set scripts may
	// require. Left unset, everything the analyzer implements is
	// accepted; an explicit empty list accepts none.
	SupportedExtensions []string `toml:"supported_extensions"`

	// MaxScriptSize caps accepted script sources, in bytes. Scripts are
	// small; the default of 64 KiB is generous.
	MaxScriptSize int64 `toml:"max_script_size"`
}

// APIConfig configures the HTTP validation API.
type APIConfig struct {
	Start        bool     `toml:"start"`
	Addr         string   `toml:"addr"`
	APIKey       string   `toml:"api_key"`
	AllowedHosts []string `toml:"allowed_hosts"`
	TLS          bool     `toml:"tls"`
	TLSCertFile  string   `toml:"tls_cert_file"`
	TLSKeyFile   string   `toml:"tls_key_file"`

	// CacheSize bounds the number of analysis results kept keyed by
	// script hash. Zero disables the cache.
	CacheSize int `toml:"cache_size"`
}

// Config is the root of the TOML configuration file.
type Config struct {
	Logging  LoggingConfig  `toml:"logging"`
	Analyzer AnalyzerConfig `toml:"analyzer"`
	API      APIConfig      `toml:"api"`
}

// NewDefaultConfig returns the configuration used when no file and no
// flags are given.
func NewDefaultConfig() Config {
	return Config{
		Logging: LoggingConfig{
			Output: "stderr",
			Format: "console",
			Level:  "info",
		},
		Analyzer: AnalyzerConfig{
			MaxScriptSize: 64 * 1024,
		},
		API: APIConfig{
			Addr:      "127.0.0.1:8855",
			CacheSize: 1024,
		},
	}
}

// Load reads path as TOML over the defaults already present in cfg.
// A missing file is an error; callers that treat the file as optional
// should check os.IsNotExist on the unwrapped error.
func Load(path string, cfg *Config) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		if os.IsNotExist(err) {
			return err
		}
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return cfg.Validate()
}

// Validate checks the configuration for values that cannot work.
func (c *Config) Validate() error {
	switch c.Logging.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("logging.format must be 'console' or 'json', got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level %q is not a known level", c.Logging.Level)
	}
	if c.Analyzer.MaxScriptSize < 0 {
		return fmt.Errorf("analyzer.max_script_size must not be negative")
	}
	if c.API.CacheSize < 0 {
		return fmt.Errorf("api.cache_size must not be negative")
	}
	if c.API.Start {
		if strings.TrimSpace(c.API.Addr) == "" {
			return fmt.Errorf("api.addr is required when the API is enabled")
		}
		if c.API.APIKey == "" {
			return fmt.Errorf("api.api_key is required when the API is enabled")
		}
		if c.API.TLS && (c.API.TLSCertFile == "" || c.API.TLSKeyFile == "") {
			return fmt.Errorf("api.tls requires both tls_cert_file and tls_key_file")
		}
	}
	return nil
}
