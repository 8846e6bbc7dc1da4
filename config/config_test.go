package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
[logging]
level = "debug"
format = "json"

[analyzer]
supported_extensions = ["fileinto", "vacation"]

[api]
start = true
addr = "127.0.0.1:9000"
api_key = "secret"
`)

	cfg := NewDefaultConfig()
	require.NoError(t, Load(path, &cfg))

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, []string{"fileinto", "vacation"}, cfg.Analyzer.SupportedExtensions)
	assert.Equal(t, "127.0.0.1:9000", cfg.API.Addr)

	// untouched values keep their defaults
	assert.Equal(t, int64(64*1024), cfg.Analyzer.MaxScriptSize)
	assert.Equal(t, 1024, cfg.API.CacheSize)
}

func TestLoadMissingFile(t *testing.T) {
	cfg := NewDefaultConfig()
	err := Load(filepath.Join(t.TempDir(), "nope.toml"), &cfg)
	assert.True(t, os.IsNotExist(err))
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad format", func(c *Config) { c.Logging.Format = "xml" }},
		{"bad level", func(c *Config) { c.Logging.Level = "chatty" }},
		{"negative size", func(c *Config) { c.Analyzer.MaxScriptSize = -1 }},
		{"api without key", func(c *Config) { c.API.Start = true; c.API.APIKey = "" }},
		{"tls without cert", func(c *Config) {
			c.API.Start = true
			c.API.APIKey = "k"
			c.API.TLS = true
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
