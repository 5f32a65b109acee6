package mcp

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()
	assert.Equal(t, "PharmAssist MCP Server", config.Name)
	assert.Equal(t, "1.0.0", config.Version)
	assert.Equal(t, "data", config.DataDir)
	assert.False(t, config.ReadOnly)
	assert.Equal(t, "info", config.LogLevel)
	assert.NoError(t, config.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"missing name", func(c *Config) { c.Name = "" }, "name"},
		{"missing version", func(c *Config) { c.Version = "" }, "version"},
		{"missing data dir", func(c *Config) { c.DataDir = "" }, "data_dir"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.mutate(config)
			err := config.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestValidateFallbacks(t *testing.T) {
	config := DefaultConfig()
	config.LogLevel = ""
	require.NoError(t, config.Validate())
	assert.Equal(t, "info", config.LogLevel)
}

func TestLoadConfigYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mcp.yaml")
	content := `
name: Test Server
data_dir: /tmp/pharmacy-data
read_only: true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	config, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "Test Server", config.Name)
	assert.Equal(t, "/tmp/pharmacy-data", config.DataDir)
	assert.True(t, config.ReadOnly)
	// Defaults fill the gaps.
	assert.Equal(t, "1.0.0", config.Version)
}

func TestLoadConfigJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mcp.json")
	content := `{"name": "JSON Server", "data_dir": "data"}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	config, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "JSON Server", config.Name)
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read config file")

	path := filepath.Join(t.TempDir(), "mcp.toml")
	require.NoError(t, os.WriteFile(path, []byte("x = 1"), 0644))
	_, err = LoadConfig(path)
	assert.ErrorContains(t, err, "unsupported config file format")
}
