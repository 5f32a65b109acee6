// Package mcp exposes the pharmacy assistant to MCP clients over
// stdio. Tools cover conversational queries plus direct record and
// stock lookups for clients that want structured access.
package mcp

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds the configuration for the MCP server.
type Config struct {
	Name        string `yaml:"name" json:"name"`
	Version     string `yaml:"version" json:"version"`
	Description string `yaml:"description" json:"description"`

	// DataDir locates the flat-file pharmacy database.
	DataDir string `yaml:"data_dir" json:"data_dir"`

	// ReadOnly drops the conversational tool, leaving only the
	// read-side lookups. Mutating commands only flow through chat, so
	// this is the whole write surface.
	ReadOnly bool `yaml:"read_only" json:"read_only"`

	LogLevel string `yaml:"log_level" json:"log_level"`
}

// DefaultConfig returns the default configuration for the MCP server.
func DefaultConfig() *Config {
	return &Config{
		Name:        "PharmAssist MCP Server",
		Version:     "1.0.0",
		Description: "MCP server for the hospital pharmacy assistant",
		DataDir:     "data",
		LogLevel:    "info",
	}
}

// ConfigError represents a configuration error.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}

// Validate checks required fields and applies fallbacks.
func (c *Config) Validate() error {
	if c.Name == "" {
		return &ConfigError{Field: "name", Message: "server name is required"}
	}
	if c.Version == "" {
		return &ConfigError{Field: "version", Message: "server version is required"}
	}
	if c.DataDir == "" {
		return &ConfigError{Field: "data_dir", Message: "data directory is required"}
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	return nil
}

// LoadConfig loads configuration from a YAML or JSON file, keyed on
// the file extension. Missing fields keep their defaults.
func LoadConfig(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	switch filepath.Ext(configPath) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config file format: %s", filepath.Ext(configPath))
	}
	return config, nil
}
