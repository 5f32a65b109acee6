package assistant

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"pharmassist/internal/crypto"
)

// Config is the root configuration for the assistant.
type Config struct {
	Assistant AssistantConfig `yaml:"assistant"`
}

// AssistantConfig groups the assistant's sub-configurations.
type AssistantConfig struct {
	Data    DataConfig    `yaml:"data"`
	LLM     LLMConfig     `yaml:"llm"`
	Session SessionConfig `yaml:"session"`
	Audit   AuditConfig   `yaml:"audit"`
	Cache   CacheConfig   `yaml:"cache"`
	Memory  MemoryConfig  `yaml:"memory"`
}

// DataConfig locates the flat-file database.
type DataConfig struct {
	Dir string `yaml:"dir"`
}

// LLMConfig configures the optional free-text fallback model.
type LLMConfig struct {
	Provider string        `yaml:"provider"` // openai, googleai, ollama, none
	Model    string        `yaml:"model"`
	APIKey   string        `yaml:"api_key"`
	BaseURL  string        `yaml:"base_url"`
	Timeout  time.Duration `yaml:"timeout"`
}

// SessionConfig controls pending-confirmation lifetimes.
type SessionConfig struct {
	PendingTTL time.Duration `yaml:"pending_ttl"`
}

// AuditConfig controls the audit trail.
type AuditConfig struct {
	Enable  bool   `yaml:"enable"`
	LogFile string `yaml:"log_file"`
	MaxSize int    `yaml:"max_size"`
}

// CacheConfig controls the query result cache.
type CacheConfig struct {
	Enable  bool `yaml:"enable"`
	MaxSize int  `yaml:"max_size"`
}

// MemoryConfig controls conversation history.
type MemoryConfig struct {
	Enable  bool `yaml:"enable"`
	MaxSize int  `yaml:"max_size"`
}

// LoadConfig reads the YAML config file, applies defaults and
// environment overrides, and validates the result. An empty path
// yields a default configuration.
func LoadConfig(path string) (*Config, error) {
	config := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	setDefaults(config)
	overrideWithEnv(config)

	if err := decryptSecrets(config); err != nil {
		return nil, err
	}
	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return config, nil
}

// decryptSecrets resolves encrypted api_key values. The key UUID comes
// from PHARMASSIST_CONFIG_KEY; see cmd/encrypt-config.
func decryptSecrets(config *Config) error {
	apiKey := config.Assistant.LLM.APIKey
	if !crypto.IsEncrypted(apiKey) {
		return nil
	}
	keyUUID := os.Getenv("PHARMASSIST_CONFIG_KEY")
	if keyUUID == "" {
		return fmt.Errorf("api_key is encrypted but PHARMASSIST_CONFIG_KEY is not set")
	}
	decrypted, err := crypto.Decrypt(apiKey, keyUUID)
	if err != nil {
		return fmt.Errorf("failed to decrypt api_key: %w", err)
	}
	config.Assistant.LLM.APIKey = decrypted
	return nil
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	config := &Config{}
	setDefaults(config)
	overrideWithEnv(config)
	return config
}

func setDefaults(config *Config) {
	a := &config.Assistant
	if a.Data.Dir == "" {
		a.Data.Dir = "data"
	}
	if a.LLM.Provider == "" {
		a.LLM.Provider = "none"
	}
	if a.LLM.Model == "" {
		a.LLM.Model = "gpt-4o-mini"
	}
	if a.LLM.Timeout == 0 {
		a.LLM.Timeout = 30 * time.Second
	}
	if a.Session.PendingTTL == 0 {
		a.Session.PendingTTL = 5 * time.Minute
	}
	if a.Audit.LogFile == "" {
		a.Audit.LogFile = "pharmassist_audit.log"
	}
	if a.Audit.MaxSize == 0 {
		a.Audit.MaxSize = 1000
	}
	if a.Cache.MaxSize == 0 {
		a.Cache.MaxSize = 100
	}
	if a.Memory.MaxSize == 0 {
		a.Memory.MaxSize = 100
	}
}

// overrideWithEnv applies PHARMASSIST_* environment variables on top
// of the file values.
func overrideWithEnv(config *Config) {
	a := &config.Assistant
	if v := os.Getenv("PHARMASSIST_DATA_DIR"); v != "" {
		a.Data.Dir = v
	}
	if v := os.Getenv("PHARMASSIST_LLM_PROVIDER"); v != "" {
		a.LLM.Provider = v
	}
	if v := os.Getenv("PHARMASSIST_LLM_MODEL"); v != "" {
		a.LLM.Model = v
	}
	if v := os.Getenv("PHARMASSIST_LLM_API_KEY"); v != "" {
		a.LLM.APIKey = v
	}
	if v := os.Getenv("PHARMASSIST_LLM_BASE_URL"); v != "" {
		a.LLM.BaseURL = v
	}
	if v := os.Getenv("PHARMASSIST_PENDING_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			a.Session.PendingTTL = d
		}
	}
	if v := os.Getenv("PHARMASSIST_AUDIT_ENABLE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			a.Audit.Enable = b
		}
	}
	if v := os.Getenv("PHARMASSIST_CACHE_ENABLE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			a.Cache.Enable = b
		}
	}
}

func validateConfig(config *Config) error {
	a := &config.Assistant
	switch a.LLM.Provider {
	case "openai", "googleai", "ollama", "none":
	default:
		return fmt.Errorf("unsupported LLM provider: %s", a.LLM.Provider)
	}
	if a.LLM.Provider == "openai" || a.LLM.Provider == "googleai" {
		if a.LLM.APIKey == "" {
			return fmt.Errorf("api_key is required for provider %s", a.LLM.Provider)
		}
	}
	if a.Session.PendingTTL < 0 {
		return fmt.Errorf("pending_ttl must not be negative")
	}
	if a.Cache.MaxSize < 0 || a.Audit.MaxSize < 0 || a.Memory.MaxSize < 0 {
		return fmt.Errorf("sizes must not be negative")
	}
	return nil
}
