package assistant

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()
	a := config.Assistant
	assert.Equal(t, "data", a.Data.Dir)
	assert.Equal(t, "none", a.LLM.Provider)
	assert.Equal(t, "gpt-4o-mini", a.LLM.Model)
	assert.Equal(t, 30*time.Second, a.LLM.Timeout)
	assert.Equal(t, 5*time.Minute, a.Session.PendingTTL)
	assert.Equal(t, "pharmassist_audit.log", a.Audit.LogFile)
	assert.Equal(t, 1000, a.Audit.MaxSize)
	assert.Equal(t, 100, a.Cache.MaxSize)
	assert.Equal(t, 100, a.Memory.MaxSize)
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
assistant:
  data:
    dir: /var/lib/pharmassist
  llm:
    provider: ollama
    model: llama3
    base_url: http://localhost:11434
  session:
    pending_ttl: 2m
  cache:
    enable: true
    max_size: 50
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	config, err := LoadConfig(path)
	require.NoError(t, err)
	a := config.Assistant
	assert.Equal(t, "/var/lib/pharmassist", a.Data.Dir)
	assert.Equal(t, "ollama", a.LLM.Provider)
	assert.Equal(t, "llama3", a.LLM.Model)
	assert.Equal(t, "http://localhost:11434", a.LLM.BaseURL)
	assert.Equal(t, 2*time.Minute, a.Session.PendingTTL)
	assert.True(t, a.Cache.Enable)
	assert.Equal(t, 50, a.Cache.MaxSize)
	// Unset values still get defaults.
	assert.Equal(t, 1000, a.Audit.MaxSize)
	assert.Equal(t, 100, a.Memory.MaxSize)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("PHARMASSIST_DATA_DIR", "/tmp/override")
	t.Setenv("PHARMASSIST_LLM_PROVIDER", "ollama")
	t.Setenv("PHARMASSIST_LLM_MODEL", "mistral")
	t.Setenv("PHARMASSIST_PENDING_TTL", "90s")
	t.Setenv("PHARMASSIST_CACHE_ENABLE", "true")

	config, err := LoadConfig("")
	require.NoError(t, err)
	a := config.Assistant
	assert.Equal(t, "/tmp/override", a.Data.Dir)
	assert.Equal(t, "ollama", a.LLM.Provider)
	assert.Equal(t, "mistral", a.LLM.Model)
	assert.Equal(t, 90*time.Second, a.Session.PendingTTL)
	assert.True(t, a.Cache.Enable)
}

func TestValidateConfig(t *testing.T) {
	t.Run("unsupported provider", func(t *testing.T) {
		config := DefaultConfig()
		config.Assistant.LLM.Provider = "skynet"
		err := validateConfig(config)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported LLM provider")
	})

	t.Run("openai needs an api key", func(t *testing.T) {
		config := DefaultConfig()
		config.Assistant.LLM.Provider = "openai"
		config.Assistant.LLM.APIKey = ""
		err := validateConfig(config)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "api_key is required")
	})

	t.Run("ollama needs no api key", func(t *testing.T) {
		config := DefaultConfig()
		config.Assistant.LLM.Provider = "ollama"
		assert.NoError(t, validateConfig(config))
	})

	t.Run("negative sizes rejected", func(t *testing.T) {
		config := DefaultConfig()
		config.Assistant.Cache.MaxSize = -1
		assert.Error(t, validateConfig(config))
	})
}
