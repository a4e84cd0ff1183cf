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
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
[llm]
provider = "gemini"
model = "gemini-1.5-flash"

[geocoder]
api_key = "maps-key"
timeout_seconds = 5

[storage]
data_dir = "/tmp/maps"

[[tagger.rules]]
keywords = ["ramen"]
tag = "restaurant"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "gemini", cfg.LLM.Provider)
	assert.Equal(t, "maps-key", cfg.Geocoder.APIKey)
	assert.Equal(t, 5, cfg.Geocoder.TimeoutSeconds)
	assert.Equal(t, "/tmp/maps", cfg.Storage.DataDir)
	require.Len(t, cfg.Tagger.Rules, 1)
	assert.Equal(t, "restaurant", cfg.Tagger.Rules[0].Tag)
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, `[llm]
provider = "openai"`))
	require.NoError(t, err)
	assert.Equal(t, "https://maps.googleapis.com", cfg.Geocoder.BaseURL)
	assert.Equal(t, 10, cfg.Geocoder.TimeoutSeconds)
	assert.Equal(t, 2, cfg.Geocoder.MaxRetries)
	assert.Equal(t, "data", cfg.Storage.DataDir)
	assert.Equal(t, "models", cfg.Extraction.ModelDir)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestLoadBadTOML(t *testing.T) {
	_, err := Load(writeConfig(t, "[llm\nprovider ="))
	assert.Error(t, err)
}
