package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

type LLMConfig struct {
	Provider string `toml:"provider"`
	Model    string `toml:"model"`
	APIKey   string `toml:"api_key"`
	BaseURL  string `toml:"base_url"`
}

type GeocoderConfig struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	MaxRetries     int    `toml:"max_retries"`
}

type StorageConfig struct {
	DataDir string `toml:"data_dir"`
}

type ExtractionConfig struct {
	// Prompt is a format string taking the taxonomy list and the input text.
	Prompt string `toml:"prompt"`
	// NERModel is the HuggingFace model id for the token-classification
	// backend. Empty disables the NER backend.
	NERModel string `toml:"ner_model"`
	ModelDir string `toml:"model_dir"`
}

type TaggerRule struct {
	Keywords []string `toml:"keywords"`
	Tag      string   `toml:"tag"`
}

type TaggerConfig struct {
	Rules []TaggerRule `toml:"rules"`
}

type Config struct {
	LLM        LLMConfig        `toml:"llm"`
	Geocoder   GeocoderConfig   `toml:"geocoder"`
	Storage    StorageConfig    `toml:"storage"`
	Extraction ExtractionConfig `toml:"extraction"`
	Tagger     TaggerConfig     `toml:"tagger"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Geocoder.BaseURL == "" {
		c.Geocoder.BaseURL = "https://maps.googleapis.com"
	}
	if c.Geocoder.TimeoutSeconds == 0 {
		c.Geocoder.TimeoutSeconds = 10
	}
	if c.Geocoder.MaxRetries == 0 {
		c.Geocoder.MaxRetries = 2
	}
	if c.Storage.DataDir == "" {
		c.Storage.DataDir = "data"
	}
	if c.Extraction.ModelDir == "" {
		c.Extraction.ModelDir = "models"
	}
}
