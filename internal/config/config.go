// Package config loads the semsync TOML configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// DefaultFileName is the config file looked up under ~/.semsync when no
// path is given.
const DefaultFileName = "config.toml"

// Config is the full application configuration.
type Config struct {
	// DataDir holds the ledger database. Empty means ~/.semsync/data.
	DataDir string `toml:"data_dir"`

	Embedding EmbeddingConfig `toml:"embedding"`
	Vector    VectorConfig    `toml:"vector"`
	Chat      ChatConfig      `toml:"chat"`
	Sources   SourcesConfig   `toml:"sources"`
}

// EmbeddingConfig selects and tunes the embedding provider.
type EmbeddingConfig struct {
	// Provider is "openai" or "ollama" (default: ollama).
	Provider string `toml:"provider"`

	Model   string `toml:"model"`
	BaseURL string `toml:"base_url"`

	// APIKey may be left empty and provided via OPENAI_API_KEY instead.
	APIKey string `toml:"api_key"`

	Dimensions int `toml:"dimensions"`

	// RatePerSecond caps embedding calls; zero disables the limiter.
	RatePerSecond float64 `toml:"rate_per_second"`
	Burst         int     `toml:"burst"`

	// Workers bounds per-document embedding concurrency.
	Workers int `toml:"workers"`
}

// VectorConfig selects the vector index backend.
type VectorConfig struct {
	// Provider is "qdrant" or "memory" (default: memory).
	Provider   string `toml:"provider"`
	URL        string `toml:"url"`
	APIKey     string `toml:"api_key"`
	Collection string `toml:"collection"`
}

// ChatConfig selects the chat model used by the analysis command.
type ChatConfig struct {
	Model   string `toml:"model"`
	BaseURL string `toml:"base_url"`

	// APIKey may be left empty and provided via OPENAI_API_KEY instead.
	APIKey string `toml:"api_key"`
}

// SourcesConfig registers the content sources, in ingestion order:
// PDF directories, JSON log directories, then log windows.
type SourcesConfig struct {
	PDF       []DirSource       `toml:"pdf"`
	JSONLog   []DirSource       `toml:"jsonlog"`
	LogWindow []LogWindowSource `toml:"logwindow"`
}

// DirSource is a filesystem-backed source.
type DirSource struct {
	Path string `toml:"path"`
}

// LogWindowSource is a windowed remote-log-query source.
type LogWindowSource struct {
	// URL is the log backend base URL. Empty with Sample=true uses the
	// seeded sample generator instead.
	URL      string `toml:"url"`
	Selector string `toml:"selector"`

	// LookbackHours is the query window length (default 24).
	LookbackHours int `toml:"lookback_hours"`

	// Sample enables the deterministic sample generator fallback.
	Sample     bool  `toml:"sample"`
	SampleSeed int64 `toml:"sample_seed"`
}

// Load reads the config file at path. An empty path falls back to
// ~/.semsync/config.toml; a missing file yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		path = filepath.Join(home, ".semsync", DefaultFileName)
	}

	cfg := &Config{}
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// No file: defaults only.
	case err != nil:
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	default:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	cfg.applyDefaults()
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Embedding.Provider == "" {
		c.Embedding.Provider = "ollama"
	}
	if c.Vector.Provider == "" {
		c.Vector.Provider = "memory"
	}
	for i := range c.Sources.LogWindow {
		if c.Sources.LogWindow[i].LookbackHours <= 0 {
			c.Sources.LogWindow[i].LookbackHours = 24
		}
	}
}

func (c *Config) applyEnv() {
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		if c.Embedding.APIKey == "" {
			c.Embedding.APIKey = key
		}
		if c.Chat.APIKey == "" {
			c.Chat.APIKey = key
		}
	}
	if key := os.Getenv("QDRANT_API_KEY"); key != "" && c.Vector.APIKey == "" {
		c.Vector.APIKey = key
	}
}
