// Package config loads and validates the pipeline configuration from YAML.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Configuration validation errors.
var (
	ErrNoFeeds              = errors.New("at least one feed URL is required")
	ErrMissingDataDir       = errors.New("storage.data_dir is required")
	ErrMissingEpisodesDir   = errors.New("storage.episodes_dir is required")
	ErrMissingStateFile     = errors.New("storage.state_file is required")
	ErrMissingSiteDir       = errors.New("storage.site_dir is required")
	ErrMissingModel         = errors.New("openai.transcription_model and openai.summarize_model are required")
	ErrInvalidPerFeedLimit  = errors.New("pipeline.per_feed_limit must be at least 1")
	ErrInvalidMaxDownload   = errors.New("pipeline.max_download_mb must be at least 1")
	ErrInvalidSegmentLength = errors.New("pipeline.segment_seconds must be at least 1")
	ErrInvalidMaxQuotes     = errors.New("pipeline.max_quotes must be non-negative")
)

// Default values applied to unset fields.
const (
	DefaultPerFeedLimit   = 3
	DefaultMaxDownloadMB  = 300
	DefaultSegmentSeconds = 600
	DefaultMaxQuotes      = 5
	DefaultTemperature    = 0.2
)

// Config is the complete pipeline configuration.
type Config struct {
	Feeds        []string       `yaml:"feeds"`
	YouTubeFeeds []string       `yaml:"youtube_feeds"`
	Pipeline     PipelineConfig `yaml:"pipeline"`
	Storage      StorageConfig  `yaml:"storage"`
	Site         SiteConfig     `yaml:"site"`
	OpenAI       OpenAIConfig   `yaml:"openai"`
}

// PipelineConfig contains processing limits.
type PipelineConfig struct {
	PerFeedLimit   int    `yaml:"per_feed_limit"`
	MaxDownloadMB  int    `yaml:"max_download_mb"`
	SegmentSeconds int    `yaml:"segment_seconds"`
	LanguageHint   string `yaml:"language_hint"`
	MaxQuotes      int    `yaml:"max_quotes"`
}

// StorageConfig contains filesystem layout settings.
type StorageConfig struct {
	DataDir     string `yaml:"data_dir"`
	EpisodesDir string `yaml:"episodes_dir"`
	StateFile   string `yaml:"state_file"`
	SiteDir     string `yaml:"site_dir"`
}

// SiteConfig contains static-site rendering settings.
type SiteConfig struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	BaseURL     string `yaml:"base_url"`
}

// OpenAIConfig contains remote model settings. The API key itself comes from the
// OPENAI_API_KEY environment variable, never from the config file.
type OpenAIConfig struct {
	TranscriptionModel string  `yaml:"transcription_model"`
	SummarizeModel     string  `yaml:"summarize_model"`
	Temperature        float64 `yaml:"temperature"`
}

// Load reads and validates the configuration at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Defaults are seeded before decoding so an explicit zero in the file
	// (say temperature: 0) is kept rather than treated as unset.
	cfg := defaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDefault loads config.yml, falling back to config.example.yml when the
// former does not exist. It returns the path actually used.
func LoadDefault() (*Config, string, error) {
	path := "config.yml"
	if _, err := os.Stat(path); err != nil {
		path = "config.example.yml"
	}
	cfg, err := Load(path)
	if err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}

// AllFeeds returns the regular and YouTube feed URLs merged in configuration
// order: regular feeds first, then YouTube feeds.
func (c *Config) AllFeeds() []string {
	all := make([]string, 0, len(c.Feeds)+len(c.YouTubeFeeds))
	all = append(all, c.Feeds...)
	all = append(all, c.YouTubeFeeds...)
	return all
}

// MaxDownloadBytes returns the download ceiling in bytes.
func (c *Config) MaxDownloadBytes() int64 {
	return int64(c.Pipeline.MaxDownloadMB) * 1024 * 1024
}

func defaultConfig() *Config {
	return &Config{
		Pipeline: PipelineConfig{
			PerFeedLimit:   DefaultPerFeedLimit,
			MaxDownloadMB:  DefaultMaxDownloadMB,
			SegmentSeconds: DefaultSegmentSeconds,
			MaxQuotes:      DefaultMaxQuotes,
		},
		OpenAI: OpenAIConfig{
			Temperature: DefaultTemperature,
		},
	}
}

// Validate checks the configuration for structural errors.
func (c *Config) Validate() error {
	if len(c.Feeds) == 0 && len(c.YouTubeFeeds) == 0 {
		return ErrNoFeeds
	}
	if c.Storage.DataDir == "" {
		return ErrMissingDataDir
	}
	if c.Storage.EpisodesDir == "" {
		return ErrMissingEpisodesDir
	}
	if c.Storage.StateFile == "" {
		return ErrMissingStateFile
	}
	if c.Storage.SiteDir == "" {
		return ErrMissingSiteDir
	}
	if c.OpenAI.TranscriptionModel == "" || c.OpenAI.SummarizeModel == "" {
		return ErrMissingModel
	}
	if c.Pipeline.PerFeedLimit < 1 {
		return ErrInvalidPerFeedLimit
	}
	if c.Pipeline.MaxDownloadMB < 1 {
		return ErrInvalidMaxDownload
	}
	if c.Pipeline.SegmentSeconds < 1 {
		return ErrInvalidSegmentLength
	}
	if c.Pipeline.MaxQuotes < 0 {
		return ErrInvalidMaxQuotes
	}
	return nil
}
