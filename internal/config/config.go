package config

import (
	"log"
	"os"

	"gopkg.in/yaml.v3"
)

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type FetcherConfig struct {
	UserAgent string `yaml:"userAgent"`
	TimeoutMs int    `yaml:"timeoutMs"`
}

type RobotsConfig struct {
	Respect bool `yaml:"respect"`
}

type RodConfig struct {
	Enabled    bool   `yaml:"enabled"`
	BrowserURL string `yaml:"browserURL"`
}

type HistoryConfig struct {
	Dir string `yaml:"dir"`
}

// AIServiceConfig describes one entry in the AI service registry.
type AIServiceConfig struct {
	Name    string `yaml:"name"`
	APIBase string `yaml:"apiBase"`
	Model   string `yaml:"model"`
	APIKey  string `yaml:"apiKey"`
}

// AIConfig is the service registry plus the designated default service
// and an optional cross-service default key.
type AIConfig struct {
	Default       string                     `yaml:"default"`
	DefaultAPIKey string                     `yaml:"defaultApiKey"`
	Services      map[string]AIServiceConfig `yaml:"services"`
}

// SearxngConfig holds provider-specific configuration for SearxNG-based search.
type SearxngConfig struct {
	BaseURL      string `yaml:"baseURL"`
	DefaultLimit int    `yaml:"defaultLimit"`
	TimeoutMs    int    `yaml:"timeoutMs"`
}

// SearchConfig controls the optional /v1/summarize/search endpoint and its provider.
type SearchConfig struct {
	Enabled              bool          `yaml:"enabled"`
	Provider             string        `yaml:"provider"`
	MaxResults           int           `yaml:"maxResults"`
	TimeoutMs            int           `yaml:"timeoutMs"`
	MaxConcurrentFetches int           `yaml:"maxConcurrentFetches"`
	Searxng              SearxngConfig `yaml:"searxng"`
}

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Fetcher FetcherConfig `yaml:"fetcher"`
	Robots  RobotsConfig  `yaml:"robots"`
	Rod     RodConfig     `yaml:"rod"`
	History HistoryConfig `yaml:"history"`
	AI      AIConfig      `yaml:"ai"`
	Search  SearchConfig  `yaml:"search"`
}

func Load(path string) *Config {
	f, err := os.Open(path)
	if err != nil {
		log.Fatalf("failed to open config file: %v", err)
	}
	defer f.Close()

	var cfg Config
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		log.Fatalf("failed to decode config: %v", err)
	}

	return &cfg
}
