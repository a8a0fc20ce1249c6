// Package config loads newsflow configuration from a YAML file with
// environment-variable overrides.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variable names that override file values.
const (
	listenEnv     = "NEWSFLOW_LISTEN"
	backendURLEnv = "NEWSFLOW_BACKEND_URL"
	storePathEnv  = "NEWSFLOW_STORE_PATH"
	webhookURLEnv = "NEWSFLOW_WEBHOOK_URL"
	chatAPIKeyEnv = "NEWSFLOW_CHAT_API_KEY"
	chatModelEnv  = "NEWSFLOW_CHAT_MODEL"
)

// Config holds the settings shared across the application.
type Config struct {
	Listen     string            `yaml:"listen"`
	BackendURL string            `yaml:"backendUrl"`
	Feeds      map[string]string `yaml:"feeds"`
	SinceDays  int               `yaml:"sinceDays"`
	Chat       ChatConfig        `yaml:"chat"`
	Store      StoreConfig       `yaml:"store"`
	Webhook    WebhookConfig     `yaml:"webhook"`
}

// ChatConfig describes the OpenAI-compatible generation endpoint.
type ChatConfig struct {
	Endpoint string        `yaml:"endpoint"`
	Model    string        `yaml:"model"`
	APIKey   string        `yaml:"apiKey"`
	Timeout  time.Duration `yaml:"timeout"`
}

// StoreConfig describes the durable conversation store.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// WebhookConfig describes the optional event webhook.
type WebhookConfig struct {
	URL string `yaml:"url"`
}

// Default feed sources, used when the config names none.
var defaultFeeds = map[string]string{
	"Hugging Face Blog":           "https://huggingface.co/blog/feed.xml",
	"The Gradient":                "https://thegradient.pub/rss/",
	"MIT Technology Review AI":    "https://www.technologyreview.com/tag/artificial-intelligence/feed/",
	"VentureBeat AI":              "https://venturebeat.com/ai/feed/",
	"AI News":                     "https://artificialintelligence-news.com/feed/",
}

// Load reads configuration from path (optional) and applies environment
// overrides and defaults. An empty path yields a default configuration.
func Load(path string) (Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnv(&cfg)
	applyDefaults(&cfg)

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv(listenEnv); v != "" {
		cfg.Listen = v
	}
	if v := os.Getenv(backendURLEnv); v != "" {
		cfg.BackendURL = v
	}
	if v := os.Getenv(storePathEnv); v != "" {
		cfg.Store.Path = v
	}
	if v := os.Getenv(webhookURLEnv); v != "" {
		cfg.Webhook.URL = v
	}
	if v := os.Getenv(chatAPIKeyEnv); v != "" {
		cfg.Chat.APIKey = v
	}
	if v := os.Getenv(chatModelEnv); v != "" {
		cfg.Chat.Model = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Listen == "" {
		cfg.Listen = ":8080"
	}
	if cfg.BackendURL == "" {
		cfg.BackendURL = "http://localhost:8080"
	}
	if len(cfg.Feeds) == 0 {
		cfg.Feeds = make(map[string]string, len(defaultFeeds))
		for name, url := range defaultFeeds {
			cfg.Feeds[name] = url
		}
	}
	if cfg.SinceDays == 0 {
		cfg.SinceDays = 7
	}
	if cfg.Chat.Endpoint == "" {
		cfg.Chat.Endpoint = "https://api.openai.com/v1"
	}
	if cfg.Chat.Model == "" {
		cfg.Chat.Model = "gpt-4o-mini"
	}
	if cfg.Chat.Timeout == 0 {
		cfg.Chat.Timeout = 60 * time.Second
	}
}

func (c Config) validate() error {
	if c.SinceDays < 1 || c.SinceDays > 31 {
		return fmt.Errorf("sinceDays must be between 1 and 31, got %d", c.SinceDays)
	}
	return nil
}
