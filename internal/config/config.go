// Package config loads the agentone configuration file: server settings, the
// model backend, the domain records to register, and per-agent overrides.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"agentone/internal/agent"
)

// ServerConfig configures the dashboard HTTP server.
type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	EnableCORS   bool          `yaml:"enable_cors"`
	Debug        bool          `yaml:"debug"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// OllamaConfig configures the completion backend.
type OllamaConfig struct {
	Model   string        `yaml:"model"`
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// DomainKind selects the adapter implementation for a record.
type DomainKind string

const (
	DomainKindWikipedia DomainKind = "wikipedia"
	DomainKindArxiv     DomainKind = "arxiv"
)

// DomainConfig describes one domain record to register at startup.
type DomainConfig struct {
	ID       string     `yaml:"id"`
	Name     string     `yaml:"name"`
	Kind     DomainKind `yaml:"kind"`
	Priority int        `yaml:"priority"`
	BaseURL  string     `yaml:"base_url"`
}

// AgentOverride optionally replaces a variant's default configuration.
type AgentOverride struct {
	Variant string        `yaml:"variant"`
	Config  *agent.Config `yaml:"config"`
}

// Config is the full application configuration.
type Config struct {
	Server            ServerConfig    `yaml:"server"`
	Ollama            OllamaConfig    `yaml:"ollama"`
	Domains           []DomainConfig  `yaml:"domains"`
	Agents            []AgentOverride `yaml:"agents"`
	HistoryLimit      int             `yaml:"history_limit"`
	CompletionTimeout time.Duration   `yaml:"completion_timeout"`
	MetricsInterval   time.Duration   `yaml:"metrics_interval"`
}

// Default returns the configuration used when no file is supplied. The domain
// wiring mirrors the original deployment: an encyclopedia source and a paper
// archive, with the archive preferred for research queries.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "localhost",
			Port:         8080,
			EnableCORS:   true,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 90 * time.Second,
		},
		Ollama: OllamaConfig{
			Model:   "mistral",
			Timeout: 60 * time.Second,
		},
		Domains: []DomainConfig{
			{ID: "wikipedia", Name: "Wikipedia", Kind: DomainKindWikipedia, Priority: 3},
			{ID: "arxiv", Name: "arXiv", Kind: DomainKindArxiv, Priority: 2},
		},
		HistoryLimit:      200,
		CompletionTimeout: 60 * time.Second,
		MetricsInterval:   15 * time.Second,
	}
}

// Load reads a YAML config file and overlays it on the defaults. An empty
// path returns the defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Ollama.Model == "" {
		return fmt.Errorf("ollama.model is required")
	}

	seen := make(map[string]bool, len(c.Domains))
	for _, domain := range c.Domains {
		if domain.ID == "" {
			return fmt.Errorf("domain with empty id")
		}
		if seen[domain.ID] {
			return fmt.Errorf("duplicate domain id %q", domain.ID)
		}
		seen[domain.ID] = true
		switch domain.Kind {
		case DomainKindWikipedia, DomainKindArxiv:
		default:
			return fmt.Errorf("domain %q has unknown kind %q", domain.ID, domain.Kind)
		}
	}

	for _, override := range c.Agents {
		valid := false
		for _, variant := range agent.Variants {
			if override.Variant == string(variant) {
				valid = true
				break
			}
		}
		if !valid {
			return fmt.Errorf("unknown agent variant %q", override.Variant)
		}
	}
	return nil
}

// OverrideFor returns the configured override for a variant, if any.
func (c *Config) OverrideFor(variant agent.Variant) *agent.Config {
	for _, override := range c.Agents {
		if override.Variant == string(variant) {
			return override.Config
		}
	}
	return nil
}
