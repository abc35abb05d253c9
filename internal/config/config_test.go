package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agentone/internal/agent"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "agentone.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")

	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "mistral", cfg.Ollama.Model)
	require.Len(t, cfg.Domains, 2)
	assert.Equal(t, "wikipedia", cfg.Domains[0].ID)
	assert.Equal(t, 3, cfg.Domains[0].Priority)
	assert.Equal(t, "arxiv", cfg.Domains[1].ID)
	assert.Equal(t, 2, cfg.Domains[1].Priority)
	assert.Equal(t, 200, cfg.HistoryLimit)
}

func TestLoadOverlaysOnDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
ollama:
  model: llama3
  base_url: http://gpu-box:11434
completion_timeout: 30s
`)

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, "llama3", cfg.Ollama.Model)
	assert.Equal(t, "http://gpu-box:11434", cfg.Ollama.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.CompletionTimeout)
	// Untouched sections keep their defaults.
	assert.Len(t, cfg.Domains, 2)
}

func TestLoadDomainOverride(t *testing.T) {
	path := writeConfig(t, `
domains:
  - id: local-wiki
    name: Local Wiki
    kind: wikipedia
    priority: 1
    base_url: http://wiki.internal
`)

	cfg, err := Load(path)

	require.NoError(t, err)
	require.Len(t, cfg.Domains, 1)
	assert.Equal(t, "local-wiki", cfg.Domains[0].ID)
	assert.Equal(t, DomainKindWikipedia, cfg.Domains[0].Kind)
	assert.Equal(t, "http://wiki.internal", cfg.Domains[0].BaseURL)
}

func TestLoadRejectsUnknownDomainKind(t *testing.T) {
	path := writeConfig(t, `
domains:
  - id: feed
    kind: rss
    priority: 1
`)

	_, err := Load(path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "rss")
}

func TestLoadRejectsDuplicateDomainID(t *testing.T) {
	path := writeConfig(t, `
domains:
  - id: wiki
    kind: wikipedia
  - id: wiki
    kind: arxiv
`)

	_, err := Load(path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate")
}

func TestLoadRejectsUnknownAgentVariant(t *testing.T) {
	path := writeConfig(t, `
agents:
  - variant: janitor
`)

	_, err := Load(path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "janitor")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/agentone.yaml")
	require.Error(t, err)
}

func TestOverrideFor(t *testing.T) {
	path := writeConfig(t, `
agents:
  - variant: writer
    config:
      memory_limit: 1024
      max_request_rate: 90
      context_size: 2048
      security_level: low
      allowed_domains: [wikipedia]
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	override := cfg.OverrideFor(agent.VariantWriter)
	require.NotNil(t, override)
	assert.Equal(t, 1024, override.MemoryLimitMB)
	assert.Equal(t, "low", override.SecurityLevel)

	assert.Nil(t, cfg.OverrideFor(agent.VariantStrategist))
}
