// internal/common/config/loader_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFromFile_Defaults(t *testing.T) {
	path := writeConfigFile(t, `
coral:
  server_url: http://localhost:5555
  agent_id: economics_agent
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:5555", cfg.Coral.ServerURL)
	assert.Equal(t, "economics_agent", cfg.Coral.AgentID)
	assert.Equal(t, 30000, cfg.Coral.WaitTimeout)
	assert.Equal(t, 1000, cfg.Coral.LoopSleep)
	assert.Equal(t, 5000, cfg.Coral.ErrorBackoff)
	assert.Equal(t, 3, cfg.Coral.MaxRetries)
	assert.NotEmpty(t, cfg.Coral.AgentDescription)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, 8080, cfg.Metrics.Port)
	assert.Equal(t, 3600, cfg.Solver.CacheTTL)
}

func TestLoadFromFile_WorkerDefaults(t *testing.T) {
	path := writeConfigFile(t, `
coral:
  server_url: http://localhost:5555
  agent_id: economics_agent
workers:
  solve-problem:
    enabled: true
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	worker := GetWorkerConfig(cfg, "solve-problem")
	assert.True(t, worker.Enabled)
	assert.Equal(t, 30000, worker.Timeout)
	assert.Equal(t, 3, worker.MaxRetries)

	// Unknown workers fall back to enabled defaults.
	fallback := GetWorkerConfig(cfg, "does-not-exist")
	assert.True(t, fallback.Enabled)
	assert.Equal(t, 30000, fallback.Timeout)
}

func TestLoadFromFile_MissingServerURL(t *testing.T) {
	path := writeConfigFile(t, `
coral:
  agent_id: economics_agent
`)

	cfg, err := LoadFromFile(path)
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "server_url")
}

func TestLoadFromFile_GenAIRequiresKey(t *testing.T) {
	path := writeConfigFile(t, `
coral:
  server_url: http://localhost:5555
  agent_id: economics_agent
apis:
  genai:
    enabled: true
`)

	cfg, err := LoadFromFile(path)
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "api_key")
}

func TestLoadFromFile_EnvOverrides(t *testing.T) {
	t.Setenv("CORAL_SSE_URL", "http://coral.internal:5555")
	t.Setenv("CORAL_AGENT_ID", "econ-1")
	t.Setenv("REDIS_ADDRESS", "redis.internal:6379")

	path := writeConfigFile(t, `
app:
  name: economics-agent
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "http://coral.internal:5555", cfg.Coral.ServerURL)
	assert.Equal(t, "econ-1", cfg.Coral.AgentID)
	assert.Equal(t, "redis.internal:6379", cfg.Database.Redis.Address)
}

func TestLoadFromFile_PlaceholderExpansion(t *testing.T) {
	t.Setenv("TEST_CORAL_URL", "http://expanded:5555")

	path := writeConfigFile(t, `
coral:
  server_url: ${TEST_CORAL_URL}
  agent_id: economics_agent
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "http://expanded:5555", cfg.Coral.ServerURL)
}

func TestGetDuration(t *testing.T) {
	assert.Equal(t, int64(30000), GetDuration(30000).Milliseconds())
	assert.Equal(t, int64(0), GetDuration(0).Milliseconds())
}

func TestIsWorkerEnabled(t *testing.T) {
	cfg := &Config{
		Workers: map[string]WorkerConfig{
			"solve-problem": {Enabled: false},
		},
	}

	assert.False(t, IsWorkerEnabled(cfg, "solve-problem"))
	assert.True(t, IsWorkerEnabled(cfg, "unknown-worker"))
}
