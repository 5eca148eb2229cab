package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultValues(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.Search.Workers)
	assert.Equal(t, int64(1), cfg.Search.Seed)
	assert.Equal(t, 1, cfg.Graph.MinWeight)
	assert.Equal(t, 255, cfg.Graph.MaxWeight)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
}

func TestLoadCustomValues(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "mincut.yaml")
	content := `
search:
  workers: 4
  seed: 42
graph:
  min_weight: 1
  max_weight: 100
log:
  level: debug
  format: json
`
	require.NoError(t, os.WriteFile(configFile, []byte(content), 0644))

	cfg, err := Load(configFile)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Search.Workers)
	assert.Equal(t, int64(42), cfg.Search.Seed)
	assert.Equal(t, 100, cfg.Graph.MaxWeight)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadRejectsZeroWorkers(t *testing.T) {
	_, err := LoadFromReader("yaml", []byte("search:\n  workers: 0\n"))
	require.Error(t, err)
}

func TestLoadRejectsBadWeightBounds(t *testing.T) {
	_, err := LoadFromReader("yaml", []byte("graph:\n  min_weight: 10\n  max_weight: 5\n"))
	require.Error(t, err)
}

func TestLoadRejectsUnknownLogFormat(t *testing.T) {
	_, err := LoadFromReader("yaml", []byte("log:\n  format: xml\n"))
	require.Error(t, err)
}
