package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, &ProjectConfig{}, cfg)
}

func TestLoad_ReadsYml(t *testing.T) {
	dir := t.TempDir()
	data := []byte("model: gpt-4.1\nstrategy: waves\nbudget: 2m\nmaxAttempts: 5\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "fireline.yml"), data, 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "gpt-4.1", cfg.Model)
	assert.Equal(t, "waves", cfg.Strategy)
	assert.Equal(t, 2*time.Minute, cfg.Budget.Std())
	assert.Equal(t, 5, cfg.MaxAttempts)
}

func TestLoad_MalformedYAMLFails(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "fireline.yml"), []byte("model: [unclosed"), 0o644))

	_, err := Load(dir)
	require.Error(t, err)
}

func TestAPIKey(t *testing.T) {
	t.Setenv("FIRELINE_TEST_KEY", "sk-test")
	cfg := &ProjectConfig{APIKeyEnv: "FIRELINE_TEST_KEY"}
	assert.Equal(t, "sk-test", cfg.APIKey())

	t.Setenv(DefaultAPIKeyEnv, "sk-default")
	assert.Equal(t, "sk-default", (&ProjectConfig{}).APIKey())
}
