package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "ghp_test")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:8080", cfg.Addr())
	assert.False(t, cfg.Development)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "ghp_test")
	t.Setenv("DEVPULSE_HOST", "127.0.0.1")
	t.Setenv("DEVPULSE_PORT", "9090")
	t.Setenv("DEVPULSE_DEVELOPMENT", "true")
	t.Setenv("REDIS_ADDR", "localhost:6379")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9090", cfg.Addr())
	assert.True(t, cfg.Development)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
}

func TestLoad_RequiresCredential(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "")
	t.Setenv("GITHUB_INSTALLATION_TOKEN", "")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadCacheRules_Defaults(t *testing.T) {
	rules, err := LoadCacheRules("")
	require.NoError(t, err)
	assert.Equal(t, DefaultCommitsMaxAge, rules.Commits)
	assert.Equal(t, DefaultRepositoriesMaxAge, rules.Repositories)
	assert.Equal(t, DefaultSummaryMaxAge, rules.Summary)
}

func TestLoadCacheRules_PartialOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte("commits: 15\n"), 0o600))

	rules, err := LoadCacheRules(path)
	require.NoError(t, err)
	assert.Equal(t, 15, rules.Commits)
	assert.Equal(t, DefaultRepositoriesMaxAge, rules.Repositories)
}

func TestLoadCacheRules_BadFile(t *testing.T) {
	_, err := LoadCacheRules(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte("commits: [not a number\n"), 0o600))
	_, err = LoadCacheRules(path)
	require.Error(t, err)
}
