package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(nil, "")
	require.NoError(t, err)
	assert.Equal(t, "chacha-stm-sha", cfg.Triple)
	assert.Equal(t, 100000, cfg.PBKDF2Iterations)
	assert.Equal(t, "memory", cfg.CacheBackend)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("NESCIENT_TRIPLE", "aes256-cbc-sha")
	t.Setenv("NESCIENT_CACHE_BACKEND", "sqlite")

	cfg, err := Load(nil, "")
	require.NoError(t, err)
	assert.Equal(t, "aes256-cbc-sha", cfg.Triple)
	assert.Equal(t, "sqlite", cfg.CacheBackend)
}

func TestLoadFlagOverridesEnv(t *testing.T) {
	t.Setenv("NESCIENT_TRIPLE", "aes256-cbc-sha")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	require.NoError(t, fs.Parse([]string{"--triple=aes128-ecb-sha"}))

	cfg, err := Load(fs, "")
	require.NoError(t, err)
	assert.Equal(t, "aes128-ecb-sha", cfg.Triple)
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nescient.yaml")
	contents := "triple: aes192-cbc-sha\npbkdf2_iterations: 1000\n"
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	cfg, err := Load(nil, path)
	require.NoError(t, err)
	assert.Equal(t, "aes192-cbc-sha", cfg.Triple)
	assert.Equal(t, 1000, cfg.PBKDF2Iterations)
}

func TestLoadMissingExplicitConfigFileErrors(t *testing.T) {
	_, err := Load(nil, filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	assert.Error(t, err, "expected error for missing explicit config file")
}
