package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv(PathEnv, "")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 500, cfg.Compound.MaxThreads)
	require.Equal(t, 4, cfg.Compound.MaxElements)
	require.Equal(t, 8, cfg.Dictionary.CacheSize)
	require.False(t, cfg.Dictionary.Eager)
	require.Empty(t, cfg.Dictionary.IndexCacheDir)

	level, err := cfg.Log.SlogLevel()
	require.NoError(t, err)
	require.Equal(t, slog.LevelInfo, level)
}

func TestLoadEnvironment(t *testing.T) {
	t.Setenv(PathEnv, "")
	t.Setenv("LTPROC_COMPOUND_MAX_THREADS", "64")
	t.Setenv("LTPROC_INDEX_CACHE_DIR", "/var/cache/lt")
	t.Setenv("LTPROC_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 64, cfg.Compound.MaxThreads)
	require.Equal(t, "/var/cache/lt", cfg.Dictionary.IndexCacheDir)

	level, err := cfg.Log.SlogLevel()
	require.NoError(t, err)
	require.Equal(t, slog.LevelDebug, level)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ltproc.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
dictionary:
  index_cache_dir: /tmp/idx
  eager: true
compound:
  max_elements: 2
log:
  level: warn
`), 0o644))
	t.Setenv(PathEnv, path)

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "/tmp/idx", cfg.Dictionary.IndexCacheDir)
	require.True(t, cfg.Dictionary.Eager)
	require.Equal(t, 2, cfg.Compound.MaxElements)
	require.Equal(t, 500, cfg.Compound.MaxThreads)
}

func TestLoadMissingFile(t *testing.T) {
	t.Setenv(PathEnv, filepath.Join(t.TempDir(), "missing.yaml"))
	_, err := Load()
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Setenv(PathEnv, "")
	t.Setenv("LTPROC_COMPOUND_MAX_THREADS", "0")
	t.Setenv("LTPROC_LOG_LEVEL", "loud")

	_, err := Load()
	require.ErrorContains(t, err, "compound.max_threads")
	require.ErrorContains(t, err, "log.level")
}
