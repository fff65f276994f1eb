package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Chdir(t.TempDir())
	return home
}

func TestLoad(t *testing.T) {
	t.Run("Should apply defaults without a config file", func(t *testing.T) {
		isolate(t)
		c, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, 3.0, c.ZScoreThreshold)
		assert.Equal(t, "csv", c.OutputFormat)
		assert.Equal(t, 10, c.PreviewRows)
		assert.Equal(t, 4, c.Workers)
		assert.Equal(t, "warn", c.LogLevel)
		assert.Equal(t, rune(0), c.DelimiterRune())
		assert.Equal(t, Default(), c)
	})

	t.Run("Should read ~/.datatidy/config.yaml", func(t *testing.T) {
		home := isolate(t)
		dir := filepath.Join(home, ".datatidy")
		require.NoError(t, os.MkdirAll(dir, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("zscore_threshold: 2.5\noutput_format: XLSX\ndelimiter: tab\n"), 0o644))
		c, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, 2.5, c.ZScoreThreshold)
		assert.Equal(t, "xlsx", c.OutputFormat)
		assert.Equal(t, '\t', c.DelimiterRune())
	})

	t.Run("Should let env and .env override the file", func(t *testing.T) {
		isolate(t)
		t.Setenv("DATATIDY_WORKERS", "8")
		require.NoError(t, os.WriteFile(".env", []byte("DATATIDY_PREVIEW_ROWS=3\n"), 0o644))
		t.Cleanup(func() { os.Unsetenv("DATATIDY_PREVIEW_ROWS") })
		c, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, 8, c.Workers)
		assert.Equal(t, 3, c.PreviewRows)
	})

	t.Run("Should fail on a missing explicit file", func(t *testing.T) {
		isolate(t)
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
	})

	t.Run("Should reject invalid values", func(t *testing.T) {
		isolate(t)
		path := filepath.Join(t.TempDir(), "c.yaml")
		require.NoError(t, os.WriteFile(path, []byte("zscore_threshold: -1\nworkers: 0\n"), 0o644))
		_, err := Load(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "zscore_threshold")
		assert.Contains(t, err.Error(), "workers")
	})
}

func TestGlobal_Set(t *testing.T) {
	c := Default()

	require.NoError(t, c.Set("zscore_threshold", "2.5"))
	assert.Equal(t, 2.5, c.ZScoreThreshold)
	require.NoError(t, c.Set("log_json", "yes"))
	assert.True(t, c.LogJSON)
	require.NoError(t, c.Set("output_format", " SQLite "))
	assert.Equal(t, "sqlite", c.OutputFormat)

	err := c.Set("workers", "many")
	require.Error(t, err)
	assert.Equal(t, 4, c.Workers)

	err = c.Set("output_format", "parquet")
	require.Error(t, err)
	assert.Equal(t, "sqlite", c.OutputFormat, "failed set restores the previous value")

	err = c.Set("api_key", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown key")

	v, err := c.Get("zscore_threshold")
	require.NoError(t, err)
	assert.Equal(t, 2.5, v)
	assert.Len(t, Keys(), 8)
}

func TestSave(t *testing.T) {
	home := isolate(t)
	c := Default()
	c.PreviewRows = 25
	require.NoError(t, Save(c, ""))

	got, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 25, got.PreviewRows)
	_, err = os.Stat(filepath.Join(home, ".datatidy", "config.yaml"))
	require.NoError(t, err)

	c.Workers = 0
	require.Error(t, Save(c, filepath.Join(t.TempDir(), "c.yaml")))
}
