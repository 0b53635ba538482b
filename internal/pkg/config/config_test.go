package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, Default().TrackChanges, cfg.TrackChanges)
	assert.False(t, cfg.DelayCollectionLoading)
	assert.Equal(t, 30*time.Second, cfg.LoadTimeout)
	assert.Equal(t, DefaultSpannerDatabase, cfg.SpannerDatabase)
	assert.Empty(t, cfg.Unproxyable)
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("CHANGEPROXY_DELAY_COLLECTION_LOADING", "true")
	t.Setenv("CHANGEPROXY_TRACK_CHANGES", "false")
	t.Setenv("CHANGEPROXY_LOAD_TIMEOUT", "250ms")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.True(t, cfg.DelayCollectionLoading)
	assert.False(t, cfg.TrackChanges)
	assert.Equal(t, 250*time.Millisecond, cfg.LoadTimeout)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "changeproxy.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
assert_allowed_type: true
unproxyable:
  - tree_map
log_level: debug
`), 0o600))

	t.Run("file values apply", func(t *testing.T) {
		cfg, err := Load(path)
		require.NoError(t, err)

		assert.True(t, cfg.AssertAllowedType)
		assert.Equal(t, []string{"tree_map"}, cfg.Unproxyable)
		assert.Equal(t, "debug", cfg.LogLevel)
	})

	t.Run("environment wins over file", func(t *testing.T) {
		t.Setenv("CHANGEPROXY_LOG_LEVEL", "warn")

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "warn", cfg.LogLevel)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
		assert.Error(t, err)
	})
}

func TestLoad_NegativeTimeout(t *testing.T) {
	t.Setenv("CHANGEPROXY_LOAD_TIMEOUT", "-1s")

	_, err := Load("")
	assert.Error(t, err)
}
