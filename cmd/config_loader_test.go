package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadMergedConfigDefaults(t *testing.T) {
	cfg, err := loadMergedConfig("")
	require.NoError(t, err)

	require.NotNil(t, cfg.App.LivePreview)
	require.True(t, *cfg.App.LivePreview)
	require.NotNil(t, cfg.Thumbnails.Enabled)
	require.True(t, *cfg.Thumbnails.Enabled)
	require.Equal(t, 192, cfg.Thumbnails.Width)
	require.Equal(t, 108, cfg.Thumbnails.Height)
	require.Equal(t, "fit", cfg.Thumbnails.Reformat)
	require.Equal(t, "middle", cfg.Thumbnails.FrameMode)
	require.NotNil(t, cfg.Apply.ChangeRange)
	require.True(t, *cfg.Apply.ChangeRange)
	require.NotNil(t, cfg.Apply.SetMissing)
	require.False(t, *cfg.Apply.SetMissing)
	require.Empty(t, cfg.Sort.Key)
}

func TestLoadMergedConfigOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	user := `
thumbnails:
  enabled: false
  reformat: fill
apply:
  set_missing: true
sort:
  key: "[depth, name]"
keys:
  next_version: k
`
	require.NoError(t, os.WriteFile(path, []byte(user), 0o644))

	cfg, err := loadMergedConfig(path)
	require.NoError(t, err)

	require.False(t, *cfg.Thumbnails.Enabled)
	require.Equal(t, "fill", cfg.Thumbnails.Reformat)
	// Untouched defaults survive the overlay.
	require.Equal(t, 192, cfg.Thumbnails.Width)
	require.True(t, *cfg.App.LivePreview)
	require.True(t, *cfg.Apply.SetMissing)
	require.Equal(t, "[depth, name]", cfg.Sort.Key)
	require.Equal(t, "k", cfg.Keys["next_version"])
}

func TestLoadMergedConfigMissingFile(t *testing.T) {
	_, err := loadMergedConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestResolveConfigPath(t *testing.T) {
	require.Equal(t, "/explicit.yaml", resolveConfigPath("/explicit.yaml"))

	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	require.Empty(t, resolveConfigPath(""))

	cfgPath := filepath.Join(xdg, "vernav", "config.yaml")
	require.NoError(t, os.MkdirAll(filepath.Dir(cfgPath), 0o755))
	require.NoError(t, os.WriteFile(cfgPath, []byte("{}"), 0o644))
	require.Equal(t, cfgPath, resolveConfigPath(""))
}
