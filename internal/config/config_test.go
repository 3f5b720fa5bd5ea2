package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ciftools/linguist/internal/config"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	cfg, err := config.Load()
	require.NoError(t, err)
	require.Equal(t, config.Default(), cfg)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	yaml := "output_format: cif11\nstrict: true\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "linguist.yaml"), []byte(yaml), 0o644))

	cfg, err := config.Load()
	require.NoError(t, err)
	require.Equal(t, "cif11", cfg.OutputFormat)
	require.True(t, cfg.Strict)
	require.Equal(t, "auto", cfg.InputFormat)
	require.True(t, cfg.InputLineFolding)
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}
