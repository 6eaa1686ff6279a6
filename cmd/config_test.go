package main

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inat-tools/rarities/internal/config"
)

func chtempDir(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) }) //nolint:errcheck
}

func TestConfigInit_WritesExampleOnce(t *testing.T) {
	chtempDir(t)

	require.NoError(t, configInitCmd.RunE(configInitCmd, nil))

	data, err := os.ReadFile(configFileName)
	require.NoError(t, err)
	assert.Contains(t, string(data), "api:")
	assert.Contains(t, string(data), "store:")

	err = configInitCmd.RunE(configInitCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestConfigInit_ExampleLoadsAndValidates(t *testing.T) {
	chtempDir(t)

	require.NoError(t, configInitCmd.RunE(configInitCmd, nil))

	loaded, err := config.Load()
	require.NoError(t, err)
	require.NoError(t, loaded.Validate())
	assert.Equal(t, "json", loaded.Store.Driver)
	assert.Equal(t, 8, loaded.Scan.MaxPages)
}

func TestConfigShow_PrintsYAML(t *testing.T) {
	cfg = &config.Config{
		Store: config.StoreConfig{Driver: "json"},
	}

	require.NoError(t, configShowCmd.RunE(configShowCmd, nil))
}
