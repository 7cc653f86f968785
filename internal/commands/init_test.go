package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turnstone-io/turnstone/internal/config"
)

func TestRunInitCreatesProject(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, runInit(dir))

	info, err := os.Stat(filepath.Join(dir, "saves"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	// The starter config must be loadable as-is.
	cfg, err := config.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "./saves", cfg.Saves.Dir)
	assert.Equal(t, ":8080", cfg.Server.Addr)
}

func TestRunInitRefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, runInit(dir))

	err := runInit(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestPlural(t *testing.T) {
	assert.Equal(t, "1 archive", plural(1, "archive"))
	assert.Equal(t, "0 archives", plural(0, "archive"))
	assert.Equal(t, "3 archives", plural(3, "archive"))
}
