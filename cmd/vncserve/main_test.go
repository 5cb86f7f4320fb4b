package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/vncserve/internal/config"
)

func TestRunInit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vncserve.yaml")

	require.NoError(t, runInit(path, false))

	// The starter file must parse and validate.
	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":0", cfg.Server.Display)
	assert.True(t, cfg.Admin.Enabled)

	// A second init without force is refused.
	assert.Error(t, runInit(path, false))
	assert.NoError(t, runInit(path, true))
}

func TestRunArgs(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vncserve.yaml")
	raw := "server:\n  display: \":0\"\n  port: 5901\n  view_only: true\n"
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

	require.NoError(t, runArgs(path))
	assert.Error(t, runArgs(filepath.Join(dir, "missing.yaml")))
}
