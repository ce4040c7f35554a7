package fileutils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mrnavastar/modcheck/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func TestLoadWithoutSetup(t *testing.T) {
	keyring.MockInit()

	_, err := LoadAppState()
	assert.ErrorIs(t, err, ErrNotInitialized)
}

func TestSetupAndRoundTrip(t *testing.T) {
	keyring.MockInit()
	dir := t.TempDir()
	require.NoError(t, Setup(dir))

	state, err := LoadAppState()
	require.NoError(t, err)
	assert.Equal(t, dir, state.DotMinecraft)
	assert.Equal(t, filepath.Join(dir, "modcheck"), state.WorkDir)
	assert.Empty(t, state.Modpacks)

	state.ActiveModpack = "skyblock"
	state.Modpacks = append(state.Modpacks, util.Modpack{Name: "skyblock", Loader: "fabric", Version: "1.20.1", Locked: []string{"P1"}})
	require.NoError(t, SaveAppState(state))

	loaded, err := LoadAppState()
	require.NoError(t, err)
	assert.Equal(t, "skyblock", loaded.ActiveModpack)
	require.Len(t, loaded.Modpacks, 1)
	assert.Equal(t, []string{"P1"}, loaded.Modpacks[0].Locked)
}

func TestSetupKeepsExistingState(t *testing.T) {
	keyring.MockInit()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "modcheck"), 0700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "modcheck", stateFile), []byte(`{"ActiveModpack":"kept"}`), 0644))

	require.NoError(t, Setup(dir))

	state, err := LoadAppState()
	require.NoError(t, err)
	assert.Equal(t, "kept", state.ActiveModpack)
}
