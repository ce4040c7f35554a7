package services

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mrnavastar/modcheck/util"
	"github.com/mrnavastar/modcheck/util/fileutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateModpack(t *testing.T) {
	setup(t, nil, nil)

	modpack, err := CreateModpack("skyblock", "1.20.1", "Fabric")
	require.NoError(t, err)
	assert.Equal(t, "fabric", modpack.Loader)
	assert.Equal(t, "0.14.22", modpack.LoaderVersion)
	assert.DirExists(t, modpack.Path)

	stored, err := GetModpack("SKYBLOCK")
	require.NoError(t, err)
	assert.Equal(t, modpack, stored)

	_, err = CreateModpack("skyblock", "1.20.1", "fabric")
	assert.ErrorIs(t, err, ErrModpackExists)

	_, err = CreateModpack("other", "1.20.1", "liteloader")
	assert.ErrorIs(t, err, ErrUnknownLoader)

	_, err = CreateModpack("other", "9.9.9", "forge")
	assert.ErrorIs(t, err, ErrUnknownMcVersion)

	forge, err := CreateModpack("forged", "1.19.2", "forge")
	require.NoError(t, err)
	assert.Empty(t, forge.LoaderVersion)
}

func TestActiveModpack(t *testing.T) {
	setup(t, nil, nil)

	_, err := GetActiveModpack()
	assert.ErrorIs(t, err, ErrNoActiveModpack)
	assert.ErrorIs(t, SetActiveModpack("nope"), ErrModpackNotFound)

	_, err = CreateModpack("pack", "1.20.1", "quilt")
	require.NoError(t, err)
	require.NoError(t, SetActiveModpack("pack"))

	active, err := GetActiveModpack()
	require.NoError(t, err)
	assert.Equal(t, "pack", active.Name)

	require.NoError(t, DeleteModpack("pack"))
	_, err = GetActiveModpack()
	assert.ErrorIs(t, err, ErrNoActiveModpack)
	assert.NoDirExists(t, active.Path)
	assert.ErrorIs(t, DeleteModpack("pack"), ErrModpackNotFound)
}

func TestSaveModpackKeepsTarget(t *testing.T) {
	setup(t, nil, nil)
	modpack, err := CreateModpack("pack", "1.20.1", "fabric")
	require.NoError(t, err)

	modpack.Loader = "forge"
	modpack.Version = "1.19.2"
	modpack.Locked = []string{"x"}
	require.NoError(t, SaveModpack(modpack))

	stored, err := GetModpack("pack")
	require.NoError(t, err)
	assert.Equal(t, "fabric", stored.Loader)
	assert.Equal(t, "1.20.1", stored.Version)
	assert.Equal(t, []string{"x"}, stored.Locked)

	assert.ErrorIs(t, SaveModpack(util.Modpack{Name: "ghost"}), ErrModpackNotFound)
}

func TestAddMod(t *testing.T) {
	setup(t, modrinthRoutes(), modrinthFiles(t))
	modpack, err := CreateModpack("pack", "1.20.1", "fabric")
	require.NoError(t, err)

	result, err := AddMod(&modpack, "sodium", util.ModData{}, false)
	require.NoError(t, err)
	assert.True(t, result.Compatible)
	require.Len(t, modpack.Mods, 1)
	assert.Equal(t, "0.5.3+mc1.20.1", modpack.Mods[0].Version)
	assert.FileExists(t, filepath.Join(modpack.Path, "sodium.jar"))

	_, err = AddMod(&modpack, "sodium", util.ModData{}, false)
	assert.ErrorIs(t, err, ErrModAlreadyAdded)

	result, err = AddMod(&modpack, "create", util.ModData{}, false)
	assert.ErrorIs(t, err, ErrIncompatible)
	assert.Equal(t, "Requires forge, modpack uses fabric", result.Reason)
	assert.Len(t, modpack.Mods, 1)

	// Forced installs keep going even when the jar has no metadata.
	_, err = AddMod(&modpack, "create", util.ModData{}, true)
	require.NoError(t, err)
	assert.Len(t, modpack.Mods, 2)

	_, err = AddMod(&modpack, "", util.ModData{Id: "x", Name: "No Url"}, true)
	assert.ErrorIs(t, err, ErrNoDownload)

	require.NoError(t, SaveModpack(modpack))
	stored, err := GetModpack("pack")
	require.NoError(t, err)
	assert.Len(t, stored.Mods, 2)
}

func TestResolveModFallsBackToSearch(t *testing.T) {
	setup(t, modrinthRoutes(), nil)

	modData, err := ResolveMod("Sodium Renderer", util.Modpack{Loader: "fabric", Version: "1.20.1"}.Target())
	require.NoError(t, err)
	assert.Equal(t, "sodium", modData.Slug)
}

func TestRemoveMods(t *testing.T) {
	setup(t, modrinthRoutes(), modrinthFiles(t))
	modpack, err := CreateModpack("pack", "1.20.1", "fabric")
	require.NoError(t, err)

	for _, slug := range []string{"sodium", "fabric-api"} {
		_, err := AddMod(&modpack, slug, util.ModData{}, false)
		require.NoError(t, err)
	}
	_, err = AddMod(&modpack, "create", util.ModData{}, true)
	require.NoError(t, err)
	modpack.Mods = append(modpack.Mods, util.ModData{Name: "Old Forge Mod", ProjectId: "old", Id: "o1", Loader: "forge"})

	require.NoError(t, LockMods(&modpack, []string{"create"}))
	require.NoError(t, DisableMods(&modpack, []string{"Fabric API"}))
	assert.ErrorIs(t, LockMods(&modpack, []string{"missing"}), ErrModNotInstalled)
	assert.Equal(t, []string{"LNytGWDc"}, modpack.Locked)
	assert.Equal(t, []string{"P7dR8mSH"}, modpack.Disabled)

	removed, err := RemoveIncompatible(&modpack)
	require.NoError(t, err)
	require.Len(t, removed, 1)
	assert.Equal(t, "Old Forge Mod", removed[0].Name)
	assert.Len(t, modpack.Mods, 3)

	require.NoError(t, UnlockMods(&modpack, []string{"create"}))
	removed, err = RemoveIncompatible(&modpack)
	require.NoError(t, err)
	require.Len(t, removed, 1)
	assert.Equal(t, "Create", removed[0].Name)
	assert.NoFileExists(t, filepath.Join(modpack.Path, "create.jar"))

	mod, err := RemoveMod(&modpack, "fabric-api")
	require.NoError(t, err)
	assert.Equal(t, "Fabric API", mod.Name)
	assert.Empty(t, modpack.Disabled, "removing a mod prunes its selection state")

	_, err = RemoveMod(&modpack, "fabric-api")
	assert.ErrorIs(t, err, ErrModNotInstalled)

	require.NoError(t, EnableMods(&modpack, []string{"sodium"}))
}

func TestConvertModpack(t *testing.T) {
	setup(t, nil, nil)
	modpack, err := CreateModpack("pack", "1.20.1", "forge")
	require.NoError(t, err)
	modpack.Mods = []util.ModData{
		{Name: "JEI", ProjectId: "1", Loader: "forge", GameVersion: "1.20.1"},
		{Name: "Fabric Thing", ProjectId: "2", Loader: "fabric", GameVersion: "1.20.1"},
	}
	require.NoError(t, SaveModpack(modpack))

	converted, incompatible, err := ConvertModpack("pack", "neoforge", "")
	require.NoError(t, err)
	assert.Equal(t, "neoforge", converted.Loader)
	assert.Equal(t, "1.20.1", converted.Version)
	require.Len(t, incompatible, 1)
	assert.Equal(t, "Fabric Thing", incompatible[0].Name)

	converted, incompatible, err = ConvertModpack("pack", "", "1.21")
	require.NoError(t, err)
	assert.Equal(t, "1.21", converted.Version)
	assert.Len(t, incompatible, 2)
	assert.Len(t, converted.Mods, 2)

	_, _, err = ConvertModpack("pack", "bukkit", "")
	assert.ErrorIs(t, err, ErrUnknownLoader)
	_, _, err = ConvertModpack("ghost", "", "")
	assert.ErrorIs(t, err, ErrModpackNotFound)
}

func TestCheckMods(t *testing.T) {
	setup(t, modrinthRoutes(), nil)
	modpack := util.Modpack{Loader: "fabric", Version: "1.20.1"}

	checks := CheckMods(modpack, []string{"sodium", "create"})
	require.Len(t, checks, 2)
	assert.NoError(t, checks[0].Err)
	assert.True(t, checks[0].Result.Compatible)
	assert.False(t, checks[1].Result.Compatible)
}

func TestUpdateModpack(t *testing.T) {
	routes := modrinthRoutes()
	files := modrinthFiles(t)
	setup(t, routes, files)

	modpack, err := CreateModpack("pack", "1.20.1", "fabric")
	require.NoError(t, err)
	modpack.LoaderVersion = "0.14.0"
	modpack.Mods = []util.ModData{
		{Platform: "modrinth", Slug: "sodium", Name: "Sodium", ProjectId: "AANobbMI", Id: "old", Loader: "fabric", GameVersion: "1.20.1", Filename: "sodium-old.jar"},
		{Platform: "modrinth", Slug: "fabric-api", Name: "Fabric API", ProjectId: "P7dR8mSH", Id: "old", Loader: "fabric", GameVersion: "1.20.1", Filename: "fabric-api-old.jar"},
	}
	modpack.Locked = []string{"P7dR8mSH"}
	modpack.Disabled = []string{"AANobbMI"}
	require.NoError(t, os.WriteFile(filepath.Join(modpack.Path, "sodium-old.jar"), []byte("old"), 0644))
	require.NoError(t, SaveModpack(modpack))

	updates, err := UpdateModpack("pack")
	require.NoError(t, err)
	require.Len(t, updates, 1)
	assert.Equal(t, "s1", updates[0].New.Id)

	stored, err := GetModpack("pack")
	require.NoError(t, err)
	assert.Equal(t, "0.14.22", stored.LoaderVersion)
	assert.NoFileExists(t, filepath.Join(modpack.Path, "sodium-old.jar"))
	assert.Equal(t, []string{"AANobbMI"}, stored.Disabled)
	assert.Equal(t, []string{"P7dR8mSH"}, stored.Locked)

	state, err := fileutils.LoadAppState()
	require.NoError(t, err)
	assert.Len(t, state.Modpacks[0].Mods, 2)
}

func TestUpdateModpackKeepsOldJarWhenDownloadFails(t *testing.T) {
	setup(t, modrinthRoutes(), nil)

	modpack, err := CreateModpack("pack", "1.20.1", "fabric")
	require.NoError(t, err)
	modpack.Mods = []util.ModData{
		{Platform: "modrinth", Slug: "sodium", Name: "Sodium", ProjectId: "AANobbMI", Id: "old", Loader: "fabric", GameVersion: "1.20.1", Filename: "sodium-old.jar"},
	}
	oldJar := filepath.Join(modpack.Path, "sodium-old.jar")
	require.NoError(t, os.WriteFile(oldJar, []byte("old"), 0644))
	require.NoError(t, SaveModpack(modpack))

	updates, err := UpdateModpack("pack")
	assert.Error(t, err)
	assert.Empty(t, updates)

	stored, err := GetModpack("pack")
	require.NoError(t, err)
	require.Len(t, stored.Mods, 1)
	assert.Equal(t, "sodium-old.jar", stored.Mods[0].Filename)
	assert.FileExists(t, oldJar)
	assert.NoFileExists(t, filepath.Join(modpack.Path, "sodium.jar"))
	assert.NoFileExists(t, filepath.Join(modpack.Path, "sodium.jar.part"))
}

func TestCreateModpackRejectsBadNames(t *testing.T) {
	setup(t, nil, nil)
	state, err := fileutils.LoadAppState()
	require.NoError(t, err)

	for _, name := range []string{"", " ", ".", "..", "../escaped", "../../escaped", "a/b", `a\b`} {
		_, err := CreateModpack(name, "1.20.1", "fabric")
		assert.ErrorIs(t, err, ErrInvalidName, name)
	}
	assert.NoDirExists(t, filepath.Join(state.WorkDir, "escaped"))
	assert.NoDirExists(t, filepath.Join(state.DotMinecraft, "escaped"))

	stored, err := fileutils.LoadAppState()
	require.NoError(t, err)
	assert.Empty(t, stored.Modpacks)
}
