package services

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mrnavastar/modcheck/api"
	"github.com/mrnavastar/modcheck/compat"
	"github.com/mrnavastar/modcheck/util"
	"github.com/mrnavastar/modcheck/util/fileutils"
	"github.com/pterm/pterm"
)

var (
	ErrModpackNotFound  = errors.New("failed to find modpack")
	ErrModpackExists    = errors.New("modpack with that name already exists")
	ErrNoActiveModpack  = errors.New("no active modpack, select one with mod <name>")
	ErrModAlreadyAdded  = errors.New("mod already added")
	ErrModNotInstalled  = errors.New("mod is not installed")
	ErrIncompatible     = errors.New("mod is incompatible with modpack")
	ErrUnknownLoader    = errors.New("unknown mod loader")
	ErrUnknownMcVersion = errors.New("unknown minecraft version")
	ErrNoDownload       = errors.New("mod has no download url")
	ErrInvalidName      = errors.New("invalid modpack name")
)

// checkModpackName rejects names that would not map to a single directory
// under modpacks/.
func checkModpackName(name string) error {
	if strings.TrimSpace(name) == "" || name == "." || name == ".." ||
		filepath.Base(name) != name || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

func findModpack(state fileutils.State, name string) (int, bool) {
	for i, modpack := range state.Modpacks {
		if strings.EqualFold(modpack.Name, name) {
			return i, true
		}
	}
	return -1, false
}

func CreateModpack(name string, version string, loader string) (util.Modpack, error) {
	if err := checkModpackName(name); err != nil {
		return util.Modpack{}, err
	}

	state, err := fileutils.LoadAppState()
	if err != nil {
		return util.Modpack{}, err
	}
	if _, ok := findModpack(state, name); ok {
		return util.Modpack{}, ErrModpackExists
	}

	loader = compat.NormalizeLoader(loader)
	if !compat.IsKnownLoader(loader) {
		return util.Modpack{}, fmt.Errorf("%w: %q", ErrUnknownLoader, loader)
	}

	if ok, err := api.IsMcVersion(version); err != nil {
		pterm.Debug.Println("could not verify minecraft version:", err)
	} else if !ok {
		return util.Modpack{}, fmt.Errorf("%w: %s", ErrUnknownMcVersion, version)
	}

	modpack := util.Modpack{
		Name:    name,
		Version: version,
		Loader:  loader,
		Path:    filepath.Join(state.WorkDir, "modpacks", name),
	}

	loaderVersion, err := api.LatestLoaderVersion(loader)
	switch {
	case err == nil:
		modpack.LoaderVersion = loaderVersion
	case !errors.Is(err, api.ErrUnsupportedLoader):
		pterm.Warning.Println("could not resolve " + loader + " loader version: " + err.Error())
	}

	if err := os.MkdirAll(modpack.Path, 0700); err != nil {
		return util.Modpack{}, err
	}

	state.Modpacks = append(state.Modpacks, modpack)
	return modpack, fileutils.SaveAppState(state)
}

func DeleteModpack(name string) error {
	state, err := fileutils.LoadAppState()
	if err != nil {
		return err
	}

	i, ok := findModpack(state, name)
	if !ok {
		return ErrModpackNotFound
	}
	if err := os.RemoveAll(state.Modpacks[i].Path); err != nil {
		return err
	}
	if strings.EqualFold(state.ActiveModpack, name) {
		state.ActiveModpack = ""
	}
	state.Modpacks = append(state.Modpacks[:i], state.Modpacks[i+1:]...)
	return fileutils.SaveAppState(state)
}

func GetModpack(name string) (util.Modpack, error) {
	state, err := fileutils.LoadAppState()
	if err != nil {
		return util.Modpack{}, err
	}

	if i, ok := findModpack(state, name); ok {
		return state.Modpacks[i], nil
	}
	return util.Modpack{}, ErrModpackNotFound
}

func GetActiveModpack() (util.Modpack, error) {
	state, err := fileutils.LoadAppState()
	if err != nil {
		return util.Modpack{}, err
	}
	if state.ActiveModpack == "" {
		return util.Modpack{}, ErrNoActiveModpack
	}
	return GetModpack(state.ActiveModpack)
}

// SaveModpack persists modpack. The loader and version of a stored modpack
// are kept; use ConvertModpack to change them.
func SaveModpack(modpack util.Modpack) error {
	state, err := fileutils.LoadAppState()
	if err != nil {
		return err
	}

	i, ok := findModpack(state, modpack.Name)
	if !ok {
		return ErrModpackNotFound
	}
	modpack.Loader = state.Modpacks[i].Loader
	modpack.Version = state.Modpacks[i].Version
	state.Modpacks[i] = modpack
	return fileutils.SaveAppState(state)
}

func SetActiveModpack(name string) error {
	state, err := fileutils.LoadAppState()
	if err != nil {
		return err
	}
	if name != "" {
		if _, ok := findModpack(state, name); !ok {
			return ErrModpackNotFound
		}
	}
	state.ActiveModpack = name
	return fileutils.SaveAppState(state)
}

// ConvertModpack moves a modpack to another loader and/or Minecraft version.
// Installed mods are kept; the ones the new target rejects are returned.
func ConvertModpack(name string, loader string, version string) (util.Modpack, []util.ModData, error) {
	state, err := fileutils.LoadAppState()
	if err != nil {
		return util.Modpack{}, nil, err
	}
	i, ok := findModpack(state, name)
	if !ok {
		return util.Modpack{}, nil, ErrModpackNotFound
	}

	modpack := state.Modpacks[i]
	if loader != "" {
		loader = compat.NormalizeLoader(loader)
		if !compat.IsKnownLoader(loader) {
			return util.Modpack{}, nil, fmt.Errorf("%w: %q", ErrUnknownLoader, loader)
		}
		if loader != modpack.Loader {
			modpack.Loader = loader
			modpack.LoaderVersion, _ = api.LatestLoaderVersion(loader)
		}
	}
	if version != "" {
		modpack.Version = version
	}

	var incompatible []util.ModData
	for _, mod := range modpack.Mods {
		if !compat.Classify(modpack.Target(), mod.Candidate()).Compatible {
			incompatible = append(incompatible, mod)
		}
	}

	state.Modpacks[i] = modpack
	return modpack, incompatible, fileutils.SaveAppState(state)
}

// ResolveMod looks a mod up for target. "c=<slug>" and numeric ids go to
// CurseForge, everything else to Modrinth with a search as fallback.
func ResolveMod(arg string, target compat.ModpackTarget) (util.ModData, error) {
	slug := strings.TrimPrefix(arg, "c=")
	if _, err := strconv.Atoi(slug); err == nil || strings.HasPrefix(arg, "c=") {
		return api.GetCurseModData(slug, target)
	}

	modData, err := api.GetModrinthModData(slug, target)
	if !errors.Is(err, api.ErrFailedToGetMod) {
		return modData, err
	}

	found, err := api.SearchModrinth(arg, target.Loader)
	if err != nil {
		return util.ModData{}, err
	}
	pterm.Debug.Println("resolved " + arg + " to " + found)
	return api.GetModrinthModData(found, target)
}

// AddMod installs a mod into modpack. Incompatible mods are refused unless
// force is set. Must call SaveModpack after using, which allows batching
// several installs into one state write.
func AddMod(modpack *util.Modpack, arg string, modData util.ModData, force bool) (compat.CompatibilityResult, error) {
	if modData.Id == "" {
		m, err := ResolveMod(arg, modpack.Target())
		if err != nil {
			return compat.CompatibilityResult{}, err
		}
		modData = m
	}

	for _, mod := range modpack.Mods {
		if mod.Key() == modData.Key() || strings.EqualFold(mod.Name, modData.Name) {
			return compat.CompatibilityResult{}, fmt.Errorf("%w: %s", ErrModAlreadyAdded, modData.Name)
		}
	}

	result := compat.Classify(modpack.Target(), modData.Candidate())
	if !compat.CanAdd(result, force) {
		return result, fmt.Errorf("%w: %s", ErrIncompatible, result.Reason)
	}
	if modData.Url == "" {
		return result, fmt.Errorf("%w: %s", ErrNoDownload, modData.Name)
	}

	file := filepath.Join(modpack.Path, modData.Filename)
	if err := api.DownloadFile(modData.Url, file); err != nil {
		return result, err
	}

	modJson, err := fileutils.GetModJsonFromJar(file)
	if err != nil {
		pterm.Debug.Println("no metadata in " + modData.Filename + ": " + err.Error())
	} else {
		if modJson.Version != "" {
			modData.Version = modJson.Version
		}
		if modData.Loader == "" {
			modData.Loader = modJson.Loader
		}
		if modData.GameVersion == "" && len(modData.GameVersions) == 0 {
			modData.GameVersion = modJson.GameVersion
		}
		if modData.Name == "" {
			modData.Name = modJson.Name
		}
	}

	modpack.Mods = append(modpack.Mods, modData)
	return result, nil
}

// RemoveMod uninstalls the mod matching arg. Must call SaveModpack after using.
func RemoveMod(modpack *util.Modpack, arg string) (util.ModData, error) {
	i := modpack.FindMod(arg)
	if i < 0 {
		return util.ModData{}, fmt.Errorf("%w: %s", ErrModNotInstalled, arg)
	}

	mod := modpack.Mods[i]
	if mod.Filename != "" {
		if err := os.Remove(filepath.Join(modpack.Path, mod.Filename)); err != nil && !os.IsNotExist(err) {
			return util.ModData{}, err
		}
	}
	modpack.Mods = append(modpack.Mods[:i:i], modpack.Mods[i+1:]...)

	SelectionOf(*modpack).Apply(Action{Kind: Prune, Ids: keysOfMods(modpack.Mods)}).WriteTo(modpack)
	return mod, nil
}

// RemoveIncompatible uninstalls every mod the modpack target rejects, except
// locked ones. Must call SaveModpack after using.
func RemoveIncompatible(modpack *util.Modpack) ([]util.ModData, error) {
	entries := make([]compat.LibraryEntry, 0, len(modpack.Mods))
	for _, mod := range modpack.Mods {
		entries = append(entries, compat.LibraryEntry{Id: mod.Key(), Name: mod.Name, Mod: mod.Candidate()})
	}

	selection := SelectionOf(*modpack)
	locked := make(map[string]bool, len(selection.Locked))
	for _, id := range selection.Locked {
		locked[id] = true
	}
	selection = selection.Apply(Action{Kind: Select, Ids: compat.IncompatibleRemovable(modpack.Target(), entries, locked)})

	var removed []util.ModData
	for _, id := range selection.Selected {
		mod, err := RemoveMod(modpack, id)
		if err != nil {
			return removed, err
		}
		removed = append(removed, mod)
	}
	return removed, nil
}

func keysOf(modpack util.Modpack, args []string) ([]string, error) {
	var ids []string
	for _, arg := range args {
		i := modpack.FindMod(arg)
		if i < 0 {
			return nil, fmt.Errorf("%w: %s", ErrModNotInstalled, arg)
		}
		ids = append(ids, modpack.Mods[i].Key())
	}
	return ids, nil
}

func applyToMods(modpack *util.Modpack, kind ActionKind, args []string) error {
	ids, err := keysOf(*modpack, args)
	if err != nil {
		return err
	}
	SelectionOf(*modpack).Apply(Action{Kind: kind, Ids: ids}).WriteTo(modpack)
	return nil
}

// LockMods protects mods from bulk removal and updates.
func LockMods(modpack *util.Modpack, args []string) error {
	return applyToMods(modpack, Lock, args)
}

func UnlockMods(modpack *util.Modpack, args []string) error {
	return applyToMods(modpack, Unlock, args)
}

// DisableMods keeps mods installed but leaves them out of analysis.
func DisableMods(modpack *util.Modpack, args []string) error {
	return applyToMods(modpack, Disable, args)
}

func EnableMods(modpack *util.Modpack, args []string) error {
	return applyToMods(modpack, Enable, args)
}

type ModCheck struct {
	Arg    string
	Mod    util.ModData
	Result compat.CompatibilityResult
	Err    error
}

// CheckMods resolves mods and classifies them against modpack without
// installing anything.
func CheckMods(modpack util.Modpack, args []string) []ModCheck {
	checks := make([]ModCheck, 0, len(args))
	for _, arg := range args {
		check := ModCheck{Arg: arg}
		check.Mod, check.Err = ResolveMod(arg, modpack.Target())
		if check.Err == nil {
			check.Result = compat.Classify(modpack.Target(), check.Mod.Candidate())
		}
		checks = append(checks, check)
	}
	return checks
}

type ModUpdate struct {
	Old util.ModData
	New util.ModData
}

// UpdateModpack moves the loader to its latest stable release and replaces
// mods that have a newer compatible file. Locked mods are left alone.
func UpdateModpack(name string) ([]ModUpdate, error) {
	modpack, err := GetModpack(name)
	if err != nil {
		return nil, err
	}

	loaderVersion, err := api.LatestLoaderVersion(modpack.Loader)
	switch {
	case err == nil:
		if api.NewerVersion(modpack.LoaderVersion, loaderVersion) {
			pterm.Info.Println("Updating " + modpack.Loader + " loader to " + loaderVersion)
			modpack.LoaderVersion = loaderVersion
		}
	case !errors.Is(err, api.ErrUnsupportedLoader):
		return nil, err
	}

	selection := SelectionOf(modpack)
	var updates []ModUpdate
	for _, mod := range append([]util.ModData(nil), modpack.Mods...) {
		if selection.IsLocked(mod.Key()) || mod.Slug == "" {
			continue
		}

		arg := mod.Slug
		if mod.Platform == "curse" {
			arg = "c=" + mod.Slug
		}
		latest, err := ResolveMod(arg, modpack.Target())
		if err != nil {
			pterm.Warning.Println("could not check " + mod.Name + ": " + err.Error())
			continue
		}
		if latest.Id == mod.Id || !compat.Classify(modpack.Target(), latest.Candidate()).Compatible {
			continue
		}

		if err := replaceMod(&modpack, mod, latest); err != nil {
			if saveErr := SaveModpack(modpack); saveErr != nil {
				return updates, saveErr
			}
			return updates, fmt.Errorf("update %s: %w", mod.Name, err)
		}
		updates = append(updates, ModUpdate{Old: mod, New: latest})
	}
	return updates, SaveModpack(modpack)
}

// replaceMod swaps old for latest. The new jar is downloaded before the old
// one is deleted, and modpack is left unchanged when the download fails.
func replaceMod(modpack *util.Modpack, old util.ModData, latest util.ModData) error {
	next := *modpack
	next.Mods = nil
	for _, mod := range modpack.Mods {
		if mod.Key() != old.Key() {
			next.Mods = append(next.Mods, mod)
		}
	}
	if _, err := AddMod(&next, "", latest, false); err != nil {
		return err
	}

	if old.Filename != "" && old.Filename != latest.Filename {
		if err := os.Remove(filepath.Join(next.Path, old.Filename)); err != nil && !os.IsNotExist(err) {
			pterm.Warning.Println("could not delete " + old.Filename + ": " + err.Error())
		}
	}

	// A new key carries the old mod's disabled state over.
	if old.Key() != latest.Key() {
		before := SelectionOf(*modpack)
		selection := before.Apply(Action{Kind: Prune, Ids: keysOfMods(next.Mods)})
		if before.IsDisabled(old.Key()) {
			selection = selection.Apply(Action{Kind: Disable, Ids: []string{latest.Key()}})
		}
		selection.WriteTo(&next)
	}
	*modpack = next
	return nil
}

func keysOfMods(mods []util.ModData) []string {
	keys := make([]string, 0, len(mods))
	for _, mod := range mods {
		keys = append(keys, mod.Key())
	}
	return keys
}
