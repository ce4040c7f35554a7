package services

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mrnavastar/modcheck/compat"
	"github.com/mrnavastar/modcheck/util"
	"github.com/mrnavastar/modcheck/util/fileutils"
	"github.com/pterm/pterm"
)

// ScanDir classifies every jar in dir against modpack using the metadata
// bundled in each jar.
func ScanDir(modpack util.Modpack, dir string) ([]ModCheck, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var checks []ModCheck
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(strings.ToLower(entry.Name()), ".jar") {
			continue
		}

		check := ModCheck{Arg: entry.Name(), Mod: util.ModData{Filename: entry.Name(), Name: entry.Name()}}
		modJson, err := fileutils.GetModJsonFromJar(filepath.Join(dir, entry.Name()))
		if err != nil {
			check.Err = err
			checks = append(checks, check)
			continue
		}

		if modJson.Name != "" {
			check.Mod.Name = modJson.Name
		}
		check.Mod.Slug = modJson.Id
		check.Mod.Version = modJson.Version
		check.Mod.Loader = modJson.Loader
		check.Mod.GameVersion = modJson.GameVersion
		check.Result = compat.Classify(modpack.Target(), check.Mod.Candidate())
		checks = append(checks, check)
	}
	return checks, nil
}

// ImportMrpack creates a modpack from a Modrinth .mrpack file and downloads
// its mods. An empty name uses the pack's own name.
func ImportMrpack(path string, name string) (util.Modpack, error) {
	index, err := fileutils.ReadMrpack(path)
	if err != nil {
		return util.Modpack{}, err
	}
	if name == "" {
		name = index.Name
	}
	if err := checkModpackName(name); err != nil {
		return util.Modpack{}, err
	}
	if index.Loader == "" {
		return util.Modpack{}, fmt.Errorf("%w: pack declares no loader", ErrUnknownLoader)
	}

	state, err := fileutils.LoadAppState()
	if err != nil {
		return util.Modpack{}, err
	}
	if _, ok := findModpack(state, name); ok {
		return util.Modpack{}, ErrModpackExists
	}

	modpack := util.Modpack{
		Name:          name,
		Version:       index.MinecraftVersion,
		Loader:        index.Loader,
		LoaderVersion: index.LoaderVersion,
		Path:          filepath.Join(state.WorkDir, "modpacks", name),
	}
	if err := os.MkdirAll(modpack.Path, 0700); err != nil {
		return util.Modpack{}, err
	}

	for _, file := range index.Files {
		if !strings.HasPrefix(file.Path, "mods/") || file.Client == "unsupported" {
			continue
		}

		filename := filepath.Base(file.Path)
		modData := util.ModData{
			Platform: "modrinth",
			Id:       file.Sha1,
			Name:     strings.TrimSuffix(filename, ".jar"),
			Url:      file.Url,
			Filename: filename,
		}
		if modData.Id == "" {
			modData.Id = filename
		}

		// The pack author already picked these files, so keep them even when
		// their metadata disagrees with the target.
		_, err := AddMod(&modpack, "", modData, true)
		if errors.Is(err, ErrModAlreadyAdded) {
			pterm.Warning.Println("skipped " + file.Path + ": " + filename + " is already imported")
			continue
		}
		if err != nil {
			return util.Modpack{}, fmt.Errorf("import %s: %w", file.Path, err)
		}
		pterm.Debug.Println("imported " + filename)
	}

	state.Modpacks = append(state.Modpacks, modpack)
	return modpack, fileutils.SaveAppState(state)
}
