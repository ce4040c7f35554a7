package util

import (
	"strings"

	"github.com/mrnavastar/modcheck/compat"
)

type Dependency struct {
	ProjectId string
	Name      string
	Required  bool
}

type ModData struct {
	Platform     string
	Slug         string
	Name         string
	ProjectId    string
	Id           string
	Version      string
	Url          string
	Filename     string
	Loader       string
	GameVersion  string
	GameVersions []string
	Categories   []string
	Dependencies []Dependency
	// Projects this mod declares it cannot be installed alongside.
	Incompatible []Dependency
}

type Modpack struct {
	Name          string
	Path          string
	Version       string
	Loader        string
	LoaderVersion string
	Mods          []ModData
	Locked        []string
	Disabled      []string
}

// Key returns the identifier a mod is tracked by inside a modpack.
func (m ModData) Key() string {
	if m.ProjectId != "" {
		return m.ProjectId
	}
	if m.Slug != "" {
		return m.Slug
	}
	return m.Filename
}

func (m ModData) Candidate() compat.CandidateMod {
	return compat.CandidateMod{
		Loader:       m.Loader,
		GameVersion:  m.GameVersion,
		GameVersions: m.GameVersions,
	}
}

func (p Modpack) Target() compat.ModpackTarget {
	return compat.ModpackTarget{Loader: p.Loader, MinecraftVersion: p.Version}
}

// FindMod returns the index of the mod whose key, name or slug matches arg.
func (p Modpack) FindMod(arg string) int {
	for i, mod := range p.Mods {
		if mod.Key() == arg || mod.Id == arg || strings.EqualFold(mod.Name, arg) || strings.EqualFold(mod.Slug, arg) {
			return i
		}
	}
	return -1
}
