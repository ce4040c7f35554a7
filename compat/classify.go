package compat

import (
	"fmt"
	"sort"
	"strings"
)

// ModpackTarget is the loader and Minecraft version a modpack is built for.
type ModpackTarget struct {
	Loader           string
	MinecraftVersion string
}

// CandidateMod is the loader and game version metadata a mod declares.
type CandidateMod struct {
	Loader       string
	GameVersion  string
	GameVersions []string
}

// BestVersion returns the version used for matching: the first entry of
// GameVersions when present, otherwise GameVersion.
func (m CandidateMod) BestVersion() string {
	if len(m.GameVersions) > 0 {
		return m.GameVersions[0]
	}
	return m.GameVersion
}

// CompatibilityResult is the verdict for a single mod against a modpack.
// Reason is set whenever Compatible is false or Warning is true.
type CompatibilityResult struct {
	Compatible bool
	Warning    bool
	Reason     string
}

// Classify decides whether mod can be used in a modpack targeting pack.
func Classify(pack ModpackTarget, mod CandidateMod) CompatibilityResult {
	packLoader := NormalizeLoader(pack.Loader)
	modLoader := NormalizeLoader(mod.Loader)

	warning := false
	if packLoader != "" {
		switch LoadersMatch(packLoader, modLoader) {
		case MatchNone:
			return CompatibilityResult{
				Compatible: false,
				Reason:     fmt.Sprintf("Requires %s, modpack uses %s", modLoader, packLoader),
			}
		case MatchRelaxed:
			warning = true
		}
	}

	modVersion := mod.BestVersion()
	if !VersionsMatch(pack.MinecraftVersion, modVersion) {
		return CompatibilityResult{
			Compatible: false,
			Reason:     fmt.Sprintf("For MC %s, modpack is %s", modVersion, pack.MinecraftVersion),
		}
	}

	result := CompatibilityResult{Compatible: true, Warning: warning}
	if warning {
		result.Reason = fmt.Sprintf("%s mod on %s pack — may require compatibility layer", modLoader, packLoader)
	}
	return result
}

// LibraryEntry is a mod listed in a library view.
type LibraryEntry struct {
	Id   string
	Name string
	Mod  CandidateMod
}

// SortByCompatibility returns a copy of entries with compatible mods first and
// incompatible mods last, each group ordered by name ignoring case.
func SortByCompatibility(pack ModpackTarget, entries []LibraryEntry) []LibraryEntry {
	sorted := make([]LibraryEntry, len(entries))
	copy(sorted, entries)

	compatible := make(map[string]bool, len(sorted))
	for _, e := range sorted {
		compatible[e.Id] = Classify(pack, e.Mod).Compatible
	}

	sort.SliceStable(sorted, func(i, j int) bool {
		ci, cj := compatible[sorted[i].Id], compatible[sorted[j].Id]
		if ci != cj {
			return ci
		}
		return strings.ToLower(sorted[i].Name) < strings.ToLower(sorted[j].Name)
	})
	return sorted
}

// CanAdd reports whether a mod with the given verdict may be added. Forcing
// bypasses the check.
func CanAdd(result CompatibilityResult, force bool) bool {
	return force || result.Compatible
}

// IncompatibleRemovable returns the ids of incompatible entries that are not
// locked, in input order.
func IncompatibleRemovable(pack ModpackTarget, entries []LibraryEntry, locked map[string]bool) []string {
	var ids []string
	for _, e := range entries {
		if locked[e.Id] {
			continue
		}
		if !Classify(pack, e.Mod).Compatible {
			ids = append(ids, e.Id)
		}
	}
	return ids
}
