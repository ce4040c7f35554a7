package compat

import "strings"

// VersionsMatch reports whether a mod built for modVersion can run on a modpack
// targeting packVersion.
//
// Matching is loose: a prefix in either direction or the pack
// version appearing anywhere inside the mod version is accepted, so "1.20"
// matches "1.20.1" and "1.20.1-fabric" matches "1.20.1". Pathological strings
// such as "11.20.10" against "1.20.1" also match.
func VersionsMatch(packVersion, modVersion string) bool {
	if packVersion == "" || isUnset(modVersion) {
		return true
	}

	return modVersion == packVersion ||
		strings.HasPrefix(packVersion, modVersion) ||
		strings.HasPrefix(modVersion, packVersion) ||
		strings.Contains(modVersion, packVersion)
}
