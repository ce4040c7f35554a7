package compat

import "strings"

// Known mod loaders.
const (
	Forge    = "forge"
	Fabric   = "fabric"
	NeoForge = "neoforge"
	Quilt    = "quilt"

	// Unknown marks metadata that does not assert a loader or version.
	Unknown = "unknown"
)

var Loaders = []string{Forge, Fabric, NeoForge, Quilt}

var loaderAliases = map[string]string{
	"lexforge":       Forge,
	"minecraftforge": Forge,
	"neo-forge":      NeoForge,
	"neo_forge":      NeoForge,
	"fabric-loader":  Fabric,
	"quilt-loader":   Quilt,
}

// MatchKind is the outcome of comparing two loaders.
type MatchKind int

const (
	MatchNone MatchKind = iota
	MatchExact
	// MatchRelaxed means the loaders differ but are known to interoperate.
	MatchRelaxed
)

func (m MatchKind) String() string {
	switch m {
	case MatchExact:
		return "exact-match"
	case MatchRelaxed:
		return "relaxed-match"
	default:
		return "no-match"
	}
}

// NormalizeLoader lowercases a loader name and folds common aliases.
func NormalizeLoader(loader string) string {
	l := strings.ToLower(strings.TrimSpace(loader))
	if alias, ok := loaderAliases[l]; ok {
		return alias
	}
	return l
}

// IsKnownLoader reports whether loader is one of Loaders after normalization.
func IsKnownLoader(loader string) bool {
	l := NormalizeLoader(loader)
	for _, known := range Loaders {
		if l == known {
			return true
		}
	}
	return false
}

func isUnset(s string) bool {
	return s == "" || strings.EqualFold(s, Unknown)
}

// LoadersMatch compares a modpack loader with a mod loader. Missing or
// "unknown" information on either side never contradicts and counts as exact.
func LoadersMatch(packLoader, modLoader string) MatchKind {
	if isUnset(packLoader) || isUnset(modLoader) {
		return MatchExact
	}

	pack := NormalizeLoader(packLoader)
	mod := NormalizeLoader(modLoader)
	if pack == mod {
		return MatchExact
	}

	// Forge mods often load under NeoForge and the other way round.
	if (pack == Forge && mod == NeoForge) || (pack == NeoForge && mod == Forge) {
		return MatchRelaxed
	}
	return MatchNone
}
