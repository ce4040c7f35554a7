package services

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mrnavastar/modcheck/compat"
	"github.com/mrnavastar/modcheck/util"
)

type MissingDependency struct {
	// Name of the installed mod that requires the dependency.
	RequiredBy string
	Dependency util.Dependency
}

type Analysis struct {
	Summary             compat.AnalysisSummary
	Health              compat.HealthScore
	MissingDependencies []MissingDependency
	// Conflicts includes warnings; only errors and unrated conflicts are scored.
	Conflicts    []compat.Conflict
	Incompatible []ModCheck
	Warnings     []ModCheck
	Disabled     int
}

func slugOf(mod util.ModData) string {
	if mod.Slug != "" {
		return strings.ToLower(mod.Slug)
	}
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(mod.Name), " ", "-"))
}

func pairKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + "\x00" + b
}

// Analyze inspects the enabled mods of modpack for missing dependencies,
// conflicts, incompatible mods and performance categories, and scores the
// result.
func Analyze(modpack util.Modpack, rules compat.Rules) Analysis {
	var analysis Analysis
	selection := SelectionOf(modpack)

	var enabled []util.ModData
	byProject := make(map[string]util.ModData)
	for _, mod := range modpack.Mods {
		if selection.IsDisabled(mod.Key()) {
			analysis.Disabled++
			continue
		}
		enabled = append(enabled, mod)
		if mod.ProjectId != "" {
			byProject[mod.ProjectId] = mod
		}
		byProject[slugOf(mod)] = mod
	}

	seenMissing := make(map[string]bool)
	seenPairs := make(map[string]bool)
	var slugs []string
	for _, mod := range enabled {
		slugs = append(slugs, slugOf(mod))

		for _, dep := range mod.Dependencies {
			if !dep.Required || seenMissing[dep.ProjectId] {
				continue
			}
			if _, ok := byProject[dep.ProjectId]; !ok {
				seenMissing[dep.ProjectId] = true
				analysis.MissingDependencies = append(analysis.MissingDependencies, MissingDependency{RequiredBy: mod.Name, Dependency: dep})
			}
		}

		for _, dep := range mod.Incompatible {
			other, ok := byProject[dep.ProjectId]
			if !ok || other.Key() == mod.Key() || seenPairs[pairKey(slugOf(mod), slugOf(other))] {
				continue
			}
			seenPairs[pairKey(slugOf(mod), slugOf(other))] = true
			analysis.Conflicts = append(analysis.Conflicts, compat.Conflict{
				Mods:     []string{slugOf(mod), slugOf(other)},
				Severity: compat.SeverityError,
				Reason:   fmt.Sprintf("%s declares it is incompatible with %s", mod.Name, other.Name),
			})
		}

		result := compat.Classify(modpack.Target(), mod.Candidate())
		switch {
		case !result.Compatible:
			analysis.Incompatible = append(analysis.Incompatible, ModCheck{Arg: mod.Key(), Mod: mod, Result: result})
		case result.Warning:
			analysis.Warnings = append(analysis.Warnings, ModCheck{Arg: mod.Key(), Mod: mod, Result: result})
		}

		categories := rules.Categorize(slugOf(mod), mod.Categories)
		if categories.Optimization {
			analysis.Summary.OptimizationModCount++
		}
		if categories.ResourceHeavy {
			analysis.Summary.ResourceHeavyCount++
		}
		if categories.GraphicsIntensive {
			analysis.Summary.GraphicsIntensiveCount++
		}
	}

	for _, conflict := range rules.KnownConflicts(slugs) {
		if key := pairKey(conflict.Mods[0], conflict.Mods[1]); !seenPairs[key] {
			seenPairs[key] = true
			analysis.Conflicts = append(analysis.Conflicts, conflict)
		}
	}
	sort.SliceStable(analysis.Conflicts, func(i, j int) bool {
		return analysis.Conflicts[i].CountsAgainstScore() && !analysis.Conflicts[j].CountsAgainstScore()
	})

	analysis.Summary.MissingDependencyCount = len(analysis.MissingDependencies)
	analysis.Summary.ConflictCount, _ = compat.CountConflicts(analysis.Conflicts)
	analysis.Health = compat.Score(analysis.Summary)
	return analysis
}
