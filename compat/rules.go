package compat

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Conflict severities. A conflict without a severity is scored as an error.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// Conflict is a pair of mods that should not be installed together.
type Conflict struct {
	Mods     []string `yaml:"mods" json:"mods"`
	Severity string   `yaml:"severity,omitempty" json:"severity,omitempty"`
	Reason   string   `yaml:"reason,omitempty" json:"reason,omitempty"`
}

// CountsAgainstScore reports whether the conflict is penalised by Score.
func (c Conflict) CountsAgainstScore() bool {
	return c.Severity == "" || strings.EqualFold(c.Severity, SeverityError)
}

// CountConflicts splits conflicts into scored errors and unscored warnings.
func CountConflicts(conflicts []Conflict) (errors int, warnings int) {
	for _, c := range conflicts {
		if c.CountsAgainstScore() {
			errors++
		} else {
			warnings++
		}
	}
	return errors, warnings
}

// Categories flags the performance categories a mod falls into.
type Categories struct {
	Optimization      bool
	ResourceHeavy     bool
	GraphicsIntensive bool
}

// Rules is the table of known mod categories and conflicts.
type Rules struct {
	Optimization      []string   `yaml:"optimization"`
	ResourceHeavy     []string   `yaml:"resource_heavy"`
	GraphicsIntensive []string   `yaml:"graphics_intensive"`
	Conflicts         []Conflict `yaml:"conflicts"`
}

//go:embed rules.yaml
var defaultRules []byte

// DefaultRules returns the built-in rule table.
func DefaultRules() Rules {
	rules, err := LoadRules(defaultRules)
	if err != nil {
		panic(fmt.Sprintf("compat: embedded rules are invalid: %v", err))
	}
	return rules
}

// LoadRules parses a YAML rule table. Slugs are lowercased.
func LoadRules(data []byte) (Rules, error) {
	var rules Rules
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return Rules{}, fmt.Errorf("parse rules: %w", err)
	}

	lower(rules.Optimization)
	lower(rules.ResourceHeavy)
	lower(rules.GraphicsIntensive)
	for i, c := range rules.Conflicts {
		if len(c.Mods) != 2 {
			return Rules{}, fmt.Errorf("parse rules: conflict %d must name exactly two mods", i)
		}
		lower(c.Mods)
		switch strings.ToLower(c.Severity) {
		case "", SeverityError, SeverityWarning:
			rules.Conflicts[i].Severity = strings.ToLower(c.Severity)
		default:
			return Rules{}, fmt.Errorf("parse rules: conflict %d has unknown severity %q", i, c.Severity)
		}
	}
	return rules, nil
}

// Categorize returns the categories a mod belongs to. Modrinth's
// "optimization" category also marks a mod as an optimization mod.
func (r Rules) Categorize(slug string, categories []string) Categories {
	s := strings.ToLower(slug)
	c := Categories{
		Optimization:      contains(r.Optimization, s),
		ResourceHeavy:     contains(r.ResourceHeavy, s),
		GraphicsIntensive: contains(r.GraphicsIntensive, s),
	}
	for _, category := range categories {
		if strings.EqualFold(category, "optimization") {
			c.Optimization = true
		}
	}
	return c
}

// KnownConflicts returns the rule conflicts where both mods are among slugs.
func (r Rules) KnownConflicts(slugs []string) []Conflict {
	present := make(map[string]bool, len(slugs))
	for _, s := range slugs {
		present[strings.ToLower(s)] = true
	}

	var found []Conflict
	for _, c := range r.Conflicts {
		if present[c.Mods[0]] && present[c.Mods[1]] {
			found = append(found, c)
		}
	}
	return found
}

func lower(list []string) {
	for i, s := range list {
		list[i] = strings.ToLower(strings.TrimSpace(s))
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
