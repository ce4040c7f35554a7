package util

import (
	"github.com/jedib0t/go-pretty/table"
	"github.com/jedib0t/go-pretty/text"
	"github.com/mrnavastar/modcheck/compat"
)

var tierColors = map[compat.Tier]text.Colors{
	compat.TierGood: {text.FgGreen, text.Bold},
	compat.TierOk:   {text.FgCyan},
	compat.TierWarn: {text.FgYellow},
	compat.TierBad:  {text.FgRed, text.Bold},
}

// ColorTier paints s in the colour of tier. Unknown tiers are left plain.
func ColorTier(tier compat.Tier, s string) string {
	colors, ok := tierColors[tier]
	if !ok {
		return s
	}
	return colors.Sprint(s)
}

// ColorResult paints a compatibility verdict: red for incompatible, yellow
// for a warning and green otherwise.
func ColorResult(result compat.CompatibilityResult, s string) string {
	switch {
	case !result.Compatible:
		return ColorTier(compat.TierBad, s)
	case result.Warning:
		return ColorTier(compat.TierWarn, s)
	}
	return ColorTier(compat.TierGood, s)
}

func NewTable(header ...interface{}) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row(header))
	return t
}
