package services

import (
	"sort"

	"github.com/mrnavastar/modcheck/util"
)

type ActionKind int

const (
	Select ActionKind = iota
	Deselect
	ClearSelection
	Disable
	Enable
	Lock
	Unlock
	// Prune keeps only the ids listed in the action, dropping everything else
	// from all three sets.
	Prune
)

type Action struct {
	Kind ActionKind
	Ids  []string
}

// Selection is the selected, disabled and locked mod ids of a modpack. It is
// a value: Apply returns a new Selection and never touches the receiver.
type Selection struct {
	Selected []string
	Disabled []string
	Locked   []string
}

func SelectionOf(modpack util.Modpack) Selection {
	return Selection{
		Disabled: with(nil, modpack.Disabled),
		Locked:   with(nil, modpack.Locked),
	}
}

func (s Selection) Apply(a Action) Selection {
	next := Selection{
		Selected: with(nil, s.Selected),
		Disabled: with(nil, s.Disabled),
		Locked:   with(nil, s.Locked),
	}

	switch a.Kind {
	case Select:
		next.Selected = with(next.Selected, a.Ids)
	case Deselect:
		next.Selected = without(next.Selected, a.Ids)
	case ClearSelection:
		next.Selected = nil
	case Disable:
		next.Disabled = with(next.Disabled, a.Ids)
	case Enable:
		next.Disabled = without(next.Disabled, a.Ids)
	case Lock:
		next.Locked = with(next.Locked, a.Ids)
	case Unlock:
		next.Locked = without(next.Locked, a.Ids)
	case Prune:
		next.Selected = only(next.Selected, a.Ids)
		next.Disabled = only(next.Disabled, a.Ids)
		next.Locked = only(next.Locked, a.Ids)
	}
	return next
}

// WriteTo stores the persisted parts of the selection on modpack.
func (s Selection) WriteTo(modpack *util.Modpack) {
	modpack.Disabled = s.Disabled
	modpack.Locked = s.Locked
}

func (s Selection) IsSelected(id string) bool { return util.Contains(s.Selected, id) }
func (s Selection) IsDisabled(id string) bool { return util.Contains(s.Disabled, id) }
func (s Selection) IsLocked(id string) bool   { return util.Contains(s.Locked, id) }

// with returns a new sorted set holding set and ids.
func with(set []string, ids []string) []string {
	seen := make(map[string]bool, len(set)+len(ids))
	var out []string
	for _, list := range [][]string{set, ids} {
		for _, id := range list {
			if id != "" && !seen[id] {
				seen[id] = true
				out = append(out, id)
			}
		}
	}
	sort.Strings(out)
	return out
}

func without(set []string, ids []string) []string {
	var out []string
	for _, id := range set {
		if !util.Contains(ids, id) {
			out = append(out, id)
		}
	}
	return out
}

func only(set []string, ids []string) []string {
	var out []string
	for _, id := range set {
		if util.Contains(ids, id) {
			out = append(out, id)
		}
	}
	return out
}
