// Package params discovers the numeric input parameters a parsed spell
// collection depends on and shapes them for display: grouped, ordered, and
// carrying widget hints (stepper vs. slider, bounds, step, default).
package params

import (
	"github.com/cory-johannsen/spellbench/internal/spell/ast"
)

// Descriptor describes one discovered parameter.
//
// Invariant: ID is unique across a collection's discovered set; Min <= Default <= Max.
type Descriptor struct {
	ID      string        `json:"id"`
	Label   string        `json:"label"`
	Group   string        `json:"group"`
	Kind    ast.ParamKind `json:"kind"`
	Min     int           `json:"min"`
	Max     int           `json:"max"`
	Step    int           `json:"step"`
	Default int           `json:"default"`
}

// Group is a display cluster of parameters.
type Group struct {
	Name   string       `json:"name"`
	Params []Descriptor `json:"params"`
}

// builtins are well-known parameter ids with sensible tabletop bounds. A
// `param` declaration in the source overrides them.
var builtins = map[string]Descriptor{
	"slot": {
		ID: "slot", Label: "Slot level", Group: "Casting",
		Kind: ast.Slider, Min: 1, Max: 9, Step: 1, Default: 1,
	},
	"level": {
		ID: "level", Label: "Caster level", Group: "Casting",
		Kind: ast.Slider, Min: 1, Max: 20, Step: 1, Default: 1,
	},
	"mod": {
		ID: "mod", Label: "Ability modifier", Group: "Abilities",
		Kind: ast.Stepper, Min: -5, Max: 10, Step: 1, Default: 3,
	},
}

// Discover returns the parameter groups for the document: every parameter id
// referenced by at least one formula, resolved against `param` declarations
// first (earliest declaration wins on duplicate ids), then the built-in
// table, then a generic stepper.
//
// Ordering is stable: groups appear in the order their first parameter is
// discovered, parameters within a group in first-reference order, and
// declared-but-referenced parameters take the position of their first
// reference. The walk is read-only; the document is never mutated.
func Discover(doc ast.Document) []Group {
	declared := make(map[string]ast.ParamDecl, len(doc.Params))
	for _, decl := range doc.Params {
		if _, dup := declared[decl.ID]; !dup {
			declared[decl.ID] = decl
		}
	}

	var groups []Group
	index := make(map[string]int) // group name -> index in groups
	seen := make(map[string]bool)

	for _, id := range doc.ParamIDs() {
		if seen[id] {
			continue
		}
		seen[id] = true

		desc := resolve(id, declared)
		gi, ok := index[desc.Group]
		if !ok {
			gi = len(groups)
			index[desc.Group] = gi
			groups = append(groups, Group{Name: desc.Group})
		}
		groups[gi].Params = append(groups[gi].Params, desc)
	}
	return groups
}

func resolve(id string, declared map[string]ast.ParamDecl) Descriptor {
	if decl, ok := declared[id]; ok {
		return Descriptor{
			ID: id, Label: decl.Label, Group: decl.Group,
			Kind: decl.Kind, Min: decl.Min, Max: decl.Max,
			Step: decl.Step, Default: decl.Default,
		}
	}
	if b, ok := builtins[id]; ok {
		return b
	}
	return Descriptor{
		ID: id, Label: id, Group: "Other",
		Kind: ast.Stepper, Min: 0, Max: 20, Step: 1, Default: 0,
	}
}

// Defaults returns the default assignment for the given groups.
func Defaults(groups []Group) map[string]int {
	out := make(map[string]int)
	for _, g := range groups {
		for _, p := range g.Params {
			out[p.ID] = p.Default
		}
	}
	return out
}

// Find returns the descriptor with the given id, if present.
func Find(groups []Group, id string) (Descriptor, bool) {
	for _, g := range groups {
		for _, p := range g.Params {
			if p.ID == id {
				return p, true
			}
		}
	}
	return Descriptor{}, false
}
