package combat

import (
	"github.com/nathoo/bravecore/engine/status"
	"github.com/nathoo/bravecore/types"
)

// TargetResult is what one skill did to one target.
type TargetResult struct {
	ID       string
	Miss     bool
	Critical bool
	Break    bool // Brave pushed from positive to zero
	Revived  bool
	Defeated bool // HP reached zero during this resolution

	BraveDamage int // computed Brave damage
	BraveLost   int // Brave actually removed from the target
	BraveGained int // Brave the attacker took from this target
	HPDamage    int
	Healed      int

	Applied  []status.ApplyResult
	Removed  []status.Kind
	Resisted []status.Kind // on-hit chance failed

	Before Snapshot
	After  Snapshot
}

// Result is the transient outcome of one skill resolution.
type Result struct {
	Actor    string
	Skill    string
	Category types.Category
	Targets  []TargetResult

	Miss        bool // every target was missed
	Critical    bool
	Break       bool
	BraveDamage int
	HPDamage    int
	Healed      int
	CostPaid    int
	Cooldown    int

	AttackerBefore Snapshot
	AttackerAfter  Snapshot
}

// Target returns the entry for id.
func (r Result) Target(id string) (TargetResult, bool) {
	for _, t := range r.Targets {
		if t.ID == id {
			return t, true
		}
	}
	return TargetResult{}, false
}

// StatusesApplied lists every kind created, refreshed or stacked.
func (r Result) StatusesApplied() []status.Kind {
	var out []status.Kind
	for _, t := range r.Targets {
		for _, a := range t.Applied {
			out = append(out, a.Kind)
		}
	}
	return out
}

// StatusesRemoved lists every kind cleansed or cured by a conflict.
func (r Result) StatusesRemoved() []status.Kind {
	var out []status.Kind
	for _, t := range r.Targets {
		out = append(out, t.Removed...)
	}
	return out
}

// Defeated lists the targets this resolution brought to zero HP.
func (r Result) Defeated() []string {
	var out []string
	for _, t := range r.Targets {
		if t.Defeated {
			out = append(out, t.ID)
		}
	}
	return out
}
