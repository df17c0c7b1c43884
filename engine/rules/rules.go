package rules

import (
	"sort"

	"github.com/nathoo/bravecore/types"
)

// Eligible filters a behaviour table down to the entries the AI may pick
// from this turn: conditions must hold and weight must be positive, and
// only the highest priority present survives. usable reports whether an
// entry's skill can be used right now at all.
func Eligible(entries []types.BehaviorEntry, v View, usable func(types.BehaviorEntry) bool) []types.BehaviorEntry {
	var candidates []types.BehaviorEntry
	for _, e := range entries {
		if e.Weight <= 0 {
			continue
		}
		if !EvalAllConditions(e.When, v) {
			continue
		}
		if usable != nil && !usable(e) {
			continue
		}
		candidates = append(candidates, e)
	}
	if len(candidates) == 0 {
		return nil
	}

	// Rank: priority (desc) then declaration order (asc).
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Priority != candidates[j].Priority {
			return candidates[i].Priority > candidates[j].Priority
		}
		return candidates[i].Order < candidates[j].Order
	})

	top := candidates[0].Priority
	n := 1
	for n < len(candidates) && candidates[n].Priority == top {
		n++
	}
	return candidates[:n]
}
