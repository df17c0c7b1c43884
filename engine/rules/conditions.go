// Package rules decides which AI behaviour entries are eligible on a turn.
package rules

import (
	"github.com/nathoo/bravecore/engine/combat"
	"github.com/nathoo/bravecore/engine/status"
	"github.com/nathoo/bravecore/types"
)

// View is what a condition can see of the battle from one actor's seat.
type View struct {
	Self   *combat.Combatant
	Allies []*combat.Combatant // includes Self
	Foes   []*combat.Combatant
	Turn   int
}

// Known lists the condition types EvalCondition understands.
var Known = map[string]bool{
	"hp_below":        true,
	"hp_above":        true,
	"brave_above":     true,
	"brave_below":     true,
	"ally_hp_below":   true,
	"ally_down":       true,
	"has_status":      true,
	"foe_has_status":  true,
	"foe_broken":      true,
	"foe_brave_above": true,
	"turn_gt":         true,
	"not":             true,
}

// EvalCondition evaluates a single condition against the view.
func EvalCondition(c types.Condition, v View) bool {
	switch c.Type {
	case "hp_below":
		return percent(v.Self.HP(), v.Self.MaxHP()) < toInt(c.Params["value"])

	case "hp_above":
		return percent(v.Self.HP(), v.Self.MaxHP()) > toInt(c.Params["value"])

	case "brave_above":
		return v.Self.Brave() > toInt(c.Params["value"])

	case "brave_below":
		return v.Self.Brave() < toInt(c.Params["value"])

	case "ally_hp_below":
		value := toInt(c.Params["value"])
		for _, a := range v.Allies {
			if a.Alive() && percent(a.HP(), a.MaxHP()) < value {
				return true
			}
		}
		return false

	case "ally_down":
		for _, a := range v.Allies {
			if !a.Alive() {
				return true
			}
		}
		return false

	case "has_status":
		k, ok := kindParam(c)
		return ok && v.Self.Statuses.Has(k)

	case "foe_has_status":
		k, ok := kindParam(c)
		if !ok {
			return false
		}
		for _, f := range v.Foes {
			if f.Alive() && f.Statuses.Has(k) {
				return true
			}
		}
		return false

	case "foe_broken":
		for _, f := range v.Foes {
			if f.Alive() && f.Brave() == 0 {
				return true
			}
		}
		return false

	case "foe_brave_above":
		value := toInt(c.Params["value"])
		for _, f := range v.Foes {
			if f.Alive() && f.Brave() > value {
				return true
			}
		}
		return false

	case "turn_gt":
		return v.Turn > toInt(c.Params["value"])

	case "not":
		if c.Inner == nil {
			return true
		}
		return !EvalCondition(*c.Inner, v)

	default:
		return false
	}
}

// EvalAllConditions returns true if all conditions pass (AND logic).
// An empty condition list is vacuously true.
func EvalAllConditions(conditions []types.Condition, v View) bool {
	for _, c := range conditions {
		if !EvalCondition(c, v) {
			return false
		}
	}
	return true
}

func percent(n, of int) int {
	if of <= 0 {
		return 0
	}
	return n * 100 / of
}

func kindParam(c types.Condition) (status.Kind, bool) {
	name, _ := c.Params["status"].(string)
	k, err := status.ParseKind(name)
	return k, err == nil
}

// toInt converts an any value to int, handling float64 from Lua.
func toInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case float64:
		return int(n)
	case int64:
		return int(n)
	default:
		return 0
	}
}
