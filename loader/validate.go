package loader

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/nathoo/bravecore/engine/rules"
	"github.com/nathoo/bravecore/engine/status"
	"github.com/nathoo/bravecore/types"
)

// ValidationError collects all validation errors and warnings.
type ValidationError struct {
	Errors   []string
	Warnings []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed with %d error(s):\n  %s",
		len(e.Errors), strings.Join(e.Errors, "\n  "))
}

func (e *ValidationError) errorf(format string, args ...any) {
	e.Errors = append(e.Errors, fmt.Sprintf(format, args...))
}

func (e *ValidationError) warnf(format string, args ...any) {
	e.Warnings = append(e.Warnings, fmt.Sprintf(format, args...))
}

var validCategories = map[types.Category]bool{
	types.CategoryBraveAttack:   true,
	types.CategoryHPAttack:      true,
	types.CategoryBraveHPAttack: true,
	types.CategoryHeal:          true,
	types.CategoryBuff:          true,
	types.CategoryDebuff:        true,
	types.CategoryUltimate:      true,
	types.CategorySpecial:       true,
}

var validSelectors = map[types.Selector]bool{
	types.SelectorSingle: true,
	types.SelectorAll:    true,
	types.SelectorSelf:   true,
}

var validCleanse = map[string]bool{
	"": true, "debuffs": true, "buffs": true, "all": true,
}

// validate checks the compiled content for referential integrity and
// consistency. Every problem is collected before returning.
func validate(c *content) error {
	ve := &ValidationError{}
	ve.Errors = append(ve.Errors, c.duplicates...)

	if c.game.Title == "" {
		ve.errorf("Game.Title is required")
	}
	if c.game.Start == "" {
		ve.errorf("Game.Start is required")
	} else if _, ok := c.encounters[c.game.Start]; !ok {
		ve.errorf("start encounter %q not found in defined encounters", c.game.Start)
	}

	registered := validateStatuses(c, ve)
	validateSkills(c, registered, ve)
	used := validateTemplates(c, ve)
	validateEncounters(c, ve)

	// Warnings: skills nobody can use.
	for _, sk := range c.skills {
		if len(sk.Classes) == 0 && !used[sk.ID] {
			ve.warnf("skill %q has no classes and no behaviour uses it", sk.ID)
		}
	}

	for _, w := range ve.Warnings {
		slog.Warn("content warning", "detail", w)
	}
	if len(ve.Errors) > 0 {
		return ve
	}
	return nil
}

// validateStatuses checks every descriptor and returns them by kind.
func validateStatuses(c *content, ve *ValidationError) map[status.Kind]status.Descriptor {
	registered := map[status.Kind]status.Descriptor{}
	for _, def := range c.statuses {
		d, err := status.DescriptorFromDef(def)
		if err != nil {
			ve.errorf("status %q: %v", def.Kind, err)
			continue
		}
		if _, dup := registered[d.Kind]; dup {
			ve.errorf("status %q registers %s twice", def.Kind, d.Kind)
			continue
		}
		registered[d.Kind] = d
		if d.Duration <= 0 {
			ve.errorf("status %q: duration must be positive, got %d", def.Kind, d.Duration)
		}
		if d.Potency < 0 || d.MinPotency < 0 {
			ve.errorf("status %q: potency must not be negative", def.Kind)
		}
	}
	return registered
}

func validateSkills(c *content, registered map[status.Kind]status.Descriptor, ve *ValidationError) {
	for _, sk := range c.skills {
		if !validCategories[sk.Category] {
			ve.errorf("skill %q: unknown category %q", sk.ID, sk.Category)
		}
		if !validSelectors[sk.Target] {
			ve.errorf("skill %q: unknown target %q", sk.ID, sk.Target)
		}
		if sk.DamageType != types.DamagePhysical && sk.DamageType != types.DamageMagical {
			ve.errorf("skill %q: unknown damage type %q", sk.ID, sk.DamageType)
		}
		if sk.BraveCoeff < 0 || sk.HPCoeff < 0 || sk.HealCoeff < 0 {
			ve.errorf("skill %q: coefficients must not be negative", sk.ID)
		}
		if sk.Accuracy < 0 || sk.Accuracy > 100 {
			ve.errorf("skill %q: accuracy %d out of range", sk.ID, sk.Accuracy)
		}
		if sk.CastPercent < 0 || sk.Cooldown < 0 || sk.Cost < 0 {
			ve.errorf("skill %q: cast, cooldown and cost must not be negative", sk.ID)
		}
		if !validCleanse[sk.Cleanse] {
			ve.errorf("skill %q: unknown cleanse %q", sk.ID, sk.Cleanse)
		}
		for _, name := range sk.CleanseKinds {
			if _, err := status.ParseKind(name); err != nil {
				ve.errorf("skill %q cleanse: %v", sk.ID, err)
			}
		}
		for _, app := range sk.Statuses {
			k, err := status.ParseKind(app.Kind)
			if err != nil {
				ve.errorf("skill %q inflicts: %v", sk.ID, err)
				continue
			}
			d, ok := registered[k]
			if !ok {
				ve.errorf("skill %q inflicts unregistered status %s", sk.ID, k)
				continue
			}
			if app.Duration < 0 || app.Potency < 0 || app.Chance < 0 || app.Chance > 100 {
				ve.errorf("skill %q inflicts %s with out-of-range values", sk.ID, k)
				continue
			}
			// Same defaults the resolver applies, so a bad table fails here and
			// not on first use.
			if err := d.Check(d.Fill(app.Duration, app.Potency)); err != nil {
				ve.errorf("skill %q inflicts: %v", sk.ID, err)
			}
		}
	}
}

// validateTemplates checks heroes and enemies and returns the skills named
// by some behaviour table.
func validateTemplates(c *content, ve *ValidationError) map[string]bool {
	skills := map[string]bool{}
	classes := map[string]bool{}
	for _, sk := range c.skills {
		skills[sk.ID] = true
		for _, cl := range sk.Classes {
			classes[cl] = true
		}
	}

	used := map[string]bool{}
	for _, id := range sortedKeys(c.templates) {
		t := c.templates[id]
		if t.HP <= 0 {
			ve.errorf("combatant %q: hp must be positive", id)
		}
		if t.Speed <= 0 {
			ve.errorf("combatant %q: speed must be positive", id)
		}
		if t.Brave < 0 || t.MaxBrave < 0 || t.MP < 0 {
			ve.errorf("combatant %q: brave and mp must not be negative", id)
		}
		if t.Crit < 0 || t.Crit > 100 || t.Evasion < 0 || t.Evasion > 100 {
			ve.errorf("combatant %q: crit and evasion are percentages", id)
		}
		if t.Side == types.SideParty && t.Class != "" && !classes[t.Class] {
			ve.warnf("hero %q: no skill lists class %q", id, t.Class)
		}
		for _, e := range t.Behavior {
			used[e.Skill] = true
			if !skills[e.Skill] {
				ve.errorf("combatant %q behaviour references undefined skill %q", id, e.Skill)
			}
			if e.Weight < 0 {
				ve.errorf("combatant %q behaviour %q: negative weight", id, e.Skill)
			}
			validateConditions(id, e.When, ve)
		}
	}
	return used
}

func validateConditions(owner string, conds []types.Condition, ve *ValidationError) {
	for _, cond := range conds {
		if !rules.Known[cond.Type] {
			ve.errorf("combatant %q: unknown condition type %q", owner, cond.Type)
			continue
		}
		switch cond.Type {
		case "has_status", "foe_has_status":
			name, _ := cond.Params["status"].(string)
			if _, err := status.ParseKind(name); err != nil {
				ve.errorf("combatant %q condition %s: %v", owner, cond.Type, err)
			}
		case "not":
			if cond.Inner == nil {
				ve.errorf("combatant %q: Not() without a condition", owner)
				continue
			}
			validateConditions(owner, []types.Condition{*cond.Inner}, ve)
		}
	}
}

func validateEncounters(c *content, ve *ValidationError) {
	for _, id := range sortedKeys(c.encounters) {
		e := c.encounters[id]
		if len(e.Party) == 0 {
			ve.errorf("encounter %q has no party", id)
		}
		if len(e.Enemies) == 0 {
			ve.errorf("encounter %q has no enemies", id)
		}
		check := func(list []string, side types.Side, role string) {
			for _, ref := range list {
				t, ok := c.templates[ref]
				switch {
				case !ok:
					ve.errorf("encounter %q %s references undefined combatant %q", id, role, ref)
				case t.Side != side:
					ve.errorf("encounter %q %s lists %q, which is not on side %s", id, role, ref, side)
				}
			}
		}
		check(e.Party, types.SideParty, "party")
		check(e.Enemies, types.SideEnemies, "enemies")

		seen := map[string]bool{}
		for _, ref := range e.Party {
			if seen[ref] {
				ve.errorf("encounter %q lists hero %q twice", id, ref)
			}
			seen[ref] = true
		}
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
