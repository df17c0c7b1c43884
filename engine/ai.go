package engine

import (
	"github.com/nathoo/bravecore/engine/combat"
	"github.com/nathoo/bravecore/engine/rules"
	"github.com/nathoo/bravecore/types"
)

// aiTurn picks and resolves an action for c. An actor with nothing usable
// waits.
func (b *Battle) aiTurn(c *combat.Combatant) error {
	sk, targets, ok := b.chooseAction(c)
	if !ok {
		return b.Wait(c.ID)
	}
	ids := make([]string, len(targets))
	for i, t := range targets {
		ids[i] = t.ID
	}
	if _, err := b.ResolveAction(c.ID, ids, sk.ID); err != nil {
		b.log.Warn("ai action rejected", "actor", c.ID, "skill", sk.ID, "err", err)
		return b.Wait(c.ID)
	}
	return nil
}

// chooseAction selects a skill from c's behaviour table by weight among the
// eligible entries, then a target set by die roll.
func (b *Battle) chooseAction(c *combat.Combatant) (types.SkillDef, []*combat.Combatant, bool) {
	choices := map[string][][]*combat.Combatant{}
	usable := func(e types.BehaviorEntry) bool {
		sk, err := b.Defs.Catalog.Get(e.Skill)
		if err != nil {
			return false
		}
		if _, seen := choices[sk.ID]; !seen {
			choices[sk.ID] = b.aiTargets(c, sk)
		}
		return len(choices[sk.ID]) > 0
	}

	entries := rules.Eligible(b.behavior(c), b.view(c), usable)
	if len(entries) == 0 {
		return types.SkillDef{}, nil, false
	}

	weights := make([]int, len(entries))
	for i, e := range entries {
		weights[i] = e.Weight
	}
	entry := entries[b.RNG.WeightedSelect(weights)]
	sk, _ := b.Defs.Catalog.Get(entry.Skill)

	sets := choices[sk.ID]
	pick := sets[0]
	if len(sets) > 1 {
		pick = sets[b.RNG.Roll(len(sets))-1]
	}
	return sk, pick, true
}

// behavior returns c's behaviour table. A combatant without one uses each
// of its class skills with equal weight.
func (b *Battle) behavior(c *combat.Combatant) []types.BehaviorEntry {
	if len(c.Behavior) > 0 {
		return c.Behavior
	}
	var out []types.BehaviorEntry
	for i, sk := range b.Defs.Catalog.ListForActor(c.Class) {
		out = append(out, types.BehaviorEntry{Skill: sk.ID, Weight: 1, Order: i})
	}
	return out
}

func (b *Battle) view(c *combat.Combatant) rules.View {
	v := rules.View{Self: c, Turn: b.turn}
	for _, o := range b.order {
		if o.Side == c.Side {
			v.Allies = append(v.Allies, o)
		} else {
			v.Foes = append(v.Foes, o)
		}
	}
	return v
}

// aiTargets lists every target set the resolver would accept for sk. Heals
// skip allies at full HP, and revives prefer fallen allies.
func (b *Battle) aiTargets(c *combat.Combatant, sk types.SkillDef) [][]*combat.Combatant {
	pool := b.TargetPool(c, sk)

	switch sk.Target {
	case types.SelectorSelf, types.SelectorAll:
		if sk.Category == types.CategoryHeal && !anyWounded(pool, sk.Revive) {
			return nil
		}
		if len(pool) == 0 || b.resolver.Validate(c, pool, sk) != nil {
			return nil
		}
		return [][]*combat.Combatant{pool}
	}

	if sk.Revive && anyDown(pool) {
		var fallen []*combat.Combatant
		for _, t := range pool {
			if !t.Alive() {
				fallen = append(fallen, t)
			}
		}
		pool = fallen
	}

	var out [][]*combat.Combatant
	for _, t := range pool {
		if sk.Category == types.CategoryHeal && !wounded(t, sk.Revive) {
			continue
		}
		one := []*combat.Combatant{t}
		if b.resolver.Validate(c, one, sk) == nil {
			out = append(out, one)
		}
	}
	return out
}

func wounded(c *combat.Combatant, revive bool) bool {
	if !c.Alive() {
		return revive
	}
	return c.HP() < c.MaxHP()
}

func anyWounded(cs []*combat.Combatant, revive bool) bool {
	for _, c := range cs {
		if wounded(c, revive) {
			return true
		}
	}
	return false
}

func anyDown(cs []*combat.Combatant) bool {
	for _, c := range cs {
		if !c.Alive() {
			return true
		}
	}
	return false
}
