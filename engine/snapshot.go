package engine

import (
	"fmt"
	"slices"

	"github.com/nathoo/bravecore/engine/save"
	"github.com/nathoo/bravecore/engine/state"
	"github.com/nathoo/bravecore/engine/status"
	"github.com/nathoo/bravecore/engine/turn"
)

// Snapshot captures everything needed to resume the battle.
func (b *Battle) Snapshot() save.SaveData {
	sd := save.SaveData{
		Version:     b.Defs.Game.Version,
		Game:        b.Defs.Game.Title,
		Encounter:   b.Encounter.ID,
		Turn:        b.turn,
		Ticks:       b.sched.Ticks(),
		RNGSeed:     b.RNG.Seed(),
		RNGPosition: b.RNG.Position(),
		CommandLog:  slices.Clone(b.commandLog),
	}
	for _, c := range b.order {
		sc := save.Combatant{
			ID:        c.ID,
			HP:        c.HP(),
			Brave:     c.Brave(),
			MP:        c.MP(),
			Readiness: b.sched.Readiness(c.ID),
			Cooldowns: c.Cooldowns(),
			Statuses:  []save.Status{},
		}
		for _, in := range c.Statuses.Active() {
			sc.Statuses = append(sc.Statuses, save.Status{
				Kind:      in.Kind.String(),
				Remaining: in.Remaining,
				Potency:   in.Potency,
				Source:    in.Source,
			})
		}
		sd.Combatants = append(sd.Combatants, sc)
	}
	return sd
}

// Restore overwrites the battle with saved state. The save is checked in
// full before anything changes. An open turn is not saved; the scheduler
// picks the next actor again from the restored readiness.
func (b *Battle) Restore(sd *save.SaveData) error {
	if sd.Encounter != b.Encounter.ID {
		return fmt.Errorf("save is for encounter %q, battle is %q", sd.Encounter, b.Encounter.ID)
	}
	if len(sd.Combatants) != len(b.order) {
		return fmt.Errorf("save has %d combatants, battle has %d", len(sd.Combatants), len(b.order))
	}

	statuses := make(map[string][]status.Instance, len(sd.Combatants))
	entries := make([]turn.Entry, 0, len(sd.Combatants))
	for _, sc := range sd.Combatants {
		if _, ok := b.byID[sc.ID]; !ok {
			return fmt.Errorf("%w: %q", ErrUnknownCombatant, sc.ID)
		}
		for _, st := range sc.Statuses {
			k, err := status.ParseKind(st.Kind)
			if err != nil {
				return fmt.Errorf("combatant %s: %w", sc.ID, err)
			}
			if _, err := b.Defs.Registry.Lookup(k); err != nil {
				return fmt.Errorf("combatant %s: %w", sc.ID, err)
			}
			statuses[sc.ID] = append(statuses[sc.ID], status.Instance{
				Kind:      k,
				Remaining: st.Remaining,
				Potency:   st.Potency,
				Source:    st.Source,
			})
		}
		entries = append(entries, turn.Entry{ID: sc.ID, Readiness: sc.Readiness})
	}

	for _, sc := range sd.Combatants {
		c := b.byID[sc.ID]
		c.Restore(sc.HP, sc.Brave, sc.MP, sc.Cooldowns)
		if err := c.Statuses.Restore(statuses[sc.ID]); err != nil {
			return err
		}
	}
	if err := b.sched.Restore(entries, sd.Ticks); err != nil {
		return err
	}

	b.RNG = RestoreRNG(sd.RNGSeed, sd.RNGPosition)
	b.turn = sd.Turn
	b.commandLog = slices.Clone(sd.CommandLog)
	b.journal = b.journal[:0]
	b.down = make(map[string]bool)
	for _, c := range b.order {
		if !c.Alive() {
			b.down[c.ID] = true
		}
	}
	b.outcome = Ongoing
	if side, ok := b.sched.Winner(); ok {
		b.outcome = outcomeFor(side)
	}
	b.log.Info("battle restored", "encounter", b.Encounter.ID, "turn", b.turn)
	return nil
}

// Load rebuilds a battle from a save.
func Load(defs *state.Defs, sd *save.SaveData, opts ...Option) (*Battle, error) {
	b, err := New(defs, sd.Encounter, append(opts, WithSeed(sd.RNGSeed))...)
	if err != nil {
		return nil, err
	}
	if err := b.Restore(sd); err != nil {
		return nil, err
	}
	return b, nil
}
