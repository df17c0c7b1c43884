// Package state holds the immutable content definitions a battle is built
// from, and the lookups over them.
package state

import (
	"errors"
	"fmt"
	"sort"

	"github.com/nathoo/bravecore/engine/skill"
	"github.com/nathoo/bravecore/engine/status"
	"github.com/nathoo/bravecore/types"
)

var (
	ErrUnknownTemplate  = errors.New("unknown combatant template")
	ErrUnknownEncounter = errors.New("unknown encounter")
)

// Defs holds the immutable game definitions loaded from Lua.
// Shared read-only between battles.
type Defs struct {
	Game       types.GameDef
	Registry   *status.Registry
	Catalog    *skill.Catalog
	Templates  map[string]types.CombatantDef
	Encounters map[string]types.EncounterDef
}

// Template returns the hero or enemy template with id.
func (d *Defs) Template(id string) (types.CombatantDef, error) {
	t, ok := d.Templates[id]
	if !ok {
		return types.CombatantDef{}, fmt.Errorf("%w: %q", ErrUnknownTemplate, id)
	}
	return t, nil
}

// Encounter returns the encounter with id. An empty id means the game's
// start encounter.
func (d *Defs) Encounter(id string) (types.EncounterDef, error) {
	if id == "" {
		id = d.Game.Start
	}
	enc, ok := d.Encounters[id]
	if !ok {
		return types.EncounterDef{}, fmt.Errorf("%w: %q", ErrUnknownEncounter, id)
	}
	return enc, nil
}

// EncounterIDs returns every encounter id, sorted.
func (d *Defs) EncounterIDs() []string {
	ids := make([]string, 0, len(d.Encounters))
	for id := range d.Encounters {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Heroes returns the ids of party templates, sorted.
func (d *Defs) Heroes() []string {
	return d.bySide(types.SideParty)
}

// Enemies returns the ids of enemy templates, sorted.
func (d *Defs) Enemies() []string {
	return d.bySide(types.SideEnemies)
}

func (d *Defs) bySide(side types.Side) []string {
	var ids []string
	for id, t := range d.Templates {
		if t.Side == side {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// Roster is one placed combatant of an encounter.
type Roster struct {
	ID       string // unique within the battle
	Template types.CombatantDef
}

// Roster expands an encounter into placed combatants, party first.
// Templates that appear more than once get numbered ids ("goblin_1",
// "goblin_2") and numbered names.
func (d *Defs) Roster(enc types.EncounterDef) ([]Roster, error) {
	var out []Roster
	place := func(ids []string, side types.Side) error {
		count := map[string]int{}
		for _, id := range ids {
			count[id]++
		}
		seen := map[string]int{}
		for _, id := range ids {
			t, err := d.Template(id)
			if err != nil {
				return fmt.Errorf("encounter %s: %w", enc.ID, err)
			}
			t.Side = side
			rid := id
			if count[id] > 1 {
				seen[id]++
				rid = fmt.Sprintf("%s_%d", id, seen[id])
				t.Name = fmt.Sprintf("%s %d", t.Name, seen[id])
			}
			out = append(out, Roster{ID: rid, Template: t})
		}
		return nil
	}
	if err := place(enc.Party, types.SideParty); err != nil {
		return nil, err
	}
	if err := place(enc.Enemies, types.SideEnemies); err != nil {
		return nil, err
	}
	return out, nil
}
