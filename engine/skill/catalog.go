// Package skill holds the read-only skill catalog.
package skill

import (
	"errors"
	"fmt"
	"slices"

	"github.com/nathoo/bravecore/types"
)

var ErrUnknownSkill = errors.New("unknown skill")

// Catalog is an immutable table of skills in declaration order.
type Catalog struct {
	skills []types.SkillDef
	byID   map[string]int
}

// NewCatalog builds a catalog. Order of defs is the declaration order.
func NewCatalog(defs []types.SkillDef) (*Catalog, error) {
	c := &Catalog{
		skills: make([]types.SkillDef, 0, len(defs)),
		byID:   make(map[string]int, len(defs)),
	}
	for _, d := range defs {
		if d.ID == "" {
			return nil, errors.New("skill with empty id")
		}
		if _, dup := c.byID[d.ID]; dup {
			return nil, fmt.Errorf("duplicate skill %q", d.ID)
		}
		d.Classes = slices.Clone(d.Classes)
		d.Statuses = slices.Clone(d.Statuses)
		d.CleanseKinds = slices.Clone(d.CleanseKinds)
		c.byID[d.ID] = len(c.skills)
		c.skills = append(c.skills, d)
	}
	return c, nil
}

// Get returns the skill with id.
func (c *Catalog) Get(id string) (types.SkillDef, error) {
	i, ok := c.byID[id]
	if !ok {
		return types.SkillDef{}, fmt.Errorf("%w: %q", ErrUnknownSkill, id)
	}
	return c.skills[i], nil
}

// Has reports whether id is in the catalog.
func (c *Catalog) Has(id string) bool {
	_, ok := c.byID[id]
	return ok
}

// ListForActor returns the skills available to class, in declaration order.
func (c *Catalog) ListForActor(class string) []types.SkillDef {
	var out []types.SkillDef
	for _, s := range c.skills {
		if slices.Contains(s.Classes, class) {
			out = append(out, s)
		}
	}
	return out
}

// All returns every skill in declaration order.
func (c *Catalog) All() []types.SkillDef {
	return slices.Clone(c.skills)
}

// Len returns the number of skills.
func (c *Catalog) Len() int {
	return len(c.skills)
}

// Find resolves a player-typed name against ids and display names.
func (c *Catalog) Find(name string, within []types.SkillDef) (types.SkillDef, bool) {
	for _, s := range within {
		if s.ID == name || s.Name == name {
			return s, true
		}
	}
	return types.SkillDef{}, false
}
