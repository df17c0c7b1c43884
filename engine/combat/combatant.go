package combat

import (
	"slices"

	"github.com/nathoo/bravecore/engine/status"
	"github.com/nathoo/bravecore/types"
)

// Snapshot is a combatant's HP and Brave at one instant.
type Snapshot struct {
	HP    int
	Brave int
}

// Combatant is the runtime state of one fighter. HP stays in [0, MaxHP] and
// Brave in [0, MaxBrave]; a combatant at 0 HP is defeated but kept, so it can
// be revived.
type Combatant struct {
	ID       string
	Name     string
	Class    string
	Template string
	Side     types.Side

	Attack  int
	Magic   int
	Defense int
	Speed   int
	Crit    int
	Evasion int

	Behavior []types.BehaviorEntry
	Statuses *status.Manager

	hp, maxHP                  int
	brave, maxBrave, baseBrave int
	mp, maxMP                  int

	cooldowns map[string]int
	fresh     []string // cooldowns started during the current turn
}

// NewCombatant creates a combatant from a template. id must be unique within
// the battle; two goblins from one template get distinct ids.
func NewCombatant(id string, def types.CombatantDef, reg *status.Registry) *Combatant {
	c := &Combatant{
		ID:        id,
		Name:      def.Name,
		Class:     def.Class,
		Template:  def.ID,
		Side:      def.Side,
		Attack:    def.Attack,
		Magic:     def.Magic,
		Defense:   def.Defense,
		Speed:     def.Speed,
		Crit:      def.Crit,
		Evasion:   def.Evasion,
		Behavior:  slices.Clone(def.Behavior),
		hp:        def.HP,
		maxHP:     def.HP,
		maxBrave:  def.MaxBrave,
		baseBrave: min(def.Brave, def.MaxBrave),
		brave:     min(def.Brave, def.MaxBrave),
		mp:        def.MP,
		maxMP:     def.MP,
		cooldowns: make(map[string]int),
	}
	if c.Name == "" {
		c.Name = id
	}
	c.Statuses = status.NewManager(reg, c)
	return c
}

func (c *Combatant) HP() int        { return c.hp }
func (c *Combatant) MaxHP() int     { return c.maxHP }
func (c *Combatant) Brave() int     { return c.brave }
func (c *Combatant) MaxBrave() int  { return c.maxBrave }
func (c *Combatant) BaseBrave() int { return c.baseBrave }
func (c *Combatant) MP() int        { return c.mp }
func (c *Combatant) MaxMP() int     { return c.maxMP }

// Alive reports whether the combatant has HP left.
func (c *Combatant) Alive() bool { return c.hp > 0 }

// Snapshot returns the current HP and Brave.
func (c *Combatant) Snapshot() Snapshot {
	return Snapshot{HP: c.hp, Brave: c.brave}
}

// ApplyDamage removes up to amount HP and returns what was removed.
func (c *Combatant) ApplyDamage(amount int) int {
	if amount <= 0 {
		return 0
	}
	amount = min(amount, c.hp)
	c.hp -= amount
	return amount
}

// ApplyHeal restores up to amount HP on a living combatant.
func (c *Combatant) ApplyHeal(amount int) int {
	if amount <= 0 || !c.Alive() {
		return 0
	}
	amount = min(amount, c.maxHP-c.hp)
	c.hp += amount
	return amount
}

// Revive brings a defeated combatant back with hp HP and base Brave.
func (c *Combatant) Revive(hp int) int {
	if c.Alive() || hp <= 0 {
		return 0
	}
	c.hp = min(hp, c.maxHP)
	c.brave = c.baseBrave
	return c.hp
}

// GainBrave adds up to amount Brave and returns what was added.
func (c *Combatant) GainBrave(amount int) int {
	if amount <= 0 {
		return 0
	}
	amount = min(amount, c.maxBrave-c.brave)
	c.brave += amount
	return amount
}

// LoseBrave removes up to amount Brave and returns what was removed.
func (c *Combatant) LoseBrave(amount int) int {
	if amount <= 0 {
		return 0
	}
	amount = min(amount, c.brave)
	c.brave -= amount
	return amount
}

// ResetBrave sets Brave after an HP commit.
func (c *Combatant) ResetBrave(mode BraveReset) {
	if mode == ResetZero {
		c.brave = 0
		return
	}
	c.brave = c.baseBrave
}

// SpendMP deducts a skill cost. It reports false and changes nothing when
// the pool is short.
func (c *Combatant) SpendMP(cost int) bool {
	if cost > c.mp {
		return false
	}
	if cost > 0 {
		c.mp -= cost
	}
	return true
}

// Cooldown returns how many more of the owner's turns skillID stays blocked.
func (c *Combatant) Cooldown(skillID string) int {
	return c.cooldowns[skillID]
}

// StartCooldown blocks skillID for the owner's next turns turns.
func (c *Combatant) StartCooldown(skillID string, turns int) {
	if turns <= 0 {
		return
	}
	c.cooldowns[skillID] = turns
	c.fresh = append(c.fresh, skillID)
}

// EndTurn counts cooldowns down by one turn. Cooldowns started during the
// turn that is ending are left alone.
func (c *Combatant) EndTurn() {
	for id, n := range c.cooldowns {
		if slices.Contains(c.fresh, id) {
			continue
		}
		if n <= 1 {
			delete(c.cooldowns, id)
		} else {
			c.cooldowns[id] = n - 1
		}
	}
	c.fresh = c.fresh[:0]
}

// Cooldowns returns a copy of the active cooldowns.
func (c *Combatant) Cooldowns() map[string]int {
	out := make(map[string]int, len(c.cooldowns))
	for k, v := range c.cooldowns {
		out[k] = v
	}
	return out
}

// Restore overwrites the mutable pools. Values are clamped to their bounds.
func (c *Combatant) Restore(hp, brave, mp int, cooldowns map[string]int) {
	c.hp = max(0, min(hp, c.maxHP))
	c.brave = max(0, min(brave, c.maxBrave))
	c.mp = max(0, min(mp, c.maxMP))
	c.cooldowns = make(map[string]int, len(cooldowns))
	for k, v := range cooldowns {
		if v > 0 {
			c.cooldowns[k] = v
		}
	}
	c.fresh = c.fresh[:0]
}

// EffectiveAttack is attack scaled by active modifiers.
func (c *Combatant) EffectiveAttack() int {
	return scale(c.Attack, c.Statuses.Modifier(status.StatAttack))
}

// EffectiveMagic is magic scaled by active modifiers.
func (c *Combatant) EffectiveMagic() int {
	return scale(c.Magic, c.Statuses.Modifier(status.StatMagic))
}

// EffectiveDefense is defense scaled by active modifiers.
func (c *Combatant) EffectiveDefense() int {
	return scale(c.Defense, c.Statuses.Modifier(status.StatDefense))
}

// EffectiveEvasion is evasion scaled by active modifiers.
func (c *Combatant) EffectiveEvasion() int {
	return scale(c.Evasion, c.Statuses.Modifier(status.StatEvasion))
}

// EffectiveSpeed is speed scaled by haste and slow, at least 1 while alive.
func (c *Combatant) EffectiveSpeed() int {
	if !c.Alive() {
		return 0
	}
	return max(1, scale(c.Speed, c.Statuses.Modifier(status.StatSpeed)))
}

func scale(v int, mul float64) int {
	return int(float64(v) * mul)
}
