// Package types defines the shared data structures for the bravecore engine.
// This package contains only type definitions: no logic, no methods.
package types

// Category classifies what a skill does when it resolves.
type Category string

const (
	CategoryBraveAttack   Category = "BRV_ATTACK"
	CategoryHPAttack      Category = "HP_ATTACK"
	CategoryBraveHPAttack Category = "BRV_HP_ATTACK"
	CategoryHeal          Category = "HEAL"
	CategoryBuff          Category = "BUFF"
	CategoryDebuff        Category = "DEBUFF"
	CategoryUltimate      Category = "ULTIMATE"
	CategorySpecial       Category = "SPECIAL"
)

// Selector is the target shape of a skill.
type Selector string

const (
	SelectorSingle Selector = "single"
	SelectorAll    Selector = "all"
	SelectorSelf   Selector = "self"
)

// DamageType decides which effects can block a skill (silence blocks magical).
type DamageType string

const (
	DamagePhysical DamageType = "physical"
	DamageMagical  DamageType = "magical"
)

// StackPolicy governs a second application of an already active status kind.
type StackPolicy string

const (
	StackRefresh  StackPolicy = "refresh"
	StackAdditive StackPolicy = "stack"
	StackIgnore   StackPolicy = "ignore"
)

// Side is the team a combatant fights on.
type Side string

const (
	SideParty   Side = "party"
	SideEnemies Side = "enemies"
)

// StatusApplication is a status a skill inflicts on hit.
type StatusApplication struct {
	Kind     string // status kind name as written in content
	Duration int    // 0 = descriptor default
	Potency  float64
	Chance   int // percent; 0 or 100 = always
}

// SkillDef is an immutable skill definition loaded from content.
type SkillDef struct {
	ID            string
	Name          string
	Category      Category
	DamageType    DamageType
	Element       string
	Target        Selector
	BraveCoeff    float64
	HPCoeff       float64
	HealCoeff     float64
	Accuracy      int // percent, 0 = 100
	CastPercent   int
	Cooldown      int // turns
	Cost          int // MP
	Revive        bool
	Classes       []string
	Statuses      []StatusApplication
	Cleanse       string   // "", "debuffs", "buffs", "all"
	CleanseKinds  []string // specific kinds to remove
	Description   string
	DeclaredOrder int
}

// EffectDescriptor declares a status kind's defaults and interaction rules.
type EffectDescriptor struct {
	Kind        string
	Name        string
	Debuff      bool
	Duration    int
	Potency     float64
	MinPotency  float64
	Stacking    StackPolicy
	Conflicts   []string
	CanKill     bool
	Description string
}

// Condition is a predicate that must hold for a behaviour entry to be chosen.
type Condition struct {
	Type   string         // "hp_below", "foe_broken", "has_status", etc.
	Params map[string]any // condition-specific parameters
	Negate bool           // true if wrapped in Not()
	Inner  *Condition     // for Not(): the negated inner condition
}

// BehaviorEntry is one weighted choice in an AI behaviour table.
type BehaviorEntry struct {
	Skill    string
	Weight   int
	Priority int         // higher-priority eligible entries shadow lower ones
	When     []Condition // all must hold; empty means always
	Order    int         // declaration order within the table
}

// CombatantDef is a hero or enemy template.
type CombatantDef struct {
	ID       string
	Name     string
	Class    string
	Side     Side
	HP       int
	MaxBrave int
	Brave    int // initial Brave, also the reset base after an HP attack
	MP       int
	Attack   int
	Magic    int
	Defense  int
	Speed    int
	Crit     int // percent
	Evasion  int // percent
	Behavior []BehaviorEntry
}

// EncounterDef pairs a party with a group of enemies.
type EncounterDef struct {
	ID      string
	Name    string
	Party   []string
	Enemies []string
	Intro   string
}

// GameDef holds game metadata from Lua.
type GameDef struct {
	Title   string
	Author  string
	Version string
	Start   string // default encounter ID
	Intro   string
}

// Intent is a parsed player command.
type Intent struct {
	Verb   string
	Object string
	Target string
}

// Event is published to observers after an action or tick is complete.
type Event struct {
	Type string
	Data map[string]any
}

// Result is the output of a single battle step.
type Result struct {
	Events []Event
	Output []string
}
