package status

import (
	"fmt"
	"strings"
)

// Kind is the closed set of status effects the engine understands.
type Kind int

const (
	KindInvalid Kind = iota
	Poison
	Burn
	Bleed
	Regen
	BraveRegen
	Freeze
	Stun
	Silence
	Haste
	Slow
	AttackUp
	AttackDown
	DefenseUp
	DefenseDown
	MagicUp
	EvasionUp
	kindCount
)

var kindNames = [kindCount]string{
	KindInvalid: "invalid",
	Poison:      "poison",
	Burn:        "burn",
	Bleed:       "bleed",
	Regen:       "regen",
	BraveRegen:  "brave_regen",
	Freeze:      "freeze",
	Stun:        "stun",
	Silence:     "silence",
	Haste:       "haste",
	Slow:        "slow",
	AttackUp:    "attack_up",
	AttackDown:  "attack_down",
	DefenseUp:   "defense_up",
	DefenseDown: "defense_down",
	MagicUp:     "magic_up",
	EvasionUp:   "evasion_up",
}

// koreanAliases maps the names used in the Korean content files.
var koreanAliases = map[string]Kind{
	"독":      Poison,
	"화상":     Burn,
	"출혈":     Bleed,
	"재생":     Regen,
	"브레이브재생": BraveRegen,
	"빙결":     Freeze,
	"기절":     Stun,
	"침묵":     Silence,
	"가속":     Haste,
	"감속":     Slow,
	"공격력상승":  AttackUp,
	"공격력감소":  AttackDown,
	"방어력상승":  DefenseUp,
	"방어력감소":  DefenseDown,
	"마력상승":   MagicUp,
	"회피상승":   EvasionUp,
}

func (k Kind) String() string {
	if k <= KindInvalid || k >= kindCount {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// Valid reports whether k is one of the declared kinds.
func (k Kind) Valid() bool {
	return k > KindInvalid && k < kindCount
}

// ParseKind resolves a canonical kind name or its Korean alias.
func ParseKind(name string) (Kind, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for k := KindInvalid + 1; k < kindCount; k++ {
		if kindNames[k] == n {
			return k, nil
		}
	}
	if k, ok := koreanAliases[strings.ReplaceAll(n, " ", "")]; ok {
		return k, nil
	}
	return KindInvalid, fmt.Errorf("%w: %q", ErrUnknownEffectKind, name)
}

// Kinds returns every valid kind in declaration order.
func Kinds() []Kind {
	out := make([]Kind, 0, kindCount-1)
	for k := KindInvalid + 1; k < kindCount; k++ {
		out = append(out, k)
	}
	return out
}

// Strategy is how an effect acts on its owner.
type Strategy int

const (
	StrategyNone Strategy = iota
	StrategyPeriodicDamage
	StrategyPeriodicHeal
	StrategyPeriodicBrave
	StrategyControl
	StrategyStatModifier
)

// Strategy returns the application strategy for k.
func (k Kind) Strategy() Strategy {
	switch k {
	case Poison, Burn, Bleed:
		return StrategyPeriodicDamage
	case Regen:
		return StrategyPeriodicHeal
	case BraveRegen:
		return StrategyPeriodicBrave
	case Freeze, Stun, Silence:
		return StrategyControl
	case Haste, Slow, AttackUp, AttackDown, DefenseUp, DefenseDown, MagicUp, EvasionUp:
		return StrategyStatModifier
	default:
		return StrategyNone
	}
}

// Stat names a combat attribute that stat-modifier effects scale.
type Stat string

const (
	StatAttack  Stat = "attack"
	StatMagic   Stat = "magic"
	StatDefense Stat = "defense"
	StatSpeed   Stat = "speed"
	StatEvasion Stat = "evasion"
)

// modifies returns the stat k scales and the sign of the change.
func (k Kind) modifies() (Stat, float64) {
	switch k {
	case Haste:
		return StatSpeed, 1
	case Slow:
		return StatSpeed, -1
	case AttackUp:
		return StatAttack, 1
	case AttackDown:
		return StatAttack, -1
	case DefenseUp:
		return StatDefense, 1
	case DefenseDown:
		return StatDefense, -1
	case MagicUp:
		return StatMagic, 1
	case EvasionUp:
		return StatEvasion, 1
	default:
		return "", 0
	}
}

// usesPotency reports whether potency has meaning for k.
func (k Kind) usesPotency() bool {
	return k.Strategy() != StrategyControl && k.Strategy() != StrategyNone
}
