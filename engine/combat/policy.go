package combat

import "fmt"

// BraveReset selects where an attacker's Brave lands after an HP commit.
type BraveReset string

const (
	ResetBase BraveReset = "base" // the template's initial Brave
	ResetZero BraveReset = "zero"
)

// Policy holds the tunable constants of resolution.
type Policy struct {
	MinDamage          int
	CritMultiplier     float64
	BraveReset         BraveReset
	BreakBonus         int
	MissConsumesCost   bool
	MissStartsCooldown bool
}

// DefaultPolicy returns the stock constants.
func DefaultPolicy() Policy {
	return Policy{
		MinDamage:        1,
		CritMultiplier:   1.5,
		BraveReset:       ResetBase,
		MissConsumesCost: true,
	}
}

// Validate rejects constants resolution cannot work with.
func (p Policy) Validate() error {
	if p.MinDamage < 0 {
		return fmt.Errorf("min damage %d is negative", p.MinDamage)
	}
	if p.CritMultiplier < 1 {
		return fmt.Errorf("crit multiplier %v is below 1", p.CritMultiplier)
	}
	switch p.BraveReset {
	case ResetBase, ResetZero:
	default:
		return fmt.Errorf("unknown brave reset %q", p.BraveReset)
	}
	if p.BreakBonus < 0 {
		return fmt.Errorf("break bonus %d is negative", p.BreakBonus)
	}
	return nil
}
