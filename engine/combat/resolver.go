// Package combat resolves skills between combatants: accuracy, Brave and HP
// damage, healing, and on-hit statuses.
package combat

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/nathoo/bravecore/engine/status"
	"github.com/nathoo/bravecore/types"
)

var (
	ErrInvalidTargetSelector  = errors.New("invalid target selector")
	ErrIllegalStateTransition = errors.New("illegal state transition")
	ErrOnCooldown             = errors.New("skill on cooldown")
	ErrInsufficientResource   = errors.New("insufficient resource")
)

// Roller supplies dice. engine.RNG satisfies it.
type Roller interface {
	Roll(sides int) int
	Chance(percent int) bool // one d100 roll at or under percent
}

// Resolver applies skills. It holds no per-battle state.
type Resolver struct {
	reg    *status.Registry
	policy Policy
	log    *slog.Logger
}

// NewResolver creates a resolver. A nil logger means slog.Default().
func NewResolver(reg *status.Registry, policy Policy, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{reg: reg, policy: policy, log: logger}
}

// Policy returns the resolver's constants.
func (r *Resolver) Policy() Policy {
	return r.policy
}

type statusPlan struct {
	kind     status.Kind
	duration int
	potency  float64
	chance   int
}

// plan is a fully validated action. Building one never mutates anything.
type plan struct {
	targets  []*Combatant
	statuses []statusPlan
	cleanse  status.Predicate
}

// Validate checks that attacker may use sk on defenders, without mutating
// any state.
func (r *Resolver) Validate(attacker *Combatant, defenders []*Combatant, sk types.SkillDef) error {
	_, err := r.plan(attacker, defenders, sk)
	return err
}

func (r *Resolver) plan(attacker *Combatant, defenders []*Combatant, sk types.SkillDef) (*plan, error) {
	if !attacker.Alive() {
		return nil, fmt.Errorf("%w: %s is defeated", ErrIllegalStateTransition, attacker.ID)
	}
	if attacker.Statuses.Controlled() {
		return nil, fmt.Errorf("%w: %s cannot act", ErrIllegalStateTransition, attacker.ID)
	}
	if sk.DamageType == types.DamageMagical && attacker.Statuses.Silenced() {
		return nil, fmt.Errorf("%w: %s is silenced", ErrIllegalStateTransition, attacker.ID)
	}
	if n := attacker.Cooldown(sk.ID); n > 0 {
		return nil, fmt.Errorf("%w: %s (%d turns)", ErrOnCooldown, sk.ID, n)
	}
	if sk.Cost > attacker.MP() {
		return nil, fmt.Errorf("%w: %s needs %d MP, has %d", ErrInsufficientResource, sk.ID, sk.Cost, attacker.MP())
	}
	if !validCategory(sk.Category) {
		return nil, fmt.Errorf("skill %s: unknown category %q", sk.ID, sk.Category)
	}

	targets, err := r.targets(attacker, defenders, sk)
	if err != nil {
		return nil, err
	}
	p := &plan{targets: targets}

	for _, app := range sk.Statuses {
		d, err := r.reg.LookupName(app.Kind)
		if err != nil {
			return nil, fmt.Errorf("skill %s: %w", sk.ID, err)
		}
		sp := statusPlan{kind: d.Kind, chance: app.Chance}
		sp.duration, sp.potency = d.Fill(app.Duration, app.Potency)
		if err := d.Check(sp.duration, sp.potency); err != nil {
			return nil, fmt.Errorf("skill %s: %w", sk.ID, err)
		}
		p.statuses = append(p.statuses, sp)
	}

	p.cleanse, err = r.cleanse(sk)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *Resolver) targets(attacker *Combatant, defenders []*Combatant, sk types.SkillDef) ([]*Combatant, error) {
	switch sk.Target {
	case types.SelectorSelf:
		if damaging(sk.Category) {
			return nil, fmt.Errorf("%w: %s cannot target its user", ErrInvalidTargetSelector, sk.ID)
		}
		if len(defenders) == 0 || (len(defenders) == 1 && defenders[0] == attacker) {
			return []*Combatant{attacker}, nil
		}
		return nil, fmt.Errorf("%w: %s targets self only", ErrInvalidTargetSelector, sk.ID)
	case types.SelectorSingle:
		if len(defenders) != 1 {
			return nil, fmt.Errorf("%w: %s takes one target, got %d", ErrInvalidTargetSelector, sk.ID, len(defenders))
		}
	case types.SelectorAll:
		if len(defenders) == 0 {
			return nil, fmt.Errorf("%w: %s needs at least one target", ErrInvalidTargetSelector, sk.ID)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidTargetSelector, sk.Target)
	}

	seen := make(map[*Combatant]bool, len(defenders))
	for _, t := range defenders {
		if t == nil {
			return nil, fmt.Errorf("%w: nil target", ErrInvalidTargetSelector)
		}
		if seen[t] {
			return nil, fmt.Errorf("%w: %s listed twice", ErrInvalidTargetSelector, t.ID)
		}
		seen[t] = true

		switch {
		case targetsAllies(sk.Category) && t.Side != attacker.Side:
			return nil, fmt.Errorf("%w: %s must target allies, %s is an enemy", ErrInvalidTargetSelector, sk.ID, t.ID)
		case targetsEnemies(sk.Category) && t.Side == attacker.Side:
			return nil, fmt.Errorf("%w: %s must target enemies, %s is an ally", ErrInvalidTargetSelector, sk.ID, t.ID)
		}
		if !t.Alive() && !sk.Revive {
			return nil, fmt.Errorf("%w: %s is defeated", ErrInvalidTargetSelector, t.ID)
		}
	}
	out := make([]*Combatant, len(defenders))
	copy(out, defenders)
	return out, nil
}

func (r *Resolver) cleanse(sk types.SkillDef) (status.Predicate, error) {
	var preds []status.Predicate
	switch sk.Cleanse {
	case "":
	case "debuffs":
		preds = append(preds, status.Debuffs())
	case "buffs":
		preds = append(preds, status.Buffs())
	case "all":
		preds = append(preds, status.All())
	default:
		return nil, fmt.Errorf("skill %s: unknown cleanse %q", sk.ID, sk.Cleanse)
	}
	if len(sk.CleanseKinds) > 0 {
		kinds := make([]status.Kind, 0, len(sk.CleanseKinds))
		for _, name := range sk.CleanseKinds {
			k, err := status.ParseKind(name)
			if err != nil {
				return nil, fmt.Errorf("skill %s cleanse: %w", sk.ID, err)
			}
			kinds = append(kinds, k)
		}
		preds = append(preds, status.OfKind(kinds...))
	}
	if len(preds) == 0 {
		return nil, nil
	}
	return func(in status.Instance, d status.Descriptor) bool {
		for _, p := range preds {
			if p(in, d) {
				return true
			}
		}
		return false
	}, nil
}

// Resolve validates the action, then applies it to completion. A rejected
// action returns an error and leaves every combatant untouched.
func (r *Resolver) Resolve(attacker *Combatant, defenders []*Combatant, sk types.SkillDef, dice Roller) (Result, error) {
	p, err := r.plan(attacker, defenders, sk)
	if err != nil {
		return Result{}, err
	}

	res := Result{
		Actor:          attacker.ID,
		Skill:          sk.ID,
		Category:       sk.Category,
		AttackerBefore: attacker.Snapshot(),
		Targets:        make([]TargetResult, len(p.targets)),
	}
	startBrave := attacker.Brave()

	// Accuracy, critical and Brave damage, target by target.
	for i, t := range p.targets {
		tr := &res.Targets[i]
		tr.ID = t.ID
		tr.Before = t.Snapshot()
		if !r.hits(attacker, t, sk, dice) {
			tr.Miss = true
			continue
		}
		if damaging(sk.Category) {
			tr.Critical = dice.Chance(attacker.Crit)
		}
		if hasBravePhase(sk.Category) {
			r.braveDamage(attacker, t, sk, tr)
		}
	}

	if hasHPPhase(sk.Category) {
		r.commitHP(attacker, p.targets, sk, res.Targets, startBrave)
	}

	for i, t := range p.targets {
		tr := &res.Targets[i]
		if tr.Miss {
			continue
		}
		r.restore(attacker, t, sk, tr)
		if p.cleanse != nil {
			tr.Removed = append(tr.Removed, t.Statuses.Cleanse(p.cleanse)...)
		}
		r.applyStatuses(attacker, t, p.statuses, tr, dice)
	}

	hit := false
	for i, t := range p.targets {
		tr := &res.Targets[i]
		tr.After = t.Snapshot()
		tr.Defeated = tr.Before.HP > 0 && !t.Alive()
		if !tr.Miss {
			hit = true
		}
		res.BraveDamage += tr.BraveDamage
		res.HPDamage += tr.HPDamage
		res.Healed += tr.Healed
		res.Critical = res.Critical || tr.Critical
		res.Break = res.Break || tr.Break
	}
	res.Miss = !hit

	if hit || r.policy.MissConsumesCost {
		attacker.SpendMP(sk.Cost)
		res.CostPaid = sk.Cost
	}
	if hit || r.policy.MissStartsCooldown {
		attacker.StartCooldown(sk.ID, sk.Cooldown)
		res.Cooldown = sk.Cooldown
	}
	res.AttackerAfter = attacker.Snapshot()

	r.log.Debug("skill resolved",
		"actor", attacker.ID,
		"skill", sk.ID,
		"targets", len(p.targets),
		"miss", res.Miss,
		"brv", res.BraveDamage,
		"hp", res.HPDamage,
		"crit", res.Critical,
	)
	return res, nil
}

// hits rolls accuracy. Ultimates and skills aimed at allies never miss.
func (r *Resolver) hits(attacker, t *Combatant, sk types.SkillDef, dice Roller) bool {
	if sk.Category == types.CategoryUltimate || t.Side == attacker.Side {
		return true
	}
	acc := sk.Accuracy
	if acc <= 0 {
		acc = 100
	}
	return dice.Chance(acc - t.EffectiveEvasion())
}

func (r *Resolver) braveDamage(attacker, t *Combatant, sk types.SkillDef, tr *TargetResult) {
	power := max(attacker.EffectiveAttack(), attacker.EffectiveMagic())
	dmg := floor(float64(power)*sk.BraveCoeff) - t.EffectiveDefense()
	dmg = max(dmg, r.policy.MinDamage)

	before := t.Brave()
	tr.BraveDamage = dmg
	tr.BraveLost = t.LoseBrave(dmg)
	tr.BraveGained = attacker.GainBrave(dmg)
	if before > 0 && t.Brave() == 0 {
		tr.Break = true
		tr.BraveGained += attacker.GainBrave(r.policy.BreakBonus)
	}
}

// commitHP converts the attacker's Brave into HP damage, split evenly over
// the targets that were hit, then resets the attacker's Brave. No target
// takes more than its share, critical or not.
func (r *Resolver) commitHP(attacker *Combatant, targets []*Combatant, sk types.SkillDef, trs []TargetResult, startBrave int) {
	var hit []int
	for i := range trs {
		if !trs[i].Miss {
			hit = append(hit, i)
		}
	}
	if len(hit) == 0 {
		return
	}

	pool := attacker.Brave()
	if !hasBravePhase(sk.Category) {
		pool = min(pool, startBrave)
	}
	share, rem := pool/len(hit), pool%len(hit)
	for j, i := range hit {
		s := share
		if j == 0 {
			s += rem
		}
		dmg := floor(float64(s) * sk.HPCoeff)
		if trs[i].Critical {
			dmg = floor(float64(dmg) * r.policy.CritMultiplier)
		}
		dmg = min(dmg, s)
		trs[i].HPDamage = targets[i].ApplyDamage(dmg)
	}
	attacker.ResetBrave(r.policy.BraveReset)
}

func (r *Resolver) restore(attacker, t *Combatant, sk types.SkillDef, tr *TargetResult) {
	if sk.Category != types.CategoryHeal && !sk.Revive {
		return
	}
	amount := floor(float64(max(attacker.EffectiveAttack(), attacker.EffectiveMagic())) * sk.HealCoeff)
	if !t.Alive() {
		if sk.Revive {
			tr.Healed = t.Revive(max(amount, 1))
			tr.Revived = tr.Healed > 0
		}
		return
	}
	if sk.Category == types.CategoryHeal {
		tr.Healed = t.ApplyHeal(amount)
	}
}

func (r *Resolver) applyStatuses(attacker, t *Combatant, plans []statusPlan, tr *TargetResult, dice Roller) {
	for _, sp := range plans {
		if sp.chance > 0 && sp.chance < 100 && !dice.Chance(sp.chance) {
			tr.Resisted = append(tr.Resisted, sp.kind)
			continue
		}
		ar, err := t.Statuses.Apply(sp.kind, sp.duration, sp.potency, attacker.ID)
		if err != nil {
			// Unreachable after plan; keep going so resolution completes.
			r.log.Warn("status apply failed", "target", t.ID, "kind", sp.kind.String(), "err", err)
			continue
		}
		tr.Removed = append(tr.Removed, ar.Cured...)
		if ar.Outcome != status.Rejected {
			tr.Applied = append(tr.Applied, ar)
		}
	}
}

func validCategory(c types.Category) bool {
	switch c {
	case types.CategoryBraveAttack, types.CategoryHPAttack, types.CategoryBraveHPAttack,
		types.CategoryHeal, types.CategoryBuff, types.CategoryDebuff,
		types.CategoryUltimate, types.CategorySpecial:
		return true
	}
	return false
}

func hasBravePhase(c types.Category) bool {
	return c == types.CategoryBraveAttack || c == types.CategoryBraveHPAttack || c == types.CategoryUltimate
}

func hasHPPhase(c types.Category) bool {
	return c == types.CategoryHPAttack || c == types.CategoryBraveHPAttack || c == types.CategoryUltimate
}

func damaging(c types.Category) bool {
	return hasBravePhase(c) || hasHPPhase(c)
}

// Hostile reports whether skills of category c are aimed at enemies.
func Hostile(c types.Category) bool {
	return targetsEnemies(c)
}

// Friendly reports whether skills of category c are aimed at allies.
func Friendly(c types.Category) bool {
	return targetsAllies(c)
}

func targetsAllies(c types.Category) bool {
	return c == types.CategoryHeal || c == types.CategoryBuff
}

func targetsEnemies(c types.Category) bool {
	return damaging(c) || c == types.CategoryDebuff
}

// floor truncates with a small epsilon so 0.29*100 yields 29, not 28.
func floor(x float64) int {
	return int(math.Floor(x + 1e-9))
}
