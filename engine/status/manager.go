package status

import "github.com/nathoo/bravecore/types"

// Owner is the combatant a Manager belongs to. The manager may only touch
// the owner's HP and Brave.
type Owner interface {
	Alive() bool
	ApplyDamage(amount int) int
	ApplyHeal(amount int) int
	GainBrave(amount int) int
	HP() int
}

// Instance is one active status on a combatant.
type Instance struct {
	Kind      Kind
	Remaining int
	Potency   float64
	Source    string // combatant ID, attribution only
}

// Outcome is what Apply did.
type Outcome int

const (
	Rejected Outcome = iota
	Created
	Refreshed
	Stacked
)

func (o Outcome) String() string {
	switch o {
	case Created:
		return "created"
	case Refreshed:
		return "refreshed"
	case Stacked:
		return "stacked"
	default:
		return "rejected"
	}
}

// ApplyResult reports an Apply call.
type ApplyResult struct {
	Kind    Kind
	Outcome Outcome
	Cured   []Kind // conflicting kinds removed first
}

// TickEvent is one effect's contribution to a Tick.
type TickEvent struct {
	Kind    Kind
	Amount  int // HP damage, HP healed or Brave gained
	Expired bool
}

// Manager owns the active-status list of one combatant.
// Not safe for concurrent use; a battle runs on one goroutine.
type Manager struct {
	reg       *Registry
	owner     Owner
	instances []*Instance // application order
}

// NewManager creates an empty manager for owner.
func NewManager(reg *Registry, owner Owner) *Manager {
	return &Manager{reg: reg, owner: owner}
}

// Validate checks an application without changing anything.
func (m *Manager) Validate(kind Kind, duration int, potency float64) error {
	d, err := m.reg.Lookup(kind)
	if err != nil {
		return err
	}
	return d.Check(duration, potency)
}

// Apply adds kind to the owner, resolving an existing instance by the
// registered stacking policy.
func (m *Manager) Apply(kind Kind, duration int, potency float64, source string) (ApplyResult, error) {
	if err := m.Validate(kind, duration, potency); err != nil {
		return ApplyResult{Kind: kind}, err
	}
	res := ApplyResult{Kind: kind}
	if !m.owner.Alive() {
		return res, nil
	}
	d, _ := m.reg.Lookup(kind)

	if existing := m.find(kind); existing != nil {
		switch d.Stacking {
		case types.StackIgnore:
			return res, nil
		case types.StackAdditive:
			existing.Remaining = duration
			existing.Potency += potency
			existing.Source = source
			res.Outcome = Stacked
		default:
			existing.Remaining = duration
			existing.Potency = potency
			existing.Source = source
			res.Outcome = Refreshed
		}
		return res, nil
	}

	res.Cured = m.Cleanse(func(in Instance, _ Descriptor) bool {
		return m.reg.conflicting(kind, in.Kind)
	})

	m.instances = append(m.instances, &Instance{
		Kind:      kind,
		Remaining: duration,
		Potency:   potency,
		Source:    source,
	})
	res.Outcome = Created
	return res, nil
}

// Tick fires periodic effects in application order, then counts every
// instance down one turn. Instances reaching zero are removed after firing.
func (m *Manager) Tick() []TickEvent {
	if len(m.instances) == 0 {
		return nil
	}
	events := make([]TickEvent, 0, len(m.instances))
	kept := m.instances[:0]
	for _, in := range m.instances {
		ev := TickEvent{Kind: in.Kind}
		if m.owner.Alive() {
			ev.Amount = m.fire(in)
		}
		in.Remaining--
		if in.Remaining <= 0 {
			ev.Expired = true
		} else {
			kept = append(kept, in)
		}
		events = append(events, ev)
	}
	for i := len(kept); i < len(m.instances); i++ {
		m.instances[i] = nil
	}
	m.instances = kept
	return events
}

func (m *Manager) fire(in *Instance) int {
	amount := int(in.Potency)
	if amount <= 0 {
		return 0
	}
	switch in.Kind.Strategy() {
	case StrategyPeriodicDamage:
		d, _ := m.reg.Lookup(in.Kind)
		if !d.CanKill && amount >= m.owner.HP() {
			amount = m.owner.HP() - 1
			if amount <= 0 {
				return 0
			}
		}
		return m.owner.ApplyDamage(amount)
	case StrategyPeriodicHeal:
		return m.owner.ApplyHeal(amount)
	case StrategyPeriodicBrave:
		return m.owner.GainBrave(amount)
	default:
		return 0
	}
}

// Predicate selects instances for Cleanse.
type Predicate func(Instance, Descriptor) bool

// Debuffs matches harmful statuses.
func Debuffs() Predicate {
	return func(_ Instance, d Descriptor) bool { return d.Debuff }
}

// Buffs matches beneficial statuses.
func Buffs() Predicate {
	return func(_ Instance, d Descriptor) bool { return !d.Debuff }
}

// OfKind matches any of kinds.
func OfKind(kinds ...Kind) Predicate {
	return func(in Instance, _ Descriptor) bool {
		for _, k := range kinds {
			if in.Kind == k {
				return true
			}
		}
		return false
	}
}

// All matches everything.
func All() Predicate {
	return func(Instance, Descriptor) bool { return true }
}

// Cleanse removes every instance matching pred and returns the removed kinds
// in application order.
func (m *Manager) Cleanse(pred Predicate) []Kind {
	var removed []Kind
	kept := m.instances[:0]
	for _, in := range m.instances {
		d, _ := m.reg.Lookup(in.Kind)
		if pred(*in, d) {
			removed = append(removed, in.Kind)
			continue
		}
		kept = append(kept, in)
	}
	for i := len(kept); i < len(m.instances); i++ {
		m.instances[i] = nil
	}
	m.instances = kept
	return removed
}

// Has reports whether kind is active.
func (m *Manager) Has(kind Kind) bool {
	return m.find(kind) != nil
}

// Get returns a copy of the active instance of kind.
func (m *Manager) Get(kind Kind) (Instance, bool) {
	if in := m.find(kind); in != nil {
		return *in, true
	}
	return Instance{}, false
}

// Active returns copies of all active instances in application order.
func (m *Manager) Active() []Instance {
	out := make([]Instance, len(m.instances))
	for i, in := range m.instances {
		out[i] = *in
	}
	return out
}

// Len returns the number of active instances.
func (m *Manager) Len() int {
	return len(m.instances)
}

// Modifier returns the multiplier active stat modifiers apply to stat.
// Potency is a percentage: attack_up 20 gives 1.2, slow 50 gives 0.5.
func (m *Manager) Modifier(stat Stat) float64 {
	mul := 1.0
	for _, in := range m.instances {
		s, sign := in.Kind.modifies()
		if s != stat {
			continue
		}
		f := 1 + sign*in.Potency/100
		if f < 0 {
			f = 0
		}
		mul *= f
	}
	return mul
}

// Controlled reports whether the owner loses its turns (stun, freeze).
func (m *Manager) Controlled() bool {
	return m.Has(Stun) || m.Has(Freeze)
}

// Silenced reports whether magical skills are blocked.
func (m *Manager) Silenced() bool {
	return m.Has(Silence)
}

// Restore replaces the active list, keeping the given order.
func (m *Manager) Restore(instances []Instance) error {
	restored := make([]*Instance, 0, len(instances))
	for _, in := range instances {
		if _, err := m.reg.Lookup(in.Kind); err != nil {
			return err
		}
		if in.Remaining <= 0 {
			continue
		}
		c := in
		restored = append(restored, &c)
	}
	m.instances = restored
	return nil
}

func (m *Manager) find(kind Kind) *Instance {
	for _, in := range m.instances {
		if in.Kind == kind {
			return in
		}
	}
	return nil
}
