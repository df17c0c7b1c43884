// Package status implements the status-effect registry and the per-combatant
// status manager.
package status

import (
	"errors"
	"fmt"

	"github.com/nathoo/bravecore/types"
)

var (
	ErrUnknownEffectKind = errors.New("unknown effect kind")
	ErrInvalidPotency    = errors.New("invalid potency")
	ErrInvalidDuration   = errors.New("invalid duration")
)

// Descriptor is the registered contract for one status kind.
type Descriptor struct {
	Kind        Kind
	Name        string
	Debuff      bool
	Duration    int
	Potency     float64
	MinPotency  float64
	Stacking    types.StackPolicy
	Conflicts   []Kind
	CanKill     bool
	Description string
}

// DescriptorFromDef converts a loaded definition into a Descriptor.
func DescriptorFromDef(def types.EffectDescriptor) (Descriptor, error) {
	kind, err := ParseKind(def.Kind)
	if err != nil {
		return Descriptor{}, err
	}
	stacking := def.Stacking
	switch stacking {
	case "":
		stacking = types.StackRefresh
	case types.StackRefresh, types.StackAdditive, types.StackIgnore:
	default:
		return Descriptor{}, fmt.Errorf("status %s: unknown stacking policy %q", kind, def.Stacking)
	}
	d := Descriptor{
		Kind:        kind,
		Name:        def.Name,
		Debuff:      def.Debuff,
		Duration:    def.Duration,
		Potency:     def.Potency,
		MinPotency:  def.MinPotency,
		Stacking:    stacking,
		CanKill:     def.CanKill,
		Description: def.Description,
	}
	if d.Name == "" {
		d.Name = kind.String()
	}
	for _, c := range def.Conflicts {
		ck, err := ParseKind(c)
		if err != nil {
			return Descriptor{}, fmt.Errorf("status %s conflicts: %w", kind, err)
		}
		d.Conflicts = append(d.Conflicts, ck)
	}
	return d, nil
}

// Fill replaces a zero duration or potency with d's defaults.
func (d Descriptor) Fill(duration int, potency float64) (int, float64) {
	if duration == 0 {
		duration = d.Duration
	}
	if potency == 0 {
		potency = d.Potency
	}
	return duration, potency
}

// Check validates one application of d's kind.
func (d Descriptor) Check(duration int, potency float64) error {
	if duration <= 0 {
		return fmt.Errorf("%w: %s duration %d", ErrInvalidDuration, d.Kind, duration)
	}
	if d.Kind.usesPotency() && potency <= 0 {
		return fmt.Errorf("%w: %s potency %v", ErrInvalidPotency, d.Kind, potency)
	}
	if d.MinPotency > 0 && potency < d.MinPotency {
		return fmt.Errorf("%w: %s potency %v below minimum %v", ErrInvalidPotency, d.Kind, potency, d.MinPotency)
	}
	return nil
}

// Registry is the immutable set of registered descriptors.
type Registry struct {
	byKind map[Kind]Descriptor
	order  []Kind
}

// NewRegistry builds a registry. Duplicate or invalid kinds are rejected.
func NewRegistry(descs ...Descriptor) (*Registry, error) {
	r := &Registry{byKind: make(map[Kind]Descriptor, len(descs))}
	for _, d := range descs {
		if !d.Kind.Valid() {
			return nil, fmt.Errorf("%w: %s", ErrUnknownEffectKind, d.Kind)
		}
		if _, dup := r.byKind[d.Kind]; dup {
			return nil, fmt.Errorf("duplicate status kind %s", d.Kind)
		}
		r.byKind[d.Kind] = d
		r.order = append(r.order, d.Kind)
	}
	return r, nil
}

// Lookup returns the descriptor for kind.
func (r *Registry) Lookup(kind Kind) (Descriptor, error) {
	d, ok := r.byKind[kind]
	if !ok {
		return Descriptor{}, fmt.Errorf("%w: %s", ErrUnknownEffectKind, kind)
	}
	return d, nil
}

// LookupName parses name and returns its descriptor.
func (r *Registry) LookupName(name string) (Descriptor, error) {
	kind, err := ParseKind(name)
	if err != nil {
		return Descriptor{}, err
	}
	return r.Lookup(kind)
}

// Kinds returns registered kinds in registration order.
func (r *Registry) Kinds() []Kind {
	out := make([]Kind, len(r.order))
	copy(out, r.order)
	return out
}

// Len returns the number of registered kinds.
func (r *Registry) Len() int {
	return len(r.order)
}

// conflicting reports whether a and b cure each other.
func (r *Registry) conflicting(a, b Kind) bool {
	for _, k := range r.byKind[a].Conflicts {
		if k == b {
			return true
		}
	}
	for _, k := range r.byKind[b].Conflicts {
		if k == a {
			return true
		}
	}
	return false
}
