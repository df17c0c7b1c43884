package engine

import (
	"math/rand"

	"github.com/nathoo/bravecore/engine/combat"
	"github.com/nathoo/bravecore/types"
)

// countingSource counts draws from the underlying source so a restored RNG
// lands on exactly the same state, whatever the callers asked for.
type countingSource struct {
	src rand.Source
	n   int64
}

func (s *countingSource) Int63() int64 {
	s.n++
	return s.src.Int63()
}

func (s *countingSource) Seed(seed int64) {
	s.src.Seed(seed)
	s.n = 0
}

// RNG wraps math/rand.Rand with deterministic position tracking.
// Position counts source draws, enabling save/restore.
type RNG struct {
	seed int64
	cs   *countingSource
	src  *rand.Rand
}

// NewRNG creates a new deterministic RNG from a seed.
func NewRNG(seed int64) *RNG {
	cs := &countingSource{src: rand.NewSource(seed)}
	return &RNG{
		seed: seed,
		cs:   cs,
		src:  rand.New(cs),
	}
}

// Roll returns a random integer in [1, sides].
func (r *RNG) Roll(sides int) int {
	return r.src.Intn(sides) + 1
}

// Chance reports whether a d100 roll lands at or under percent.
func (r *RNG) Chance(percent int) bool {
	return r.Roll(100) <= percent
}

// WeightedSelect returns an index chosen by weighted random selection.
// weights must be non-empty with all positive values.
func (r *RNG) WeightedSelect(weights []int) int {
	total := 0
	for _, w := range weights {
		total += w
	}
	roll := r.src.Intn(total)
	cumulative := 0
	for i, w := range weights {
		cumulative += w
		if roll < cumulative {
			return i
		}
	}
	return len(weights) - 1
}

// Seed returns the seed the RNG was created with.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Position returns the number of source draws made since creation.
func (r *RNG) Position() int64 {
	return r.cs.n
}

// RestoreRNG creates an RNG and advances it to the given position.
// This reproduces the exact RNG state for save/load.
func RestoreRNG(seed int64, position int64) *RNG {
	rng := NewRNG(seed)
	for i := int64(0); i < position; i++ {
		rng.cs.Int63()
	}
	return rng
}

// ResolveSeeded resolves one skill with a fresh RNG seeded by seed, so the
// same inputs always give the same result.
func ResolveSeeded(r *combat.Resolver, attacker *combat.Combatant, defenders []*combat.Combatant, sk types.SkillDef, seed int64) (combat.Result, error) {
	return r.Resolve(attacker, defenders, sk, NewRNG(seed))
}
