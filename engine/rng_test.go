package engine

import (
	"testing"

	"github.com/nathoo/bravecore/engine/combat"
)

// draws mimics one resolution: an accuracy roll, a crit roll and an AI pick.
func draws(r *RNG, n int) []int {
	var out []int
	for range n {
		out = append(out, r.Roll(100), r.Roll(100), r.WeightedSelect([]int{3, 1}))
	}
	return out
}

func TestRNG_SameSeedSameSequence(t *testing.T) {
	a, b := draws(NewRNG(42), 20), draws(NewRNG(42), 20)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("draw %d: %d vs %d from the same seed", i, a[i], b[i])
		}
	}

	c := draws(NewRNG(43), 20)
	same := true
	for i := range a {
		same = same && a[i] == c[i]
	}
	if same {
		t.Error("different seeds produced identical sequences")
	}
}

func TestRNG_Ranges(t *testing.T) {
	rng := NewRNG(99)
	for _, sides := range []int{1, 6, 100} {
		for range 500 {
			if r := rng.Roll(sides); r < 1 || r > sides {
				t.Fatalf("Roll(%d) = %d", sides, r)
			}
		}
	}
	for range 200 {
		if rng.Chance(0) {
			t.Fatal("0% chance succeeded")
		}
		if !rng.Chance(100) {
			t.Fatal("100% chance failed")
		}
	}
}

func TestRNG_WeightedSelect(t *testing.T) {
	rng := NewRNG(12345)

	// Zero-weight entries are never picked.
	for range 500 {
		if idx := rng.WeightedSelect([]int{0, 5, 0}); idx != 1 {
			t.Fatalf("WeightedSelect picked zero-weight index %d", idx)
		}
	}

	counts := [3]int{}
	const trials = 10000
	for range trials {
		counts[rng.WeightedSelect([]int{70, 20, 10})]++
	}
	for i, want := range []int{7000, 2000, 1000} {
		if d := counts[i] - want; d < -800 || d > 800 {
			t.Errorf("index %d chosen %d times, want about %d", i, counts[i], want)
		}
	}
}

func TestRNG_PositionAndRestore(t *testing.T) {
	rng := NewRNG(7)
	if rng.Position() != 0 {
		t.Fatalf("fresh position = %d", rng.Position())
	}
	draws(rng, 10)
	if rng.Position() != 30 {
		t.Fatalf("position after 30 draws = %d", rng.Position())
	}

	mark := rng.Position()
	want := draws(rng, 5)

	restored := RestoreRNG(7, mark)
	if restored.Position() != mark || restored.Seed() != 7 {
		t.Fatalf("restored at %d seed %d", restored.Position(), restored.Seed())
	}
	got := draws(restored, 5)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("draw %d after restore: %d, want %d", i, got[i], want[i])
		}
	}
}

func TestRNG_ChanceIsOneD100Roll(t *testing.T) {
	var _ combat.Roller = (*RNG)(nil)

	a, b := NewRNG(31), NewRNG(31)
	for i := range 300 {
		percent := i % 101
		roll := b.Roll(100)
		if got, want := a.Chance(percent), roll <= percent; got != want {
			t.Fatalf("draw %d: Chance(%d) = %v, d100 roll was %d", i, percent, got, roll)
		}
	}
	if a.Position() != b.Position() {
		t.Errorf("Position = %d, want %d", a.Position(), b.Position())
	}
}
