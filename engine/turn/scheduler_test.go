package turn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nathoo/bravecore/types"
)

type fakeActor struct {
	speed int
	hp    int
}

func (a *fakeActor) Alive() bool { return a.hp > 0 }

func (a *fakeActor) EffectiveSpeed() int {
	if a.hp <= 0 {
		return 0
	}
	return max(1, a.speed)
}

func actor(speed int) *fakeActor { return &fakeActor{speed: speed, hp: 100} }

func run(t *testing.T, s *Scheduler, turns int) []string {
	t.Helper()
	var order []string
	for i := 0; i < turns; i++ {
		id, err := s.Next()
		require.NoError(t, err)
		order = append(order, id)
		require.NoError(t, s.Complete(id, 0))
	}
	return order
}

func TestScheduler_FasterActsMoreOften(t *testing.T) {
	s := New(Options{Threshold: 1000})
	require.NoError(t, s.Add("fast", types.SideParty, actor(200)))
	require.NoError(t, s.Add("slow", types.SideEnemies, actor(100)))

	order := run(t, s, 6)
	// Both cross at tick 10; the faster wins the tie.
	assert.Equal(t, []string{"fast", "fast", "slow", "fast", "fast", "slow"}, order)
	assert.Equal(t, int64(20), s.Ticks())
}

func TestScheduler_TieBreakInsertionOrder(t *testing.T) {
	s := New(DefaultOptions())
	require.NoError(t, s.Add("a", types.SideParty, actor(100)))
	require.NoError(t, s.Add("b", types.SideParty, actor(100)))
	require.NoError(t, s.Add("c", types.SideEnemies, actor(100)))

	assert.Equal(t, []string{"a", "b", "c", "a", "b", "c"}, run(t, s, 6))
}

func TestScheduler_SameTickCrossingFasterWins(t *testing.T) {
	s := New(Options{Threshold: 1000, CarryOver: true})
	require.NoError(t, s.Add("slow", types.SideEnemies, actor(100)))
	require.NoError(t, s.Add("fast", types.SideParty, actor(200)))
	require.NoError(t, s.Restore([]Entry{{"slow", 990}, {"fast", 810}}, 0))

	// Both cross on tick 1 (1090 and 1010); speed decides, not overflow.
	id, err := s.Next()
	require.NoError(t, err)
	assert.Equal(t, "fast", id)
	require.NoError(t, s.Complete(id, 0))

	assert.Equal(t, StateReady, s.State("slow"), "crossed but not chosen")
	id, err = s.Next()
	require.NoError(t, err)
	assert.Equal(t, "slow", id)
	assert.Equal(t, int64(1), s.Ticks(), "no tick needed for a waiting ready actor")
}

func TestScheduler_EarliestCrossingBeatsSpeed(t *testing.T) {
	s := New(Options{Threshold: 1000, CarryOver: true})
	require.NoError(t, s.Add("fast", types.SideParty, actor(400)))
	require.NoError(t, s.Add("slow", types.SideEnemies, actor(100)))
	require.NoError(t, s.Restore([]Entry{{"fast", 0}, {"slow", 950}}, 0))

	// slow crosses on tick 1; fast would need three ticks.
	id, err := s.Next()
	require.NoError(t, err)
	assert.Equal(t, "slow", id)
	assert.Equal(t, int64(1), s.Ticks())
	require.NoError(t, s.Complete(id, 0))

	id, err = s.Next()
	require.NoError(t, err)
	assert.Equal(t, "fast", id)
	assert.Equal(t, int64(3), s.Ticks())
}

func TestScheduler_StateMachine(t *testing.T) {
	s := New(DefaultOptions())
	require.NoError(t, s.Add("a", types.SideParty, actor(100)))
	require.NoError(t, s.Add("b", types.SideEnemies, actor(50)))
	assert.Equal(t, StateWaiting, s.State("a"))

	err := s.Complete("a", 0)
	assert.ErrorIs(t, err, ErrIllegalStateTransition, "cannot finish without acting")

	id, err := s.Next()
	require.NoError(t, err)
	assert.Equal(t, "a", id)
	assert.Equal(t, StateActing, s.State("a"))
	acting, ok := s.Acting()
	assert.True(t, ok)
	assert.Equal(t, "a", acting)

	_, err = s.Next()
	assert.ErrorIs(t, err, ErrIllegalStateTransition, "one actor at a time")

	err = s.Complete("b", 0)
	assert.ErrorIs(t, err, ErrIllegalStateTransition)

	require.NoError(t, s.Complete("a", 0))
	assert.Equal(t, StateWaiting, s.State("a"))

	err = s.Revive("a")
	assert.ErrorIs(t, err, ErrIllegalStateTransition, "only the defeated revive")

	err = s.Complete("nobody", 0)
	assert.ErrorIs(t, err, ErrUnknownActor)
}

func TestScheduler_DefeatedAreSkipped(t *testing.T) {
	s := New(DefaultOptions())
	a, b := actor(100), actor(100)
	require.NoError(t, s.Add("a", types.SideParty, a))
	require.NoError(t, s.Add("b", types.SideEnemies, b))
	require.NoError(t, s.Add("c", types.SideEnemies, actor(100)))

	a.hp = 0
	order := run(t, s, 4)
	assert.Equal(t, []string{"b", "c", "b", "c"}, order)
	assert.Equal(t, StateDefeated, s.State("a"))

	a.hp = 50
	id, err := s.Next()
	require.NoError(t, err)
	assert.Equal(t, "a", id, "revived at zero like the others, insertion order decides")
}

func TestScheduler_DefeatWhileActing(t *testing.T) {
	s := New(DefaultOptions())
	a := actor(100)
	require.NoError(t, s.Add("a", types.SideParty, a))
	require.NoError(t, s.Add("b", types.SideEnemies, actor(10)))

	id, err := s.Next()
	require.NoError(t, err)
	require.Equal(t, "a", id)

	a.hp = 0
	require.NoError(t, s.Complete("a", 0))
	assert.Equal(t, StateDefeated, s.State("a"))

	id, err = s.Next()
	require.NoError(t, err)
	assert.Equal(t, "b", id)
}

func TestScheduler_CarryOverAndCastTime(t *testing.T) {
	s := New(Options{Threshold: 1000, CarryOver: true})
	require.NoError(t, s.Add("a", types.SideParty, actor(300)))

	id, err := s.Next()
	require.NoError(t, err)
	assert.Equal(t, 1200, s.Readiness(id))
	require.NoError(t, s.Complete(id, 50))
	assert.Equal(t, 200-500, s.Readiness(id))

	flat := New(Options{Threshold: 1000})
	require.NoError(t, flat.Add("a", types.SideParty, actor(300)))
	id, err = flat.Next()
	require.NoError(t, err)
	require.NoError(t, flat.Complete(id, 0))
	assert.Equal(t, 0, flat.Readiness(id))
}

func TestScheduler_NoActors(t *testing.T) {
	s := New(DefaultOptions())
	_, err := s.Next()
	assert.ErrorIs(t, err, ErrNoActors)

	require.NoError(t, s.Add("ghost", types.SideParty, &fakeActor{speed: 100}))
	assert.Equal(t, StateDefeated, s.State("ghost"))
	_, err = s.Next()
	assert.ErrorIs(t, err, ErrNoActors)

	assert.Error(t, s.Add("ghost", types.SideParty, actor(1)), "duplicate id")
}

func TestScheduler_Winner(t *testing.T) {
	s := New(DefaultOptions())
	hero, g1, g2 := actor(100), actor(100), actor(100)
	require.NoError(t, s.Add("hero", types.SideParty, hero))
	require.NoError(t, s.Add("g1", types.SideEnemies, g1))
	require.NoError(t, s.Add("g2", types.SideEnemies, g2))

	_, ok := s.Winner()
	assert.False(t, ok)

	g1.hp = 0
	_, ok = s.Winner()
	assert.False(t, ok, "g2 still stands")

	g2.hp = 0
	side, ok := s.Winner()
	assert.True(t, ok)
	assert.Equal(t, types.SideParty, side)
}

func TestScheduler_Deterministic(t *testing.T) {
	build := func() *Scheduler {
		s := New(DefaultOptions())
		for i, sp := range []int{137, 91, 91, 250, 64} {
			require.NoError(t, s.Add(string(rune('a'+i)), types.SideParty, actor(sp)))
		}
		return s
	}
	assert.Equal(t, run(t, build(), 40), run(t, build(), 40))
}

func TestScheduler_SnapshotRestore(t *testing.T) {
	s := New(DefaultOptions())
	require.NoError(t, s.Add("a", types.SideParty, actor(170)))
	require.NoError(t, s.Add("b", types.SideEnemies, actor(120)))
	run(t, s, 3)

	snap, ticks := s.Snapshot(), s.Ticks()
	want := run(t, s, 5)

	r := New(DefaultOptions())
	require.NoError(t, r.Add("a", types.SideParty, actor(170)))
	require.NoError(t, r.Add("b", types.SideEnemies, actor(120)))
	require.NoError(t, r.Restore(snap, ticks))
	assert.Equal(t, want, run(t, r, 5))

	assert.ErrorIs(t, r.Restore([]Entry{{"zz", 1}}, 0), ErrUnknownActor)
}
