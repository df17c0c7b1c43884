package events

import (
	"strings"
	"testing"

	"github.com/nathoo/bravecore/types"
)

func TestPublish_DeliversInSubscriptionOrder(t *testing.T) {
	var b Bus
	var got []string
	b.Subscribe(func(e types.Event) { got = append(got, "first:"+e.Type) })
	b.Subscribe(func(e types.Event) { got = append(got, "second:"+e.Type) })

	b.Publish(
		types.Event{Type: ActionResolved},
		types.Event{Type: CombatantDefeated},
	)

	want := []string{
		"first:action_resolved", "second:action_resolved",
		"first:combatant_defeated", "second:combatant_defeated",
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d deliveries, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("delivery %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestSubscribe_FiltersByType(t *testing.T) {
	var b Bus
	count := 0
	b.Subscribe(func(types.Event) { count++ }, BattleEnded, BattleFled)

	b.Publish(
		types.Event{Type: StatusTick},
		types.Event{Type: BattleFled},
		types.Event{Type: ActionResolved},
	)
	if count != 1 {
		t.Fatalf("expected 1 filtered delivery, got %d", count)
	}
}

func TestSubscribe_Unsubscribe(t *testing.T) {
	var b Bus
	count := 0
	cancel := b.Subscribe(func(types.Event) { count++ })
	b.Subscribe(func(types.Event) {})

	b.Publish(types.Event{Type: StatusTick})
	cancel()
	b.Publish(types.Event{Type: StatusTick})

	if count != 1 {
		t.Fatalf("expected 1 delivery before unsubscribe, got %d", count)
	}
	if b.Len() != 1 {
		t.Fatalf("expected 1 remaining subscriber, got %d", b.Len())
	}
}

func TestPublish_NestedEventsQueued(t *testing.T) {
	var b Bus
	var got []string
	depth := 0
	b.Subscribe(func(e types.Event) {
		depth++
		defer func() { depth-- }()
		if depth > 1 {
			t.Fatalf("handler re-entered for %s", e.Type)
		}
		got = append(got, e.Type)
		if e.Type == StatusTick {
			b.Publish(types.Event{Type: StatusExpired})
		}
	})

	b.Publish(types.Event{Type: StatusTick}, types.Event{Type: CombatantDefeated})
	want := []string{StatusTick, CombatantDefeated, StatusExpired}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("delivery order = %v, want %v", got, want)
	}

	got = nil
	b.Publish(types.Event{Type: BattleEnded})
	if len(got) != 1 || got[0] != BattleEnded {
		t.Fatalf("bus should accept publishes again, got %v", got)
	}
}

func TestPublish_NoHandlers(t *testing.T) {
	var b Bus
	b.Publish(types.Event{Type: BattleEnded, Data: map[string]any{"winner": "party"}})
}
