// Package events delivers battle events to observers once a result exists.
// Events a handler publishes are queued behind the current batch.
package events

import (
	"slices"

	"github.com/nathoo/bravecore/types"
)

// Event types.
const (
	ActionResolved    = "action_resolved"
	StatusTick        = "status_tick"
	StatusExpired     = "status_expired"
	TurnSkipped       = "turn_skipped"
	CombatantDefeated = "combatant_defeated"
	BattleEnded       = "battle_ended"
	BattleFled        = "battle_fled"
)

// Handler observes one event.
type Handler func(types.Event)

// Bus fans events out to subscribers in subscription order.
type Bus struct {
	handlers   []subscription
	next       int
	publishing bool
	queue      []types.Event
}

type subscription struct {
	id   int
	only map[string]bool
	fn   Handler
}

// Subscribe registers fn for all events, or only for the listed types.
// The returned func removes the subscription.
func (b *Bus) Subscribe(fn Handler, only ...string) func() {
	b.next++
	sub := subscription{id: b.next, fn: fn}
	if len(only) > 0 {
		sub.only = make(map[string]bool, len(only))
		for _, t := range only {
			sub.only[t] = true
		}
	}
	b.handlers = append(b.handlers, sub)
	id := sub.id
	return func() {
		for i, h := range b.handlers {
			if h.id == id {
				b.handlers = append(b.handlers[:i], b.handlers[i+1:]...)
				return
			}
		}
	}
}

// Publish delivers events in order. A handler that publishes does not
// recurse: its events are delivered once everything queued before them has
// been.
func (b *Bus) Publish(events ...types.Event) {
	b.queue = append(b.queue, events...)
	if b.publishing {
		return
	}
	b.publishing = true
	defer func() {
		b.publishing = false
		b.queue = nil
	}()

	for len(b.queue) > 0 {
		ev := b.queue[0]
		b.queue = b.queue[1:]
		for _, h := range slices.Clone(b.handlers) {
			if h.only != nil && !h.only[ev.Type] {
				continue
			}
			h.fn(ev)
		}
	}
}

// Len returns the number of subscribers.
func (b *Bus) Len() int {
	return len(b.handlers)
}
