// Package turn orders combatants by accumulated readiness. Each combatant
// moves through a small state machine: waiting, ready, acting, and back to
// waiting, with defeated as a side exit that revival leaves again.
package turn

import (
	"context"
	"errors"
	"fmt"

	"github.com/looplab/fsm"

	"github.com/nathoo/bravecore/engine/combat"
	"github.com/nathoo/bravecore/types"
)

// States.
const (
	StateWaiting  = "waiting"
	StateReady    = "ready"
	StateActing   = "acting"
	StateDefeated = "defeated"
)

// Events.
const (
	eventReady  = "ready"
	eventAct    = "act"
	eventFinish = "finish"
	eventDefeat = "defeat"
	eventRevive = "revive"
)

var ErrIllegalStateTransition = combat.ErrIllegalStateTransition

var (
	ErrUnknownActor = errors.New("unknown actor")
	ErrNoActors     = errors.New("no living actors")
)

// Actor is what the scheduler reads from a combatant.
type Actor interface {
	Alive() bool
	EffectiveSpeed() int
}

// Options tune readiness.
type Options struct {
	Threshold int  // readiness needed to act
	CarryOver bool // keep readiness above the threshold after acting
}

// DefaultOptions returns a threshold of 1000 with carry-over.
func DefaultOptions() Options {
	return Options{Threshold: 1000, CarryOver: true}
}

type entry struct {
	id        string
	side      types.Side
	actor     Actor
	readiness int
	order     int
	machine   *fsm.FSM
}

// Scheduler yields actors one at a time. Not safe for concurrent use.
type Scheduler struct {
	opts    Options
	entries []*entry
	byID    map[string]*entry
	acting  *entry
	ticks   int64
}

// New creates an empty scheduler. A non-positive threshold falls back to
// the default.
func New(opts Options) *Scheduler {
	if opts.Threshold <= 0 {
		opts.Threshold = DefaultOptions().Threshold
	}
	return &Scheduler{opts: opts, byID: make(map[string]*entry)}
}

func newMachine() *fsm.FSM {
	return fsm.NewFSM(
		StateWaiting,
		fsm.Events{
			{Name: eventReady, Src: []string{StateWaiting}, Dst: StateReady},
			{Name: eventAct, Src: []string{StateReady}, Dst: StateActing},
			{Name: eventFinish, Src: []string{StateActing}, Dst: StateWaiting},
			{Name: eventDefeat, Src: []string{StateWaiting, StateReady, StateActing}, Dst: StateDefeated},
			{Name: eventRevive, Src: []string{StateDefeated}, Dst: StateWaiting},
		},
		fsm.Callbacks{},
	)
}

// Add registers an actor. Insertion order breaks ties.
func (s *Scheduler) Add(id string, side types.Side, a Actor) error {
	if _, dup := s.byID[id]; dup {
		return fmt.Errorf("duplicate actor %q", id)
	}
	e := &entry{id: id, side: side, actor: a, order: len(s.entries), machine: newMachine()}
	if !a.Alive() {
		_ = e.machine.Event(context.Background(), eventDefeat)
	}
	s.entries = append(s.entries, e)
	s.byID[id] = e
	return nil
}

func (s *Scheduler) fire(e *entry, event string) error {
	if err := e.machine.Event(context.Background(), event); err != nil {
		return fmt.Errorf("%w: %s cannot %s from %s: %v", ErrIllegalStateTransition, e.id, event, e.machine.Current(), err)
	}
	return nil
}

// sync moves actors whose HP changed under them in or out of defeated.
func (s *Scheduler) sync() {
	for _, e := range s.entries {
		alive := e.actor.Alive()
		switch {
		case !alive && e.machine.Current() != StateDefeated:
			_ = e.machine.Event(context.Background(), eventDefeat)
			e.readiness = 0
			if s.acting == e {
				s.acting = nil
			}
		case alive && e.machine.Current() == StateDefeated:
			_ = e.machine.Event(context.Background(), eventRevive)
			e.readiness = 0
		}
	}
}

// Next advances readiness to the first tick on which someone crosses the
// threshold and returns the fastest of those actors. That actor is acting
// until Complete.
func (s *Scheduler) Next() (string, error) {
	s.sync()
	if s.acting != nil {
		return "", fmt.Errorf("%w: %s is still acting", ErrIllegalStateTransition, s.acting.id)
	}

	var living []*entry
	for _, e := range s.entries {
		if e.machine.Current() != StateDefeated {
			living = append(living, e)
		}
	}
	if len(living) == 0 {
		return "", ErrNoActors
	}

	// Jump straight to the first tick on which someone crosses.
	t := s.opts.Threshold
	steps := -1
	for _, e := range living {
		need := 0
		if e.readiness < t {
			sp := e.actor.EffectiveSpeed()
			need = (t - e.readiness + sp - 1) / sp
		}
		if steps < 0 || need < steps {
			steps = need
		}
	}
	if steps > 0 {
		for _, e := range living {
			e.readiness += steps * e.actor.EffectiveSpeed()
		}
		s.ticks += int64(steps)
	}

	var best *entry
	for _, e := range living {
		if e.readiness < t {
			continue
		}
		if e.machine.Current() == StateWaiting {
			if err := s.fire(e, eventReady); err != nil {
				return "", err
			}
		}
		if best == nil || s.before(e, best) {
			best = e
		}
	}
	if err := s.fire(best, eventAct); err != nil {
		return "", err
	}
	s.acting = best
	return best.id, nil
}

// before orders actors at or over the threshold. Readiness never advances
// while someone is over it, so they all crossed on the current tick: higher
// speed first, then earlier insertion.
func (s *Scheduler) before(a, b *entry) bool {
	if sa, sb := a.actor.EffectiveSpeed(), b.actor.EffectiveSpeed(); sa != sb {
		return sa > sb
	}
	return a.order < b.order
}

// Complete ends id's turn. castPercent of a threshold is taken off the
// new readiness, delaying the next turn.
func (s *Scheduler) Complete(id string, castPercent int) error {
	e, ok := s.byID[id]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownActor, id)
	}
	if s.acting != e {
		return fmt.Errorf("%w: %s is %s, not acting", ErrIllegalStateTransition, id, e.machine.Current())
	}
	if err := s.fire(e, eventFinish); err != nil {
		return err
	}
	s.acting = nil

	if s.opts.CarryOver {
		e.readiness -= s.opts.Threshold
	} else {
		e.readiness = 0
	}
	e.readiness -= s.opts.Threshold * castPercent / 100
	s.sync()
	return nil
}

// Defeat moves id to defeated from any live state.
func (s *Scheduler) Defeat(id string) error {
	e, ok := s.byID[id]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownActor, id)
	}
	if err := s.fire(e, eventDefeat); err != nil {
		return err
	}
	e.readiness = 0
	if s.acting == e {
		s.acting = nil
	}
	return nil
}

// Revive returns a defeated id to waiting with no readiness.
func (s *Scheduler) Revive(id string) error {
	e, ok := s.byID[id]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownActor, id)
	}
	if err := s.fire(e, eventRevive); err != nil {
		return err
	}
	e.readiness = 0
	return nil
}

// State returns id's current state.
func (s *Scheduler) State(id string) string {
	if e, ok := s.byID[id]; ok {
		return e.machine.Current()
	}
	return ""
}

// Readiness returns id's accumulated readiness.
func (s *Scheduler) Readiness(id string) int {
	if e, ok := s.byID[id]; ok {
		return e.readiness
	}
	return 0
}

// Acting returns the actor whose turn is open, if any.
func (s *Scheduler) Acting() (string, bool) {
	if s.acting == nil {
		return "", false
	}
	return s.acting.id, true
}

// Ticks returns how many scheduler ticks have elapsed.
func (s *Scheduler) Ticks() int64 {
	return s.ticks
}

// Threshold returns the readiness needed to act.
func (s *Scheduler) Threshold() int {
	return s.opts.Threshold
}

// Winner reports the side still standing once the other has nobody with
// HP left. ok is false while both sides fight on.
func (s *Scheduler) Winner() (side types.Side, ok bool) {
	alive := map[types.Side]bool{}
	sides := map[types.Side]bool{}
	for _, e := range s.entries {
		sides[e.side] = true
		if e.actor.Alive() {
			alive[e.side] = true
		}
	}
	if len(sides) < 2 {
		return "", false
	}
	for side := range sides {
		if !alive[side] {
			for other := range sides {
				if other != side && alive[other] {
					return other, true
				}
			}
			return "", true // everyone fell
		}
	}
	return "", false
}

// Entry is a saved scheduler position.
type Entry struct {
	ID        string `json:"id"`
	Readiness int    `json:"readiness"`
}

// Snapshot returns every actor's readiness in insertion order.
func (s *Scheduler) Snapshot() []Entry {
	out := make([]Entry, len(s.entries))
	for i, e := range s.entries {
		out[i] = Entry{ID: e.id, Readiness: e.readiness}
	}
	return out
}

// Restore sets readiness from a snapshot and puts every living actor back
// to waiting. Unknown ids are an error.
func (s *Scheduler) Restore(entries []Entry, ticks int64) error {
	for _, en := range entries {
		if _, ok := s.byID[en.ID]; !ok {
			return fmt.Errorf("%w: %q", ErrUnknownActor, en.ID)
		}
	}
	s.acting = nil
	for _, e := range s.entries {
		if e.actor.Alive() {
			e.machine.SetState(StateWaiting)
		} else {
			e.machine.SetState(StateDefeated)
		}
	}
	for _, en := range entries {
		s.byID[en.ID].readiness = en.Readiness
	}
	s.ticks = ticks
	return nil
}
