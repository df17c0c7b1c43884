// Package engine provides the Battle orchestrator that wires together
// parsing, resolution, the turn scheduler, statuses and events into single
// turns.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/nathoo/bravecore/engine/combat"
	"github.com/nathoo/bravecore/engine/events"
	"github.com/nathoo/bravecore/engine/parser"
	"github.com/nathoo/bravecore/engine/resolve"
	"github.com/nathoo/bravecore/engine/state"
	"github.com/nathoo/bravecore/engine/status"
	"github.com/nathoo/bravecore/engine/turn"
	"github.com/nathoo/bravecore/types"
)

var (
	ErrBattleOver       = errors.New("battle is over")
	ErrUnknownCombatant = errors.New("unknown combatant")
	ErrSkillNotKnown    = errors.New("skill not known")
)

// Outcome is how a battle stands.
type Outcome string

const (
	Ongoing Outcome = "ongoing"
	Victory Outcome = "victory" // the party won
	Defeat  Outcome = "defeat"
	Fled    Outcome = "fled"
)

type config struct {
	seed      int64
	policy    combat.Policy
	sched     turn.Options
	logger    *slog.Logger
	autoParty bool
}

// Option configures a Battle.
type Option func(*config)

// WithSeed fixes the RNG seed. Without it the seed comes from the clock.
func WithSeed(seed int64) Option {
	return func(c *config) { c.seed = seed }
}

// WithPolicy sets the combat constants.
func WithPolicy(p combat.Policy) Option {
	return func(c *config) { c.policy = p }
}

// WithSchedulerOptions sets the readiness threshold and carry-over.
func WithSchedulerOptions(o turn.Options) Option {
	return func(c *config) { c.sched = o }
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *config) { c.logger = l }
}

// WithAutoParty hands the party to the AI as well.
func WithAutoParty(on bool) Option {
	return func(c *config) { c.autoParty = on }
}

// Battle holds the game definitions and the mutable state of one encounter.
// Not safe for concurrent use.
type Battle struct {
	Defs      *state.Defs
	Encounter types.EncounterDef
	RNG       *RNG
	Events    *events.Bus

	resolver  *combat.Resolver
	sched     *turn.Scheduler
	order     []*combat.Combatant
	byID      map[string]*combat.Combatant
	down      map[string]bool
	log       *slog.Logger
	autoParty bool

	turn       int
	outcome    Outcome
	commandLog []string
	journal    []types.Event // events since the last Step
}

// New creates a battle for encounterID. An empty id means the game's start
// encounter.
func New(defs *state.Defs, encounterID string, opts ...Option) (*Battle, error) {
	cfg := config{
		seed:   time.Now().UnixNano(),
		policy: combat.DefaultPolicy(),
		sched:  turn.DefaultOptions(),
	}
	for _, o := range opts {
		o(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	if err := cfg.policy.Validate(); err != nil {
		return nil, err
	}

	enc, err := defs.Encounter(encounterID)
	if err != nil {
		return nil, err
	}
	roster, err := defs.Roster(enc)
	if err != nil {
		return nil, err
	}

	b := &Battle{
		Defs:      defs,
		Encounter: enc,
		RNG:       NewRNG(cfg.seed),
		Events:    &events.Bus{},
		resolver:  combat.NewResolver(defs.Registry, cfg.policy, cfg.logger),
		sched:     turn.New(cfg.sched),
		byID:      make(map[string]*combat.Combatant, len(roster)),
		down:      make(map[string]bool),
		log:       cfg.logger,
		autoParty: cfg.autoParty,
		outcome:   Ongoing,
	}
	for _, r := range roster {
		c := combat.NewCombatant(r.ID, r.Template, defs.Registry)
		if err := b.sched.Add(c.ID, c.Side, c); err != nil {
			return nil, err
		}
		b.order = append(b.order, c)
		b.byID[c.ID] = c
		if !c.Alive() {
			b.down[c.ID] = true
		}
	}

	b.log.Info("battle created",
		"encounter", enc.ID,
		"combatants", len(b.order),
		"seed", cfg.seed,
	)
	return b, nil
}

// Combatant returns the combatant with id.
func (b *Battle) Combatant(id string) (*combat.Combatant, bool) {
	c, ok := b.byID[id]
	return c, ok
}

// Combatants returns every combatant, party first, in encounter order.
func (b *Battle) Combatants() []*combat.Combatant {
	return slices.Clone(b.order)
}

// Side returns the combatants fighting for side.
func (b *Battle) Side(side types.Side) []*combat.Combatant {
	var out []*combat.Combatant
	for _, c := range b.order {
		if c.Side == side {
			out = append(out, c)
		}
	}
	return out
}

// Acting returns the combatant whose turn is open.
func (b *Battle) Acting() (*combat.Combatant, bool) {
	id, ok := b.sched.Acting()
	if !ok {
		return nil, false
	}
	return b.byID[id], true
}

// Turn returns the number of completed turns.
func (b *Battle) Turn() int { return b.turn }

// Outcome returns how the battle stands.
func (b *Battle) Outcome() Outcome { return b.outcome }

// Over reports whether the battle has ended.
func (b *Battle) Over() bool { return b.outcome != Ongoing }

// CommandLog returns every command passed to Step.
func (b *Battle) CommandLog() []string { return slices.Clone(b.commandLog) }

// Readiness returns id's accumulated readiness.
func (b *Battle) Readiness(id string) int { return b.sched.Readiness(id) }

// Threshold returns the readiness needed to act.
func (b *Battle) Threshold() int { return b.sched.Threshold() }

// Policy returns the combat constants in use.
func (b *Battle) Policy() combat.Policy { return b.resolver.Policy() }

// KnownSkills returns the skills c may use: its class skills, then any
// skill its behaviour table names.
func (b *Battle) KnownSkills(c *combat.Combatant) []types.SkillDef {
	known := b.Defs.Catalog.ListForActor(c.Class)
	for _, entry := range c.Behavior {
		if slices.ContainsFunc(known, func(s types.SkillDef) bool { return s.ID == entry.Skill }) {
			continue
		}
		if sk, err := b.Defs.Catalog.Get(entry.Skill); err == nil {
			known = append(known, sk)
		}
	}
	return known
}

// TargetPool returns every combatant sk could legally be aimed at by actor.
func (b *Battle) TargetPool(actor *combat.Combatant, sk types.SkillDef) []*combat.Combatant {
	if sk.Target == types.SelectorSelf {
		return []*combat.Combatant{actor}
	}
	var out []*combat.Combatant
	for _, c := range b.order {
		switch {
		case combat.Friendly(sk.Category) && c.Side != actor.Side:
			continue
		case combat.Hostile(sk.Category) && c.Side == actor.Side:
			continue
		}
		if !c.Alive() && !sk.Revive {
			continue
		}
		out = append(out, c)
	}
	return out
}

// AdvanceTurn returns the next actor. Frozen or stunned actors lose their
// turn on the way: their statuses tick and a turn_skipped event fires. If a
// turn is already open its actor is returned again.
func (b *Battle) AdvanceTurn() (string, error) {
	if b.Over() {
		return "", ErrBattleOver
	}
	if id, ok := b.sched.Acting(); ok {
		return id, nil
	}
	for {
		id, err := b.sched.Next()
		if err != nil {
			return "", err
		}
		c := b.byID[id]
		if !c.Statuses.Controlled() {
			b.log.Debug("turn", "actor", id, "ticks", b.sched.Ticks())
			return id, nil
		}

		b.emit(types.Event{Type: events.TurnSkipped, Data: map[string]any{
			"actor":  id,
			"reason": controllingStatus(c).String(),
		}})
		if err := b.finishTurn(c, 0); err != nil {
			return "", err
		}
		if b.Over() {
			return "", ErrBattleOver
		}
	}
}

func controllingStatus(c *combat.Combatant) status.Kind {
	for _, k := range []status.Kind{status.Stun, status.Freeze} {
		if c.Statuses.Has(k) {
			return k
		}
	}
	return status.KindInvalid
}

// ResolveAction resolves skillID for the acting combatant. With no target
// ids, self and all-target skills pick their targets themselves. A rejected
// action changes nothing and the turn stays open.
func (b *Battle) ResolveAction(actorID string, targetIDs []string, skillID string) (combat.Result, error) {
	if b.Over() {
		return combat.Result{}, ErrBattleOver
	}
	actor, ok := b.byID[actorID]
	if !ok {
		return combat.Result{}, fmt.Errorf("%w: %q", ErrUnknownCombatant, actorID)
	}
	if acting, ok := b.sched.Acting(); !ok || acting != actorID {
		return combat.Result{}, fmt.Errorf("%w: it is not %s's turn", combat.ErrIllegalStateTransition, actorID)
	}
	sk, err := b.Defs.Catalog.Get(skillID)
	if err != nil {
		return combat.Result{}, err
	}
	if !slices.ContainsFunc(b.KnownSkills(actor), func(s types.SkillDef) bool { return s.ID == sk.ID }) {
		return combat.Result{}, fmt.Errorf("%w: %s cannot use %s", ErrSkillNotKnown, actor.Name, sk.Name)
	}

	targets, err := b.lookupTargets(actor, sk, targetIDs)
	if err != nil {
		return combat.Result{}, err
	}
	res, err := b.resolver.Resolve(actor, targets, sk, b.RNG)
	if err != nil {
		return combat.Result{}, err
	}

	b.emit(types.Event{Type: events.ActionResolved, Data: map[string]any{
		"actor":  actorID,
		"skill":  sk.ID,
		"result": res,
	}})
	if err := b.finishTurn(actor, sk.CastPercent); err != nil {
		return res, err
	}
	return res, nil
}

func (b *Battle) lookupTargets(actor *combat.Combatant, sk types.SkillDef, ids []string) ([]*combat.Combatant, error) {
	if len(ids) == 0 {
		switch sk.Target {
		case types.SelectorAll, types.SelectorSelf:
			return b.TargetPool(actor, sk), nil
		}
		return nil, nil
	}
	out := make([]*combat.Combatant, 0, len(ids))
	for _, id := range ids {
		c, ok := b.byID[id]
		if !ok {
			return nil, fmt.Errorf("%w: unknown target %q", combat.ErrInvalidTargetSelector, id)
		}
		out = append(out, c)
	}
	return out, nil
}

// Wait passes the acting combatant's turn.
func (b *Battle) Wait(actorID string) error {
	if b.Over() {
		return ErrBattleOver
	}
	if acting, ok := b.sched.Acting(); !ok || acting != actorID {
		return fmt.Errorf("%w: it is not %s's turn", combat.ErrIllegalStateTransition, actorID)
	}
	b.emit(types.Event{Type: events.TurnSkipped, Data: map[string]any{
		"actor":  actorID,
		"reason": "wait",
	}})
	return b.finishTurn(b.byID[actorID], 0)
}

// Flee aborts the battle with no winner.
func (b *Battle) Flee() error {
	if b.Over() {
		return ErrBattleOver
	}
	b.outcome = Fled
	b.emit(types.Event{Type: events.BattleFled, Data: map[string]any{"turns": b.turn}})
	b.log.Info("battle fled", "encounter", b.Encounter.ID, "turns", b.turn)
	return nil
}

// TickStatuses advances id's statuses by one turn, publishing a status_tick
// for every effect that did something and a status_expired for every
// effect that ran out.
func (b *Battle) TickStatuses(id string) ([]status.TickEvent, error) {
	c, ok := b.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCombatant, id)
	}
	ticks := c.Statuses.Tick()
	for _, t := range ticks {
		if t.Amount > 0 {
			b.emit(types.Event{Type: events.StatusTick, Data: map[string]any{
				"combatant": id,
				"status":    t.Kind.String(),
				"amount":    t.Amount,
			}})
		}
		if t.Expired {
			b.emit(types.Event{Type: events.StatusExpired, Data: map[string]any{
				"combatant": id,
				"status":    t.Kind.String(),
			}})
		}
	}
	b.settle()
	return ticks, nil
}

// finishTurn closes c's turn: cooldowns count down, c's statuses tick and
// the scheduler takes cast time off its readiness.
func (b *Battle) finishTurn(c *combat.Combatant, castPercent int) error {
	c.EndTurn()
	if _, err := b.TickStatuses(c.ID); err != nil {
		return err
	}
	b.turn++
	if err := b.sched.Complete(c.ID, castPercent); err != nil {
		return err
	}
	b.settle()
	return nil
}

// settle publishes defeats and ends the battle once a side is wiped out.
func (b *Battle) settle() {
	for _, c := range b.order {
		switch {
		case !c.Alive() && !b.down[c.ID]:
			b.down[c.ID] = true
			b.emit(types.Event{Type: events.CombatantDefeated, Data: map[string]any{
				"combatant": c.ID,
				"side":      string(c.Side),
			}})
		case c.Alive() && b.down[c.ID]:
			delete(b.down, c.ID)
		}
	}
	if b.outcome != Ongoing {
		return
	}
	side, ok := b.sched.Winner()
	if !ok {
		return
	}
	b.outcome = outcomeFor(side)
	b.emit(types.Event{Type: events.BattleEnded, Data: map[string]any{
		"outcome": string(b.outcome),
		"winner":  string(side),
		"turns":   b.turn,
	}})
	b.log.Info("battle ended", "encounter", b.Encounter.ID, "outcome", b.outcome, "turns", b.turn)
}

func outcomeFor(winner types.Side) Outcome {
	if winner == types.SideParty {
		return Victory
	}
	return Defeat
}

// emit records events for the current step and publishes them.
func (b *Battle) emit(evs ...types.Event) {
	b.journal = append(b.journal, evs...)
	b.Events.Publish(evs...)
}

func (b *Battle) aiControlled(c *combat.Combatant) bool {
	return c.Side != types.SideParty || b.autoParty
}

// runAI plays AI turns until a player-controlled combatant is up or the
// battle ends.
func (b *Battle) runAI() error {
	for !b.Over() {
		id, err := b.AdvanceTurn()
		if err != nil {
			if errors.Is(err, ErrBattleOver) {
				return nil
			}
			return err
		}
		c := b.byID[id]
		if !b.aiControlled(c) {
			return nil
		}
		if err := b.aiTurn(c); err != nil {
			return err
		}
	}
	return nil
}

// Play runs an all-AI battle to the end, or until maxTurns turns have been
// played when maxTurns is positive. The party must be AI-controlled.
func (b *Battle) Play(ctx context.Context, maxTurns int) (Outcome, error) {
	if !b.autoParty {
		return b.outcome, errors.New("play needs an AI-controlled party")
	}
	for !b.Over() {
		if err := ctx.Err(); err != nil {
			return b.outcome, err
		}
		if maxTurns > 0 && b.turn >= maxTurns {
			break
		}
		id, err := b.AdvanceTurn()
		if err != nil {
			if errors.Is(err, ErrBattleOver) {
				break
			}
			return b.outcome, err
		}
		if err := b.aiTurn(b.byID[id]); err != nil {
			return b.outcome, err
		}
		b.journal = b.journal[:0]
	}
	return b.outcome, nil
}

// Begin opens the battle: it announces the encounter and plays any AI
// turns that come before the first party turn.
func (b *Battle) Begin() types.Result {
	b.journal = b.journal[:0]
	var out []string
	if b.Encounter.Name != "" {
		out = append(out, b.Encounter.Name)
	}
	if b.Encounter.Intro != "" {
		out = append(out, b.Encounter.Intro)
	}
	var foes []string
	for _, c := range b.Side(types.SideEnemies) {
		foes = append(foes, c.Name)
	}
	out = append(out, strings.Join(foes, ", ")+" appear!")

	if err := b.runAI(); err != nil {
		out = append(out, err.Error())
	}
	return b.result(out, 0)
}

// Step processes one player command for the acting party member, then
// plays AI turns until the next party turn.
func (b *Battle) Step(input string) types.Result {
	b.journal = b.journal[:0]

	if b.Over() {
		return types.Result{Output: []string{"The battle is over. Use /load to restore a save or /quit to exit."}}
	}

	intent := parser.Parse(input)
	b.commandLog = append(b.commandLog, input)

	if intent.Verb == "" {
		return types.Result{Output: []string{"What will you do?"}}
	}

	// Catch up on AI turns if nobody is acting yet.
	if err := b.runAI(); err != nil {
		return b.result([]string{err.Error()}, 0)
	}
	before := b.narrate(b.journal)
	mark := len(b.journal)
	if b.Over() {
		return b.result(nil, 0)
	}
	actor, _ := b.Acting()

	var out []string
	var err error
	acted := false
	switch intent.Verb {
	case "help":
		out = helpText
	case "skills":
		out = b.describeSkills(actor)
	case "status", "look":
		out, err = b.describeStatus(intent.Object)
	case "again":
		out = []string{"Nothing to repeat."}
	case "wait":
		err = b.Wait(actor.ID)
		acted = err == nil
	case "flee":
		err = b.Flee()
		acted = err == nil
	case "attack", "use":
		err = b.playerAction(actor, intent)
		acted = err == nil
	default:
		out = []string{fmt.Sprintf("I don't know how to %q.", intent.Verb)}
	}
	if err != nil {
		out = append(out, describeError(err))
	}
	if acted {
		if err := b.runAI(); err != nil {
			out = append(out, err.Error())
		}
	}

	res := b.result(out, mark)
	res.Output = append(before, res.Output...)
	return res
}

// result bundles out with the narration of events from mark onwards.
func (b *Battle) result(out []string, mark int) types.Result {
	res := types.Result{Events: slices.Clone(b.journal)}
	res.Output = append(res.Output, out...)
	res.Output = append(res.Output, b.narrate(b.journal[mark:])...)
	return res
}

func (b *Battle) playerAction(actor *combat.Combatant, intent types.Intent) error {
	known := b.KnownSkills(actor)
	var sk types.SkillDef
	var targetID string

	switch intent.Verb {
	case "attack":
		i := slices.IndexFunc(known, func(s types.SkillDef) bool { return s.Category == types.CategoryBraveAttack })
		if i < 0 {
			return fmt.Errorf("%w: %s has no Brave attack", ErrSkillNotKnown, actor.Name)
		}
		sk = known[i]
		if name := strings.TrimSpace(intent.Object + " " + intent.Target); name != "" {
			id, err := resolve.Target(b.candidates(actor, sk), name)
			if err != nil {
				return err
			}
			targetID = id
		}
	default:
		res, err := resolve.Resolve(known, func(s types.SkillDef) []resolve.Candidate {
			return b.candidates(actor, s)
		}, intent)
		if err != nil {
			return err
		}
		if sk, err = b.Defs.Catalog.Get(res.SkillID); err != nil {
			return err
		}
		targetID = res.TargetID
	}

	var ids []string
	if sk.Target == types.SelectorSingle {
		if targetID == "" {
			pool := b.TargetPool(actor, sk)
			if len(pool) != 1 {
				return &resolve.AmbiguityError{Name: "target for " + sk.Name, Candidates: names(pool)}
			}
			targetID = pool[0].ID
		}
		ids = []string{targetID}
	}
	_, err := b.ResolveAction(actor.ID, ids, sk.ID)
	return err
}

func (b *Battle) candidates(actor *combat.Combatant, sk types.SkillDef) []resolve.Candidate {
	pool := b.TargetPool(actor, sk)
	out := make([]resolve.Candidate, len(pool))
	for i, c := range pool {
		out[i] = resolve.Candidate{ID: c.ID, Name: c.Name}
	}
	return out
}

func names(cs []*combat.Combatant) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.Name
	}
	return out
}

func describeError(err error) string {
	var amb *resolve.AmbiguityError
	var nf *resolve.NotFoundError
	switch {
	case errors.As(err, &amb), errors.As(err, &nf):
		return err.Error()
	case errors.Is(err, combat.ErrOnCooldown):
		return "That skill is not ready yet."
	case errors.Is(err, combat.ErrInsufficientResource):
		return "Not enough MP."
	}
	return "You can't do that: " + err.Error()
}

var helpText = []string{
	"Commands:",
	"  use <skill> [on <target>]   use a skill (also: cast, 사용)",
	"  attack <target>             basic Brave attack",
	"  skills                      list your skills",
	"  status [name]               show combatants",
	"  wait                        pass the turn",
	"  flee                        run from the battle",
	"  again                       repeat the last command",
}
