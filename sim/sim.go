// Package sim runs many AI-vs-AI battles concurrently and summarises them.
package sim

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/hako/durafmt"
	"github.com/nathoo/bravecore/engine"
	"github.com/nathoo/bravecore/engine/combat"
	"github.com/nathoo/bravecore/engine/events"
	"github.com/nathoo/bravecore/engine/state"
	"github.com/nathoo/bravecore/engine/status"
	"github.com/nathoo/bravecore/engine/turn"
	"github.com/nathoo/bravecore/types"
	"golang.org/x/sync/errgroup"
)

var ErrNoBattles = errors.New("battles must be positive")

// Options configures a simulation run.
type Options struct {
	Encounter string // empty: the game's start encounter
	Battles   int
	Seed      int64 // battle i uses Seed+i
	Workers   int   // 0 = 1
	MaxTurns  int   // per battle; 0 = unlimited
	Turn      turn.Options
	Logger    *slog.Logger
}

// BattleResult is the outcome of one simulated battle.
type BattleResult struct {
	Seed     int64
	Outcome  engine.Outcome
	Turns    int
	HPDamage int
}

// Report summarises a run.
type Report struct {
	Encounter    string
	Battles      int
	Wins         map[types.Side]int
	Fled         int
	Timeouts     int
	MeanTurns    float64
	MeanHPDamage float64
	Results      []BattleResult // in seed order
	Elapsed      time.Duration  // wall clock; zero when not measured
}

// Run plays opts.Battles independent battles on at most opts.Workers
// goroutines. Each battle owns all of its state; only defs is shared.
func Run(ctx context.Context, defs *state.Defs, policy combat.Policy, opts Options) (Report, error) {
	if opts.Battles <= 0 {
		return Report{}, ErrNoBattles
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.Turn.Threshold == 0 {
		opts.Turn = turn.DefaultOptions()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	enc, err := defs.Encounter(opts.Encounter)
	if err != nil {
		return Report{}, err
	}

	start := time.Now()
	results := make([]BattleResult, opts.Battles)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)
	for i := range opts.Battles {
		seed := opts.Seed + int64(i)
		g.Go(func() error {
			r, err := play(gctx, defs, enc.ID, policy, opts, seed)
			if err != nil {
				return fmt.Errorf("battle %d (seed %d): %w", i, seed, err)
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Report{}, err
	}

	rep := summarise(enc.ID, results)
	rep.Elapsed = time.Since(start)
	opts.Logger.Info("simulation finished",
		"encounter", enc.ID,
		"battles", rep.Battles,
		"party_wins", rep.Wins[types.SideParty],
		"enemy_wins", rep.Wins[types.SideEnemies],
		"timeouts", rep.Timeouts,
		"elapsed", rep.Elapsed,
	)
	return rep, nil
}

func play(ctx context.Context, defs *state.Defs, encounter string, policy combat.Policy, opts Options, seed int64) (BattleResult, error) {
	b, err := engine.New(defs, encounter,
		engine.WithSeed(seed),
		engine.WithPolicy(policy),
		engine.WithSchedulerOptions(opts.Turn),
		engine.WithLogger(opts.Logger),
		engine.WithAutoParty(true),
	)
	if err != nil {
		return BattleResult{}, err
	}

	res := BattleResult{Seed: seed}
	b.Events.Subscribe(func(ev types.Event) {
		switch ev.Type {
		case events.ActionResolved:
			if r, ok := ev.Data["result"].(combat.Result); ok {
				res.HPDamage += r.HPDamage
			}
		case events.StatusTick:
			kind, _ := status.ParseKind(fmt.Sprint(ev.Data["status"]))
			if amount, ok := ev.Data["amount"].(int); ok && kind.Strategy() == status.StrategyPeriodicDamage {
				res.HPDamage += amount
			}
		}
	}, events.ActionResolved, events.StatusTick)

	out, err := b.Play(ctx, opts.MaxTurns)
	if err != nil {
		return BattleResult{}, err
	}
	res.Outcome = out
	res.Turns = b.Turn()
	return res, nil
}

func summarise(encounter string, results []BattleResult) Report {
	rep := Report{
		Encounter: encounter,
		Battles:   len(results),
		Wins:      map[types.Side]int{},
		Results:   results,
	}
	var turns, damage int
	for _, r := range results {
		switch r.Outcome {
		case engine.Victory:
			rep.Wins[types.SideParty]++
		case engine.Defeat:
			rep.Wins[types.SideEnemies]++
		case engine.Fled:
			rep.Fled++
		default:
			rep.Timeouts++
		}
		turns += r.Turns
		damage += r.HPDamage
	}
	rep.MeanTurns = float64(turns) / float64(len(results))
	rep.MeanHPDamage = float64(damage) / float64(len(results))
	return rep
}

// shortUnits abbreviates durafmt output ("1s 250ms").
var shortUnits, _ = durafmt.DefaultUnitsCoder.Decode("y:y,wk:wk,d:d,h:h,m:m,s:s,ms:ms,us:us")

// Lines renders the report for a terminal.
func (r Report) Lines() []string {
	pct := func(n int) string {
		return humanize.FtoaWithDigits(100*float64(n)/float64(r.Battles), 1) + "%"
	}
	lines := []string{
		fmt.Sprintf("Encounter: %s (%s battles)", r.Encounter, humanize.Comma(int64(r.Battles))),
		fmt.Sprintf("  Party wins:  %s (%s)", humanize.Comma(int64(r.Wins[types.SideParty])), pct(r.Wins[types.SideParty])),
		fmt.Sprintf("  Enemy wins:  %s (%s)", humanize.Comma(int64(r.Wins[types.SideEnemies])), pct(r.Wins[types.SideEnemies])),
		fmt.Sprintf("  Fled:        %s", humanize.Comma(int64(r.Fled))),
		fmt.Sprintf("  Timeouts:    %s", humanize.Comma(int64(r.Timeouts))),
		fmt.Sprintf("  Mean turns:  %s", humanize.FtoaWithDigits(r.MeanTurns, 1)),
		fmt.Sprintf("  Mean HP dmg: %s", humanize.CommafWithDigits(r.MeanHPDamage, 1)),
	}
	if r.Elapsed > 0 {
		lines = append(lines, fmt.Sprintf("  Elapsed:     %s",
			durafmt.Parse(r.Elapsed).LimitFirstN(2).Format(shortUnits)))
	}
	return lines
}
