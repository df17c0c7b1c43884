// Bravecore is a deterministic, data-driven engine for Brave/HP turn-based
// battles.
// Usage: bravecore [--version] [--plain] [--script <file>] [--trace] [--config <file>]
// [--seed <n>] [--encounter <id>] [--simulate <n>] [game_directory]
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/nathoo/bravecore/cli"
	"github.com/nathoo/bravecore/config"
	"github.com/nathoo/bravecore/content"
	"github.com/nathoo/bravecore/engine"
	"github.com/nathoo/bravecore/engine/state"
	"github.com/nathoo/bravecore/loader"
	"github.com/nathoo/bravecore/sim"
	"github.com/nathoo/bravecore/tui"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const usage = "Usage: bravecore [--version] [--plain] [--script <file>] [--trace] [--config <file>] " +
	"[--seed <n>] [--encounter <id>] [--simulate <n>] [game_directory]"

type flags struct {
	plain      bool
	trace      bool
	gameDir    string
	scriptFile string
	configFile string
	encounter  string
	seed       int64
	seeded     bool
	simulate   int
}

func main() {
	f := parseFlags(os.Args[1:])

	cfg, err := config.Load(config.Path(f.configFile))
	if err != nil {
		fatalf("Error loading config: %v", err)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	})))

	defs, err := loadContent(f.gameDir, cfg.ContentDir)
	if err != nil {
		fatalf("Error loading game: %v", err)
	}

	seed := time.Now().UnixNano()
	if f.seeded {
		seed = f.seed
	}

	if f.simulate > 0 {
		runSimulation(defs, cfg, f, seed)
		return
	}

	opts := []engine.Option{
		engine.WithPolicy(cfg.Policy()),
		engine.WithSchedulerOptions(cfg.TurnOptions()),
		engine.WithLogger(slog.Default()),
	}
	b, err := engine.New(defs, f.encounter, append(opts, engine.WithSeed(seed))...)
	if err != nil {
		fatalf("Error starting battle: %v", err)
	}
	saveDir, err := cfg.Saves()
	if err != nil {
		fatalf("Error: %v", err)
	}

	newCLI := func() *cli.CLI {
		fmt.Printf("%s v%s by %s\n\n", defs.Game.Title, defs.Game.Version, defs.Game.Author)
		c := cli.New(b, defs)
		c.Options = opts
		c.SaveDir = saveDir
		c.Trace = f.trace
		return c
	}

	// Script mode: read commands from the file, force plain, echo commands.
	if f.scriptFile != "" {
		in, err := os.Open(f.scriptFile)
		if err != nil {
			fatalf("Error opening script: %v", err)
		}
		defer in.Close()
		c := newCLI()
		c.In = in
		c.EchoInput = true
		c.Run()
		return
	}

	// Use the plain CLI if asked to or when stdout is not a terminal.
	if f.plain || !isatty.IsTerminal(os.Stdout.Fd()) {
		newCLI().Run()
		return
	}

	if err := tui.Run(b, defs, saveDir, opts...); err != nil {
		fatalf("Error: %v", err)
	}
}

func parseFlags(args []string) flags {
	var f flags
	value := func(i *int, name string) string {
		if *i+1 >= len(args) {
			fatalf("%s requires a value", name)
		}
		*i++
		return args[*i]
	}
	number := func(i *int, name string) int64 {
		n, err := strconv.ParseInt(value(i, name), 10, 64)
		if err != nil {
			fatalf("%s: %v", name, err)
		}
		return n
	}

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--version":
			fmt.Printf("bravecore %s (commit %s, built %s)\n", version, commit, date)
			os.Exit(0)
		case "--help", "-h":
			fmt.Println(usage)
			os.Exit(0)
		case "--plain":
			f.plain = true
		case "--trace":
			f.trace = true
		case "--script":
			f.scriptFile = value(&i, "--script")
		case "--config":
			f.configFile = value(&i, "--config")
		case "--encounter":
			f.encounter = value(&i, "--encounter")
		case "--seed":
			f.seed = number(&i, "--seed")
			f.seeded = true
		case "--simulate":
			n := number(&i, "--simulate")
			if n <= 0 {
				fatalf("--simulate needs a positive battle count")
			}
			f.simulate = int(n)
		default:
			if strings.HasPrefix(args[i], "--") {
				fatalf("unknown flag %s\n%s", args[i], usage)
			}
			if f.gameDir == "" {
				f.gameDir = args[i]
			}
		}
	}
	return f
}

// runSimulation plays f.simulate AI-only battles and prints the summary.
func runSimulation(defs *state.Defs, cfg config.Config, f flags, seed int64) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	report, err := sim.Run(ctx, defs, cfg.Policy(), sim.Options{
		Encounter: f.encounter,
		Battles:   f.simulate,
		Seed:      seed,
		Workers:   cfg.Sim.Workers,
		MaxTurns:  cfg.Sim.MaxTurns,
		Turn:      cfg.TurnOptions(),
		Logger:    slog.Default(),
	})
	if err != nil {
		fatalf("Simulation failed: %v", err)
	}
	for _, line := range report.Lines() {
		fmt.Println(line)
	}
}

// loadContent reads the named game directory. Without one it tries the
// configured directory and falls back to the embedded sample game.
func loadContent(gameDir, configured string) (*state.Defs, error) {
	if gameDir != "" {
		return loader.Load(gameDir)
	}
	if _, err := os.Stat(configured); err == nil {
		return loader.Load(configured)
	}
	slog.Debug("content directory missing, using embedded game", "dir", configured)
	return loader.LoadFS(content.FS, "embedded")
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
