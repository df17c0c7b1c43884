// Package cli provides terminal I/O, output formatting, and meta-command
// dispatch for the bravecore battle engine.
package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"
	"github.com/nathoo/bravecore/engine"
	"github.com/nathoo/bravecore/engine/combat"
	"github.com/nathoo/bravecore/engine/events"
	"github.com/nathoo/bravecore/engine/parser"
	"github.com/nathoo/bravecore/engine/save"
	"github.com/nathoo/bravecore/engine/state"
	"github.com/nathoo/bravecore/types"
)

// CLI handles terminal interaction with the player.
type CLI struct {
	Battle    *engine.Battle
	Defs      *state.Defs
	Options   []engine.Option // applied when /load rebuilds the battle
	In        io.Reader
	Out       io.Writer
	SaveDir   string
	Trace     bool
	EchoInput bool   // echo each input line after the prompt (for script playback)
	lastCmd   string // for "again"/"g" repeat
}

// New creates a CLI wired to the given battle.
func New(b *engine.Battle, defs *state.Defs) *CLI {
	home, _ := os.UserHomeDir()
	saveDir := filepath.Join(home, ".bravecore", "saves")
	return &CLI{
		Battle:  b,
		Defs:    defs,
		In:      os.Stdin,
		Out:     os.Stdout,
		SaveDir: saveDir,
	}
}

// Run starts the battle loop. It shows the game intro, opens the battle,
// then loops: prompt → input → dispatch → output.
func (c *CLI) Run() {
	if c.Defs.Game.Intro != "" {
		c.printLine(c.Defs.Game.Intro)
		c.printLine("")
	}

	result := c.Battle.Begin()
	c.printResult(result)
	if c.Trace {
		c.printTrace(result)
	}

	scanner := bufio.NewScanner(c.In)
	for {
		c.print(c.prompt())
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		// Skip comment lines (for script files).
		if strings.HasPrefix(input, "#") {
			continue
		}
		if c.EchoInput {
			c.printLine(input)
		}

		// Meta-commands start with '/'.
		if strings.HasPrefix(input, "/") {
			if c.handleMeta(input) {
				return // /quit
			}
			continue
		}

		// "again" / "g" repeats the last game command.
		if parser.Parse(input).Verb == "again" {
			if c.lastCmd == "" {
				c.printLine("Nothing to repeat.")
				continue
			}
			input = c.lastCmd
		} else {
			c.lastCmd = input
		}

		result := c.Battle.Step(input)
		c.printResult(result)

		if c.Trace {
			c.printTrace(result)
		}
	}
}

// prompt names the party member whose turn it is.
func (c *CLI) prompt() string {
	if actor, ok := c.Battle.Acting(); ok && actor.Side == types.SideParty {
		return actor.Name + "> "
	}
	return "> "
}

// handleMeta dispatches meta-commands. Returns true if the game should exit.
func (c *CLI) handleMeta(input string) bool {
	parts := strings.Fields(input)
	cmd := parts[0]
	var arg string
	if len(parts) > 1 {
		arg = parts[1]
	}

	switch cmd {
	case "/quit", "/exit":
		c.printSystem("Goodbye.")
		return true

	case "/save":
		c.cmdSave(arg)

	case "/load":
		c.cmdLoad(arg)

	case "/help":
		c.cmdHelp()

	case "/state":
		c.cmdState()

	case "/trace":
		c.Trace = !c.Trace
		if c.Trace {
			c.printSystem("Trace output enabled.")
		} else {
			c.printSystem("Trace output disabled.")
		}

	default:
		c.printSystem(fmt.Sprintf("Unknown command: %s. Type /help for available commands.", cmd))
	}

	return false
}

func (c *CLI) cmdSave(name string) {
	if name == "" {
		name = "quicksave"
	}

	data, err := save.Save(c.Battle.Snapshot())
	if err != nil {
		c.printSystem(fmt.Sprintf("Save failed: %v", err))
		return
	}

	if err := os.MkdirAll(c.SaveDir, 0o755); err != nil {
		c.printSystem(fmt.Sprintf("Save failed: %v", err))
		return
	}

	path := filepath.Join(c.SaveDir, name+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		c.printSystem(fmt.Sprintf("Save failed: %v", err))
		return
	}

	c.printSystem(fmt.Sprintf("Battle saved to %s.", name))
}

func (c *CLI) cmdLoad(name string) {
	if name == "" {
		name = "quicksave"
	}

	path := filepath.Join(c.SaveDir, name+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		c.printSystem(fmt.Sprintf("Load failed: %v", err))
		return
	}

	sd, err := save.Load(data)
	if err != nil {
		c.printSystem(fmt.Sprintf("Load failed: %v", err))
		return
	}

	b, err := engine.Load(c.Defs, sd, c.Options...)
	if err != nil {
		c.printSystem(fmt.Sprintf("Load failed: %v", err))
		return
	}
	c.Battle = b
	c.lastCmd = ""
	c.printSystem(fmt.Sprintf("Battle loaded from %s (turn %d).", name, sd.Turn))

	c.cmdState()
}

func (c *CLI) cmdHelp() {
	help := []string{
		"System:",
		"  /save [name]  Save battle (default: quicksave)",
		"  /load [name]  Load battle (default: quicksave)",
		"  /quit         Exit",
		"  /help         Show this help",
		"  /state        Debug: dump battle state",
		"  /trace        Toggle debug trace output",
		"",
		"Battle commands:",
		"  use <skill> [on <target>]   Use a skill (also: cast, 사용)",
		"  attack <target>             Basic Brave attack",
		"  skills                      List the acting hero's skills",
		"  status [name]               Show combatants, or one in detail",
		"  wait                        Pass the turn",
		"  flee                        Run from the battle",
		"  again (g)                   Repeat your last command",
	}
	for _, line := range help {
		c.printLine(line)
	}
}

func (c *CLI) cmdState() {
	b := c.Battle
	c.printSystem(fmt.Sprintf("Encounter: %s", b.Encounter.ID))
	c.printSystem(fmt.Sprintf("Turn: %d  Outcome: %s  Seed: %d", b.Turn(), b.Outcome(), b.RNG.Seed()))
	for _, cb := range b.Combatants() {
		c.printSystem(stateLine(cb, b.Readiness(cb.ID), b.Threshold()))
	}
}

// stateLine is one /state row; names are padded by display width so Hangul
// columns line up.
func stateLine(cb *combat.Combatant, readiness, threshold int) string {
	var kinds []string
	for _, in := range cb.Statuses.Active() {
		kinds = append(kinds, fmt.Sprintf("%s(%d)", in.Kind, in.Remaining))
	}
	return fmt.Sprintf("%s %-7s HP %s/%s  BRV %s  MP %d  ready %d/%d  %s",
		runewidth.FillRight(runewidth.Truncate(cb.Name, 16, "…"), 16),
		cb.Side,
		humanize.Comma(int64(cb.HP())), humanize.Comma(int64(cb.MaxHP())),
		humanize.Comma(int64(cb.Brave())),
		cb.MP(), readiness, threshold,
		strings.Join(kinds, " "))
}

func (c *CLI) printTrace(result types.Result) {
	if len(result.Events) == 0 {
		return
	}
	c.printSystem(fmt.Sprintf("[trace] Events: %d", len(result.Events)))
	for _, e := range result.Events {
		if e.Type == events.ActionResolved {
			if r, ok := e.Data["result"].(combat.Result); ok {
				c.printSystem(fmt.Sprintf("[trace]   %s %s→%s brv=%d hp=%d heal=%d crit=%v break=%v",
					e.Type, r.Actor, r.Skill, r.BraveDamage, r.HPDamage, r.Healed, r.Critical, r.Break))
				continue
			}
		}
		c.printSystem(fmt.Sprintf("[trace]   %s %v", e.Type, e.Data))
	}
}

func (c *CLI) printResult(result types.Result) {
	for _, line := range result.Output {
		c.printLine(line)
	}
}

func (c *CLI) printLine(text string) {
	fmt.Fprintln(c.Out, text)
}

func (c *CLI) print(text string) {
	fmt.Fprint(c.Out, text)
}

func (c *CLI) printSystem(text string) {
	fmt.Fprintf(c.Out, "[%s]\n", text)
}
