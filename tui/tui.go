// Package tui provides a Bubble Tea terminal UI for bravecore battles.
package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"

	"github.com/nathoo/bravecore/engine"
	"github.com/nathoo/bravecore/engine/combat"
	"github.com/nathoo/bravecore/engine/events"
	"github.com/nathoo/bravecore/engine/parser"
	"github.com/nathoo/bravecore/engine/save"
	"github.com/nathoo/bravecore/engine/state"
	"github.com/nathoo/bravecore/types"
)

// rawLine stores an unstyled output line with its classification,
// so we can re-wrap and re-style when the terminal is resized.
type rawLine struct {
	text     string
	kind     lineKind
	isInput  bool
	isSystem bool
}

// Model is the Bubble Tea model for the battle TUI.
type Model struct {
	battle  *engine.Battle
	defs    *state.Defs
	options []engine.Option // applied when /load rebuilds the battle

	viewport viewport.Model
	input    textinput.Model
	history  *History

	rawLines []rawLine
	opening  []string

	width    int
	height   int
	ready    bool
	trace    bool
	quitting bool
	lastCmd  string
	saveDir  string
}

// gameOutputMsg carries output into the Update loop.
type gameOutputMsg struct {
	input    string
	lines    []string
	isSystem bool
}

// New creates a TUI model wired to the given battle and opens it.
func New(b *engine.Battle, defs *state.Defs, opts ...engine.Option) Model {
	ti := textinput.New()
	ti.Focus()
	ti.CharLimit = 256
	ti.PromptStyle = styleInputPrompt

	home, _ := os.UserHomeDir()
	m := Model{
		battle:  b,
		defs:    defs,
		options: opts,
		input:   ti,
		history: NewHistory(100),
		saveDir: filepath.Join(home, ".bravecore", "saves"),
	}

	m.opening = append(m.opening, defs.Game.Title+" v"+defs.Game.Version+" by "+defs.Game.Author, "")
	if defs.Game.Intro != "" {
		m.opening = append(m.opening, defs.Game.Intro, "")
	}
	m.opening = append(m.opening, b.Begin().Output...)
	m.updatePrompt()
	return m
}

// Run starts the Bubble Tea program. saveDir overrides the default save
// location when non-empty.
func Run(b *engine.Battle, defs *state.Defs, saveDir string, opts ...engine.Option) error {
	m := New(b, defs, opts...)
	if saveDir != "" {
		m.saveDir = saveDir
	}
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}

// Init emits the intro and the opening of the battle.
func (m Model) Init() tea.Cmd {
	opening := m.opening
	return tea.Batch(textinput.Blink, func() tea.Msg {
		return gameOutputMsg{lines: opening}
	})
}

// Update handles key presses, window resizes and game output.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		if !m.ready {
			m.viewport = viewport.New(m.width, m.viewportHeight())
			m.viewport.KeyMap = viewportKeyMap()
			m.ready = true
		} else {
			m.viewport.Width = m.width
			m.viewport.Height = m.viewportHeight()
		}

		m.refreshViewport()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.quitting = true
			return m, tea.Quit

		case "enter":
			return m.handleEnter()

		case "up":
			if prev, ok := m.history.Prev(); ok {
				m.input.SetValue(prev)
				m.input.CursorEnd()
			}
			return m, nil

		case "down":
			if next, ok := m.history.Next(); ok {
				m.input.SetValue(next)
				m.input.CursorEnd()
			} else {
				m.input.SetValue("")
				m.history.ResetCursor()
			}
			return m, nil

		case "pgup", "pgdown":
			var vpCmd tea.Cmd
			m.viewport, vpCmd = m.viewport.Update(msg)
			return m, vpCmd
		}

	case gameOutputMsg:
		m = m.appendOutput(msg)
	}

	var inputCmd tea.Cmd
	m.input, inputCmd = m.input.Update(msg)
	cmds = append(cmds, inputCmd)

	return m, tea.Batch(cmds...)
}

// viewportHeight leaves room for the panel, status bar and input line.
func (m Model) viewportHeight() int {
	return max(m.height-m.panelHeight()-2, 1)
}

// updatePrompt names the acting hero in the input prompt.
func (m *Model) updatePrompt() {
	m.input.Prompt = "> "
	if c, ok := m.battle.Acting(); ok && c.Side == types.SideParty && !m.battle.Over() {
		m.input.Prompt = c.Name + "> "
	}
}

// handleEnter processes the submitted input line.
func (m Model) handleEnter() (tea.Model, tea.Cmd) {
	input := strings.TrimSpace(m.input.Value())
	m.input.SetValue("")

	if input == "" {
		return m, nil
	}

	m.history.Push(input)
	m.history.ResetCursor()

	if strings.HasPrefix(input, "/") {
		output, quit := m.handleMeta(input)
		m = m.appendOutput(gameOutputMsg{input: input, lines: output, isSystem: true})
		if quit {
			m.quitting = true
			return m, tea.Quit
		}
		m.updatePrompt()
		return m, nil
	}

	if parser.Parse(input).Verb == "again" {
		if m.lastCmd == "" {
			m = m.appendOutput(gameOutputMsg{
				input: input, lines: []string{"Nothing to repeat."}, isSystem: true,
			})
			return m, nil
		}
		input = m.lastCmd
	} else {
		m.lastCmd = input
	}

	prompt := m.input.Prompt
	result := m.battle.Step(input)
	output := result.Output
	if m.trace {
		output = append(output, formatTrace(result)...)
	}
	m = m.appendOutput(gameOutputMsg{input: prompt + input, lines: output})
	m.updatePrompt()
	return m, nil
}

// appendOutput adds lines to the narrative and refreshes the viewport.
func (m Model) appendOutput(msg gameOutputMsg) Model {
	if msg.input != "" {
		text := msg.input
		if msg.isSystem {
			text = "> " + text
		}
		m.rawLines = append(m.rawLines, rawLine{text: text, isInput: true})
	}

	for _, line := range msg.lines {
		rl := rawLine{text: line, isSystem: msg.isSystem}
		if !msg.isSystem {
			rl.kind = classifyLine(line)
		}
		m.rawLines = append(m.rawLines, rl)
	}

	m.rawLines = append(m.rawLines, rawLine{})

	m.refreshViewport()

	return m
}

// refreshViewport re-wraps and re-styles all raw lines at the current width
// and updates the viewport content.
func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}

	width := max(m.width, 10)

	var styled []string
	for _, rl := range m.rawLines {
		if rl.text == "" {
			styled = append(styled, "")
			continue
		}

		wrapped := wordWrap(rl.text, width)

		switch {
		case rl.isInput:
			styled = append(styled, stylePlayerInput.Render(wrapped))
		case rl.isSystem:
			styled = append(styled, styledSystemMsg(wrapped))
		default:
			styled = append(styled, renderLineKind(wrapped, rl.kind))
		}
	}

	m.viewport.SetContent(strings.Join(styled, "\n"))
	m.viewport.GotoBottom()
}

// wordWrap wraps text to the given display width, breaking at spaces.
// Widths are measured in terminal cells, so Hangul counts double. Leading
// indentation is kept on the first line.
func wordWrap(text string, width int) string {
	if width <= 0 || runewidth.StringWidth(text) <= width {
		return text
	}

	indent := text[:len(text)-len(strings.TrimLeft(text, " "))]
	var result strings.Builder
	lineLen := 0

	for i, word := range strings.Fields(text) {
		wLen := runewidth.StringWidth(word)

		if i == 0 {
			result.WriteString(indent + word)
			lineLen = len(indent) + wLen
			continue
		}

		if lineLen+1+wLen > width {
			result.WriteString("\n")
			result.WriteString(word)
			lineLen = wLen
		} else {
			result.WriteString(" ")
			result.WriteString(word)
			lineLen += 1 + wLen
		}
	}

	return result.String()
}

// View renders the layout: viewport, combatant panel, status bar, input.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Loading..."
	}

	return m.viewport.View() + "\n" + m.renderPanel() + "\n" + m.renderStatusBar() + "\n" + m.input.View()
}

// handleMeta dispatches meta-commands. Returns output lines and quit flag.
func (m *Model) handleMeta(input string) ([]string, bool) {
	parts := strings.Fields(input)
	cmd := parts[0]
	var arg string
	if len(parts) > 1 {
		arg = parts[1]
	}

	switch cmd {
	case "/quit", "/exit":
		return []string{"Goodbye."}, true

	case "/save":
		return m.cmdSave(arg), false

	case "/load":
		return m.cmdLoad(arg), false

	case "/help":
		return m.cmdHelp(), false

	case "/state":
		return m.cmdState(), false

	case "/trace":
		m.trace = !m.trace
		if m.trace {
			return []string{"Trace output enabled."}, false
		}
		return []string{"Trace output disabled."}, false

	default:
		return []string{fmt.Sprintf("Unknown command: %s. Type /help for available commands.", cmd)}, false
	}
}

func (m *Model) cmdSave(name string) []string {
	if name == "" {
		name = "quicksave"
	}

	data, err := save.Save(m.battle.Snapshot())
	if err != nil {
		return []string{fmt.Sprintf("Save failed: %v", err)}
	}

	if err := os.MkdirAll(m.saveDir, 0o755); err != nil {
		return []string{fmt.Sprintf("Save failed: %v", err)}
	}

	path := filepath.Join(m.saveDir, name+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return []string{fmt.Sprintf("Save failed: %v", err)}
	}

	return []string{fmt.Sprintf("Battle saved to %s.", name)}
}

func (m *Model) cmdLoad(name string) []string {
	if name == "" {
		name = "quicksave"
	}

	path := filepath.Join(m.saveDir, name+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		return []string{fmt.Sprintf("Load failed: %v", err)}
	}

	sd, err := save.Load(data)
	if err != nil {
		return []string{fmt.Sprintf("Load failed: %v", err)}
	}

	b, err := engine.Load(m.defs, sd, m.options...)
	if err != nil {
		return []string{fmt.Sprintf("Load failed: %v", err)}
	}
	m.battle = b
	m.lastCmd = ""
	if m.ready {
		m.viewport.Height = m.viewportHeight()
	}

	return []string{fmt.Sprintf("Battle loaded from %s (turn %d).", name, sd.Turn)}
}

func (m *Model) cmdHelp() []string {
	return []string{
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
		"",
		"Navigation: PgUp/PgDn to scroll, Up/Down for command history",
	}
}

func (m *Model) cmdState() []string {
	b := m.battle
	output := []string{
		fmt.Sprintf("Encounter: %s", b.Encounter.ID),
		fmt.Sprintf("Turn: %d  Outcome: %s  Seed: %d", b.Turn(), b.Outcome(), b.RNG.Seed()),
	}
	for _, c := range b.Combatants() {
		output = append(output, fmt.Sprintf("%s: HP %d/%d BRV %d MP %d ready %d/%d",
			c.ID, c.HP(), c.MaxHP(), c.Brave(), c.MP(), b.Readiness(c.ID), b.Threshold()))
	}
	return output
}

func formatTrace(result types.Result) []string {
	if len(result.Events) == 0 {
		return nil
	}
	lines := []string{fmt.Sprintf("[trace] Events: %d", len(result.Events))}
	for _, e := range result.Events {
		if r, ok := e.Data["result"].(combat.Result); ok && e.Type == events.ActionResolved {
			lines = append(lines, fmt.Sprintf("[trace]   %s %s→%s brv=%d hp=%d",
				e.Type, r.Actor, r.Skill, r.BraveDamage, r.HPDamage))
			continue
		}
		lines = append(lines, fmt.Sprintf("[trace]   %s", e.Type))
	}
	return lines
}

// viewportKeyMap returns a viewport keymap with Up/Down disabled
// (we use those for input history).
func viewportKeyMap() viewport.KeyMap {
	return viewport.KeyMap{
		PageDown:     key.NewBinding(key.WithKeys("pgdown")),
		PageUp:       key.NewBinding(key.WithKeys("pgup")),
		HalfPageDown: key.NewBinding(key.WithKeys("ctrl+d")),
		HalfPageUp:   key.NewBinding(key.WithKeys("ctrl+u")),
		Up:           key.NewBinding(key.WithDisabled()),
		Down:         key.NewBinding(key.WithDisabled()),
	}
}
