package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Styles used throughout the TUI.
var (
	styleStatusBar = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("252")).
			Bold(true)

	styleInputPrompt = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))

	styleNarration = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	styleAction = lipgloss.NewStyle().
			Bold(true)

	styleDetail = lipgloss.NewStyle().
			Foreground(lipgloss.Color("250"))

	styleBreak = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	styleVictory = lipgloss.NewStyle().
			Foreground(lipgloss.Color("46")).
			Bold(true)

	styleDefeat = lipgloss.NewStyle().
			Foreground(lipgloss.Color("160")).
			Bold(true)

	styleSystem = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	styleError = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	stylePlayerInput = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))

	styleTrace = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	// Gauge and panel styles.
	styleHPHigh  = lipgloss.NewStyle().Foreground(lipgloss.Color("40"))
	styleHPMid   = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	styleHPLow   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	styleBrave   = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)
	styleDown    = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Strikethrough(true)
	styleActing  = lipgloss.NewStyle().Foreground(lipgloss.Color("34")).Bold(true)
	styleStatus  = lipgloss.NewStyle().Foreground(lipgloss.Color("177"))
	stylePanel = lipgloss.NewStyle().BorderStyle(lipgloss.NormalBorder()).BorderTop(true).
			BorderForeground(lipgloss.Color("238"))
)

// lineKind identifies the type of an output line for styling.
type lineKind int

const (
	kindNarration lineKind = iota
	kindAction
	kindDetail
	kindBreak
	kindVictory
	kindDefeat
	kindSystem
	kindError
	kindTrace
)

// errorPrefixes are the openings of engine rejections.
var errorPrefixes = []string{
	"I don't know how",
	"You can't",
	"there is no",
	"you don't know",
	"which ",
	"Not enough MP",
	"That skill is not ready",
	"What will you do",
	"The battle is over",
}

// classifyLine determines what kind of output line this is.
func classifyLine(line string) lineKind {
	switch {
	case strings.HasPrefix(line, "[trace]"):
		return kindTrace
	case strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]"):
		return kindSystem
	case strings.HasPrefix(line, "Victory!"):
		return kindVictory
	case strings.HasPrefix(line, "The party has fallen"):
		return kindDefeat
	case strings.HasSuffix(line, " is BROKEN!"), strings.TrimSpace(line) == "Critical hit!":
		return kindBreak
	case strings.HasPrefix(line, "  "):
		return kindDetail
	case strings.Contains(line, " uses ") && strings.HasSuffix(line, "!"):
		return kindAction
	}
	for _, p := range errorPrefixes {
		if strings.HasPrefix(line, p) {
			return kindError
		}
	}
	return kindNarration
}

// renderLineKind applies the style for a given lineKind.
func renderLineKind(line string, kind lineKind) string {
	switch kind {
	case kindAction:
		return styleAction.Render(line)
	case kindDetail:
		return styleDetail.Render(line)
	case kindBreak:
		return styleBreak.Render(line)
	case kindVictory:
		return styleVictory.Render(line)
	case kindDefeat:
		return styleDefeat.Render(line)
	case kindSystem:
		return styleSystem.Render(line)
	case kindError:
		return styleError.Render(line)
	case kindTrace:
		return styleTrace.Render(line)
	default:
		return styleNarration.Render(line)
	}
}

// hpStyle colours an HP gauge by how much is left.
func hpStyle(hp, max int) lipgloss.Style {
	switch {
	case max <= 0 || hp*4 <= max:
		return styleHPLow
	case hp*2 <= max:
		return styleHPMid
	default:
		return styleHPHigh
	}
}

// styledSystemMsg renders a system message in gray with brackets.
func styledSystemMsg(text string) string {
	return styleSystem.Render("[" + text + "]")
}
