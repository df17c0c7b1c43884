package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"

	"github.com/nathoo/bravecore/engine/combat"
)

const (
	nameWidth  = 14
	gaugeWidth = 12
)

// gauge draws a fixed-width bar filled in proportion to cur/max.
func gauge(cur, max, width int) string {
	if width <= 0 {
		return ""
	}
	filled := 0
	if max > 0 && cur > 0 {
		filled = (cur*width + max - 1) / max
		filled = min(filled, width)
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// panelHeight is the number of rows the combatant panel occupies,
// including its top rule.
func (m Model) panelHeight() int {
	return len(m.battle.Combatants()) + 1
}

// renderPanel draws one row per combatant: name, HP gauge, Brave and
// active statuses. Names are padded by display width so Hangul lines up.
func (m Model) renderPanel() string {
	acting := ""
	if c, ok := m.battle.Acting(); ok {
		acting = c.ID
	}
	rows := make([]string, 0, len(m.battle.Combatants()))
	for _, c := range m.battle.Combatants() {
		rows = append(rows, m.combatantRow(c, c.ID == acting))
	}
	return stylePanel.Width(m.width).Render(strings.Join(rows, "\n"))
}

func (m Model) combatantRow(c *combat.Combatant, acting bool) string {
	marker := "  "
	if acting {
		marker = "▶ "
	}
	name := runewidth.FillRight(runewidth.Truncate(c.Name, nameWidth, "…"), nameWidth)
	switch {
	case !c.Alive():
		name = styleDown.Render(name)
	case acting:
		name = styleActing.Render(name)
	}

	hp := hpStyle(c.HP(), c.MaxHP()).Render(gauge(c.HP(), c.MaxHP(), gaugeWidth))
	hpText := fmt.Sprintf("%s/%s", humanize.Comma(int64(c.HP())), humanize.Comma(int64(c.MaxHP())))

	brave := styleBrave.Render(fmt.Sprintf("BRV %s", humanize.Comma(int64(c.Brave()))))
	if c.Alive() && c.Brave() == 0 {
		brave = styleBreak.Render("BREAK")
	}

	var statuses []string
	for _, in := range c.Statuses.Active() {
		label := in.Kind.String()
		if d, err := m.defs.Registry.Lookup(in.Kind); err == nil && d.Name != "" {
			label = d.Name
		}
		statuses = append(statuses, fmt.Sprintf("%s(%d)", label, in.Remaining))
	}

	return fmt.Sprintf("%s%s %s %-13s %-9s %s", marker, name, hp, hpText, brave,
		styleStatus.Render(strings.Join(statuses, " ")))
}

// renderStatusBar produces a full-width inverted line showing the encounter,
// who is acting, and the turn count or outcome.
func (m Model) renderStatusBar() string {
	b := m.battle

	left := " " + b.Encounter.Name
	if c, ok := b.Acting(); ok && !b.Over() {
		left += " | " + c.Name
	}

	right := fmt.Sprintf("Turn %s ", humanize.Comma(int64(b.Turn())))
	if b.Over() {
		right = fmt.Sprintf("%s | %s", b.Outcome(), right)
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	bar := left + strings.Repeat(" ", gap) + right
	return styleStatusBar.Width(m.width).Render(bar)
}
