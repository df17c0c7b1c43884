package engine

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"

	"github.com/nathoo/bravecore/engine/combat"
	"github.com/nathoo/bravecore/engine/events"
	"github.com/nathoo/bravecore/engine/resolve"
	"github.com/nathoo/bravecore/engine/status"
	"github.com/nathoo/bravecore/types"
)

// nameColumn is the display width names are padded to in listings.
const nameColumn = 14

// narrate turns events into transcript lines.
func (b *Battle) narrate(evs []types.Event) []string {
	var out []string
	for _, ev := range evs {
		switch ev.Type {
		case events.ActionResolved:
			res, _ := ev.Data["result"].(combat.Result)
			out = append(out, b.narrateAction(res)...)
		case events.StatusTick:
			id, _ := ev.Data["combatant"].(string)
			kind, _ := status.ParseKind(fmt.Sprint(ev.Data["status"]))
			amount, _ := ev.Data["amount"].(int)
			out = append(out, b.narrateTick(id, kind, amount))
		case events.StatusExpired:
			id, _ := ev.Data["combatant"].(string)
			kind, _ := status.ParseKind(fmt.Sprint(ev.Data["status"]))
			out = append(out, fmt.Sprintf("%s's %s wears off.", b.name(id), b.statusName(kind)))
		case events.TurnSkipped:
			id, _ := ev.Data["actor"].(string)
			reason, _ := ev.Data["reason"].(string)
			if reason == "wait" {
				out = append(out, fmt.Sprintf("%s waits.", b.name(id)))
				continue
			}
			kind, _ := status.ParseKind(reason)
			out = append(out, fmt.Sprintf("%s is held by %s and cannot act.", b.name(id), b.statusName(kind)))
		case events.CombatantDefeated:
			id, _ := ev.Data["combatant"].(string)
			out = append(out, fmt.Sprintf("%s is defeated!", b.name(id)))
		case events.BattleEnded:
			turns, _ := ev.Data["turns"].(int)
			switch Outcome(fmt.Sprint(ev.Data["outcome"])) {
			case Victory:
				out = append(out, fmt.Sprintf("Victory! The battle lasted %s turns.", humanize.Comma(int64(turns))))
			default:
				out = append(out, "The party has fallen...")
			}
		case events.BattleFled:
			out = append(out, "The party flees from battle.")
		}
	}
	return out
}

func (b *Battle) narrateAction(res combat.Result) []string {
	sk, _ := b.Defs.Catalog.Get(res.Skill)
	out := []string{fmt.Sprintf("%s uses %s!", b.name(res.Actor), sk.Name)}
	for _, tr := range res.Targets {
		name := b.name(tr.ID)
		if tr.Miss {
			out = append(out, fmt.Sprintf("  %s evades.", name))
			continue
		}
		if tr.Critical {
			out = append(out, "  Critical hit!")
		}
		if tr.BraveDamage > 0 {
			out = append(out, fmt.Sprintf("  %s takes %s BRV damage.", name, humanize.Comma(int64(tr.BraveDamage))))
		}
		if tr.Break {
			out = append(out, fmt.Sprintf("  %s is BROKEN!", name))
		}
		if tr.HPDamage > 0 {
			out = append(out, fmt.Sprintf("  %s takes %s HP damage.", name, humanize.Comma(int64(tr.HPDamage))))
		}
		if tr.Revived {
			out = append(out, fmt.Sprintf("  %s is revived!", name))
		}
		if tr.Healed > 0 {
			out = append(out, fmt.Sprintf("  %s recovers %s HP.", name, humanize.Comma(int64(tr.Healed))))
		}
		for _, k := range tr.Removed {
			out = append(out, fmt.Sprintf("  %s is cured of %s.", name, b.statusName(k)))
		}
		for _, a := range tr.Applied {
			if a.Outcome == status.Rejected {
				continue
			}
			out = append(out, fmt.Sprintf("  %s is affected by %s.", name, b.statusName(a.Kind)))
		}
		for _, k := range tr.Resisted {
			out = append(out, fmt.Sprintf("  %s resists %s.", name, b.statusName(k)))
		}
	}
	return out
}

func (b *Battle) narrateTick(id string, kind status.Kind, amount int) string {
	n := humanize.Comma(int64(amount))
	switch kind.Strategy() {
	case status.StrategyPeriodicHeal:
		return fmt.Sprintf("%s recovers %s HP from %s.", b.name(id), n, b.statusName(kind))
	case status.StrategyPeriodicBrave:
		return fmt.Sprintf("%s gains %s BRV from %s.", b.name(id), n, b.statusName(kind))
	default:
		return fmt.Sprintf("%s takes %s damage from %s.", b.name(id), n, b.statusName(kind))
	}
}

func (b *Battle) name(id string) string {
	if c, ok := b.byID[id]; ok && c.Name != "" {
		return c.Name
	}
	return id
}

func (b *Battle) statusName(k status.Kind) string {
	if d, err := b.Defs.Registry.Lookup(k); err == nil {
		return d.Name
	}
	return k.String()
}

// describeSkills lists what actor can use this turn.
func (b *Battle) describeSkills(actor *combat.Combatant) []string {
	out := []string{fmt.Sprintf("%s's skills (MP %d/%d):", actor.Name, actor.MP(), actor.MaxMP())}
	for _, sk := range b.KnownSkills(actor) {
		note := "ready"
		switch {
		case actor.Cooldown(sk.ID) > 0:
			note = fmt.Sprintf("cooldown %d", actor.Cooldown(sk.ID))
		case sk.Cost > actor.MP():
			note = "not enough MP"
		}
		line := fmt.Sprintf("  %s %-13s %-3s MP %-3d %s",
			runewidth.FillRight(sk.Name, nameColumn), string(sk.Category), selectorMark(sk.Target), sk.Cost, note)
		out = append(out, strings.TrimRight(line, " "))
	}
	return out
}

func selectorMark(s types.Selector) string {
	switch s {
	case types.SelectorAll:
		return "all"
	case types.SelectorSelf:
		return "me"
	default:
		return "one"
	}
}

// describeStatus lists every combatant, or details the one name refers to.
func (b *Battle) describeStatus(name string) ([]string, error) {
	if name == "" {
		var out []string
		for _, side := range []types.Side{types.SideParty, types.SideEnemies} {
			if side == types.SideParty {
				out = append(out, "Party:")
			} else {
				out = append(out, "Enemies:")
			}
			for _, c := range b.Side(side) {
				out = append(out, "  "+b.statusLine(c))
			}
		}
		return out, nil
	}

	cands := make([]resolve.Candidate, len(b.order))
	for i, c := range b.order {
		cands[i] = resolve.Candidate{ID: c.ID, Name: c.Name}
	}
	id, err := resolve.Target(cands, name)
	if err != nil {
		return nil, err
	}
	c := b.byID[id]
	out := []string{
		b.statusLine(c),
		fmt.Sprintf("  ATK %d  MAG %d  DEF %d  SPD %d  CRIT %d%%  EVA %d%%",
			c.EffectiveAttack(), c.EffectiveMagic(), c.EffectiveDefense(), c.EffectiveSpeed(), c.Crit, c.EffectiveEvasion()),
		fmt.Sprintf("  readiness %s/%s", humanize.Comma(int64(b.Readiness(id))), humanize.Comma(int64(b.Threshold()))),
	}
	for _, in := range c.Statuses.Active() {
		out = append(out, fmt.Sprintf("  %s: %d turns, potency %g", b.statusName(in.Kind), in.Remaining, in.Potency))
	}
	cds := c.Cooldowns()
	ids := make([]string, 0, len(cds))
	for sid := range cds {
		ids = append(ids, sid)
	}
	sort.Strings(ids)
	for _, sid := range ids {
		out = append(out, fmt.Sprintf("  %s: cooldown %d", sid, cds[sid]))
	}
	return out, nil
}

func (b *Battle) statusLine(c *combat.Combatant) string {
	line := fmt.Sprintf("%s HP %s/%s  BRV %s",
		runewidth.FillRight(c.Name, nameColumn),
		humanize.Comma(int64(c.HP())), humanize.Comma(int64(c.MaxHP())),
		humanize.Comma(int64(c.Brave())))
	if c.MaxMP() > 0 {
		line += fmt.Sprintf("  MP %d", c.MP())
	}
	if !c.Alive() {
		return line + "  (down)"
	}
	var tags []string
	for _, in := range c.Statuses.Active() {
		tags = append(tags, fmt.Sprintf("%s(%d)", b.statusName(in.Kind), in.Remaining))
	}
	if len(tags) > 0 {
		line += "  [" + strings.Join(tags, " ") + "]"
	}
	return line
}
