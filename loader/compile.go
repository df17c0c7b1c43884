// Package loader loads Lua battle content into Go structs at compile time.
// The Lua VM is discarded after loading; there is no Lua at runtime.
package loader

import (
	"fmt"
	"sort"
	"strings"

	"github.com/nathoo/bravecore/engine/skill"
	"github.com/nathoo/bravecore/engine/state"
	"github.com/nathoo/bravecore/engine/status"
	"github.com/nathoo/bravecore/types"
	lua "github.com/yuin/gopher-lua"
	"golang.org/x/text/unicode/norm"
)

// defaultMaxBrave caps Brave for templates that do not set max_brave.
const defaultMaxBrave = 9999

// content is compiled but not yet validated game data.
type content struct {
	game       types.GameDef
	statuses   []types.EffectDescriptor
	skills     []types.SkillDef
	templates  map[string]types.CombatantDef
	encounters map[string]types.EncounterDef
	duplicates []string
}

// getString returns a string field from a Lua table in NFC form, or "" if
// missing.
func getString(tbl *lua.LTable, key string) string {
	v := tbl.RawGetString(key)
	if s, ok := v.(lua.LString); ok {
		return norm.NFC.String(string(s))
	}
	return ""
}

// getBool returns a bool field from a Lua table, or the default if missing.
func getBool(tbl *lua.LTable, key string, def bool) bool {
	v := tbl.RawGetString(key)
	if b, ok := v.(lua.LBool); ok {
		return bool(b)
	}
	return def
}

// getNumber returns a numeric field from a Lua table, or 0 if missing.
func getNumber(tbl *lua.LTable, key string) float64 {
	v := tbl.RawGetString(key)
	if n, ok := v.(lua.LNumber); ok {
		return float64(n)
	}
	return 0
}

// getInt returns an int field from a Lua table, or 0 if missing.
func getInt(tbl *lua.LTable, key string) int {
	return int(getNumber(tbl, key))
}

// getTable returns a table field from a Lua table, or nil if missing.
func getTable(tbl *lua.LTable, key string) *lua.LTable {
	v := tbl.RawGetString(key)
	if t, ok := v.(*lua.LTable); ok {
		return t
	}
	return nil
}

// getStrings returns the array part of a table field as strings.
func getStrings(tbl *lua.LTable, key string) []string {
	arr := getTable(tbl, key)
	if arr == nil {
		return nil
	}
	var out []string
	for i := 1; i <= arr.MaxN(); i++ {
		if s, ok := arr.RawGetInt(i).(lua.LString); ok {
			out = append(out, norm.NFC.String(string(s)))
		}
	}
	return out
}

// toGoValue converts a Lua value to a Go value recursively.
func toGoValue(v lua.LValue) any {
	switch val := v.(type) {
	case lua.LBool:
		return bool(val)
	case lua.LNumber:
		f := float64(val)
		if f == float64(int(f)) {
			return int(f)
		}
		return f
	case *lua.LNilType:
		return nil
	case lua.LString:
		return norm.NFC.String(string(val))
	case *lua.LTable:
		maxN := val.MaxN()
		if maxN > 0 {
			arr := make([]any, 0, maxN)
			for i := 1; i <= maxN; i++ {
				arr = append(arr, toGoValue(val.RawGetInt(i)))
			}
			return arr
		}
		m := map[string]any{}
		val.ForEach(func(k, v lua.LValue) {
			if ks, ok := k.(lua.LString); ok {
				m[string(ks)] = toGoValue(v)
			}
		})
		return m
	default:
		return nil
	}
}

// compile converts all collected Lua data into content. Only a missing
// Game{} is fatal here; everything else is reported by validate.
func compile(coll *collector) (*content, error) {
	if coll.game == nil {
		return nil, fmt.Errorf("no Game{} definition found")
	}
	c := &content{
		game:       compileGame(coll.game),
		templates:  map[string]types.CombatantDef{},
		encounters: map[string]types.EncounterDef{},
	}

	seen := map[string]bool{}
	for _, raw := range coll.statuses {
		d := compileStatus(raw)
		if c.dup(seen, "status", d.Kind) {
			continue
		}
		c.statuses = append(c.statuses, d)
	}

	seen = map[string]bool{}
	for _, raw := range coll.skills {
		sk := compileSkill(raw)
		if c.dup(seen, "skill", sk.ID) {
			continue
		}
		c.skills = append(c.skills, sk)
	}

	seen = map[string]bool{}
	for _, raw := range coll.heroes {
		t := compileCombatant(raw, types.SideParty)
		if !c.dup(seen, "combatant", t.ID) {
			c.templates[t.ID] = t
		}
	}
	for _, raw := range coll.enemies {
		t := compileCombatant(raw, types.SideEnemies)
		if !c.dup(seen, "combatant", t.ID) {
			c.templates[t.ID] = t
		}
	}

	seen = map[string]bool{}
	for _, raw := range coll.encounters {
		e := compileEncounter(raw)
		if !c.dup(seen, "encounter", e.ID) {
			c.encounters[e.ID] = e
		}
	}
	return c, nil
}

// dup records id in seen and reports whether it was already there.
func (c *content) dup(seen map[string]bool, kind, id string) bool {
	if seen[id] {
		c.duplicates = append(c.duplicates, fmt.Sprintf("duplicate %s %q", kind, id))
		return true
	}
	seen[id] = true
	return false
}

func compileGame(tbl *lua.LTable) types.GameDef {
	return types.GameDef{
		Title:   getString(tbl, "title"),
		Author:  getString(tbl, "author"),
		Version: getString(tbl, "version"),
		Start:   getString(tbl, "start"),
		Intro:   getString(tbl, "intro"),
	}
}

func compileStatus(raw rawDef) types.EffectDescriptor {
	tbl := raw.table
	return types.EffectDescriptor{
		Kind:        norm.NFC.String(raw.id),
		Name:        getString(tbl, "name"),
		Debuff:      getBool(tbl, "debuff", false),
		Duration:    getInt(tbl, "duration"),
		Potency:     getNumber(tbl, "potency"),
		MinPotency:  getNumber(tbl, "min_potency"),
		Stacking:    types.StackPolicy(getString(tbl, "stacking")),
		Conflicts:   getStrings(tbl, "conflicts"),
		CanKill:     getBool(tbl, "can_kill", false),
		Description: getString(tbl, "description"),
	}
}

func compileSkill(raw rawDef) types.SkillDef {
	tbl := raw.table
	sk := types.SkillDef{
		ID:            norm.NFC.String(raw.id),
		Name:          getString(tbl, "name"),
		Category:      types.Category(strings.ToUpper(getString(tbl, "category"))),
		DamageType:    types.DamageType(getString(tbl, "damage_type")),
		Element:       getString(tbl, "element"),
		Target:        types.Selector(getString(tbl, "target")),
		BraveCoeff:    getNumber(tbl, "brv"),
		HPCoeff:       getNumber(tbl, "hp"),
		HealCoeff:     getNumber(tbl, "heal"),
		Accuracy:      getInt(tbl, "accuracy"),
		CastPercent:   getInt(tbl, "cast"),
		Cooldown:      getInt(tbl, "cooldown"),
		Cost:          getInt(tbl, "cost"),
		Revive:        getBool(tbl, "revive", false),
		Classes:       getStrings(tbl, "classes"),
		Cleanse:       getString(tbl, "cleanse"),
		CleanseKinds:  getStrings(tbl, "cleanse_kinds"),
		Description:   getString(tbl, "description"),
		DeclaredOrder: raw.order,
	}
	if sk.Name == "" {
		sk.Name = sk.ID
	}
	if sk.DamageType == "" {
		sk.DamageType = types.DamagePhysical
	}
	if sk.Target == "" {
		sk.Target = types.SelectorSingle
	}
	if arr := getTable(tbl, "statuses"); arr != nil {
		for i := 1; i <= arr.MaxN(); i++ {
			if app, ok := arr.RawGetInt(i).(*lua.LTable); ok {
				sk.Statuses = append(sk.Statuses, types.StatusApplication{
					Kind:     getString(app, "kind"),
					Duration: getInt(app, "duration"),
					Potency:  getNumber(app, "potency"),
					Chance:   getInt(app, "chance"),
				})
			}
		}
	}
	return sk
}

func compileCombatant(raw rawDef, side types.Side) types.CombatantDef {
	tbl := raw.table
	def := types.CombatantDef{
		ID:       norm.NFC.String(raw.id),
		Name:     getString(tbl, "name"),
		Class:    getString(tbl, "class"),
		Side:     side,
		HP:       getInt(tbl, "hp"),
		MaxBrave: getInt(tbl, "max_brave"),
		Brave:    getInt(tbl, "brave"),
		MP:       getInt(tbl, "mp"),
		Attack:   getInt(tbl, "attack"),
		Magic:    getInt(tbl, "magic"),
		Defense:  getInt(tbl, "defense"),
		Speed:    getInt(tbl, "speed"),
		Crit:     getInt(tbl, "crit"),
		Evasion:  getInt(tbl, "evasion"),
	}
	if def.MaxBrave == 0 {
		def.MaxBrave = defaultMaxBrave
	}
	if arr := getTable(tbl, "behavior"); arr != nil {
		def.Behavior = compileBehavior(arr)
	}
	return def
}

func compileBehavior(arr *lua.LTable) []types.BehaviorEntry {
	var out []types.BehaviorEntry
	for i := 1; i <= arr.MaxN(); i++ {
		tbl, ok := arr.RawGetInt(i).(*lua.LTable)
		if !ok {
			continue
		}
		e := types.BehaviorEntry{
			Skill:    getString(tbl, "skill"),
			Weight:   1,
			Priority: getInt(tbl, "priority"),
			Order:    i - 1,
		}
		if tbl.RawGetString("weight") != lua.LNil {
			e.Weight = getInt(tbl, "weight")
		}
		if when := getTable(tbl, "when"); when != nil {
			e.When = compileConditions(when)
		}
		out = append(out, e)
	}
	return out
}

func compileConditions(tbl *lua.LTable) []types.Condition {
	var conditions []types.Condition
	for i := 1; i <= tbl.MaxN(); i++ {
		if condTbl, ok := tbl.RawGetInt(i).(*lua.LTable); ok {
			conditions = append(conditions, compileCondition(condTbl))
		}
	}
	return conditions
}

func compileCondition(tbl *lua.LTable) types.Condition {
	condType := getString(tbl, "type")

	if condType == "not" {
		if innerTbl := getTable(tbl, "inner"); innerTbl != nil {
			inner := compileCondition(innerTbl)
			return types.Condition{
				Type:   "not",
				Negate: true,
				Inner:  &inner,
			}
		}
	}

	params := map[string]any{}
	tbl.ForEach(func(k, v lua.LValue) {
		if ks, ok := k.(lua.LString); ok {
			key := string(ks)
			if key != "type" {
				params[key] = toGoValue(v)
			}
		}
	})
	return types.Condition{
		Type:   condType,
		Params: params,
	}
}

func compileEncounter(raw rawDef) types.EncounterDef {
	tbl := raw.table
	e := types.EncounterDef{
		ID:      norm.NFC.String(raw.id),
		Name:    getString(tbl, "name"),
		Party:   getStrings(tbl, "party"),
		Enemies: getStrings(tbl, "enemies"),
		Intro:   getString(tbl, "intro"),
	}
	if e.Name == "" {
		e.Name = e.ID
	}
	return e
}

// build turns validated content into Defs.
func build(c *content) (*state.Defs, error) {
	descs := make([]status.Descriptor, 0, len(c.statuses))
	for _, def := range c.statuses {
		d, err := status.DescriptorFromDef(def)
		if err != nil {
			return nil, err
		}
		descs = append(descs, d)
	}
	reg, err := status.NewRegistry(descs...)
	if err != nil {
		return nil, err
	}
	cat, err := skill.NewCatalog(c.skills)
	if err != nil {
		return nil, err
	}
	return &state.Defs{
		Game:       c.game,
		Registry:   reg,
		Catalog:    cat,
		Templates:  c.templates,
		Encounters: c.encounters,
	}, nil
}

// sortedLuaFiles returns .lua files in a directory, with game.lua first
// and the rest sorted alphabetically.
func sortedLuaFiles(files []string) []string {
	var gameFile string
	var others []string
	for _, f := range files {
		if f == "game.lua" {
			gameFile = f
		} else {
			others = append(others, f)
		}
	}
	sort.Strings(others)
	if gameFile != "" {
		return append([]string{gameFile}, others...)
	}
	return others
}
