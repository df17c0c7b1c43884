package loader

import (
	lua "github.com/yuin/gopher-lua"
)

// registerAPI registers all Lua constructors and helpers as globals.
func registerAPI(L *lua.LState, coll *collector) {
	registerConstructors(L, coll)
	registerConditionHelpers(L)
	registerSkillHelpers(L)
}

// curried registers Name "id" { ... }: the global takes the id and returns a
// function that takes the body table.
func curried(L *lua.LState, name string, coll *collector, dst *[]rawDef) {
	L.SetGlobal(name, L.NewFunction(func(L *lua.LState) int {
		id := L.CheckString(1)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			tbl := L.CheckTable(1)
			*dst = append(*dst, rawDef{id: id, table: tbl, order: coll.nextSourceOrder()})
			return 0
		}))
		return 1
	}))
}

func registerConstructors(L *lua.LState, coll *collector) {
	// Game { title = "...", start = "encounter", ... }
	L.SetGlobal("Game", L.NewFunction(func(L *lua.LState) int {
		coll.game = L.CheckTable(1)
		return 0
	}))

	curried(L, "Status", coll, &coll.statuses)
	curried(L, "Skill", coll, &coll.skills)
	curried(L, "Hero", coll, &coll.heroes)
	curried(L, "Enemy", coll, &coll.enemies)
	curried(L, "Encounter", coll, &coll.encounters)
}

func registerSkillHelpers(L *lua.LState) {
	// Inflict("kind", duration, potency, chance)
	// duration 0 uses the status default; chance 0 means always.
	L.SetGlobal("Inflict", L.NewFunction(func(L *lua.LState) int {
		kind := L.CheckString(1)
		tbl := L.NewTable()
		tbl.RawSetString("kind", lua.LString(kind))
		tbl.RawSetString("duration", L.OptNumber(2, 0))
		tbl.RawSetString("potency", L.OptNumber(3, 0))
		tbl.RawSetString("chance", L.OptNumber(4, 0))
		L.Push(tbl)
		return 1
	}))
}

// numberCondition registers a helper taking one numeric threshold.
func numberCondition(L *lua.LState, name, condType string) {
	L.SetGlobal(name, L.NewFunction(func(L *lua.LState) int {
		value := L.CheckNumber(1)
		tbl := L.NewTable()
		tbl.RawSetString("type", lua.LString(condType))
		tbl.RawSetString("value", value)
		L.Push(tbl)
		return 1
	}))
}

// statusCondition registers a helper taking a status kind name.
func statusCondition(L *lua.LState, name, condType string) {
	L.SetGlobal(name, L.NewFunction(func(L *lua.LState) int {
		kind := L.CheckString(1)
		tbl := L.NewTable()
		tbl.RawSetString("type", lua.LString(condType))
		tbl.RawSetString("status", lua.LString(kind))
		L.Push(tbl)
		return 1
	}))
}

// flagCondition registers a helper without arguments.
func flagCondition(L *lua.LState, name, condType string) {
	L.SetGlobal(name, L.NewFunction(func(L *lua.LState) int {
		tbl := L.NewTable()
		tbl.RawSetString("type", lua.LString(condType))
		L.Push(tbl)
		return 1
	}))
}

func registerConditionHelpers(L *lua.LState) {
	numberCondition(L, "HpBelow", "hp_below")
	numberCondition(L, "HpAbove", "hp_above")
	numberCondition(L, "BraveAbove", "brave_above")
	numberCondition(L, "BraveBelow", "brave_below")
	numberCondition(L, "AllyHpBelow", "ally_hp_below")
	numberCondition(L, "FoeBraveAbove", "foe_brave_above")
	numberCondition(L, "TurnGt", "turn_gt")

	statusCondition(L, "HasStatus", "has_status")
	statusCondition(L, "FoeHasStatus", "foe_has_status")

	flagCondition(L, "AllyDown", "ally_down")
	flagCondition(L, "FoeBroken", "foe_broken")

	// Not(condition)
	L.SetGlobal("Not", L.NewFunction(func(L *lua.LState) int {
		inner := L.CheckTable(1)
		tbl := L.NewTable()
		tbl.RawSetString("type", lua.LString("not"))
		tbl.RawSetString("inner", inner)
		L.Push(tbl)
		return 1
	}))
}
