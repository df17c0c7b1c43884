package rules

import (
	"testing"

	"github.com/nathoo/bravecore/types"
)

func skills(entries []types.BehaviorEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Skill
	}
	return out
}

func TestEligible_NoConditions(t *testing.T) {
	v := condTestView(t)
	table := []types.BehaviorEntry{
		{Skill: "bite", Weight: 70, Order: 0},
		{Skill: "howl", Weight: 30, Order: 1},
	}
	got := skills(Eligible(table, v, nil))
	if len(got) != 2 || got[0] != "bite" || got[1] != "howl" {
		t.Errorf("expected both entries in order, got %v", got)
	}
}

func TestEligible_PriorityShadows(t *testing.T) {
	v := condTestView(t) // self at 30% HP
	table := []types.BehaviorEntry{
		{Skill: "bite", Weight: 70, Order: 0},
		{Skill: "heal", Weight: 10, Priority: 2, Order: 1,
			When: []types.Condition{{Type: "hp_below", Params: map[string]any{"value": 50}}}},
		{Skill: "mend", Weight: 10, Priority: 2, Order: 2},
	}
	got := skills(Eligible(table, v, nil))
	if len(got) != 2 || got[0] != "heal" || got[1] != "mend" {
		t.Errorf("expected heal and mend, got %v", got)
	}
}

func TestEligible_FailedConditionFallsBack(t *testing.T) {
	v := condTestView(t)
	table := []types.BehaviorEntry{
		{Skill: "bite", Weight: 70, Order: 0},
		{Skill: "finisher", Weight: 50, Priority: 5, Order: 1,
			When: []types.Condition{{Type: "turn_gt", Params: map[string]any{"value": 10}}}},
	}
	got := skills(Eligible(table, v, nil))
	if len(got) != 1 || got[0] != "bite" {
		t.Errorf("expected bite only, got %v", got)
	}
}

func TestEligible_UsableAndWeightFilter(t *testing.T) {
	v := condTestView(t)
	table := []types.BehaviorEntry{
		{Skill: "bite", Weight: 0, Order: 0},
		{Skill: "meteor", Weight: 50, Priority: 9, Order: 1},
		{Skill: "claw", Weight: 20, Order: 2},
	}
	usable := func(e types.BehaviorEntry) bool { return e.Skill != "meteor" }
	got := skills(Eligible(table, v, usable))
	if len(got) != 1 || got[0] != "claw" {
		t.Errorf("expected claw only, got %v", got)
	}
}

func TestEligible_Empty(t *testing.T) {
	v := condTestView(t)
	if got := Eligible(nil, v, nil); got != nil {
		t.Errorf("expected nil, got %v", got)
	}
}
