package rules

import (
	"testing"

	"github.com/nathoo/bravecore/engine/combat"
	"github.com/nathoo/bravecore/engine/status"
	"github.com/nathoo/bravecore/types"
)

func newCombatant(t *testing.T, reg *status.Registry, id string, side types.Side) *combat.Combatant {
	t.Helper()
	return combat.NewCombatant(id, types.CombatantDef{
		ID: id, Name: id, Side: side,
		HP: 1000, MaxBrave: 9999, Brave: 100, Speed: 100,
	}, reg)
}

// condTestView: a wounded, poisoned shaman with a fallen ally, facing a
// broken knight and a healthy ogre, on turn 5.
func condTestView(t *testing.T) View {
	t.Helper()
	reg, err := status.NewRegistry(
		status.Descriptor{Kind: status.Poison, Debuff: true, Duration: 3, Potency: 10, Stacking: types.StackAdditive},
		status.Descriptor{Kind: status.Slow, Debuff: true, Duration: 3, Potency: 50, Stacking: types.StackRefresh},
	)
	if err != nil {
		t.Fatalf("registry: %v", err)
	}

	shaman := newCombatant(t, reg, "shaman", types.SideEnemies)
	shaman.ApplyDamage(700) // 30%
	if _, err := shaman.Statuses.Apply(status.Poison, 3, 10, "knight"); err != nil {
		t.Fatalf("apply: %v", err)
	}
	fallen := newCombatant(t, reg, "goblin", types.SideEnemies)
	fallen.ApplyDamage(1000)

	knight := newCombatant(t, reg, "knight", types.SideParty)
	knight.LoseBrave(100)
	ogre := newCombatant(t, reg, "ogre", types.SideParty)
	ogre.GainBrave(900)
	if _, err := ogre.Statuses.Apply(status.Slow, 3, 50, "shaman"); err != nil {
		t.Fatalf("apply: %v", err)
	}

	return View{
		Self:   shaman,
		Allies: []*combat.Combatant{shaman, fallen},
		Foes:   []*combat.Combatant{knight, ogre},
		Turn:   5,
	}
}

func TestEvalCondition(t *testing.T) {
	v := condTestView(t)

	tests := []struct {
		name string
		cond types.Condition
		want bool
	}{
		{
			name: "hp_below: 30% < 50",
			cond: types.Condition{Type: "hp_below", Params: map[string]any{"value": 50}},
			want: true,
		},
		{
			name: "hp_below: 30% not < 30",
			cond: types.Condition{Type: "hp_below", Params: map[string]any{"value": 30}},
			want: false,
		},
		{
			name: "hp_above: float param from Lua",
			cond: types.Condition{Type: "hp_above", Params: map[string]any{"value": float64(20)}},
			want: true,
		},
		{
			name: "brave_above: 100 > 50",
			cond: types.Condition{Type: "brave_above", Params: map[string]any{"value": 50}},
			want: true,
		},
		{
			name: "brave_below: 100 not < 100",
			cond: types.Condition{Type: "brave_below", Params: map[string]any{"value": 100}},
			want: false,
		},
		{
			name: "ally_hp_below: dead allies do not count",
			cond: types.Condition{Type: "ally_hp_below", Params: map[string]any{"value": 10}},
			want: false,
		},
		{
			name: "ally_hp_below: self counts",
			cond: types.Condition{Type: "ally_hp_below", Params: map[string]any{"value": 40}},
			want: true,
		},
		{
			name: "ally_down",
			cond: types.Condition{Type: "ally_down"},
			want: true,
		},
		{
			name: "has_status: poisoned",
			cond: types.Condition{Type: "has_status", Params: map[string]any{"status": "poison"}},
			want: true,
		},
		{
			name: "has_status: korean alias",
			cond: types.Condition{Type: "has_status", Params: map[string]any{"status": "독"}},
			want: true,
		},
		{
			name: "has_status: unknown kind",
			cond: types.Condition{Type: "has_status", Params: map[string]any{"status": "doom"}},
			want: false,
		},
		{
			name: "foe_has_status: ogre slowed",
			cond: types.Condition{Type: "foe_has_status", Params: map[string]any{"status": "slow"}},
			want: true,
		},
		{
			name: "foe_broken: knight at 0 Brave",
			cond: types.Condition{Type: "foe_broken"},
			want: true,
		},
		{
			name: "foe_brave_above: ogre at 1000",
			cond: types.Condition{Type: "foe_brave_above", Params: map[string]any{"value": 999}},
			want: true,
		},
		{
			name: "turn_gt: fails (equal)",
			cond: types.Condition{Type: "turn_gt", Params: map[string]any{"value": 5}},
			want: false,
		},
		{
			name: "not: negates true → false",
			cond: types.Condition{
				Type:  "not",
				Inner: &types.Condition{Type: "ally_down"},
			},
			want: false,
		},
		{
			name: "not: negates false → true",
			cond: types.Condition{
				Type:  "not",
				Inner: &types.Condition{Type: "turn_gt", Params: map[string]any{"value": 9}},
			},
			want: true,
		},
		{
			name: "unknown condition type: false",
			cond: types.Condition{Type: "bogus"},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EvalCondition(tt.cond, v)
			if got != tt.want {
				t.Errorf("EvalCondition() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEvalAllConditions(t *testing.T) {
	v := condTestView(t)
	pass := []types.Condition{
		{Type: "hp_below", Params: map[string]any{"value": 50}},
		{Type: "foe_broken"},
	}
	if !EvalAllConditions(pass, v) {
		t.Error("expected all conditions to pass")
	}

	fail := append(pass, types.Condition{Type: "turn_gt", Params: map[string]any{"value": 10}})
	if EvalAllConditions(fail, v) {
		t.Error("expected conditions to fail")
	}

	if !EvalAllConditions(nil, v) {
		t.Error("expected empty conditions to pass")
	}
}
