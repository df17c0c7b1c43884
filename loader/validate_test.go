package loader

import (
	"strings"
	"testing"

	"github.com/nathoo/bravecore/types"
)

// validContent returns a minimal valid content set for testing.
func validContent() *content {
	return &content{
		game: types.GameDef{Title: "Test", Start: "duel"},
		statuses: []types.EffectDescriptor{
			{Kind: "poison", Debuff: true, Duration: 3, Potency: 10},
		},
		skills: []types.SkillDef{
			{ID: "strike", Category: types.CategoryBraveAttack, Target: types.SelectorSingle,
				DamageType: types.DamagePhysical, BraveCoeff: 1, Classes: []string{"fighter"}},
		},
		templates: map[string]types.CombatantDef{
			"fighter": {ID: "fighter", Class: "fighter", Side: types.SideParty, HP: 100, Speed: 100, MaxBrave: 999},
			"dummy":   {ID: "dummy", Side: types.SideEnemies, HP: 50, Speed: 50, MaxBrave: 999},
		},
		encounters: map[string]types.EncounterDef{
			"duel": {ID: "duel", Party: []string{"fighter"}, Enemies: []string{"dummy"}},
		},
	}
}

func assertContains(t *testing.T, msgs []string, substr string) {
	t.Helper()
	for _, m := range msgs {
		if strings.Contains(m, substr) {
			return
		}
	}
	t.Errorf("expected a message containing %q, got: %v", substr, msgs)
}

func validationErrors(t *testing.T, c *content) *ValidationError {
	t.Helper()
	err := validate(c)
	if err == nil {
		t.Fatal("expected validation error")
	}
	ve, ok := err.(*ValidationError)
	if !ok {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	return ve
}

func TestValidate_ValidContent(t *testing.T) {
	if err := validate(validContent()); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
}

func TestValidate_MissingStartEncounter(t *testing.T) {
	c := validContent()
	c.game.Start = "nonexistent"
	assertContains(t, validationErrors(t, c).Errors, "start encounter")
}

func TestValidate_EmptyTitle(t *testing.T) {
	c := validContent()
	c.game.Title = ""
	assertContains(t, validationErrors(t, c).Errors, "Game.Title is required")
}

func TestValidate_StatusDuration(t *testing.T) {
	c := validContent()
	c.statuses[0].Duration = 0
	assertContains(t, validationErrors(t, c).Errors, "duration must be positive")
}

func TestValidate_StatusRegisteredTwiceViaAlias(t *testing.T) {
	c := validContent()
	c.statuses = append(c.statuses, types.EffectDescriptor{Kind: "독", Duration: 2})
	assertContains(t, validationErrors(t, c).Errors, "registers poison twice")
}

func TestValidate_SkillRanges(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*types.SkillDef)
		want   string
	}{
		{"accuracy", func(s *types.SkillDef) { s.Accuracy = 150 }, "accuracy 150 out of range"},
		{"cooldown", func(s *types.SkillDef) { s.Cooldown = -1 }, "must not be negative"},
		{"damage type", func(s *types.SkillDef) { s.DamageType = "holy" }, `unknown damage type "holy"`},
		{"cleanse", func(s *types.SkillDef) { s.Cleanse = "everything" }, `unknown cleanse "everything"`},
		{"cleanse kind", func(s *types.SkillDef) { s.CleanseKinds = []string{"doom"} }, "cleanse"},
		{"inflict chance", func(s *types.SkillDef) {
			s.Statuses = []types.StatusApplication{{Kind: "poison", Chance: 101}}
		}, "out-of-range values"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validContent()
			tt.mutate(&c.skills[0])
			assertContains(t, validationErrors(t, c).Errors, tt.want)
		})
	}
}

func TestValidate_InflictAgainstRegisteredStatus(t *testing.T) {
	tests := []struct {
		name     string
		statuses []types.EffectDescriptor
		inflict  types.StatusApplication
		want     string
	}{
		{
			name:     "below minimum potency",
			statuses: []types.EffectDescriptor{{Kind: "poison", Debuff: true, Duration: 3, Potency: 10, MinPotency: 5}},
			inflict:  types.StatusApplication{Kind: "poison", Duration: 2, Potency: 1},
			want:     "potency 1 below minimum 5",
		},
		{
			name:     "no potency anywhere",
			statuses: []types.EffectDescriptor{{Kind: "burn", Debuff: true, Duration: 2}},
			inflict:  types.StatusApplication{Kind: "burn"},
			want:     "burn potency 0",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validContent()
			c.statuses = tt.statuses
			c.skills[0].Statuses = []types.StatusApplication{tt.inflict}
			assertContains(t, validationErrors(t, c).Errors, tt.want)
		})
	}
}

func TestValidate_InflictUsesStatusDefaults(t *testing.T) {
	c := validContent()
	c.statuses = []types.EffectDescriptor{
		{Kind: "poison", Debuff: true, Duration: 3, Potency: 10, MinPotency: 5},
		{Kind: "stun", Debuff: true, Duration: 1},
	}
	c.skills[0].Statuses = []types.StatusApplication{{Kind: "poison"}, {Kind: "stun", Chance: 40}}
	if err := validate(c); err != nil {
		t.Fatalf("expected defaults to satisfy the status rules, got: %v", err)
	}
}

func TestValidate_NotWithoutInner(t *testing.T) {
	c := validContent()
	d := c.templates["dummy"]
	d.Behavior = []types.BehaviorEntry{{Skill: "strike", Weight: 1, When: []types.Condition{{Type: "not"}}}}
	c.templates["dummy"] = d
	assertContains(t, validationErrors(t, c).Errors, "Not() without a condition")
}

func TestValidate_UnknownStatusInCondition(t *testing.T) {
	c := validContent()
	d := c.templates["dummy"]
	d.Behavior = []types.BehaviorEntry{{
		Skill: "strike", Weight: 1,
		When: []types.Condition{{
			Type:  "not",
			Inner: &types.Condition{Type: "foe_has_status", Params: map[string]any{"status": "doom"}},
		}},
	}}
	c.templates["dummy"] = d
	assertContains(t, validationErrors(t, c).Errors, "condition foe_has_status")
}

func TestValidate_EncounterNeedsBothSides(t *testing.T) {
	c := validContent()
	c.encounters["empty"] = types.EncounterDef{ID: "empty"}
	ve := validationErrors(t, c)
	assertContains(t, ve.Errors, `encounter "empty" has no party`)
	assertContains(t, ve.Errors, `encounter "empty" has no enemies`)
}

func TestValidate_HeroTwice(t *testing.T) {
	c := validContent()
	c.encounters["duel"] = types.EncounterDef{ID: "duel", Party: []string{"fighter", "fighter"}, Enemies: []string{"dummy"}}
	assertContains(t, validationErrors(t, c).Errors, `lists hero "fighter" twice`)
}

func TestValidate_Warnings(t *testing.T) {
	c := validContent()
	c.skills = append(c.skills, types.SkillDef{
		ID: "orphan", Category: types.CategoryBuff, Target: types.SelectorSelf, DamageType: types.DamagePhysical,
	})
	f := c.templates["fighter"]
	f.Class = "bard"
	c.templates["fighter"] = f

	// Warnings alone do not fail validation.
	if err := validate(c); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
}

func TestValidationError_Message(t *testing.T) {
	ve := &ValidationError{Errors: []string{"a", "b"}}
	if got := ve.Error(); got != "validation failed with 2 error(s):\n  a\n  b" {
		t.Errorf("Error() = %q", got)
	}
}
