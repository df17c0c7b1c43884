package combat

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nathoo/bravecore/engine/status"
	"github.com/nathoo/bravecore/types"
)

func TestCombatant_PoolsStayInBounds(t *testing.T) {
	c := fighter(testRegistry(t), "hero", types.SideParty, func(d *types.CombatantDef) { d.MaxBrave = 500 })

	assert.Equal(t, 1000, c.ApplyDamage(5000))
	assert.Equal(t, 0, c.HP())
	assert.False(t, c.Alive())
	assert.Equal(t, 0, c.ApplyHeal(100), "no healing the defeated")

	assert.Equal(t, 400, c.GainBrave(1000))
	assert.Equal(t, 500, c.Brave())
	assert.Equal(t, 500, c.LoseBrave(900))
	assert.Equal(t, 0, c.Brave())

	assert.Equal(t, 0, c.ApplyDamage(-5))
	assert.Equal(t, 0, c.GainBrave(-5))
}

func TestCombatant_InitialBraveCappedAtMax(t *testing.T) {
	c := fighter(testRegistry(t), "hero", types.SideParty, func(d *types.CombatantDef) { d.MaxBrave = 50 })
	assert.Equal(t, 50, c.Brave())
	assert.Equal(t, 50, c.BaseBrave())
}

func TestCombatant_Revive(t *testing.T) {
	c := fighter(testRegistry(t), "hero", types.SideParty, nil)
	assert.Equal(t, 0, c.Revive(100), "alive combatants are not revived")

	c.ApplyDamage(5000)
	c.GainBrave(300)
	assert.Equal(t, 1000, c.Revive(9999))
	assert.True(t, c.Alive())
	assert.Equal(t, 100, c.Brave())
}

func TestCombatant_SpendMP(t *testing.T) {
	c := fighter(testRegistry(t), "hero", types.SideParty, nil)
	assert.False(t, c.SpendMP(51))
	assert.Equal(t, 50, c.MP())
	assert.True(t, c.SpendMP(50))
	assert.Equal(t, 0, c.MP())
}

func TestCombatant_CooldownCountsOwnerTurns(t *testing.T) {
	c := fighter(testRegistry(t), "hero", types.SideParty, nil)
	c.StartCooldown("meteor", 2)
	c.StartCooldown("noop", 0)

	assert.Equal(t, 2, c.Cooldown("meteor"))
	assert.Equal(t, 0, c.Cooldown("noop"))

	c.EndTurn() // turn of use
	assert.Equal(t, 2, c.Cooldown("meteor"))
	c.EndTurn()
	assert.Equal(t, 1, c.Cooldown("meteor"))
	c.EndTurn()
	assert.Equal(t, 0, c.Cooldown("meteor"))
	assert.Empty(t, c.Cooldowns())
}

func TestCombatant_EffectiveSpeed(t *testing.T) {
	c := fighter(testRegistry(t), "hero", types.SideParty, func(d *types.CombatantDef) { d.Speed = 1 })
	_, err := c.Statuses.Apply(status.Slow, 3, 50, "x")
	assert.NoError(t, err)
	assert.Equal(t, 1, c.EffectiveSpeed(), "living combatants never stall")

	c.ApplyDamage(5000)
	assert.Equal(t, 0, c.EffectiveSpeed())
}

func TestCombatant_Restore(t *testing.T) {
	c := fighter(testRegistry(t), "hero", types.SideParty, nil)
	c.Restore(5000, -3, 20, map[string]int{"slash": 2, "gone": 0})

	assert.Equal(t, 1000, c.HP())
	assert.Equal(t, 0, c.Brave())
	assert.Equal(t, 20, c.MP())
	assert.Equal(t, map[string]int{"slash": 2}, c.Cooldowns())
}
