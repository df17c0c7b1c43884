package skill

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nathoo/bravecore/types"
)

func testSkills() []types.SkillDef {
	return []types.SkillDef{
		{ID: "slash", Name: "베기", Category: types.CategoryBraveAttack, Classes: []string{"warrior", "knight"}},
		{ID: "fire", Name: "파이어", Category: types.CategoryBraveAttack, Classes: []string{"mage"}},
		{ID: "break", Name: "브레이크", Category: types.CategoryHPAttack, Classes: []string{"warrior"}},
		{ID: "cure", Name: "케알", Category: types.CategoryHeal, Classes: []string{"mage", "knight"}},
		{ID: "guard", Name: "가드", Category: types.CategoryBuff, Classes: []string{"knight", "warrior"}},
	}
}

func TestCatalog_Get(t *testing.T) {
	c, err := NewCatalog(testSkills())
	require.NoError(t, err)

	s, err := c.Get("fire")
	require.NoError(t, err)
	assert.Equal(t, "파이어", s.Name)

	_, err = c.Get("meteor")
	assert.ErrorIs(t, err, ErrUnknownSkill)
	assert.False(t, c.Has("meteor"))
	assert.Equal(t, 5, c.Len())
}

func TestCatalog_ListForActorKeepsDeclarationOrder(t *testing.T) {
	c, err := NewCatalog(testSkills())
	require.NoError(t, err)

	var ids []string
	for _, s := range c.ListForActor("warrior") {
		ids = append(ids, s.ID)
	}
	assert.Equal(t, []string{"slash", "break", "guard"}, ids)

	ids = ids[:0]
	for _, s := range c.ListForActor("knight") {
		ids = append(ids, s.ID)
	}
	assert.Equal(t, []string{"slash", "cure", "guard"}, ids)

	assert.Empty(t, c.ListForActor("thief"))
}

func TestCatalog_RejectsDuplicates(t *testing.T) {
	_, err := NewCatalog([]types.SkillDef{{ID: "a"}, {ID: "a"}})
	assert.Error(t, err)

	_, err = NewCatalog([]types.SkillDef{{ID: ""}})
	assert.Error(t, err)
}

func TestCatalog_IsImmutable(t *testing.T) {
	defs := testSkills()
	c, err := NewCatalog(defs)
	require.NoError(t, err)

	defs[0].Classes[0] = "thief"
	all := c.All()
	all[0].Name = "changed"

	s, _ := c.Get("slash")
	assert.Equal(t, "베기", s.Name)
	assert.Equal(t, []string{"warrior", "knight"}, s.Classes)
}

func TestCatalog_Find(t *testing.T) {
	c, err := NewCatalog(testSkills())
	require.NoError(t, err)
	within := c.ListForActor("warrior")

	s, ok := c.Find("브레이크", within)
	require.True(t, ok)
	assert.Equal(t, "break", s.ID)

	_, ok = c.Find("fire", within)
	assert.False(t, ok, "not in the actor's list")
}
