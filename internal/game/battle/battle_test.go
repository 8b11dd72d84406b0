package battle_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/battlecore/internal/game/battle"
	"github.com/cory-johannsen/battlecore/internal/game/stat"
)

func newUnit(id int64, player bool, hp int64) *battle.Combatant {
	return &battle.Combatant{
		InstanceID:     id,
		Player:         player,
		CurrentHP:      hp,
		Stats:          stat.Stats{stat.MaxHP: hp},
		SkillCooldowns: map[int64]int64{},
	}
}

func TestCombatant_ApplyDamage_FloorsAtZero(t *testing.T) {
	c := newUnit(1, true, 50)
	assert.False(t, c.ApplyDamage(20))
	assert.Equal(t, int64(30), c.CurrentHP)
	assert.True(t, c.ApplyDamage(100))
	assert.Equal(t, int64(0), c.CurrentHP)
	assert.False(t, c.ApplyDamage(5), "already dead")
}

func TestCombatant_Heal_CapsAtMax(t *testing.T) {
	c := newUnit(1, true, 100)
	c.CurrentHP = 90
	assert.Equal(t, int64(10), c.Heal(40))
	assert.Equal(t, int64(100), c.CurrentHP)
}

func TestCombatant_ClampHP_AfterMaxHPDrop(t *testing.T) {
	c := newUnit(1, true, 100)
	c.Stats.Add(stat.MaxHP, -30)
	c.ClampHP()
	assert.Equal(t, int64(70), c.CurrentHP)
}

func TestCombatant_SkillLevel_DefaultsToOne(t *testing.T) {
	c := newUnit(1, true, 10)
	assert.Equal(t, 1, c.SkillLevel(7))
	c.SkillLevels = map[int64]int{7: 4}
	assert.Equal(t, 4, c.SkillLevel(7))
}

func TestCombatant_TickCooldowns_DropsExpired(t *testing.T) {
	c := newUnit(1, true, 10)
	c.AttackCooldownMs = 300
	c.SetSkillCooldown(5, 1000)
	c.SetSkillCooldown(6, 200)
	c.TickCooldowns(500)
	assert.Equal(t, int64(0), c.AttackCooldownMs)
	assert.Equal(t, map[int64]int64{5: 500}, c.SkillCooldowns)
	assert.True(t, c.SkillReady(6))
	assert.False(t, c.SkillReady(5))
}

func TestState_Clone_IsDeep(t *testing.T) {
	s := battle.NewState(
		[]*battle.Combatant{newUnit(1, true, 100), newUnit(2, false, 80)},
		[]*battle.Combatant{newUnit(3, true, 500)},
	)
	s.Characters[0].Buffs = []battle.BuffInstance{{BuffID: 9, Stacks: 1, RemainingDurationMs: 100}}

	cp := s.Clone()
	cp.Characters[0].CurrentHP = 1
	cp.Characters[0].Stats.Add(stat.Attack, 10)
	cp.Characters[0].Buffs[0].Stacks = 3
	cp.Characters[0].SetSkillCooldown(4, 100)
	cp.DemonLords[0].CurrentHP = 0
	cp.Emit(battle.DeathEvent(3))

	assert.Equal(t, int64(100), s.Characters[0].CurrentHP)
	assert.Equal(t, int64(0), s.Characters[0].Stats.Get(stat.Attack))
	assert.Equal(t, 1, s.Characters[0].Buffs[0].Stacks)
	assert.Empty(t, s.Characters[0].SkillCooldowns)
	assert.Equal(t, int64(500), s.DemonLords[0].CurrentHP)
	assert.Empty(t, s.Events)
}

func TestState_Lookup(t *testing.T) {
	s := battle.NewState([]*battle.Combatant{newUnit(1, true, 10)}, []*battle.Combatant{newUnit(2, false, 10)})
	require.NotNil(t, s.Combatant(1))
	require.NotNil(t, s.Combatant(2))
	assert.Nil(t, s.Character(2))
	assert.Nil(t, s.Combatant(99))
	assert.Equal(t, battle.StatusPreparing, s.Status)
}

func TestState_Living(t *testing.T) {
	dead := newUnit(2, false, 10)
	dead.CurrentHP = 0
	s := battle.NewState([]*battle.Combatant{newUnit(1, true, 10), dead, newUnit(3, false, 10)}, nil)
	enemies := s.LivingCharacters(false)
	require.Len(t, enemies, 1)
	assert.Equal(t, int64(3), enemies[0].InstanceID)
}

func TestStatusInProgress_AliasesOngoing(t *testing.T) {
	assert.Equal(t, battle.StatusOngoing, battle.StatusInProgress)
	assert.Equal(t, "ongoing", battle.StatusInProgress.String())
}

// Property: ApplyDamage and Heal always keep HP within [0, MaxHP].
func TestPropertyCombatant_HPClamp(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		maxHP := rapid.Int64Range(1, 10000).Draw(t, "max_hp")
		c := newUnit(1, true, maxHP)
		ops := rapid.SliceOfN(rapid.Int64Range(-5000, 5000), 1, 30).Draw(t, "ops")
		for _, op := range ops {
			if op < 0 {
				c.ApplyDamage(-op)
			} else {
				c.Heal(op)
			}
			if c.CurrentHP < 0 || c.CurrentHP > maxHP {
				t.Fatalf("HP %d escaped [0, %d]", c.CurrentHP, maxHP)
			}
		}
	})
}

// Property: cooldowns never go negative and no expired skill cooldown is retained.
func TestPropertyCombatant_CooldownsNonNegative(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		c := newUnit(1, true, 10)
		c.AttackCooldownMs = rapid.Int64Range(0, 5000).Draw(t, "attack_cd")
		n := rapid.IntRange(0, 5).Draw(t, "skills")
		for i := 0; i < n; i++ {
			c.SetSkillCooldown(int64(i+1), rapid.Int64Range(1, 5000).Draw(t, "skill_cd"))
		}
		for _, d := range rapid.SliceOfN(rapid.Int64Range(0, 2000), 1, 10).Draw(t, "deltas") {
			c.TickCooldowns(d)
			if c.AttackCooldownMs < 0 {
				t.Fatalf("attack cooldown negative: %d", c.AttackCooldownMs)
			}
			for id, ms := range c.SkillCooldowns {
				if ms <= 0 {
					t.Fatalf("skill %d retained cooldown %d", id, ms)
				}
			}
		}
	})
}
