package equipment_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/battlecore/internal/game/battle"
	"github.com/cory-johannsen/battlecore/internal/game/equipment"
	"github.com/cory-johannsen/battlecore/internal/game/stat"
)

func attacker(hp, maxHP int64) *battle.Combatant {
	return &battle.Combatant{CurrentHP: hp, Stats: stat.Stats{stat.MaxHP: maxHP}}
}

func TestBerserker_BelowHalfHP(t *testing.T) {
	u := &equipment.UniqueEffect{Kind: equipment.Berserker, Primary: 100}
	assert.Equal(t, int64(100), u.ModifyDamage(100, attacker(80, 100), nil, battle.HitContext{}))
	assert.Equal(t, int64(100), u.ModifyDamage(100, attacker(50, 100), nil, battle.HitContext{}))
	assert.Equal(t, int64(130), u.ModifyDamage(100, attacker(20, 100), nil, battle.HitContext{}))
	assert.Equal(t, int64(150), u.ModifyDamage(100, attacker(0, 100), nil, battle.HitContext{}))
	assert.Equal(t, int64(100), u.ModifyDamage(100, attacker(0, 0), nil, battle.HitContext{}))
}

func TestAssassin_OnlyOnCritical(t *testing.T) {
	u := &equipment.UniqueEffect{Kind: equipment.Assassin, Primary: 25}
	assert.Equal(t, int64(200), u.ModifyDamage(200, attacker(1, 1), nil, battle.HitContext{}))
	assert.Equal(t, int64(250), u.ModifyDamage(200, attacker(1, 1), nil, battle.HitContext{Critical: true}))
	assert.Equal(t, equipment.UniquePriority, u.Priority())
}

func TestStatOnlyKinds_PassThrough(t *testing.T) {
	for _, k := range []equipment.UniqueKind{equipment.Vampire, equipment.Guardian, equipment.Elemental, equipment.Rapid, equipment.Fortress, equipment.Custom} {
		u := &equipment.UniqueEffect{Kind: k, Primary: 50}
		assert.Equal(t, int64(77), u.ModifyDamage(77, attacker(1, 100), nil, battle.HitContext{Critical: true}), k.String())
	}
}

func TestUniqueEffect_EquipScalesByLevel(t *testing.T) {
	s := stat.Stats{stat.Attack: 100}
	u := &equipment.UniqueEffect{Kind: equipment.Berserker, Primary: 20, Level: 3}
	u.Equip(s)
	assert.Equal(t, int64(124), s.Get(stat.Attack))
	u.Unequip(s)
	assert.Equal(t, int64(100), s.Get(stat.Attack))
}

func TestUniqueEffect_EquipElemental(t *testing.T) {
	s := stat.Stats{}
	(&equipment.UniqueEffect{Kind: equipment.Elemental, Primary: 10, Secondary: 5}).Equip(s)
	assert.Equal(t, int64(10), s.Get(stat.FireDamageBonus))
	assert.Equal(t, int64(10), s.Get(stat.DarkDamageBonus))
	assert.Equal(t, int64(5), s.Get(stat.PenetrationRate))
}

func TestUniqueKind_YAML(t *testing.T) {
	var u equipment.UniqueEffect
	require.NoError(t, yaml.Unmarshal([]byte("kind: fortress\nprimary: 15\n"), &u))
	assert.Equal(t, equipment.Fortress, u.Kind)
	assert.Error(t, yaml.Unmarshal([]byte("kind: phoenix\n"), &u))
}

func TestStatModifier_Apply(t *testing.T) {
	s := stat.Stats{stat.Attack: 200}
	equipment.ApplyAll(s, []equipment.StatModifier{
		{Stat: stat.Attack, Kind: equipment.Additive, Value: 50},
		{Stat: stat.Attack, Kind: equipment.Multiplicative, Value: 10},
		{Stat: stat.Defense, Kind: equipment.Multiplicative, Value: 10},
	})
	assert.Equal(t, int64(275), s.Get(stat.Attack))
	assert.Equal(t, int64(0), s.Get(stat.Defense))
}

// Property: Unequip exactly reverses Equip for every kind.
func TestPropertyUniqueEffect_EquipUnequipRestores(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		u := &equipment.UniqueEffect{
			Kind:      equipment.UniqueKind(rapid.IntRange(0, int(equipment.Custom)).Draw(t, "kind")),
			Primary:   rapid.Int64Range(0, 200).Draw(t, "primary"),
			Secondary: rapid.Int64Range(0, 200).Draw(t, "secondary"),
			Level:     rapid.IntRange(0, 20).Draw(t, "level"),
		}
		s := stat.Stats{stat.Attack: 100, stat.Defense: rapid.Int64Range(0, 500).Draw(t, "defense"), stat.MaxHP: 1000}
		before := s.Clone()
		u.Equip(s)
		u.Unequip(s)
		for k, v := range before {
			if s.Get(k) != v {
				t.Fatalf("%s: %d after unequip, want %d", k, s.Get(k), v)
			}
		}
	})
}
