package scripting_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/battlecore/internal/game/battle"
	"github.com/cory-johannsen/battlecore/internal/game/stat"
	"github.com/cory-johannsen/battlecore/internal/scripting"
)

func combatants() (*battle.Combatant, *battle.Combatant) {
	a := &battle.Combatant{InstanceID: 1, Name: "imp", Player: true, CurrentHP: 40, Stats: stat.Stats{stat.MaxHP: 100, stat.Attack: 55}}
	d := &battle.Combatant{InstanceID: 2, Name: "golem", CurrentHP: 300, Stats: stat.Stats{stat.MaxHP: 300, stat.Defense: 30}}
	return a, d
}

func TestModifier_UsesContext(t *testing.T) {
	mgr, _ := newTestManager(t, 0)
	require.NoError(t, mgr.Load("crushing", `
		function modify_damage(damage, ctx)
			local bonus = 0
			if ctx.critical then bonus = bonus + 10 end
			if ctx.defender.stats.defense > 20 then bonus = bonus + ctx.attacker.stats.attack end
			return damage + bonus + 0.9
		end
	`))
	m := scripting.NewModifier(mgr, "crushing", 150)
	a, d := combatants()

	assert.Equal(t, 150, m.Priority())
	assert.Equal(t, int64(155), m.ModifyDamage(100, a, d, battle.HitContext{}))
	assert.Equal(t, int64(165), m.ModifyDamage(100, a, d, battle.HitContext{Critical: true}))
}

func TestModifier_PassThroughOnFailure(t *testing.T) {
	mgr, logs := newTestManager(t, 200)
	require.NoError(t, mgr.Load("broken", `function modify_damage(d, ctx) return ctx.nope.field end`))
	require.NoError(t, mgr.Load("spin", `function modify_damage(d) while true do end end`))
	require.NoError(t, mgr.Load("text", `function modify_damage(d) return "lots" end`))
	a, d := combatants()

	for _, name := range []string{"broken", "spin", "text", "missing"} {
		got := scripting.NewModifier(mgr, name, 0).ModifyDamage(42, a, d, battle.HitContext{})
		assert.Equal(t, int64(42), got, name)
	}
	assert.Equal(t, 2, logs.FilterMessage("scripting: Lua runtime error").Len())
}
