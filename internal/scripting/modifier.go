package scripting

import (
	"maps"
	"math"
	"slices"

	lua "github.com/yuin/gopher-lua"

	"github.com/cory-johannsen/battlecore/internal/game/battle"
)

// ModifyDamageHook is the Lua global a damage modifier script defines:
//
//	function modify_damage(damage, ctx) return damage end
//
// ctx holds critical, skill_name, skill_coefficient, attacker and defender.
// attacker and defender are tables of id, name, player, hp, max_hp and a stats
// table keyed by stat name.
const ModifyDamageHook = "modify_damage"

// Modifier is a battle.Modifier whose damage change is computed by a script.
type Modifier struct {
	mgr      *Manager
	script   string
	priority int
}

// NewModifier binds script's modify_damage hook at the given pipeline priority.
//
// Precondition: mgr must be non-nil.
func NewModifier(mgr *Manager, script string, priority int) *Modifier {
	return &Modifier{mgr: mgr, script: script, priority: priority}
}

// Script returns the bound script name.
func (m *Modifier) Script() string { return m.script }

// Priority implements battle.Modifier.
func (m *Modifier) Priority() int { return m.priority }

// ModifyDamage implements battle.Modifier.
//
// Postcondition: Returns the hook's result truncated to an integer, or damage
// unchanged when the hook is missing, fails, or returns a non-number.
func (m *Modifier) ModifyDamage(damage int64, attacker, defender *battle.Combatant, hit battle.HitContext) int64 {
	ret, err := m.mgr.CallHook(m.script, ModifyDamageHook, func(L *lua.LState) []lua.LValue {
		ctx := L.NewTable()
		L.SetField(ctx, "critical", lua.LBool(hit.Critical))
		L.SetField(ctx, "skill_name", lua.LString(hit.SkillName))
		L.SetField(ctx, "skill_coefficient", lua.LNumber(hit.SkillCoefficient))
		L.SetField(ctx, "attacker", combatantTable(L, attacker))
		L.SetField(ctx, "defender", combatantTable(L, defender))
		return []lua.LValue{lua.LNumber(damage), ctx}
	})
	if err != nil {
		return damage
	}
	n, ok := ret.(lua.LNumber)
	if !ok {
		return damage
	}
	f := float64(n)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return damage
	}
	return int64(f)
}

func combatantTable(L *lua.LState, c *battle.Combatant) *lua.LTable {
	t := L.NewTable()
	if c == nil {
		return t
	}
	L.SetField(t, "id", lua.LNumber(c.InstanceID))
	L.SetField(t, "name", lua.LString(c.Name))
	L.SetField(t, "player", lua.LBool(c.Player))
	L.SetField(t, "hp", lua.LNumber(c.CurrentHP))
	L.SetField(t, "max_hp", lua.LNumber(c.MaxHP()))
	stats := L.NewTable()
	// Sorted so that pairs() iterates identically on every run.
	for _, k := range slices.Sorted(maps.Keys(c.Stats)) {
		L.SetField(stats, k.String(), lua.LNumber(c.Stats[k]))
	}
	L.SetField(t, "stats", stats)
	return t
}

var _ battle.Modifier = (*Modifier)(nil)
