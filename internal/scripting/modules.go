package scripting

import (
	"math"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// RegisterModules installs the battle.* helper table into L:
//
//	battle.percent(value, pct)  integer value*pct/100, truncated toward zero;
//	                            raises an error on NaN or infinite arguments
//	battle.clamp(v, lo, hi)
//	battle.log(msg)             debug log tagged with the script name
//
// Precondition: L must be from NewSandboxedState.
// Postcondition: The battle global is defined in L.
func (m *Manager) RegisterModules(L *lua.LState, script string) {
	mod := L.NewTable()
	L.SetField(mod, "percent", L.NewFunction(func(L *lua.LState) int {
		v := checkFinite(L, 1)
		pct := checkFinite(L, 2)
		L.Push(lua.LNumber(v * pct / 100))
		return 1
	}))
	L.SetField(mod, "clamp", L.NewFunction(func(L *lua.LState) int {
		v, lo, hi := L.CheckNumber(1), L.CheckNumber(2), L.CheckNumber(3)
		L.Push(max(min(v, hi), lo))
		return 1
	}))
	L.SetField(mod, "log", L.NewFunction(func(L *lua.LState) int {
		m.logger.Debug("scripting: lua log",
			zap.String("script", script),
			zap.String("msg", L.CheckString(1)),
		)
		return 0
	}))
	L.SetGlobal("battle", mod)
}

// checkFinite returns argument n truncated to an integer, raising a Lua
// argument error when it is NaN or infinite.
func checkFinite(L *lua.LState, n int) int64 {
	f := float64(L.CheckNumber(n))
	if math.IsNaN(f) || math.IsInf(f, 0) {
		L.ArgError(n, "finite number expected")
		return 0
	}
	return int64(f)
}
