// Package scripting runs content-authored Lua hooks in sandboxed GopherLua
// VMs. Its only battle-facing export is Modifier, a damage modifier backed by
// a Lua modify_damage function.
package scripting

import (
	"context"
	"sync/atomic"

	lua "github.com/yuin/gopher-lua"
)

// DefaultInstructionLimit is the per-call opcode budget used when none is configured.
const DefaultInstructionLimit = 100_000

// countingContext cancels itself after Done() has been called limit times.
// GopherLua's mainLoopWithContext calls Done() once per opcode, so this is an
// exact instruction-count limit and independent of wall time.
type countingContext struct {
	context.Context
	cancel    context.CancelFunc
	remaining *atomic.Int64
}

// Done decrements the remaining budget and cancels once it is exhausted.
func (c *countingContext) Done() <-chan struct{} {
	if c.remaining.Add(-1) <= 0 {
		c.cancel()
	}
	return c.Context.Done()
}

// newCountingContext returns a context that cancels after limit calls to Done().
//
// Precondition: limit > 0.
func newCountingContext(limit int) (context.Context, context.CancelFunc) {
	base, cancel := context.WithCancel(context.Background())
	rem := &atomic.Int64{}
	rem.Store(int64(limit))
	return &countingContext{Context: base, cancel: cancel, remaining: rem}, cancel
}

// NewSandboxedState creates a GopherLua LState with only the base, table,
// string and math libraries and with dofile, loadfile, load, collectgarbage
// and require removed. math.random and math.randomseed are removed so that
// battle randomness comes only from the engine's seeded stream.
//
// The state carries no instruction limit of its own; wrap each execution in
// withLimit.
//
// Postcondition: Returns a non-nil LState. The caller must Close it.
func NewSandboxedState() *lua.LState {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
	for _, name := range []string{"dofile", "loadfile", "load", "collectgarbage", "require"} {
		L.SetGlobal(name, lua.LNil)
	}
	if mathLib, ok := L.GetGlobal("math").(*lua.LTable); ok {
		L.SetField(mathLib, "random", lua.LNil)
		L.SetField(mathLib, "randomseed", lua.LNil)
	}
	return L
}

// withLimit runs fn with L bounded to limit opcodes. A non-positive limit
// selects DefaultInstructionLimit.
func withLimit(L *lua.LState, limit int, fn func() error) error {
	if limit <= 0 {
		limit = DefaultInstructionLimit
	}
	ctx, cancel := newCountingContext(limit)
	defer cancel()
	L.SetContext(ctx)
	defer L.RemoveContext()
	return fn()
}

// RunLimited executes src in L under an instruction limit.
func RunLimited(L *lua.LState, limit int, src string) error {
	return withLimit(L, limit, func() error { return L.DoString(src) })
}
