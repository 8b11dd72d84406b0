package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// vm is one loaded script. LStates are single-threaded; mu serializes calls.
type vm struct {
	mu sync.Mutex
	L  *lua.LState
}

// Manager owns one sandboxed LState per script and dispatches hook calls.
//
// Manager is safe for concurrent use. Calls into the same script are
// serialized; different scripts run concurrently. Script globals persist
// across calls, so each battle should run against its own Fork.
type Manager struct {
	mu        sync.RWMutex
	vms       map[string]*vm
	sources   map[string]string
	instLimit int
	logger    *zap.Logger
}

// NewManager creates a Manager whose hook calls are bounded to instLimit
// opcodes each (0 selects DefaultInstructionLimit).
//
// Precondition: logger must be non-nil.
// Postcondition: Returns a Manager with no scripts loaded.
func NewManager(instLimit int, logger *zap.Logger) *Manager {
	return &Manager{
		vms:       make(map[string]*vm),
		sources:   make(map[string]string),
		instLimit: instLimit,
		logger:    logger,
	}
}

// LoadDir loads every *.lua file in dir, in lexicographic order, each into its
// own VM named after the file without its extension.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns the first load error; scripts loaded before it stay registered.
func (m *Manager) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("scripting: reading script dir %q: %w", dir, err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".lua" {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	for _, f := range files {
		src, err := os.ReadFile(filepath.Join(dir, f))
		if err != nil {
			return fmt.Errorf("scripting: reading %q: %w", f, err)
		}
		if err := m.Load(strings.TrimSuffix(f, ".lua"), string(src)); err != nil {
			return err
		}
	}
	return nil
}

// Load compiles and runs src in a fresh VM registered as name, replacing any
// VM already registered under that name.
//
// Precondition: name must be non-empty.
// Postcondition: On error nothing is registered and the previous VM, if any, is kept.
func (m *Manager) Load(name, src string) error {
	L := NewSandboxedState()
	m.RegisterModules(L, name)
	if err := RunLimited(L, m.instLimit, src); err != nil {
		L.Close()
		return fmt.Errorf("scripting: loading %q: %w", name, err)
	}

	m.mu.Lock()
	old := m.vms[name]
	m.vms[name] = &vm{L: L}
	m.sources[name] = src
	m.mu.Unlock()

	if old != nil {
		old.mu.Lock()
		old.L.Close()
		old.mu.Unlock()
	}
	m.logger.Debug("scripting: loaded script", zap.String("script", name))
	return nil
}

// Fork returns a new Manager with every script reloaded into a fresh VM.
// Globals set by hook calls on m are not carried over.
//
// Postcondition: The fork has the same script names as m and must be closed
// independently.
func (m *Manager) Fork() (*Manager, error) {
	m.mu.RLock()
	sources := make(map[string]string, len(m.sources))
	for name, src := range m.sources {
		sources[name] = src
	}
	m.mu.RUnlock()

	f := NewManager(m.instLimit, m.logger)
	names := make([]string, 0, len(sources))
	for name := range sources {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := f.Load(name, sources[name]); err != nil {
			f.Close()
			return nil, err
		}
	}
	return f, nil
}

// Has reports whether a script named name is loaded.
func (m *Manager) Has(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.vms[name]
	return ok
}

// Names returns the loaded script names in sorted order.
func (m *Manager) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.vms))
	for n := range m.vms {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// CallHook calls the global function hook in script's VM with build's
// arguments and returns its first result.
//
// build receives the VM so that table arguments are created in the right
// state. It may be nil.
//
// Postcondition: Returns LNil when the script or hook is missing. Lua runtime
// errors, including an exhausted instruction budget, are logged at Warn and
// returned.
func (m *Manager) CallHook(script, hook string, build func(L *lua.LState) []lua.LValue) (lua.LValue, error) {
	m.mu.RLock()
	v := m.vms[script]
	m.mu.RUnlock()
	if v == nil {
		m.logger.Info("scripting: no VM for script",
			zap.String("script", script),
			zap.String("hook", hook),
		)
		return lua.LNil, nil
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	L := v.L
	fn := L.GetGlobal(hook)
	if fn.Type() != lua.LTFunction {
		return lua.LNil, nil
	}
	var args []lua.LValue
	if build != nil {
		args = build(L)
	}
	err := withLimit(L, m.instLimit, func() error {
		return L.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, args...)
	})
	if err != nil {
		m.logger.Warn("scripting: Lua runtime error",
			zap.String("script", script),
			zap.String("hook", hook),
			zap.Error(err),
		)
		return lua.LNil, err
	}
	ret := L.Get(-1)
	L.Pop(1)
	return ret, nil
}

// Close releases every VM.
//
// Postcondition: No scripts are loaded.
func (m *Manager) Close() {
	m.mu.Lock()
	vms := m.vms
	m.vms = make(map[string]*vm)
	m.sources = make(map[string]string)
	m.mu.Unlock()
	for _, v := range vms {
		v.mu.Lock()
		v.L.Close()
		v.mu.Unlock()
	}
}
