package scripting

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/dungeonfighter/internal/game/action"
	"github.com/cory-johannsen/dungeonfighter/internal/game/dice"
)

// Manager owns one sandboxed VM with every library script loaded.
//
// A Manager belongs to a single battle and is not safe for concurrent use;
// its dice come from the battle's roller so scripted rolls stay
// reproducible.
type Manager struct {
	L      *lua.LState
	limit  int
	roller *dice.Roller
	logger *zap.Logger
}

// NewManager creates a VM, registers the engine.* modules and runs every
// script in lib.
//
// Precondition: lib and roller must be non-nil; instLimit <= 0 uses
// DefaultInstructionLimit; a nil logger is replaced by a no-op logger.
// Postcondition: on error no VM is left open.
func NewManager(lib *Library, roller *dice.Roller, instLimit int, logger *zap.Logger) (*Manager, error) {
	if lib == nil {
		panic("scripting.NewManager: lib must not be nil")
	}
	if roller == nil {
		panic("scripting.NewManager: roller must not be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if instLimit <= 0 {
		instLimit = DefaultInstructionLimit
	}
	m := &Manager{L: NewSandboxedState(), limit: instLimit, roller: roller, logger: logger}
	m.RegisterModules(m.L)

	for i, proto := range lib.protos {
		err := withLimit(m.L, m.limit, func() error {
			m.L.Push(m.L.NewFunctionFromProto(proto))
			return m.L.PCall(0, lua.MultRet, nil)
		})
		if err != nil {
			m.L.Close()
			return nil, fmt.Errorf("scripting: running %q: %w", lib.names[i], err)
		}
	}
	return m, nil
}

// Close releases the VM.
func (m *Manager) Close() {
	m.L.Close()
}

// CallHook calls the named Lua global function. Returns (LNil, nil) if the
// hook is not defined.
//
// Precondition: args must be valid lua.LValue instances.
// Postcondition: Returns the first return value of the hook, or LNil.
func (m *Manager) CallHook(hook string, args ...lua.LValue) (lua.LValue, error) {
	fn := m.L.GetGlobal(hook)
	if fn == lua.LNil {
		return lua.LNil, nil
	}
	err := withLimit(m.L, m.limit, func() error {
		return m.L.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, args...)
	})
	if err != nil {
		return lua.LNil, fmt.Errorf("scripting: calling %q: %w", hook, err)
	}
	ret := m.L.Get(-1)
	m.L.Pop(1)
	return ret, nil
}

// EvaluateTrigger calls the predicate named script with a table describing
// facts and reports whether it returned a truthy value.
//
// An undefined predicate is an error so typos in data surface in logs.
func (m *Manager) EvaluateTrigger(script string, facts action.Facts) (bool, error) {
	if m.L.GetGlobal(script) == lua.LNil {
		return false, fmt.Errorf("scripting: trigger %q is not defined", script)
	}
	ret, err := m.CallHook(script, m.factsTable(facts))
	if err != nil {
		return false, err
	}
	return lua.LVAsBool(ret), nil
}

func (m *Manager) factsTable(f action.Facts) *lua.LTable {
	t := m.L.NewTable()
	t.RawSetString("hit", lua.LBool(f.Hit))
	t.RawSetString("critical", lua.LBool(f.Critical))
	t.RawSetString("combo", lua.LBool(f.Combo))
	t.RawSetString("killed", lua.LBool(f.Killed))
	t.RawSetString("natural", lua.LNumber(f.Natural))
	t.RawSetString("combo_step", lua.LNumber(f.ComboStep))
	t.RawSetString("target_health", lua.LNumber(f.TargetHealthF))
	tags := m.L.NewTable()
	for _, tag := range f.SourceTags {
		tags.Append(lua.LString(tag))
	}
	t.RawSetString("tags", tags)
	return t
}
