package scripting

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/dungeonfighter/internal/game/dice"
)

// RegisterModules registers the engine table into L:
//
//	engine.roll(expr)  -> total of a dice expression, or nil plus an error
//	engine.chance(p)   -> true with probability p
//	engine.log(msg)    -> debug log line
//
// Precondition: L must be from NewSandboxedState.
// Postcondition: engine global is defined in L.
func (m *Manager) RegisterModules(L *lua.LState) {
	engine := L.NewTable()
	L.SetFuncs(engine, map[string]lua.LGFunction{
		"roll":   m.luaRoll,
		"chance": m.luaChance,
		"log":    m.luaLog,
	})
	L.SetGlobal("engine", engine)
}

func (m *Manager) luaRoll(L *lua.LState) int {
	res, err := m.roller.RollExpr(L.CheckString(1))
	if err != nil {
		L.Push(lua.LNil)
		L.Push(lua.LString(err.Error()))
		return 2
	}
	L.Push(lua.LNumber(res.Total()))
	return 1
}

func (m *Manager) luaChance(L *lua.LState) int {
	L.Push(lua.LBool(dice.Chance(m.roller.Source(), float64(L.CheckNumber(1)))))
	return 1
}

func (m *Manager) luaLog(L *lua.LState) int {
	m.logger.Debug("lua", zap.String("msg", L.CheckString(1)))
	return 0
}
