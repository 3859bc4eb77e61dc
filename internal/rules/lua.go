package rules

import (
	"context"
	"fmt"
	"sync"
	"time"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// DefaultScriptTimeout bounds a single hook call.
const DefaultScriptTimeout = 200 * time.Millisecond

// LuaRule runs a game's placement script. The script may define
//
//	can_place(board, x, y, kind, name, height) -> bool
//	after_place(board, x, y, kind, name, height)
//
// Either may be missing: a missing can_place accepts everything. A script
// error rejects the placement.
type LuaRule struct {
	mu      sync.Mutex
	L       *lua.LState
	log     *zap.Logger
	timeout time.Duration
}

// NewLuaRule compiles and runs the script's top level once. Only the base,
// table, string and math libraries are available to it.
func NewLuaRule(script string, log *zap.Logger) (*LuaRule, error) {
	if log == nil {
		log = zap.NewNop()
	}
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	for _, lib := range []struct {
		name string
		open lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	} {
		if err := L.CallByParam(lua.P{Fn: L.NewFunction(lib.open), NRet: 0, Protect: true}, lua.LString(lib.name)); err != nil {
			L.Close()
			return nil, fmt.Errorf("open lua %s: %w", lib.name, err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), DefaultScriptTimeout)
	defer cancel()
	L.SetContext(ctx)
	err := L.DoString(script)
	L.RemoveContext()
	if err != nil {
		L.Close()
		return nil, fmt.Errorf("%w: %v", ErrScript, err)
	}
	return &LuaRule{L: L, log: log, timeout: DefaultScriptTimeout}, nil
}

// Close releases the Lua state.
func (r *LuaRule) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.L.Close()
}

func (r *LuaRule) Check(p Placement) error {
	ret, called, err := r.call("can_place", p, 1)
	if err != nil {
		r.log.Warn("rule script failed", zap.String("hook", "can_place"), zap.String("board", p.Board), zap.Error(err))
		return fmt.Errorf("%w: %v", ErrScript, err)
	}
	if called && !lua.LVAsBool(ret) {
		return ErrRejectedByScript
	}
	return nil
}

func (r *LuaRule) AfterPlace(p Placement) {
	if _, _, err := r.call("after_place", p, 0); err != nil {
		r.log.Warn("rule script failed", zap.String("hook", "after_place"), zap.String("board", p.Board), zap.Error(err))
	}
}

// call invokes a global hook. called is false when the script does not
// define it.
func (r *LuaRule) call(hook string, p Placement, nret int) (lua.LValue, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	fn := r.L.GetGlobal(hook)
	if fn.Type() != lua.LTFunction {
		return lua.LNil, false, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	r.L.SetContext(ctx)
	defer r.L.RemoveContext()

	var kind, name lua.LString
	if p.Entity != nil {
		kind = lua.LString(p.Entity.Kind())
		name = lua.LString(p.Entity.EntityName())
	}
	err := r.L.CallByParam(lua.P{Fn: fn, NRet: nret, Protect: true},
		lua.LString(p.Board), lua.LNumber(p.X), lua.LNumber(p.Y), kind, name, lua.LNumber(len(p.Stack)))
	if err != nil {
		return lua.LNil, true, err
	}
	if nret == 0 {
		return lua.LNil, true, nil
	}
	ret := r.L.Get(-1)
	r.L.Pop(1)
	return ret, true, nil
}
