package script

import (
	"context"
	"fmt"
	"strings"
	"time"

	lua "github.com/yuin/gopher-lua"
)

// DefaultTimeout bounds a single script call.
const DefaultTimeout = 2 * time.Second

// removedGlobals are base functions that load code from disk or strings.
var removedGlobals = []string{"dofile", "loadfile", "load", "loadstring", "require", "module"}

// newState creates a Lua state with only the base, table, string and math
// libraries. Scripts cannot reach the file system or load further code.
func newState() *lua.LState {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})

	for _, lib := range []struct {
		name string
		fn   lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	} {
		L.Push(L.NewFunction(lib.fn))
		L.Push(lua.LString(lib.name))
		L.Call(1, 0)
	}

	for _, name := range removedGlobals {
		L.SetGlobal(name, lua.LNil)
	}
	return L
}

// withDeadline runs fn with a call timeout unless an outer call already
// installed one. Nested calls happen when a script fires an event whose
// subscribers are Lua functions.
func withDeadline(L *lua.LState, timeout time.Duration, fn func() error) (err error) {
	if L.Context() == nil && timeout > 0 {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		L.SetContext(ctx)
		defer func() {
			L.RemoveContext()
			cancel()
		}()
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()
	return fn()
}

// printArgs joins print arguments the way Lua's print does.
func printArgs(L *lua.LState) string {
	n := L.GetTop()
	parts := make([]string, n)
	for i := 1; i <= n; i++ {
		parts[i-1] = L.ToStringMeta(L.Get(i)).String()
	}
	return strings.Join(parts, "\t")
}
