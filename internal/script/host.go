package script

import (
	"fmt"
	"log/slog"
	"reflect"
	"sort"
	"sync"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/gamebus/internal/event"
)

// ModuleName is the global table scripts use to reach the bus.
const ModuleName = "events"

// Host runs Lua scripts against an event registry.
//
// gopher-lua states are not goroutine-safe. A Host, and every event its
// scripts subscribe to, must be driven from a single goroutine; the game
// loop is the intended caller.
type Host struct {
	L        *lua.LState
	registry *event.Registry
	logger   *slog.Logger
	timeout  time.Duration

	types map[string]reflect.Type

	mu      sync.Mutex
	handles map[int]*event.Subscription
	next    int
	created []event.ID
	closed  bool
}

// Option configures a Host.
type Option func(*Host)

// WithLogger sets the logger. Script print output is logged at info level.
func WithLogger(l *slog.Logger) Option {
	return func(h *Host) {
		if l != nil {
			h.logger = l
		}
	}
}

// WithTimeout bounds each top-level script call. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(h *Host) {
		h.timeout = d
	}
}

// NewHost creates a sandboxed host bound to reg.
// The payload types string, int, float64 and bool are registered up front.
func NewHost(reg *event.Registry, opts ...Option) *Host {
	h := &Host{
		L:        newState(),
		registry: reg,
		logger:   slog.New(slog.DiscardHandler),
		timeout:  DefaultTimeout,
		types:    make(map[string]reflect.Type),
		handles:  make(map[int]*event.Subscription),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.logger = h.logger.With("component", "script")

	RegisterType[string](h)
	RegisterType[int](h)
	RegisterType[float64](h)
	RegisterType[bool](h)

	h.L.SetGlobal("print", h.L.NewFunction(h.luaPrint))
	mod := h.L.SetFuncs(h.L.NewTable(), map[string]lua.LGFunction{
		"subscribe":   h.luaSubscribe,
		"unsubscribe": h.luaUnsubscribe,
		"create":      h.luaCreate,
		"fire":        h.luaFire,
		"state":       h.luaState,
	})
	h.L.SetGlobal(ModuleName, mod)
	return h
}

// RegisterType lets scripts name T as a payload key in events.fire.
// The key is the Go type name as reported by reflect, e.g. "game.Move",
// which is also the key callbacks see.
func RegisterType[T any](h *Host) {
	t := reflect.TypeFor[T]()
	h.types[t.String()] = t
}

// Types returns the registered payload type names in sorted order.
func (h *Host) Types() []string {
	names := make([]string, 0, len(h.types))
	for name := range h.types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DoString runs a chunk of Lua source.
func (h *Host) DoString(code string) error {
	if h.isClosed() {
		return ErrHostClosed
	}
	return withDeadline(h.L, h.timeout, func() error {
		return h.L.DoString(code)
	})
}

// DoFile runs the script at path.
func (h *Host) DoFile(path string) error {
	if h.isClosed() {
		return ErrHostClosed
	}
	err := withDeadline(h.L, h.timeout, func() error {
		return h.L.DoFile(path)
	})
	if err != nil {
		return fmt.Errorf("script %s: %w", path, err)
	}
	h.logger.Debug("script loaded", "path", path)
	return nil
}

// Subscriptions returns the number of live script subscriptions.
func (h *Host) Subscriptions() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.handles)
}

// Created returns the events scripts registered, in creation order.
func (h *Host) Created() []event.ID {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]event.ID(nil), h.created...)
}

// Close releases every script subscription and the Lua state.
func (h *Host) Close() error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.closed = true
	handles := h.handles
	h.handles = make(map[int]*event.Subscription)
	h.mu.Unlock()

	for _, sub := range handles {
		sub.Release()
	}
	h.L.Close()
	return nil
}

func (h *Host) isClosed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closed
}

// events.subscribe(name, fn) -> handle, live
func (h *Host) luaSubscribe(L *lua.LState) int {
	id := event.ID(L.CheckString(1))
	fn := L.CheckFunction(2)

	sub, live := h.registry.Subscribe(id, h.callback(id, fn))
	if sub == nil {
		L.ArgError(1, "invalid event name")
		return 0
	}

	h.mu.Lock()
	h.next++
	handle := h.next
	h.handles[handle] = sub
	h.mu.Unlock()

	L.Push(lua.LNumber(handle))
	L.Push(lua.LBool(live))
	return 2
}

// events.unsubscribe(handle) -> removed
func (h *Host) luaUnsubscribe(L *lua.LState) int {
	handle := L.CheckInt(1)

	h.mu.Lock()
	sub, ok := h.handles[handle]
	delete(h.handles, handle)
	h.mu.Unlock()

	L.Push(lua.LBool(ok && sub.Release()))
	return 1
}

// events.create(name) -> ok, err
func (h *Host) luaCreate(L *lua.LState) int {
	id := event.ID(L.CheckString(1))

	if _, err := h.registry.Register(id); err != nil {
		L.Push(lua.LFalse)
		L.Push(lua.LString(err.Error()))
		return 2
	}

	h.mu.Lock()
	h.created = append(h.created, id)
	h.mu.Unlock()

	L.Push(lua.LTrue)
	return 1
}

// events.fire(name, payload) -> ok, err
//
// payload maps registered type names to values, e.g.
// events.fire("Player.Move", { ["game.Move"] = { DX = 1, DY = 0 } }).
// Subscriber failures are reported through err; they are never raised.
func (h *Host) luaFire(L *lua.LState) int {
	id := event.ID(L.CheckString(1))
	payload := L.OptTable(2, nil)

	ev, ok := h.registry.Lookup(id)
	if !ok || !ev.IsReal() {
		L.Push(lua.LFalse)
		L.Push(lua.LString(fmt.Sprintf("event %s is not registered", id)))
		return 2
	}

	params, err := h.decodeParams(payload)
	if err != nil {
		L.ArgError(2, err.Error())
		return 0
	}

	if err := ev.Invoke(params); err != nil {
		h.logger.Warn("script fire had failing subscribers", "event", id, "error", err)
		L.Push(lua.LFalse)
		L.Push(lua.LString(err.Error()))
		return 2
	}
	L.Push(lua.LTrue)
	return 1
}

// events.state(name) -> "unregistered" | "pending" | "real"
func (h *Host) luaState(L *lua.LState) int {
	L.Push(lua.LString(h.registry.State(event.ID(L.CheckString(1))).String()))
	return 1
}

func (h *Host) luaPrint(L *lua.LState) int {
	h.logger.Info(printArgs(L))
	return 0
}

func (h *Host) decodeParams(tbl *lua.LTable) (*event.Params, error) {
	params := event.NewParams()
	if tbl == nil {
		return params, nil
	}

	var err error
	tbl.ForEach(func(k, v lua.LValue) {
		if err != nil {
			return
		}
		name := k.String()
		t, ok := h.types[name]
		if !ok {
			err = fmt.Errorf("%w: %s", ErrUnknownType, name)
			return
		}
		var rv reflect.Value
		if rv, err = fromLua(v, t); err == nil {
			err = params.Put(rv.Interface())
		}
	})
	if err != nil {
		return nil, err
	}
	return params, nil
}

// callback adapts a Lua function to an event callback. The function receives
// one table mapping payload type names to converted values.
func (h *Host) callback(id event.ID, fn *lua.LFunction) event.Callback {
	return func(p *event.Params) error {
		if h.isClosed() {
			return ErrHostClosed
		}

		err := withDeadline(h.L, h.timeout, func() error {
			tbl := h.L.NewTable()
			p.Each(func(t reflect.Type, v any) {
				tbl.RawSetString(t.String(), toLua(h.L, v))
			})
			return h.L.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true}, tbl)
		})
		if err != nil {
			return fmt.Errorf("lua subscriber for %s: %w", id, err)
		}
		return nil
	}
}
