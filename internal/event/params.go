package event

import (
	"reflect"
	"sort"
)

// Params is the payload handed to subscribers for one firing.
// It holds at most one value per Go type.
//
// A Params is not safe for concurrent mutation. Once passed to Invoke it
// should be treated as read-only until Invoke returns; callbacks that need
// the values afterwards must copy them (see Clone).
type Params struct {
	values map[reflect.Type]any
}

// NewParams creates an empty payload container.
func NewParams() *Params {
	return &Params{values: make(map[reflect.Type]any)}
}

// Add stores v keyed by the static type T.
// It fails with ErrDuplicateParameterType if a T is already present, leaving
// the container unchanged.
func Add[T any](p *Params, v T) error {
	return p.add(reflect.TypeFor[T](), v)
}

// AddOrReplace stores v keyed by T, overwriting any existing T.
func AddOrReplace[T any](p *Params, v T) {
	p.set(reflect.TypeFor[T](), v)
}

// Read returns the T held by p.
// This is the strict policy: a missing type is an error that lists the types
// actually present.
func Read[T any](p *Params) (T, error) {
	t := reflect.TypeFor[T]()
	if p != nil {
		if v, ok := p.values[t]; ok {
			return v.(T), nil
		}
	}
	var zero T
	return zero, &ParamError{
		Op:      "read",
		Type:    t.String(),
		Present: p.Types(),
		Err:     ErrParameterTypeNotFound,
	}
}

// Get returns the T held by p, or the zero value of T when absent.
// This is the lenient policy; use Read when absence is a bug.
func Get[T any](p *Params) T {
	v, _ := Read[T](p)
	return v
}

// Has reports whether p holds a value of type T.
func Has[T any](p *Params) bool {
	if p == nil {
		return false
	}
	_, ok := p.values[reflect.TypeFor[T]()]
	return ok
}

// Put stores v keyed by its dynamic type.
// It follows the same rules as Add.
func (p *Params) Put(v any) error {
	if v == nil {
		return &ParamError{Op: "add", Type: "<nil>", Err: ErrNilParameter}
	}
	return p.add(reflect.TypeOf(v), v)
}

// Set stores v keyed by its dynamic type, overwriting any existing value.
// A nil v is ignored.
func (p *Params) Set(v any) {
	if v == nil {
		return
	}
	p.set(reflect.TypeOf(v), v)
}

func (p *Params) add(t reflect.Type, v any) error {
	if p.values == nil {
		p.values = make(map[reflect.Type]any)
	}
	if _, exists := p.values[t]; exists {
		return &ParamError{Op: "add", Type: t.String(), Err: ErrDuplicateParameterType}
	}
	p.values[t] = v
	return nil
}

func (p *Params) set(t reflect.Type, v any) {
	if p.values == nil {
		p.values = make(map[reflect.Type]any)
	}
	p.values[t] = v
}

// Len returns the number of stored values.
func (p *Params) Len() int {
	if p == nil {
		return 0
	}
	return len(p.values)
}

// Types returns the names of the stored types in sorted order.
func (p *Params) Types() []string {
	if p == nil || len(p.values) == 0 {
		return nil
	}
	names := make([]string, 0, len(p.values))
	for t := range p.values {
		names = append(names, t.String())
	}
	sort.Strings(names)
	return names
}

// Each calls fn for every stored value, ordered by type name.
func (p *Params) Each(fn func(t reflect.Type, v any)) {
	if p == nil || len(p.values) == 0 {
		return
	}
	types := make([]reflect.Type, 0, len(p.values))
	for t := range p.values {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool {
		return types[i].String() < types[j].String()
	})
	for _, t := range types {
		fn(t, p.values[t])
	}
}

// Clone returns a shallow copy of p.
func (p *Params) Clone() *Params {
	c := NewParams()
	if p == nil {
		return c
	}
	for t, v := range p.values {
		c.values[t] = v
	}
	return c
}

// Reset removes all values so the container can be reused.
func (p *Params) Reset() {
	if p == nil {
		return
	}
	clear(p.values)
}
