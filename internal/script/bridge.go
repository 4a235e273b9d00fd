package script

import (
	"fmt"
	"math"
	"reflect"
	"sort"
	"strings"

	lua "github.com/yuin/gopher-lua"
)

// toLua converts a Go payload value to a Lua value.
// Structs become tables keyed by exported field name (or the first part of
// a lua tag). Values Lua cannot represent are passed as userdata.
func toLua(L *lua.LState, v any) lua.LValue {
	if v == nil {
		return lua.LNil
	}

	switch val := v.(type) {
	case lua.LValue:
		return val
	case bool:
		return lua.LBool(val)
	case string:
		return lua.LString(val)
	case error:
		return lua.LString(val.Error())
	case fmt.Stringer:
		if reflect.TypeOf(v).Kind() != reflect.Struct {
			return lua.LString(val.String())
		}
	}
	return reflectToLua(L, reflect.ValueOf(v))
}

func reflectToLua(L *lua.LState, rv reflect.Value) lua.LValue {
	switch rv.Kind() {
	case reflect.Bool:
		return lua.LBool(rv.Bool())
	case reflect.String:
		return lua.LString(rv.String())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return lua.LNumber(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return lua.LNumber(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return lua.LNumber(rv.Float())

	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return lua.LNil
		}
		return reflectToLua(L, rv.Elem())

	case reflect.Slice, reflect.Array:
		t := L.NewTable()
		for i := 0; i < rv.Len(); i++ {
			t.RawSetInt(i+1, reflectToLua(L, rv.Index(i)))
		}
		return t

	case reflect.Map:
		t := L.NewTable()
		iter := rv.MapRange()
		for iter.Next() {
			t.RawSet(reflectToLua(L, iter.Key()), reflectToLua(L, iter.Value()))
		}
		return t

	case reflect.Struct:
		t := L.NewTable()
		rt := rv.Type()
		for i := 0; i < rt.NumField(); i++ {
			f := rt.Field(i)
			if !f.IsExported() {
				continue
			}
			t.RawSetString(fieldName(f), reflectToLua(L, rv.Field(i)))
		}
		return t

	default:
		ud := L.NewUserData()
		ud.Value = rv.Interface()
		return ud
	}
}

func fieldName(f reflect.StructField) string {
	if tag, _, _ := strings.Cut(f.Tag.Get("lua"), ","); tag != "" && tag != "-" {
		return tag
	}
	return f.Name
}

// fromLua decodes lv into a new value of type t.
func fromLua(lv lua.LValue, t reflect.Type) (reflect.Value, error) {
	out := reflect.New(t).Elem()
	if err := assign(out, lv, t.String()); err != nil {
		return reflect.Value{}, err
	}
	return out, nil
}

func assign(dst reflect.Value, lv lua.LValue, path string) error {
	if ud, ok := lv.(*lua.LUserData); ok {
		v := reflect.ValueOf(ud.Value)
		if v.IsValid() && v.Type().AssignableTo(dst.Type()) {
			dst.Set(v)
			return nil
		}
		return conversionError(path, lv, dst.Type())
	}

	switch dst.Kind() {
	case reflect.Bool:
		b, ok := lv.(lua.LBool)
		if !ok {
			return conversionError(path, lv, dst.Type())
		}
		dst.SetBool(bool(b))

	case reflect.String:
		s, ok := lv.(lua.LString)
		if !ok {
			return conversionError(path, lv, dst.Type())
		}
		dst.SetString(string(s))

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, ok := lv.(lua.LNumber)
		if !ok || float64(n) != math.Trunc(float64(n)) || dst.OverflowInt(int64(n)) {
			return conversionError(path, lv, dst.Type())
		}
		dst.SetInt(int64(n))

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, ok := lv.(lua.LNumber)
		if !ok || n < 0 || float64(n) != math.Trunc(float64(n)) || dst.OverflowUint(uint64(n)) {
			return conversionError(path, lv, dst.Type())
		}
		dst.SetUint(uint64(n))

	case reflect.Float32, reflect.Float64:
		n, ok := lv.(lua.LNumber)
		if !ok {
			return conversionError(path, lv, dst.Type())
		}
		dst.SetFloat(float64(n))

	case reflect.Slice:
		tbl, ok := lv.(*lua.LTable)
		if !ok {
			return conversionError(path, lv, dst.Type())
		}
		n := tbl.Len()
		s := reflect.MakeSlice(dst.Type(), n, n)
		for i := 0; i < n; i++ {
			if err := assign(s.Index(i), tbl.RawGetInt(i+1), fmt.Sprintf("%s[%d]", path, i+1)); err != nil {
				return err
			}
		}
		dst.Set(s)

	case reflect.Map:
		tbl, ok := lv.(*lua.LTable)
		if !ok || dst.Type().Key().Kind() != reflect.String {
			return conversionError(path, lv, dst.Type())
		}
		m := reflect.MakeMap(dst.Type())
		var err error
		tbl.ForEach(func(k, v lua.LValue) {
			if err != nil {
				return
			}
			key := reflect.New(dst.Type().Key()).Elem()
			key.SetString(k.String())
			val := reflect.New(dst.Type().Elem()).Elem()
			if err = assign(val, v, path+"."+k.String()); err == nil {
				m.SetMapIndex(key, val)
			}
		})
		if err != nil {
			return err
		}
		dst.Set(m)

	case reflect.Struct:
		tbl, ok := lv.(*lua.LTable)
		if !ok {
			return conversionError(path, lv, dst.Type())
		}
		return assignStruct(dst, tbl, path)

	case reflect.Pointer:
		if lv == lua.LNil {
			return nil
		}
		p := reflect.New(dst.Type().Elem())
		if err := assign(p.Elem(), lv, path); err != nil {
			return err
		}
		dst.Set(p)

	case reflect.Interface:
		if dst.NumMethod() != 0 {
			return conversionError(path, lv, dst.Type())
		}
		if v := plainValue(lv); v != nil {
			dst.Set(reflect.ValueOf(v))
		}

	default:
		return conversionError(path, lv, dst.Type())
	}
	return nil
}

func assignStruct(dst reflect.Value, tbl *lua.LTable, path string) error {
	rt := dst.Type()
	fields := make(map[string]int, rt.NumField())
	for i := 0; i < rt.NumField(); i++ {
		if f := rt.Field(i); f.IsExported() {
			fields[fieldName(f)] = i
		}
	}

	var unknown []string
	var err error
	tbl.ForEach(func(k, v lua.LValue) {
		if err != nil {
			return
		}
		name := k.String()
		idx, ok := fields[name]
		if !ok {
			unknown = append(unknown, name)
			return
		}
		err = assign(dst.Field(idx), v, path+"."+name)
	})
	if err != nil {
		return err
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return fmt.Errorf("%w: %s has no field %s", ErrConversion, path, strings.Join(unknown, ", "))
	}
	return nil
}

// plainValue converts lv to a basic Go value for untyped destinations.
func plainValue(lv lua.LValue) any {
	switch v := lv.(type) {
	case lua.LBool:
		return bool(v)
	case lua.LString:
		return string(v)
	case lua.LNumber:
		if f := float64(v); f == math.Trunc(f) && math.Abs(f) < 1<<53 {
			return int64(f)
		}
		return float64(v)
	case *lua.LTable:
		m := make(map[string]any)
		v.ForEach(func(k, val lua.LValue) {
			m[k.String()] = plainValue(val)
		})
		return m
	case *lua.LUserData:
		return v.Value
	default:
		return nil
	}
}

func conversionError(path string, lv lua.LValue, t reflect.Type) error {
	return fmt.Errorf("%w: %s is a %s, want %s", ErrConversion, path, lv.Type(), t)
}
