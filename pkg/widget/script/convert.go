package script

import (
	glua "github.com/yuin/gopher-lua"
)

// newState creates a VM with the base, package, table, string and math
// libraries only.
func newState() (*glua.LState, error) {
	L := glua.NewState(glua.Options{SkipOpenLibs: true})
	libs := []struct {
		name string
		open glua.LGFunction
	}{
		{glua.LoadLibName, glua.OpenPackage},
		{glua.BaseLibName, glua.OpenBase},
		{glua.TabLibName, glua.OpenTable},
		{glua.StringLibName, glua.OpenString},
		{glua.MathLibName, glua.OpenMath},
	}
	for _, lib := range libs {
		if err := L.CallByParam(glua.P{
			Fn:      L.NewFunction(lib.open),
			NRet:    0,
			Protect: true,
		}, glua.LString(lib.name)); err != nil {
			L.Close()
			return nil, err
		}
	}
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require"} {
		L.SetGlobal(name, glua.LNil)
	}
	return L, nil
}

// toLua converts a JSON-shaped Go value to a Lua value.
func toLua(L *glua.LState, v any) glua.LValue {
	switch t := v.(type) {
	case nil:
		return glua.LNil
	case bool:
		return glua.LBool(t)
	case string:
		return glua.LString(t)
	case float64:
		return glua.LNumber(t)
	case int:
		return glua.LNumber(t)
	case []any:
		tbl := L.CreateTable(len(t), 0)
		for _, item := range t {
			tbl.Append(toLua(L, item))
		}
		return tbl
	case []string:
		tbl := L.CreateTable(len(t), 0)
		for _, item := range t {
			tbl.Append(glua.LString(item))
		}
		return tbl
	case map[string]any:
		tbl := L.CreateTable(0, len(t))
		for k, item := range t {
			tbl.RawSetString(k, toLua(L, item))
		}
		return tbl
	default:
		return glua.LNil
	}
}

// fromLua converts a Lua value to its JSON-shaped Go form. Tables with
// only keys 1..n become []any; other tables become map[string]any with
// non-string keys dropped.
func fromLua(v glua.LValue) any {
	switch t := v.(type) {
	case glua.LBool:
		return bool(t)
	case glua.LString:
		return string(t)
	case glua.LNumber:
		return float64(t)
	case *glua.LTable:
		if n := t.Len(); n > 0 && isArray(t, n) {
			out := make([]any, 0, n)
			for i := 1; i <= n; i++ {
				out = append(out, fromLua(t.RawGetInt(i)))
			}
			return out
		}
		out := make(map[string]any)
		t.ForEach(func(k, val glua.LValue) {
			if ks, ok := k.(glua.LString); ok {
				out[string(ks)] = fromLua(val)
			}
		})
		return out
	default:
		return nil
	}
}

func isArray(t *glua.LTable, n int) bool {
	count := 0
	t.ForEach(func(glua.LValue, glua.LValue) { count++ })
	return count == n
}
