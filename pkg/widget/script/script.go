// Package script loads widget types written in Lua.
//
// A script defines a global table named widget and a global function
// render:
//
//	widget = {
//	  type = "weather",
//	  name = "Weather",
//	  min_w = 2, min_h = 1,
//	  default_w = 3, default_h = 2,
//	  defaults = { city = "Berlin", unit = "C" },
//	  fields = {
//	    { key = "city", label = "City" },
//	    { key = "unit", label = "Unit", kind = "choice", choices = { "C", "F" } },
//	  },
//	}
//
//	function render(config, theme, cols, rows)
//	  return config.city .. ": 21°" .. config.unit
//	end
//
// Scripts run in a VM with only the base, table, string and math
// libraries. Each script owns one VM, guarded by a mutex, so its render
// capability is safe to call from concurrent display requests.
package script

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	glua "github.com/yuin/gopher-lua"

	"github.com/matzehuels/signboard/pkg/errors"
	"github.com/matzehuels/signboard/pkg/widget"
)

// Script is one loaded Lua widget.
type Script struct {
	path string

	mu     sync.Mutex
	L      *glua.LState
	render *glua.LFunction
	desc   widget.Descriptor
}

// LoadFile runs the script at path and builds its descriptor. The
// returned Script must be closed when its widget is no longer needed.
func LoadFile(path string) (*Script, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidScript, err, "read %s", path)
	}
	return Load(path, string(src))
}

// Load runs a script from source. name is used in error messages.
func Load(name, src string) (*Script, error) {
	L, err := newState()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "init lua")
	}
	s := &Script{path: name, L: L}

	fn, err := L.Load(strings.NewReader(src), name)
	if err != nil {
		L.Close()
		return nil, errors.Wrap(errors.ErrCodeInvalidScript, err, "compile %s", name)
	}
	L.Push(fn)
	if err := L.PCall(0, 0, nil); err != nil {
		L.Close()
		return nil, errors.Wrap(errors.ErrCodeInvalidScript, err, "run %s", name)
	}

	render, ok := L.GetGlobal("render").(*glua.LFunction)
	if !ok {
		L.Close()
		return nil, errors.New(errors.ErrCodeInvalidScript, "%s: no render function", name)
	}
	s.render = render

	tbl, ok := L.GetGlobal("widget").(*glua.LTable)
	if !ok {
		L.Close()
		return nil, errors.New(errors.ErrCodeInvalidScript, "%s: no widget table", name)
	}
	s.desc = s.descriptor(tbl)
	if err := s.desc.Validate(); err != nil {
		L.Close()
		return nil, errors.Wrap(errors.ErrCodeInvalidScript, err, "%s", name)
	}
	return s, nil
}

// LoadDir loads every *.lua file in dir in name order. A missing
// directory yields no scripts. Already loaded scripts are closed if a
// later one fails.
func LoadDir(dir string) ([]*Script, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.lua"))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "scan %s", dir)
	}
	slices.Sort(paths)

	var out []*Script
	for _, p := range paths {
		s, err := LoadFile(p)
		if err != nil {
			CloseAll(out)
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// CloseAll closes every script.
func CloseAll(scripts []*Script) {
	for _, s := range scripts {
		s.Close()
	}
}

// Register adds each script's descriptor to reg.
func Register(reg *widget.Registry, scripts []*Script) error {
	for _, s := range scripts {
		if err := reg.Register(s.Descriptor()); err != nil {
			return err
		}
	}
	return nil
}

// Path returns the file the script was loaded from.
func (s *Script) Path() string {
	return s.path
}

// Descriptor returns the widget descriptor declared by the script.
func (s *Script) Descriptor() widget.Descriptor {
	return s.desc
}

// Close shuts down the script's VM. Rendering afterwards yields an error
// line.
func (s *Script) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.L != nil {
		s.L.Close()
		s.L = nil
	}
}

// Render calls the script's render function. Errors are rendered as a
// one-line message.
func (s *Script) Render(cfg widget.Config, theme widget.Theme, area widget.Area) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.L == nil {
		return "script closed"
	}

	L := s.L
	err := L.CallByParam(glua.P{
		Fn:      s.render,
		NRet:    1,
		Protect: true,
	},
		toLua(L, map[string]any(cfg)),
		toLua(L, map[string]any{"background": theme.Background, "primary": theme.Primary, "accent": theme.Accent}),
		glua.LNumber(area.Cols),
		glua.LNumber(area.Rows),
	)
	if err != nil {
		return "script error: " + firstLine(err.Error())
	}
	ret := L.Get(-1)
	L.Pop(1)
	if ret == glua.LNil {
		return ""
	}
	return ret.String()
}

func (s *Script) descriptor(tbl *glua.LTable) widget.Descriptor {
	L := s.L
	str := func(key string) string {
		if v, ok := L.GetField(tbl, key).(glua.LString); ok {
			return string(v)
		}
		return ""
	}
	num := func(key string, def int) int {
		if v, ok := L.GetField(tbl, key).(glua.LNumber); ok {
			return int(v)
		}
		return def
	}

	d := widget.Descriptor{
		Type:        str("type"),
		Name:        str("name"),
		Description: str("description"),
		Icon:        str("icon"),
		MinW:        num("min_w", 1),
		MinH:        num("min_h", 1),
		MaxW:        num("max_w", 0),
		MaxH:        num("max_h", 0),
		Render:      s.Render,
	}
	d.DefaultW = num("default_w", d.MinW)
	d.DefaultH = num("default_h", d.MinH)
	if d.Name == "" {
		d.Name = d.Type
	}
	if defaults, ok := L.GetField(tbl, "defaults").(*glua.LTable); ok {
		if m, ok := fromLua(defaults).(map[string]any); ok {
			d.DefaultProps = widget.Config(m)
		}
	}
	if fields, ok := L.GetField(tbl, "fields").(*glua.LTable); ok {
		specs := fieldSpecs(L, fields)
		if len(specs) > 0 {
			d.Editor = func(cfg widget.Config, onChange func(widget.Config)) widget.Editor {
				return widget.NewForm(cfg, onChange, specs...)
			}
		}
	}
	return d
}

func fieldSpecs(L *glua.LState, tbl *glua.LTable) []widget.FieldSpec {
	var specs []widget.FieldSpec
	for i := 1; i <= tbl.Len(); i++ {
		f, ok := tbl.RawGetInt(i).(*glua.LTable)
		if !ok {
			continue
		}
		key := luaString(L.GetField(f, "key"), "")
		if key == "" {
			continue
		}
		spec := widget.FieldSpec{
			Key:   key,
			Label: luaString(L.GetField(f, "label"), key),
			Help:  luaString(L.GetField(f, "help"), ""),
			Kind:  fieldKind(luaString(L.GetField(f, "kind"), "text")),
		}
		if choices, ok := L.GetField(f, "choices").(*glua.LTable); ok {
			for j := 1; j <= choices.Len(); j++ {
				spec.Choices = append(spec.Choices, choices.RawGetInt(j).String())
			}
		}
		specs = append(specs, spec)
	}
	return specs
}

func fieldKind(s string) widget.FieldKind {
	switch s {
	case "number":
		return widget.FieldNumber
	case "bool":
		return widget.FieldBool
	case "choice":
		return widget.FieldChoice
	case "list":
		return widget.FieldList
	default:
		return widget.FieldText
	}
}

func luaString(v glua.LValue, def string) string {
	if s, ok := v.(glua.LString); ok {
		return string(s)
	}
	return def
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
