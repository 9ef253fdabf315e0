// Package widget defines the contract between the layout engine and the
// pluggable widget modules that make up a signage display.
//
// A widget type is described once by a [Descriptor] and stored in a
// [Registry]. The layout engine only needs three things from a descriptor:
// its size bounds, its default props and its two capabilities (render and,
// optionally, editor). Everything else about a widget is its own business.
//
// # Registration
//
// The registry is an explicit object, not a package-level table. Whoever
// composes the process builds one, populates it (see widgets.RegisterBuiltins)
// and passes it to the layout model, the composer and the display surfaces:
//
//	reg := widget.NewRegistry()
//	widgets.RegisterBuiltins(reg)
//	model := layout.NewModel(cfg, reg)
//
// Population must finish before the first Get or compose call; it is a
// plain sequential step, so there is nothing to race.
package widget

import (
	"fmt"

	"github.com/matzehuels/signboard/pkg/errors"
)

// Theme holds the global display colors. Values are opaque strings to the
// layout engine; render capabilities interpret them.
type Theme struct {
	Background string `json:"background" toml:"background"`
	Primary    string `json:"primary" toml:"primary"`
	Accent     string `json:"accent" toml:"accent"`
}

// Area is the character-cell area a render capability draws into.
type Area struct {
	Cols int
	Rows int
}

// RenderFunc renders an instance config with the display theme into text
// that fits area. It must be free of side effects observable by the engine.
type RenderFunc func(cfg Config, theme Theme, area Area) string

// EditorFunc builds an editor for an instance config. Every accepted edit
// is reported through onChange as a partial config (the patch).
type EditorFunc func(cfg Config, onChange func(patch Config)) Editor

// Descriptor is the registered metadata and capability bundle for one
// widget type. Descriptors are treated as immutable once registered.
type Descriptor struct {
	Type        string
	Name        string
	Description string
	Icon        string

	// Size bounds in grid cells. MaxW/MaxH of zero mean unbounded.
	MinW, MinH int
	MaxW, MaxH int

	DefaultW, DefaultH int

	// DefaultProps seeds the config of every new instance. It is deep
	// copied on use and never shared with an instance.
	DefaultProps Config

	Render RenderFunc
	Editor EditorFunc
}

// HasEditor reports whether the widget can be configured interactively.
// Widgets without an editor keep their default props.
func (d Descriptor) HasEditor() bool {
	return d.Editor != nil
}

// Defaults returns a deep copy of the default props.
func (d Descriptor) Defaults() Config {
	return d.DefaultProps.Clone()
}

// Validate checks the descriptor for registration.
func (d Descriptor) Validate() error {
	if err := errors.ValidateWidgetType(d.Type); err != nil {
		return err
	}
	if d.Render == nil {
		return errors.New(errors.ErrCodeInvalidInput, "widget %q has no render capability", d.Type)
	}
	if d.MinW < 1 || d.MinH < 1 {
		return errors.New(errors.ErrCodeInvalidInput, "widget %q: min size must be at least 1x1", d.Type)
	}
	if err := checkAxis(d.Type, "width", d.MinW, d.MaxW, d.DefaultW); err != nil {
		return err
	}
	return checkAxis(d.Type, "height", d.MinH, d.MaxH, d.DefaultH)
}

func checkAxis(typ, axis string, min, max, def int) error {
	if max != 0 && max < min {
		return errors.New(errors.ErrCodeInvalidInput, "widget %q: max %s %d below min %d", typ, axis, max, min)
	}
	if def < min || (max != 0 && def > max) {
		return errors.New(errors.ErrCodeInvalidInput, "widget %q: default %s %d outside [%d,%s]", typ, axis, def, min, maxLabel(max))
	}
	return nil
}

func maxLabel(max int) string {
	if max == 0 {
		return "∞"
	}
	return fmt.Sprint(max)
}

// ClampSize clamps w and h into the descriptor's size bounds.
func (d Descriptor) ClampSize(w, h int) (int, int) {
	return clamp(w, d.MinW, d.MaxW), clamp(h, d.MinH, d.MaxH)
}

// InBounds reports whether w×h satisfies the descriptor's size bounds.
func (d Descriptor) InBounds(w, h int) bool {
	cw, ch := d.ClampSize(w, h)
	return cw == w && ch == h
}

func clamp(v, min, max int) int {
	if v < min {
		return min
	}
	if max != 0 && v > max {
		return max
	}
	return v
}
