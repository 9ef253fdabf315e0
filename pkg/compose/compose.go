// Package compose turns a display configuration into what a display
// surface draws: the grid widgets, the fixed ticker strip and the row count.
//
// Compose is pure. It never fails: instances of unregistered types are
// passed through with Known=false so the surface can draw a placeholder.
package compose

import (
	"github.com/matzehuels/signboard/pkg/layout"
	"github.com/matzehuels/signboard/pkg/widget"
)

// SyntheticTickerID is the id of the ticker synthesized for an enabled
// strip that has no ticker instance.
const SyntheticTickerID = "ticker"

// Item is one instance resolved against the registry.
type Item struct {
	layout.Instance
	Descriptor widget.Descriptor
	Known      bool
}

// Composition is the composed form of a DisplayConfig.
type Composition struct {
	Grid     []Item
	Fixed    *Item
	RowCount int
	Theme    widget.Theme
}

// Empty reports whether there are no grid widgets to show.
func (c Composition) Empty() bool {
	return len(c.Grid) == 0
}

// Compose partitions cfg.Layout into grid widgets and the fixed strip.
//
// Every instance of layout.FixedType is excluded from the grid. When the
// ticker is enabled the first such instance fills the strip, or a default
// full-width ticker at the origin is synthesized if there is none. When it
// is disabled the strip is empty regardless of instances.
func Compose(cfg layout.DisplayConfig, reg *widget.Registry) Composition {
	if reg == nil {
		reg = widget.NewRegistry()
	}
	comp := Composition{
		Grid:     make([]Item, 0, len(cfg.Layout)),
		RowCount: cfg.RowCount(),
		Theme:    cfg.Theme,
	}

	var fixed *layout.Instance
	for _, inst := range cfg.Layout {
		if inst.IsFixed() {
			if fixed == nil {
				f := inst.Clone()
				fixed = &f
			}
			continue
		}
		comp.Grid = append(comp.Grid, resolve(inst.Clone(), reg))
	}

	if !cfg.TickerEnabled {
		return comp
	}
	if fixed == nil {
		t := syntheticTicker(reg)
		fixed = &t
	}
	item := resolve(*fixed, reg)
	comp.Fixed = &item
	return comp
}

func resolve(inst layout.Instance, reg *widget.Registry) Item {
	d, ok := reg.Get(inst.Type)
	return Item{Instance: inst, Descriptor: d, Known: ok}
}

func syntheticTicker(reg *widget.Registry) layout.Instance {
	inst := layout.Instance{
		ID:     SyntheticTickerID,
		Type:   layout.FixedType,
		W:      layout.Columns,
		H:      1,
		Config: widget.Config{},
	}
	if d, ok := reg.Get(layout.FixedType); ok {
		inst.Config = d.Defaults()
	}
	return inst
}
