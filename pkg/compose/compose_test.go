package compose

import (
	"testing"

	"github.com/matzehuels/signboard/pkg/layout"
	"github.com/matzehuels/signboard/pkg/widget"
)

func testRegistry() *widget.Registry {
	reg := widget.NewRegistry()
	render := func(widget.Config, widget.Theme, widget.Area) string { return "" }
	reg.MustRegister(widget.Descriptor{Type: "clock", MinW: 2, MinH: 1, DefaultW: 3, DefaultH: 2, Render: render})
	reg.MustRegister(widget.Descriptor{
		Type: layout.FixedType, MinW: 12, MinH: 1, MaxW: 12, MaxH: 1, DefaultW: 12, DefaultH: 1,
		DefaultProps: widget.Config{"items": []string{"breaking"}},
		Render:       render,
	})
	return reg
}

func config(ticker bool, insts ...layout.Instance) layout.DisplayConfig {
	c := layout.Default()
	c.TickerEnabled = ticker
	c.Layout = insts
	return c
}

func TestRowCount(t *testing.T) {
	reg := testRegistry()
	ticker := layout.Instance{ID: "t", Type: layout.FixedType, W: 12, H: 1}
	clock := layout.Instance{ID: "c", Type: "clock", W: 3, H: 2}

	tests := []struct {
		name string
		cfg  layout.DisplayConfig
		want int
	}{
		{"empty disabled", config(false), 8},
		{"empty enabled", config(true), 7},
		{"ticker instance disabled", config(false, ticker, clock), 8},
		{"ticker instance enabled", config(true, clock, ticker), 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Compose(tt.cfg, reg).RowCount; got != tt.want {
				t.Errorf("RowCount = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestSynthesizesTicker(t *testing.T) {
	comp := Compose(config(true, layout.Instance{ID: "c", Type: "clock", W: 3, H: 2}), testRegistry())

	if comp.Fixed == nil {
		t.Fatal("Fixed = nil, want synthesized ticker")
	}
	f := comp.Fixed
	if f.Type != layout.FixedType || f.X != 0 || f.Y != 0 || f.W != 12 || f.H != 1 {
		t.Errorf("synthesized ticker = %+v, want 12x1 at origin", f.Instance)
	}
	if !f.Known {
		t.Error("synthesized ticker not resolved against registry")
	}
	if items := f.Config.Strings("items", nil); len(items) != 1 || items[0] != "breaking" {
		t.Errorf("synthesized ticker config = %v, want registry defaults", f.Config)
	}
	if len(comp.Grid) != 1 {
		t.Errorf("grid has %d widgets, want 1", len(comp.Grid))
	}
}

func TestDisabledTickerHidesInstance(t *testing.T) {
	comp := Compose(config(false,
		layout.Instance{ID: "t", Type: layout.FixedType, W: 12, H: 1},
		layout.Instance{ID: "c", Type: "clock", W: 3, H: 2},
	), testRegistry())

	if comp.Fixed != nil {
		t.Errorf("Fixed = %+v, want nil", comp.Fixed)
	}
	if len(comp.Grid) != 1 || comp.Grid[0].ID != "c" {
		t.Errorf("grid = %+v, want only the clock", comp.Grid)
	}
}

func TestFirstTickerWins(t *testing.T) {
	comp := Compose(config(true,
		layout.Instance{ID: "t1", Type: layout.FixedType, X: 3, Y: 4, W: 12, H: 1},
		layout.Instance{ID: "t2", Type: layout.FixedType, W: 12, H: 1},
	), testRegistry())

	if comp.Fixed == nil || comp.Fixed.ID != "t1" {
		t.Fatalf("Fixed = %+v, want t1", comp.Fixed)
	}
	if len(comp.Grid) != 0 {
		t.Errorf("tickers leaked into grid: %+v", comp.Grid)
	}
}

func TestUnknownTypeTolerated(t *testing.T) {
	comp := Compose(config(false,
		layout.Instance{ID: "a", Type: "clock", W: 3, H: 2},
		layout.Instance{ID: "b", Type: "hologram", X: 3, W: 2, H: 2},
		layout.Instance{ID: "c", Type: "clock", X: 6, W: 3, H: 2},
	), testRegistry())

	if len(comp.Grid) != 3 {
		t.Fatalf("grid has %d widgets, want 3", len(comp.Grid))
	}
	for i, want := range []bool{true, false, true} {
		if comp.Grid[i].Known != want {
			t.Errorf("grid[%d].Known = %v, want %v", i, comp.Grid[i].Known, want)
		}
	}
	if comp.Grid[1].X != 3 {
		t.Errorf("unknown instance geometry lost: %+v", comp.Grid[1].Instance)
	}
}

func TestComposeDoesNotAlias(t *testing.T) {
	cfg := config(false, layout.Instance{ID: "a", Type: "clock", W: 3, H: 2, Config: widget.Config{"format": "15:04"}})
	comp := Compose(cfg, testRegistry())
	comp.Grid[0].Config["format"] = "changed"

	if cfg.Layout[0].Config["format"] != "15:04" {
		t.Error("Compose result shares config with input")
	}
}

func TestNilRegistry(t *testing.T) {
	comp := Compose(config(true, layout.Instance{ID: "a", Type: "clock", W: 3, H: 2}), nil)
	if comp.Fixed == nil || comp.Fixed.Known || comp.Grid[0].Known {
		t.Errorf("nil registry composition = %+v", comp)
	}
}

func TestEmpty(t *testing.T) {
	if !Compose(config(true), testRegistry()).Empty() {
		t.Error("Empty() = false for a layout with only the ticker strip")
	}
}
