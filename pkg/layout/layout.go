// Package layout implements the layout model of a signage display: the
// placed widget instances plus the global display settings.
//
// # Grid
//
// The display grid is 12 columns wide and 8 rows tall. When the news
// ticker is enabled the grid shrinks to 7 rows and the freed row becomes
// the fixed ticker strip. These are configuration-level constants: the
// model does not reject placements outside them. Out-of-bounds widgets are
// a rendering concern (see CheckBounds).
//
// # Fixed-position widget
//
// Instances of type [FixedType] never take part in grid placement. Their
// stored x/y/w/h are kept for round-tripping but ignored by the composer.
//
// # Lifecycle
//
// A DisplayConfig is built from a decoded token or from [Default]. It is
// mutated only through a [Model] inside the configurator; the display
// surface treats it as read-only.
package layout

import (
	"reflect"

	"github.com/matzehuels/signboard/pkg/errors"
	"github.com/matzehuels/signboard/pkg/widget"
)

const (
	// Columns is the declared grid width.
	Columns = 12

	// Rows is the grid height with the ticker disabled.
	Rows = 8

	// TickerRows is the grid height with the ticker enabled.
	TickerRows = 7

	// FixedType is the one widget type exempt from grid placement.
	FixedType = "news-ticker"
)

// DefaultTheme is the built-in color theme.
var DefaultTheme = widget.Theme{
	Background: "#0f172a",
	Primary:    "#f8fafc",
	Accent:     "#38bdf8",
}

// Instance is one placed occurrence of a widget type.
type Instance struct {
	ID     string        `json:"id" toml:"id"`
	Type   string        `json:"type" toml:"type"`
	X      int           `json:"x" toml:"x"`
	Y      int           `json:"y" toml:"y"`
	W      int           `json:"w" toml:"w"`
	H      int           `json:"h" toml:"h"`
	Config widget.Config `json:"config" toml:"config"`
}

// IsFixed reports whether the instance is the fixed-position type.
func (i Instance) IsFixed() bool {
	return i.Type == FixedType
}

// Clone returns a copy of i with a deep-copied config.
func (i Instance) Clone() Instance {
	i.Config = i.Config.Clone()
	return i
}

// InBounds reports whether the instance fits a Columns×rows grid.
func (i Instance) InBounds(rows int) bool {
	return i.X >= 0 && i.Y >= 0 && i.W >= 1 && i.H >= 1 &&
		i.X+i.W <= Columns && i.Y+i.H <= rows
}

// Position is the geometry part of an instance, keyed by id.
type Position struct {
	ID string
	X  int
	Y  int
	W  int
	H  int
}

// Point is a grid cell coordinate.
type Point struct {
	X int
	Y int
}

// DisplayConfig is the full configuration of one display.
type DisplayConfig struct {
	Layout        []Instance   `json:"layout" toml:"layout"`
	Theme         widget.Theme `json:"theme" toml:"theme"`
	TickerEnabled bool         `json:"tickerEnabled" toml:"ticker_enabled"`
}

// Default returns the built-in configuration: an empty 12×8 grid, ticker
// disabled, default theme.
func Default() DisplayConfig {
	return DisplayConfig{
		Layout: []Instance{},
		Theme:  DefaultTheme,
	}
}

// RowCount returns the number of general grid rows for c.
func (c DisplayConfig) RowCount() int {
	return RowCountFor(c.TickerEnabled)
}

// RowCountFor returns the grid row count for a ticker flag.
func RowCountFor(tickerEnabled bool) int {
	if tickerEnabled {
		return TickerRows
	}
	return Rows
}

// Clone returns a deep copy of c.
func (c DisplayConfig) Clone() DisplayConfig {
	out := c
	out.Layout = make([]Instance, len(c.Layout))
	for i, inst := range c.Layout {
		out.Layout[i] = inst.Clone()
	}
	return out
}

// Equal reports whether c and o describe the same display: the same
// instances in the same order, the same theme and the same ticker flag.
func (c DisplayConfig) Equal(o DisplayConfig) bool {
	return reflect.DeepEqual(c.Clone(), o.Clone())
}

// Find returns the index of the instance with id, or -1.
func (c DisplayConfig) Find(id string) int {
	for i, inst := range c.Layout {
		if inst.ID == id {
			return i
		}
	}
	return -1
}

// CheckBounds returns one OUT_OF_BOUNDS_PLACEMENT error per grid instance
// that does not fit the visible grid. The result is advisory only.
func CheckBounds(c DisplayConfig) []error {
	rows := c.RowCount()
	var errs []error
	for _, inst := range c.Layout {
		if inst.IsFixed() || inst.InBounds(rows) {
			continue
		}
		errs = append(errs, errors.New(errors.ErrCodeOutOfBounds,
			"widget %s (%s) at %d,%d size %dx%d exceeds %dx%d grid",
			inst.ID, inst.Type, inst.X, inst.Y, inst.W, inst.H, Columns, rows))
	}
	return errs
}
