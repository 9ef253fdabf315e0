// Package display renders a composition onto the two display surfaces: a
// terminal text surface and an HTML page.
//
// Surfaces accept whatever configuration they get. Widgets of unknown type
// draw a placeholder, widgets outside the visible grid are clipped and a
// layout without grid widgets shows an explicit empty-state message.
package display

import (
	"context"
	"time"

	"github.com/matzehuels/signboard/pkg/compose"
	"github.com/matzehuels/signboard/pkg/layout"
	"github.com/matzehuels/signboard/pkg/observability"
	"github.com/matzehuels/signboard/pkg/widget"
)

// Surface names reported to render hooks.
const (
	SurfaceTerminal = "terminal"
	SurfaceHTML     = "html"
)

// EmptyMessage is shown when a layout has no grid widgets.
const EmptyMessage = "No widgets configured"

// Placeholder returns the text drawn for an instance of unregistered type.
func Placeholder(typ string) string {
	return "unknown widget: " + typ
}

// content renders one item into area, falling back to the placeholder for
// unknown types.
func content(it compose.Item, theme widget.Theme, area widget.Area) string {
	if !it.Known || it.Descriptor.Render == nil {
		return Placeholder(it.Type)
	}
	return it.Descriptor.Render(it.Config, theme, area)
}

// visible returns the part of it inside the cols×rows grid, in cells.
// ok is false when nothing of it is visible.
func visible(it compose.Item, rows int) (x, y, w, h int, ok bool) {
	x, y = max(it.X, 0), max(it.Y, 0)
	right := min(it.X+it.W, layout.Columns)
	bottom := min(it.Y+it.H, rows)
	if right <= x || bottom <= y {
		return 0, 0, 0, 0, false
	}
	return x, y, right - x, bottom - y, true
}

// report composes the render hook calls around one surface render.
func report(ctx context.Context, comp compose.Composition, surface string, start time.Time, err error) {
	hooks := observability.Render()
	hooks.OnCompose(ctx, len(comp.Grid), comp.Fixed != nil)
	hooks.OnRender(ctx, surface, time.Since(start), err)
}
