// Package widgets provides the built-in widget modules.
//
// Each module is one file exposing a typed props struct, a decoder from the
// opaque instance config into that struct, and a descriptor constructor.
// The layout engine only ever sees widget.Config; the typed form exists
// only at the render and editor boundary.
package widgets

import (
	"strings"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/matzehuels/signboard/pkg/widget"
)

// now is the clock used by time-dependent widgets.
var now = time.Now

// Builtins returns the descriptors of all built-in widgets in registration
// order.
func Builtins() []widget.Descriptor {
	return []widget.Descriptor{
		Clock(),
		Text(),
		Image(),
		Iframe(),
		Map(nil),
		Ticker(),
		Countdown(),
	}
}

// RegisterBuiltins registers every built-in widget with reg. It must run
// before the registry is used to decode, compose or edit.
func RegisterBuiltins(reg *widget.Registry) {
	for _, d := range Builtins() {
		reg.MustRegister(d)
	}
}

// fit truncates s to the area: at most area.Rows lines, each at most
// area.Cols cells wide.
func fit(s string, area widget.Area) string {
	if area.Cols <= 0 || area.Rows <= 0 {
		return ""
	}
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(lines) > area.Rows {
		lines = lines[:area.Rows]
	}
	for i, l := range lines {
		lines[i] = truncate(l, area.Cols)
	}
	return strings.Join(lines, "\n")
}

func truncate(s string, width int) string {
	if runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, "…")
}

// center pads s on the left so that it is centered in width cells.
func center(s string, width int) string {
	pad := (width - runewidth.StringWidth(s)) / 2
	if pad <= 0 {
		return s
	}
	return strings.Repeat(" ", pad) + s
}

func alignRight(s string, width int) string {
	pad := width - runewidth.StringWidth(s)
	if pad <= 0 {
		return s
	}
	return strings.Repeat(" ", pad) + s
}
