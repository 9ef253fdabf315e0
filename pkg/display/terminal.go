package display

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/matzehuels/signboard/pkg/compose"
	"github.com/matzehuels/signboard/pkg/widget"
)

// Minimum terminal surface size.
const (
	MinWidth  = 24
	MinHeight = 8
)

// Terminal renders comp as width×height cells of text. The grid takes all
// rows above the ticker strip; each grid cell is width/12 columns wide.
func Terminal(ctx context.Context, comp compose.Composition, width, height int) string {
	start := time.Now()
	out := terminal(comp, max(width, MinWidth), max(height, MinHeight))
	report(ctx, comp, SurfaceTerminal, start, nil)
	return out
}

func terminal(comp compose.Composition, width, height int) string {
	strip := 0
	if comp.Fixed != nil {
		strip = 1
	}
	rows := max(comp.RowCount, 1)
	cellW := width / 12
	cellH := max((height-strip)/rows, 1)
	gridW, gridH := cellW*12, cellH*rows

	c := newCanvas(gridW, gridH+strip)
	if comp.Empty() {
		c.text((gridW-runewidth.StringWidth(EmptyMessage))/2, gridH/2, EmptyMessage, gridW)
	}
	for _, it := range comp.Grid {
		x, y, w, h, ok := visible(it, rows)
		if !ok {
			continue
		}
		c.box(x*cellW, y*cellH, w*cellW, h*cellH, func(area widget.Area) string {
			return content(it, comp.Theme, area)
		})
	}
	if comp.Fixed != nil {
		line := content(*comp.Fixed, comp.Theme, widget.Area{Cols: gridW, Rows: 1})
		first, _, _ := strings.Cut(line, "\n")
		c.text(0, gridH, first, gridW)
	}

	style := lipgloss.NewStyle().
		Foreground(lipgloss.Color(comp.Theme.Primary)).
		Background(lipgloss.Color(comp.Theme.Background))
	border := lipgloss.NewStyle().Foreground(lipgloss.Color(comp.Theme.Accent))

	lines := c.lines()
	for i, l := range lines {
		if i < gridH {
			lines[i] = paintBorders(l, border, style)
		} else {
			lines[i] = style.Render(l)
		}
	}
	return strings.Join(lines, "\n")
}

// canvas is a grid of terminal cells. A cell holding "" is the right half
// of a wide rune.
type canvas struct {
	w, h  int
	cells [][]string
}

func newCanvas(w, h int) *canvas {
	c := &canvas{w: w, h: h, cells: make([][]string, h)}
	for y := range c.cells {
		row := make([]string, w)
		for x := range row {
			row[x] = " "
		}
		c.cells[y] = row
	}
	return c
}

func (c *canvas) set(x, y int, s string) {
	if x >= 0 && x < c.w && y >= 0 && y < c.h {
		c.cells[y][x] = s
	}
}

// text writes s at x,y, stopping at limit cells from x.
func (c *canvas) text(x, y int, s string, limit int) {
	x = max(x, 0)
	end := min(x+limit, c.w)
	for _, r := range s {
		rw := runewidth.RuneWidth(r)
		if rw == 0 {
			continue
		}
		if x+rw > end {
			return
		}
		c.set(x, y, string(r))
		if rw == 2 {
			c.set(x+1, y, "")
		}
		x += rw
	}
}

// box draws a rounded border around the rectangle and fills its inside
// with render's output. Boxes too small for a border are filled directly.
func (c *canvas) box(x, y, w, h int, render func(widget.Area) string) {
	for yy := y; yy < y+h; yy++ {
		for xx := x; xx < x+w; xx++ {
			c.set(xx, yy, " ")
		}
	}
	inner := widget.Area{Cols: w, Rows: h}
	ox, oy := x, y
	if w >= 3 && h >= 3 {
		b := lipgloss.RoundedBorder()
		c.set(x, y, b.TopLeft)
		c.set(x+w-1, y, b.TopRight)
		c.set(x, y+h-1, b.BottomLeft)
		c.set(x+w-1, y+h-1, b.BottomRight)
		for xx := x + 1; xx < x+w-1; xx++ {
			c.set(xx, y, b.Top)
			c.set(xx, y+h-1, b.Bottom)
		}
		for yy := y + 1; yy < y+h-1; yy++ {
			c.set(x, yy, b.Left)
			c.set(x+w-1, yy, b.Right)
		}
		inner = widget.Area{Cols: w - 2, Rows: h - 2}
		ox, oy = x+1, y+1
	}
	for i, l := range strings.Split(render(inner), "\n") {
		if i >= inner.Rows {
			break
		}
		c.text(ox, oy+i, l, inner.Cols)
	}
}

func (c *canvas) lines() []string {
	out := make([]string, c.h)
	var sb strings.Builder
	for y, row := range c.cells {
		sb.Reset()
		for _, s := range row {
			sb.WriteString(s)
		}
		out[y] = sb.String()
	}
	return out
}

// paintBorders styles runs of border glyphs with border and everything
// else with base.
func paintBorders(line string, border, base lipgloss.Style) string {
	var sb, run strings.Builder
	inBorder := false
	flush := func() {
		if run.Len() == 0 {
			return
		}
		if inBorder {
			sb.WriteString(border.Inherit(base).Render(run.String()))
		} else {
			sb.WriteString(base.Render(run.String()))
		}
		run.Reset()
	}
	for _, r := range line {
		isB := strings.ContainsRune("╭╮╰╯─│", r)
		if isB != inBorder {
			flush()
			inBorder = isB
		}
		run.WriteRune(r)
	}
	flush()
	return sb.String()
}
