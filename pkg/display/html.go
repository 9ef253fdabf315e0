package display

import (
	"context"
	"html/template"
	"io"
	"time"

	"github.com/matzehuels/signboard/pkg/compose"
	"github.com/matzehuels/signboard/pkg/layout"
	"github.com/matzehuels/signboard/pkg/widget"
)

// Text area given to widgets rendered into an HTML cell, per grid cell.
const (
	htmlCellCols = 10
	htmlCellRows = 3
)

var page = template.Must(template.New("display").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
{{- if .Refresh}}
<meta http-equiv="refresh" content="{{.Refresh}}">
{{- end}}
<title>{{.Title}}</title>
<style>
  html, body { margin: 0; height: 100%; background: {{.Theme.Background}}; color: {{.Theme.Primary}}; font-family: ui-monospace, monospace; }
  .display { display: flex; flex-direction: column; height: 100vh; }
  .grid { flex: 1; display: grid; gap: 0.5rem; padding: 0.5rem;
          grid-template-columns: repeat({{.Columns}}, 1fr); grid-template-rows: repeat({{.Rows}}, 1fr); }
  .widget { border: 1px solid {{.Theme.Accent}}; border-radius: 0.5rem; overflow: hidden; padding: 0.5rem; }
  .widget pre { margin: 0; white-space: pre-wrap; }
  .unknown { opacity: 0.6; border-style: dashed; }
  .empty { grid-column: 1 / -1; grid-row: 1 / -1; display: flex; align-items: center; justify-content: center; opacity: 0.7; }
  .ticker { height: calc(100vh / {{.Total}}); display: flex; align-items: center; overflow: hidden; white-space: nowrap;
            border-top: 2px solid {{.Theme.Accent}}; padding: 0 1rem; }
</style>
</head>
<body>
<div class="display">
<div class="grid">
{{- if not .Cells}}
<div class="empty">{{.Empty}}</div>
{{- end}}
{{- range .Cells}}
<div class="widget widget-{{.Type}}{{if not .Known}} unknown{{end}}" id="w-{{.ID}}" style="grid-column: {{.Col}} / span {{.W}}; grid-row: {{.Row}} / span {{.H}};"><pre>{{.Text}}</pre></div>
{{- end}}
</div>
{{- with .Ticker}}
<div class="ticker" id="w-{{.ID}}">{{.Text}}</div>
{{- end}}
</div>
</body>
</html>
`))

type htmlCell struct {
	ID, Type string
	Known    bool
	Col, Row int
	W, H     int
	Text     string
}

type htmlPage struct {
	Title   string
	Refresh int
	Theme   widget.Theme
	Columns int
	Rows    int
	Total   int
	Empty   string
	Cells   []htmlCell
	Ticker  *htmlCell
}

// HTMLOptions tunes the HTML surface.
type HTMLOptions struct {
	Title string

	// RefreshSeconds adds a meta refresh so time-based widgets update.
	// Zero disables it.
	RefreshSeconds int
}

// HTML writes comp as a standalone page: a CSS grid of 12 columns and
// RowCount rows plus the ticker strip.
func HTML(ctx context.Context, w io.Writer, comp compose.Composition, opts HTMLOptions) error {
	start := time.Now()
	err := page.Execute(w, buildPage(comp, opts))
	report(ctx, comp, SurfaceHTML, start, err)
	return err
}

func buildPage(comp compose.Composition, opts HTMLOptions) htmlPage {
	title := opts.Title
	if title == "" {
		title = "signboard"
	}
	p := htmlPage{
		Title:   title,
		Refresh: max(opts.RefreshSeconds, 0),
		Theme:   comp.Theme,
		Columns: layout.Columns,
		Rows:    comp.RowCount,
		Total:   layout.Rows,
		Empty:   EmptyMessage,
	}
	for _, it := range comp.Grid {
		x, y, w, h, ok := visible(it, comp.RowCount)
		if !ok {
			continue
		}
		area := widget.Area{Cols: w * htmlCellCols, Rows: h * htmlCellRows}
		p.Cells = append(p.Cells, htmlCell{
			ID: it.ID, Type: it.Type, Known: it.Known,
			Col: x + 1, Row: y + 1, W: w, H: h,
			Text: content(it, comp.Theme, area),
		})
	}
	if comp.Fixed != nil {
		area := widget.Area{Cols: layout.Columns * htmlCellCols * 2, Rows: 1}
		p.Ticker = &htmlCell{
			ID: comp.Fixed.ID, Type: comp.Fixed.Type, Known: comp.Fixed.Known,
			Text: content(*comp.Fixed, comp.Theme, area),
		}
	}
	return p
}
