package widgets

import (
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"

	"github.com/matzehuels/signboard/pkg/widget"
)

// TextProps configures the text widget.
type TextProps struct {
	Content  string
	Align    string // left, center or right
	Markdown bool
}

// DecodeText reads text props from an instance config.
func DecodeText(cfg widget.Config) TextProps {
	return TextProps{
		Content:  cfg.String("content", ""),
		Align:    cfg.String("align", "left"),
		Markdown: cfg.Bool("markdown", true),
	}
}

// Text describes the text widget.
func Text() widget.Descriptor {
	return widget.Descriptor{
		Type:        "text",
		Name:        "Text",
		Description: "Static text or markdown",
		Icon:        "📝",
		MinW:        1,
		MinH:        1,
		DefaultW:    4,
		DefaultH:    2,
		DefaultProps: widget.Config{
			"content":  "# Welcome",
			"align":    "left",
			"markdown": true,
		},
		Render: renderText,
		Editor: func(cfg widget.Config, onChange func(widget.Config)) widget.Editor {
			return widget.NewForm(cfg, onChange,
				widget.FieldSpec{Key: "content", Label: "Content", Kind: widget.FieldText},
				widget.FieldSpec{Key: "align", Label: "Alignment", Kind: widget.FieldChoice, Choices: []string{"left", "center", "right"}},
				widget.FieldSpec{Key: "markdown", Label: "Markdown", Kind: widget.FieldBool},
			)
		},
	}
}

func renderText(cfg widget.Config, _ widget.Theme, area widget.Area) string {
	p := DecodeText(cfg)
	body := p.Content
	if p.Markdown {
		body = renderMarkdown(body, area.Cols)
	}

	lines := strings.Split(strings.Trim(body, "\n"), "\n")
	for i, l := range lines {
		l = strings.TrimRight(l, " ")
		switch p.Align {
		case "center":
			l = center(strings.TrimSpace(l), area.Cols)
		case "right":
			l = alignRight(strings.TrimSpace(l), area.Cols)
		}
		lines[i] = l
	}
	return fit(strings.Join(lines, "\n"), area)
}

var (
	renderersMu sync.Mutex
	renderers   = map[int]*glamour.TermRenderer{}
)

// renderMarkdown renders markdown as plain text wrapped at width. Renderers
// are cached per width. On error the source is returned unchanged.
func renderMarkdown(src string, width int) string {
	if width <= 0 {
		return src
	}
	renderersMu.Lock()
	defer renderersMu.Unlock()

	r, ok := renderers[width]
	if !ok {
		var err error
		r, err = glamour.NewTermRenderer(
			glamour.WithStandardStyle("notty"),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return src
		}
		renderers[width] = r
	}
	out, err := r.Render(src)
	if err != nil {
		return src
	}
	return out
}
