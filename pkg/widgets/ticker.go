package widgets

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/matzehuels/signboard/pkg/widget"
)

// TickerProps configures the news ticker.
type TickerProps struct {
	Items     []string
	Speed     float64 // cells per second
	Separator string
}

// DecodeTicker reads ticker props from an instance config.
func DecodeTicker(cfg widget.Config) TickerProps {
	return TickerProps{
		Items:     cfg.Strings("items", nil),
		Speed:     cfg.Float("speed", 40),
		Separator: cfg.String("separator", " • "),
	}
}

// Line returns the full ticker text for one pass.
func (p TickerProps) Line() string {
	if len(p.Items) == 0 {
		return ""
	}
	return strings.Join(p.Items, p.Separator) + p.Separator
}

// Frame returns the width-cell window of the scrolling ticker after
// elapsed seconds.
func (p TickerProps) Frame(width int, elapsed float64) string {
	line := p.Line()
	if line == "" || width <= 0 {
		return ""
	}
	runes := []rune(line)
	offset := 0
	if p.Speed > 0 {
		offset = int(elapsed*p.Speed) % len(runes)
	}

	var b strings.Builder
	used := 0
	for i := 0; used < width && i < 2*width+len(runes); i++ {
		r := runes[(offset+i)%len(runes)]
		w := runewidth.RuneWidth(r)
		if used+w > width {
			break
		}
		b.WriteRune(r)
		used += w
	}
	return b.String()
}

// Ticker describes the news ticker, the fixed-position strip widget.
func Ticker() widget.Descriptor {
	return widget.Descriptor{
		Type:        "news-ticker",
		Name:        "News ticker",
		Description: "Scrolling headlines in the bottom strip",
		Icon:        "📰",
		MinW:        12,
		MinH:        1,
		MaxW:        12,
		MaxH:        1,
		DefaultW:    12,
		DefaultH:    1,
		DefaultProps: widget.Config{
			"items":     []string{"Welcome", "Configure headlines in the editor"},
			"speed":     40,
			"separator": " • ",
		},
		Render: renderTicker,
		Editor: func(cfg widget.Config, onChange func(widget.Config)) widget.Editor {
			return widget.NewForm(cfg, onChange,
				widget.FieldSpec{Key: "items", Label: "Headlines", Help: "separate with |", Kind: widget.FieldList},
				widget.FieldSpec{Key: "speed", Label: "Speed", Help: "characters per second, 0 stops scrolling", Kind: widget.FieldNumber, Validate: nonNegative},
				widget.FieldSpec{Key: "separator", Label: "Separator", Kind: widget.FieldText},
			)
		},
	}
}

func renderTicker(cfg widget.Config, _ widget.Theme, area widget.Area) string {
	p := DecodeTicker(cfg)
	t := now()
	elapsed := float64(t.Unix()%3600) + float64(t.Nanosecond())/1e9
	return p.Frame(area.Cols, elapsed)
}
