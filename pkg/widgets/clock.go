package widgets

import (
	"strings"
	"time"

	"github.com/matzehuels/signboard/pkg/errors"
	"github.com/matzehuels/signboard/pkg/widget"
)

// ClockProps configures the clock widget.
type ClockProps struct {
	Format   string // Go time layout
	Timezone string // IANA name or "Local"
	ShowDate bool
}

// DecodeClock reads clock props from an instance config.
func DecodeClock(cfg widget.Config) ClockProps {
	return ClockProps{
		Format:   cfg.String("format", "15:04"),
		Timezone: cfg.String("timezone", "Local"),
		ShowDate: cfg.Bool("showDate", true),
	}
}

// Location resolves the configured timezone, falling back to local time.
func (p ClockProps) Location() *time.Location {
	if p.Timezone == "" || strings.EqualFold(p.Timezone, "local") {
		return time.Local
	}
	loc, err := time.LoadLocation(p.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// Clock describes the clock widget.
func Clock() widget.Descriptor {
	return widget.Descriptor{
		Type:        "clock",
		Name:        "Clock",
		Description: "Current time with optional date",
		Icon:        "🕒",
		MinW:        2,
		MinH:        1,
		DefaultW:    3,
		DefaultH:    2,
		DefaultProps: widget.Config{
			"format":   "15:04",
			"timezone": "Local",
			"showDate": true,
		},
		Render: renderClock,
		Editor: func(cfg widget.Config, onChange func(widget.Config)) widget.Editor {
			return widget.NewForm(cfg, onChange,
				widget.FieldSpec{Key: "format", Label: "Format", Help: "Go time layout, e.g. 15:04:05", Kind: widget.FieldText},
				widget.FieldSpec{Key: "timezone", Label: "Timezone", Help: "IANA zone name or Local", Kind: widget.FieldText, Validate: validateTimezone},
				widget.FieldSpec{Key: "showDate", Label: "Show date", Kind: widget.FieldBool},
			)
		},
	}
}

func renderClock(cfg widget.Config, _ widget.Theme, area widget.Area) string {
	p := DecodeClock(cfg)
	t := now().In(p.Location())
	lines := []string{center(t.Format(p.Format), area.Cols)}
	if p.ShowDate && area.Rows > 1 {
		lines = append(lines, center(t.Format("Mon 2 Jan 2006"), area.Cols))
	}
	return fit(strings.Join(lines, "\n"), area)
}

func validateTimezone(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, "local") {
		return nil
	}
	if _, err := time.LoadLocation(raw); err != nil {
		return errors.New(errors.ErrCodeInvalidInput, "unknown timezone %q", raw)
	}
	return nil
}
