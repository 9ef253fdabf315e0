package widgets

import (
	"fmt"
	"strings"
	"time"

	"github.com/matzehuels/signboard/pkg/widget"
)

// CountdownProps configures the countdown widget.
type CountdownProps struct {
	Title  string
	Target time.Time // zero when unset or unparseable
}

// DecodeCountdown reads countdown props from an instance config. The
// target is an RFC 3339 timestamp.
func DecodeCountdown(cfg widget.Config) CountdownProps {
	p := CountdownProps{Title: cfg.String("title", "Countdown")}
	if t, err := time.Parse(time.RFC3339, cfg.String("target", "")); err == nil {
		p.Target = t
	}
	return p
}

// Remaining formats the time left until the target as of t.
func (p CountdownProps) Remaining(t time.Time) string {
	if p.Target.IsZero() {
		return "no date set"
	}
	d := p.Target.Sub(t)
	if d <= 0 {
		return "now"
	}
	d = d.Truncate(time.Second)
	days := int(d / (24 * time.Hour))
	d -= time.Duration(days) * 24 * time.Hour
	h, m, s := int(d/time.Hour), int(d/time.Minute)%60, int(d/time.Second)%60
	if days > 0 {
		return fmt.Sprintf("%dd %02d:%02d:%02d", days, h, m, s)
	}
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// Countdown describes the countdown widget. It has no editor; instances
// keep their default props unless the layout file sets them.
func Countdown() widget.Descriptor {
	return widget.Descriptor{
		Type:        "countdown",
		Name:        "Countdown",
		Description: "Time remaining until an event",
		Icon:        "⏳",
		MinW:        2,
		MinH:        1,
		DefaultW:    3,
		DefaultH:    2,
		DefaultProps: widget.Config{
			"title":  "Countdown",
			"target": "",
		},
		Render: renderCountdown,
	}
}

func renderCountdown(cfg widget.Config, _ widget.Theme, area widget.Area) string {
	p := DecodeCountdown(cfg)
	lines := []string{center(p.Remaining(now()), area.Cols)}
	if area.Rows > 1 {
		lines = append([]string{center(p.Title, area.Cols)}, lines...)
	}
	return fit(strings.Join(lines, "\n"), area)
}
