package widgets

import (
	"fmt"
	"strings"

	"github.com/matzehuels/signboard/pkg/errors"
	"github.com/matzehuels/signboard/pkg/widget"
)

// IframeProps configures the embedded-page widget.
type IframeProps struct {
	URL            string
	RefreshSeconds int
	Scale          float64
}

// DecodeIframe reads iframe props from an instance config.
func DecodeIframe(cfg widget.Config) IframeProps {
	p := IframeProps{
		URL:            cfg.String("url", ""),
		RefreshSeconds: cfg.Int("refreshSeconds", 0),
		Scale:          cfg.Float("scale", 1),
	}
	if p.RefreshSeconds < 0 {
		p.RefreshSeconds = 0
	}
	if p.Scale <= 0 {
		p.Scale = 1
	}
	return p
}

// Iframe describes the embedded-page widget.
func Iframe() widget.Descriptor {
	return widget.Descriptor{
		Type:        "iframe",
		Name:        "Web page",
		Description: "An embedded web page, optionally reloaded",
		Icon:        "🌐",
		MinW:        2,
		MinH:        2,
		DefaultW:    6,
		DefaultH:    4,
		DefaultProps: widget.Config{
			"url":            "",
			"refreshSeconds": 0,
			"scale":          1.0,
		},
		Render: renderIframe,
		Editor: func(cfg widget.Config, onChange func(widget.Config)) widget.Editor {
			return widget.NewForm(cfg, onChange,
				widget.FieldSpec{Key: "url", Label: "Page URL", Kind: widget.FieldText, Validate: errors.ValidateURL},
				widget.FieldSpec{Key: "refreshSeconds", Label: "Reload every (s)", Help: "0 disables reloading", Kind: widget.FieldNumber, Validate: nonNegative},
				widget.FieldSpec{Key: "scale", Label: "Zoom", Kind: widget.FieldNumber, Validate: positive},
			)
		},
	}
}

func renderIframe(cfg widget.Config, _ widget.Theme, area widget.Area) string {
	p := DecodeIframe(cfg)
	if p.URL == "" {
		return fit(center("[no page]", area.Cols), area)
	}
	lines := []string{"⧉ " + p.URL}
	if p.RefreshSeconds > 0 {
		lines = append(lines, fmt.Sprintf("reloads every %ds", p.RefreshSeconds))
	}
	if p.Scale != 1 {
		lines = append(lines, fmt.Sprintf("zoom %.0f%%", p.Scale*100))
	}
	return fit(strings.Join(lines, "\n"), area)
}

func nonNegative(raw string) error {
	var f float64
	if _, err := fmt.Sscan(raw, &f); err == nil && f < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "value must not be negative")
	}
	return nil
}

func positive(raw string) error {
	var f float64
	if _, err := fmt.Sscan(raw, &f); err == nil && f <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "value must be positive")
	}
	return nil
}
