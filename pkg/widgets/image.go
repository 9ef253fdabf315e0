package widgets

import (
	"strings"

	"github.com/matzehuels/signboard/pkg/errors"
	"github.com/matzehuels/signboard/pkg/widget"
)

// ImageProps configures the image widget.
type ImageProps struct {
	URL string
	Alt string
	Fit string // cover, contain or fill
}

// DecodeImage reads image props from an instance config.
func DecodeImage(cfg widget.Config) ImageProps {
	return ImageProps{
		URL: cfg.String("url", ""),
		Alt: cfg.String("alt", ""),
		Fit: cfg.String("fit", "cover"),
	}
}

// Image describes the image widget.
func Image() widget.Descriptor {
	return widget.Descriptor{
		Type:        "image",
		Name:        "Image",
		Description: "A picture loaded from a URL",
		Icon:        "🖼",
		MinW:        2,
		MinH:        2,
		DefaultW:    4,
		DefaultH:    3,
		DefaultProps: widget.Config{
			"url": "",
			"alt": "",
			"fit": "cover",
		},
		Render: renderImage,
		Editor: func(cfg widget.Config, onChange func(widget.Config)) widget.Editor {
			return widget.NewForm(cfg, onChange,
				widget.FieldSpec{Key: "url", Label: "Image URL", Kind: widget.FieldText, Validate: errors.ValidateURL},
				widget.FieldSpec{Key: "alt", Label: "Alt text", Kind: widget.FieldText},
				widget.FieldSpec{Key: "fit", Label: "Fit", Kind: widget.FieldChoice, Choices: []string{"cover", "contain", "fill"}},
			)
		},
	}
}

func renderImage(cfg widget.Config, _ widget.Theme, area widget.Area) string {
	p := DecodeImage(cfg)
	if p.URL == "" {
		return fit(center("[no image]", area.Cols), area)
	}
	label := p.Alt
	if label == "" {
		label = "image"
	}
	lines := []string{
		center("["+label+"]", area.Cols),
		center(p.URL, area.Cols),
		center("fit: "+p.Fit, area.Cols),
	}
	return fit(strings.Join(lines, "\n"), area)
}
