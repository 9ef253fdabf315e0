package widgets

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/matzehuels/signboard/pkg/errors"
	"github.com/matzehuels/signboard/pkg/widget"
)

// MapProps configures the map widget.
type MapProps struct {
	Lat   float64
	Lng   float64
	Zoom  int
	Label string
}

// DecodeMap reads map props from an instance config.
func DecodeMap(cfg widget.Config) MapProps {
	return MapProps{
		Lat:   cfg.Float("lat", 0),
		Lng:   cfg.Float("lng", 0),
		Zoom:  cfg.Int("zoom", 12),
		Label: cfg.String("label", ""),
	}
}

// Place is a named coordinate offered by the place picker.
type Place struct {
	Name string
	Lat  float64
	Lng  float64
}

// PlaceSource loads the places offered by the map editor's picker.
type PlaceSource func(ctx context.Context) ([]Place, error)

// BuiltinPlaces is the gazetteer used when no PlaceSource is given.
var BuiltinPlaces = []Place{
	{"Amsterdam", 52.3676, 4.9041},
	{"Berlin", 52.52, 13.405},
	{"London", 51.5072, -0.1276},
	{"Madrid", 40.4168, -3.7038},
	{"New York", 40.7128, -74.006},
	{"Paris", 48.8566, 2.3522},
	{"San Francisco", 37.7749, -122.4194},
	{"Sydney", -33.8688, 151.2093},
	{"Tokyo", 35.6762, 139.6503},
	{"Zurich", 47.3769, 8.5417},
}

func builtinPlaces(ctx context.Context) ([]Place, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return slices.Clone(BuiltinPlaces), nil
}

// Map describes the map widget. Its editor loads a place picker from
// source; a nil source uses BuiltinPlaces.
func Map(source PlaceSource) widget.Descriptor {
	if source == nil {
		source = builtinPlaces
	}
	return widget.Descriptor{
		Type:        "map",
		Name:        "Map",
		Description: "A map centered on a location",
		Icon:        "🗺",
		MinW:        2,
		MinH:        2,
		DefaultW:    4,
		DefaultH:    4,
		DefaultProps: widget.Config{
			"lat":   0,
			"lng":   0,
			"zoom":  12,
			"label": "",
		},
		Render: renderMap,
		Editor: func(cfg widget.Config, onChange func(widget.Config)) widget.Editor {
			return NewMapEditor(cfg, onChange, source)
		},
	}
}

func renderMap(cfg widget.Config, _ widget.Theme, area widget.Area) string {
	p := DecodeMap(cfg)
	title := p.Label
	if title == "" {
		title = "Map"
	}
	lines := []string{
		center("⌖ "+title, area.Cols),
		center(fmt.Sprintf("%.4f, %.4f", p.Lat, p.Lng), area.Cols),
		center(fmt.Sprintf("zoom %d", p.Zoom), area.Cols),
	}
	return fit(strings.Join(lines, "\n"), area)
}

// MapEditor edits map props. Coordinates can always be typed in; once the
// place picker has been loaded and attached a "place" field is offered too.
type MapEditor struct {
	form   *widget.Form
	source PlaceSource

	mu     sync.Mutex
	picker *PlacePicker
}

// NewMapEditor creates a map editor.
func NewMapEditor(cfg widget.Config, onChange func(widget.Config), source PlaceSource) *MapEditor {
	if source == nil {
		source = builtinPlaces
	}
	return &MapEditor{
		source: source,
		form: widget.NewForm(cfg, onChange,
			widget.FieldSpec{Key: "label", Label: "Label", Kind: widget.FieldText},
			widget.FieldSpec{Key: "lat", Label: "Latitude", Kind: widget.FieldNumber, Validate: inRange(-90, 90)},
			widget.FieldSpec{Key: "lng", Label: "Longitude", Kind: widget.FieldNumber, Validate: inRange(-180, 180)},
			widget.FieldSpec{Key: "zoom", Label: "Zoom", Kind: widget.FieldNumber, Validate: inRange(1, 20)},
		),
	}
}

// Load implements widget.Loader.
func (e *MapEditor) Load(ctx context.Context) (widget.Capability, error) {
	places, err := e.source(ctx)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &PlacePicker{places: places}, nil
}

// Attach implements widget.Loader.
func (e *MapEditor) Attach(c widget.Capability) {
	p, ok := c.(*PlacePicker)
	if !ok {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.picker = p
}

// Fields implements widget.Editor.
func (e *MapEditor) Fields() []widget.Field {
	fields := e.form.Fields()
	e.mu.Lock()
	p := e.picker
	e.mu.Unlock()
	if p == nil || p.Closed() {
		return fields
	}
	label, _ := e.form.Value("label").(string)
	return append([]widget.Field{{
		Key:     "place",
		Label:   "Place",
		Help:    "Pick a known place",
		Kind:    widget.FieldChoice,
		Value:   label,
		Choices: p.Names(),
	}}, fields...)
}

// Set implements widget.Editor. Picking a place sets label, lat and lng in
// one change.
func (e *MapEditor) Set(key, value string) error {
	if key != "place" {
		return e.form.Set(key, value)
	}
	e.mu.Lock()
	p := e.picker
	e.mu.Unlock()
	if p == nil {
		return errors.New(errors.ErrCodeInvalidInput, "place picker not loaded")
	}
	place, ok := p.Lookup(value)
	if !ok {
		return errors.New(errors.ErrCodeInvalidInput, "unknown place %q", value)
	}
	e.form.Patch(widget.Config{"label": place.Name, "lat": place.Lat, "lng": place.Lng})
	return nil
}

// PlacePicker is the map editor's loaded capability.
type PlacePicker struct {
	mu     sync.Mutex
	places []Place
	closed bool
}

// Names lists the pickable places.
func (p *PlacePicker) Names() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	names := make([]string, len(p.places))
	for i, pl := range p.places {
		names[i] = pl.Name
	}
	return names
}

// Lookup finds a place by name, ignoring case.
func (p *PlacePicker) Lookup(name string) (Place, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return Place{}, false
	}
	for _, pl := range p.places {
		if strings.EqualFold(pl.Name, strings.TrimSpace(name)) {
			return pl, true
		}
	}
	return Place{}, false
}

// Close releases the picker.
func (p *PlacePicker) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	p.places = nil
	return nil
}

// Closed reports whether Close was called.
func (p *PlacePicker) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

func inRange(lo, hi float64) func(string) error {
	return func(raw string) error {
		var f float64
		if _, err := fmt.Sscan(raw, &f); err == nil && (f < lo || f > hi) {
			return errors.New(errors.ErrCodeInvalidInput, "value must be between %g and %g", lo, hi)
		}
		return nil
	}
}
