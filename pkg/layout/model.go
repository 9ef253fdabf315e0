package layout

import (
	"sync"

	"github.com/google/uuid"

	"github.com/matzehuels/signboard/pkg/errors"
	"github.com/matzehuels/signboard/pkg/widget"
)

// NewID returns a fresh instance id.
func NewID() string {
	return uuid.NewString()
}

// NewInstance creates an instance of typ at the given cell.
// Size and config are seeded from the registered descriptor; the config is
// a deep copy of the descriptor's default props.
func NewInstance(reg *widget.Registry, id, typ string, at Point) (Instance, error) {
	d, ok := reg.Get(typ)
	if !ok {
		return Instance{}, errors.New(errors.ErrCodeUnknownWidgetType, "unknown widget type %q", typ)
	}
	return Instance{
		ID:     id,
		Type:   typ,
		X:      at.X,
		Y:      at.Y,
		W:      d.DefaultW,
		H:      d.DefaultH,
		Config: d.Defaults(),
	}, nil
}

// Model owns a DisplayConfig inside the configurator and applies the
// legal layout operations to it. Operations apply in call order.
type Model struct {
	mu    sync.Mutex
	cfg   DisplayConfig
	reg   *widget.Registry
	newID func() string
}

// NewModel creates a model over a copy of cfg.
func NewModel(cfg DisplayConfig, reg *widget.Registry) *Model {
	if reg == nil {
		reg = widget.NewRegistry()
	}
	cfg = cfg.Clone()
	if cfg.Layout == nil {
		cfg.Layout = []Instance{}
	}
	return &Model{cfg: cfg, reg: reg, newID: NewID}
}

// Registry returns the registry the model validates against.
func (m *Model) Registry() *widget.Registry {
	return m.reg
}

// Config returns a deep copy of the current configuration.
func (m *Model) Config() DisplayConfig {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cfg.Clone()
}

// Instance returns a copy of the instance with id.
func (m *Model) Instance(id string) (Instance, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i := m.cfg.Find(id); i >= 0 {
		return m.cfg.Layout[i].Clone(), true
	}
	return Instance{}, false
}

// CreateInstance creates a new instance of typ at the given cell and
// appends it to the layout. It fails with UNKNOWN_WIDGET_TYPE when typ is
// not registered.
func (m *Model) CreateInstance(typ string, at Point) (Instance, error) {
	inst, err := NewInstance(m.reg, m.newID(), typ, at)
	if err != nil {
		return Instance{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cfg.Layout = append(m.cfg.Layout, inst)
	return inst.Clone(), nil
}

// UpdateInstanceConfig shallow-merges patch into the instance config.
// An unknown id is ignored: an editor may report a change after the
// instance was deleted.
func (m *Model) UpdateInstanceConfig(id string, patch widget.Config) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i := m.cfg.Find(id); i >= 0 {
		m.cfg.Layout[i].Config = m.cfg.Layout[i].Config.Merge(patch)
	}
}

// RemoveInstance removes the instance with id. Removing a missing id is a no-op.
func (m *Model) RemoveInstance(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i := m.cfg.Find(id); i >= 0 {
		m.cfg.Layout = append(m.cfg.Layout[:i], m.cfg.Layout[i+1:]...)
	}
}

// SetPositions replaces x/y/w/h of every known instance in positions.
// Unknown ids are ignored and instances missing from positions keep their
// geometry. Positions may lie off the grid; sizes are raised to at least 1.
func (m *Model) SetPositions(positions []Position) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range positions {
		i := m.cfg.Find(p.ID)
		if i < 0 {
			continue
		}
		inst := &m.cfg.Layout[i]
		inst.X, inst.Y, inst.W, inst.H = p.X, p.Y, max(p.W, 1), max(p.H, 1)
	}
}

// SetTheme replaces the display theme.
func (m *Model) SetTheme(t widget.Theme) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cfg.Theme = t
}

// SetTickerEnabled sets the ticker flag.
func (m *Model) SetTickerEnabled(enabled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cfg.TickerEnabled = enabled
}

// Positions returns the geometry of all grid (non-fixed) instances.
func (m *Model) Positions() []Position {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Position, 0, len(m.cfg.Layout))
	for _, inst := range m.cfg.Layout {
		if inst.IsFixed() {
			continue
		}
		out = append(out, Position{ID: inst.ID, X: inst.X, Y: inst.Y, W: inst.W, H: inst.H})
	}
	return out
}
