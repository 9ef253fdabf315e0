package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/signboard/pkg/codec"
	"github.com/matzehuels/signboard/pkg/compose"
	"github.com/matzehuels/signboard/pkg/display"
	"github.com/matzehuels/signboard/pkg/editor"
	"github.com/matzehuels/signboard/pkg/errors"
	"github.com/matzehuels/signboard/pkg/grid"
	"github.com/matzehuels/signboard/pkg/layout"
	"github.com/matzehuels/signboard/pkg/widget"
)

// editCommand creates the "edit" command.
func (c *CLI) editCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "edit <layout-file>",
		Short: "Arrange and configure widgets interactively",
		Long: `Open the interactive configurator on a layout file.

  tab/shift+tab  select widget       arrows        move
  shift+arrows   resize              a             add widget
  d              delete              enter         widget settings
  t              toggle ticker       s             save
  q              quit`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			reg, release, err := c.newRegistry()
			if err != nil {
				return err
			}
			defer release()

			cfg, err := layout.ReadFile(path)
			if err != nil {
				return err
			}
			m := newEditModel(cmd.Context(), c, path, layout.NewModel(cfg, reg))
			defer m.close()

			// Engine output would corrupt the alt screen.
			c.Logger.SetOutput(io.Discard)
			final, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
			if err != nil {
				return err
			}
			if fm, ok := final.(*editModel); ok && fm.dirty {
				statusFor(cmd).warn("Unsaved changes discarded")
			}
			return nil
		},
		ValidArgsFunction: completeLayoutFile,
	}
}

// =============================================================================
// Edit Model
// =============================================================================

type editMode int

const (
	modeGrid editMode = iota
	modeAdd
	modeDialog
)

// sessionReadyMsg reports that an editor session finished loading its
// capability.
type sessionReadyMsg struct{ id string }

var (
	editSelected    = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	editNormal      = lipgloss.NewStyle().Foreground(colorWhite)
	editDim         = lipgloss.NewStyle().Foreground(colorDim)
	editErrStyle    = lipgloss.NewStyle().Foreground(colorRed)
	editDialogStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorCyan).Padding(0, 1)
)

// editModel is the bubbletea model of the configurator. Geometry edits go
// through the grid engine; the engine writes settled layouts back to the
// layout model.
type editModel struct {
	ctx    context.Context
	path   string
	model  *layout.Model
	engine *grid.Engine
	logger *log.Logger

	mode     editMode
	selected string
	status   string
	err      error
	dirty    bool
	width    int
	height   int

	types      []string
	typeCursor int

	session     *editor.Session
	fieldCursor int
	editing     bool
	input       textinput.Model
}

func newEditModel(ctx context.Context, c *CLI, path string, model *layout.Model) *editModel {
	in := textinput.New()
	in.Prompt = "› "
	in.CharLimit = 512

	m := &editModel{
		ctx:    ctx,
		path:   path,
		model:  model,
		engine: newEngine(model, c),
		logger: c.Logger,
		types:  model.Registry().Types(),
		input:  in,
		width:  120,
		height: 40,
	}
	if nodes := m.engine.CurrentLayout(); len(nodes) > 0 {
		m.selected = nodes[0].ID
	}
	return m
}

func (m *editModel) close() {
	m.closeSession()
	m.engine.Close()
}

func (m *editModel) Init() tea.Cmd {
	return nil
}

func (m *editModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil
	case sessionReadyMsg:
		if m.session != nil && m.session.ID() == msg.id {
			m.status = fmt.Sprintf("%s settings ready (%s)", m.session.Title(), m.session.LoadState())
		}
		return m, nil
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.mode {
		case modeAdd:
			return m.updateAdd(msg)
		case modeDialog:
			return m.updateDialog(msg)
		}
		return m.updateGrid(msg)
	}
	if m.editing {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *editModel) updateGrid(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.err = nil
	switch msg.String() {
	case "q", "esc":
		return m, tea.Quit
	case "tab":
		m.cycle(1)
	case "shift+tab":
		m.cycle(-1)
	case "up", "down", "left", "right":
		m.nudge(msg.String(), false)
	case "shift+up", "shift+down", "shift+left", "shift+right":
		m.nudge(strings.TrimPrefix(msg.String(), "shift+"), true)
	case "a":
		m.mode = modeAdd
		m.typeCursor = 0
	case "d", "delete":
		m.remove()
	case "t":
		m.toggleTicker()
	case "s":
		m.save()
	case "enter":
		return m, m.openDialog()
	}
	return m, nil
}

// cycle moves the selection through the grid nodes.
func (m *editModel) cycle(step int) {
	nodes := m.engine.CurrentLayout()
	if len(nodes) == 0 {
		m.selected = ""
		return
	}
	i := 0
	for j, n := range nodes {
		if n.ID == m.selected {
			i = (j + step + len(nodes)) % len(nodes)
			break
		}
	}
	m.selected = nodes[i].ID
}

// nudge moves or resizes the selected node by one cell. Each key press is
// one complete gesture.
func (m *editModel) nudge(dir string, resize bool) {
	n, ok := m.engine.Node(m.selected)
	if !ok {
		return
	}
	dx, dy := 0, 0
	switch dir {
	case "up":
		dy = -1
	case "down":
		dy = 1
	case "left":
		dx = -1
	case "right":
		dx = 1
	}
	var err error
	if resize {
		err = m.engine.Resize(n.ID, n.W+dx, n.H+dy)
	} else {
		err = m.engine.Move(n.ID, n.X+dx, n.Y+dy)
	}
	if errors.IsLayoutFailure(err) {
		m.status = "reverted: " + errors.UserMessage(err)
		return
	}
	if err != nil {
		m.err = err
		return
	}
	m.dirty = true
	n, _ = m.engine.Node(n.ID)
	m.status = fmt.Sprintf("%s at %d,%d (%dx%d)", n.ID, n.X, n.Y, n.W, n.H)
}

func (m *editModel) remove() {
	if m.selected == "" {
		return
	}
	id := m.selected
	m.cycle(1)
	m.engine.Remove(id)
	m.model.RemoveInstance(id)
	if m.selected == id {
		m.selected = ""
	}
	m.dirty = true
	m.status = "removed " + id
}

func (m *editModel) toggleTicker() {
	enabled := !m.model.Config().TickerEnabled
	m.model.SetTickerEnabled(enabled)
	m.engine.SetRows(layout.RowCountFor(enabled))
	m.dirty = true
	m.status = "ticker off"
	if enabled {
		m.status = "ticker on"
	}
}

// save writes the authoritative layout, bypassing the debounce.
func (m *editModel) save() {
	m.model.SetPositions(positions(m.engine.CurrentLayout()))
	cfg := m.model.Config()
	if err := layout.WriteFile(cfg, m.path); err != nil {
		m.err = err
		return
	}
	m.dirty = false
	m.status = "saved " + m.path
	if token, err := codec.Encode(cfg); err == nil {
		m.logger.Debug("saved layout", "path", m.path, "token", token)
	}
}

// =============================================================================
// Add Picker
// =============================================================================

func (m *editModel) updateAdd(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q":
		m.mode = modeGrid
	case "up", "k":
		if m.typeCursor > 0 {
			m.typeCursor--
		}
	case "down", "j":
		if m.typeCursor < len(m.types)-1 {
			m.typeCursor++
		}
	case "enter":
		if len(m.types) > 0 {
			m.add(m.types[m.typeCursor])
		}
		m.mode = modeGrid
	}
	return m, nil
}

func (m *editModel) add(typ string) {
	d, ok := m.model.Registry().Get(typ)
	if !ok {
		m.err = errors.New(errors.ErrCodeUnknownWidgetType, "unknown widget type %q", typ)
		return
	}
	at := layout.Point{Y: m.engine.Rows()}
	if x, y, ok := m.engine.FirstFit(d.DefaultW, d.DefaultH); ok {
		at = layout.Point{X: x, Y: y}
	}
	inst, err := m.model.CreateInstance(typ, at)
	if err != nil {
		m.err = err
		return
	}
	if !inst.IsFixed() {
		if err := m.engine.Add(nodeFor(inst, d)); err != nil {
			m.model.RemoveInstance(inst.ID)
			m.err = err
			return
		}
		m.selected = inst.ID
	}
	m.dirty = true
	m.status = fmt.Sprintf("added %s %s", typ, inst.ID)
}

// =============================================================================
// Settings Dialog
// =============================================================================

func (m *editModel) openDialog() tea.Cmd {
	if m.selected == "" {
		return nil
	}
	s, err := editor.Open(m.model, m.selected, editor.WithContext(m.ctx), editor.WithLogger(m.logger))
	if err != nil {
		m.err = err
		return nil
	}
	m.session = s
	m.mode = modeDialog
	m.fieldCursor = 0
	m.editing = false
	if s.LoadState() != editor.LoadPending {
		return nil
	}
	id := s.ID()
	ready := s.Ready()
	return func() tea.Msg {
		<-ready
		return sessionReadyMsg{id: id}
	}
}

func (m *editModel) closeSession() {
	if m.session != nil {
		m.session.Close()
		m.session = nil
	}
}

func (m *editModel) updateDialog(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.editing {
		switch msg.String() {
		case "esc":
			m.editing = false
			m.input.Blur()
		case "enter":
			fields := m.session.Fields()
			if m.fieldCursor < len(fields) {
				if err := m.session.Set(fields[m.fieldCursor].Key, m.input.Value()); err != nil {
					m.err = err
					return m, nil
				}
				m.dirty = true
			}
			m.err = nil
			m.editing = false
			m.input.Blur()
		default:
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	fields := m.session.Fields()
	switch msg.String() {
	case "esc", "q":
		m.closeSession()
		m.mode = modeGrid
		m.err = nil
	case "up", "k":
		if m.fieldCursor > 0 {
			m.fieldCursor--
		}
	case "down", "j":
		if m.fieldCursor < len(fields)-1 {
			m.fieldCursor++
		}
	case "enter":
		if !m.session.Available() || m.fieldCursor >= len(fields) {
			return m, nil
		}
		m.editing = true
		m.input.SetValue(fields[m.fieldCursor].Value)
		m.input.CursorEnd()
		return m, m.input.Focus()
	}
	return m, nil
}

// =============================================================================
// View
// =============================================================================

func (m *editModel) View() string {
	var b strings.Builder
	b.WriteString(StyleTitle.Render("signboard"))
	b.WriteString(editDim.Render(" · " + m.path))
	if m.dirty {
		b.WriteString(StyleWarning.Render(" (modified)"))
	}
	b.WriteString("\n")

	switch m.mode {
	case modeAdd:
		b.WriteString(m.viewAdd())
	case modeDialog:
		b.WriteString(m.viewDialog())
	default:
		b.WriteString(m.viewGrid())
	}

	b.WriteString("\n")
	if m.err != nil {
		b.WriteString(editErrStyle.Render(errors.UserMessage(m.err)))
	} else {
		b.WriteString(editDim.Render(m.status))
	}
	return b.String()
}

// preview composes the live layout: model settings with engine geometry.
func (m *editModel) preview() compose.Composition {
	cfg := m.model.Config()
	nodes := m.engine.CurrentLayout()
	for i, inst := range cfg.Layout {
		for _, n := range nodes {
			if n.ID == inst.ID {
				cfg.Layout[i].X, cfg.Layout[i].Y, cfg.Layout[i].W, cfg.Layout[i].H = n.X, n.Y, n.W, n.H
			}
		}
	}
	return compose.Compose(cfg, m.model.Registry())
}

func (m *editModel) viewGrid() string {
	surface := display.Terminal(m.ctx, m.preview(), m.width, m.height-3)
	sel := "no widget selected"
	if n, ok := m.engine.Node(m.selected); ok {
		inst, _ := m.model.Instance(n.ID)
		sel = fmt.Sprintf("▸ %s %s at %d,%d (%dx%d)", inst.Type, n.ID, n.X, n.Y, n.W, n.H)
	}
	return surface + "\n" + editSelected.Render(sel) +
		editDim.Render("   tab select · arrows move · shift+arrows resize · a add · d delete · enter settings · t ticker · s save · q quit")
}

func (m *editModel) viewAdd() string {
	var b strings.Builder
	b.WriteString(StyleTitle.Render("Add widget") + "\n\n")
	reg := m.model.Registry()
	for i, typ := range m.types {
		d, _ := reg.Get(typ)
		line := fmt.Sprintf("%s %-14s %s", d.Icon, typ, editDim.Render(d.Description))
		if i == m.typeCursor {
			b.WriteString(editSelected.Render("▸ " + line))
		} else {
			b.WriteString(editNormal.Render("  " + line))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n" + editDim.Render("↑/↓ choose  ⏎ add  esc back"))
	return b.String()
}

func (m *editModel) viewDialog() string {
	s := m.session
	var b strings.Builder
	b.WriteString(StyleTitle.Render(s.Title()) + editDim.Render(" "+s.ID()) + "\n\n")

	if !s.Available() {
		b.WriteString(editDim.Render(s.Message()))
		return editDialogStyle.Render(b.String())
	}
	switch s.LoadState() {
	case editor.LoadPending:
		b.WriteString(editDim.Render("loading…") + "\n")
	case editor.LoadFailed:
		b.WriteString(StyleWarning.Render("extra options unavailable") + "\n")
	}

	for i, f := range s.Fields() {
		value := f.Value
		if i == m.fieldCursor && m.editing {
			value = m.input.View()
		}
		line := fmt.Sprintf("%-14s %s", f.Label, value)
		if f.Kind == widget.FieldChoice && len(f.Choices) > 0 {
			line += editDim.Render("  [" + strings.Join(f.Choices, "|") + "]")
		}
		if i == m.fieldCursor {
			b.WriteString(editSelected.Render("▸ ") + line)
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n" + editDim.Render("↑/↓ field  ⏎ edit/apply  esc close"))
	return editDialogStyle.Render(b.String())
}
