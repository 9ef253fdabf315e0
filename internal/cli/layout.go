package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/signboard/pkg/editor"
	"github.com/matzehuels/signboard/pkg/errors"
	"github.com/matzehuels/signboard/pkg/grid"
	"github.com/matzehuels/signboard/pkg/layout"
	"github.com/matzehuels/signboard/pkg/widget"
)

// newCommand creates the "new" command.
func (c *CLI) newCommand() *cobra.Command {
	var ticker, force bool

	cmd := &cobra.Command{
		Use:   "new <layout-file>",
		Short: "Write an empty layout file",
		Long:  `Write the default display configuration (empty 12x8 grid, default theme) to a .json or .toml file.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			cfg := layout.Default()
			cfg.Theme = c.cfg.Theme
			cfg.TickerEnabled = ticker
			if err := layout.WriteFile(cfg, path); err != nil {
				return err
			}
			statusFor(cmd).ok("Created layout")
			statusFor(cmd).file(path)
			return nil
		},
		ValidArgsFunction: completeLayoutFile,
	}

	cmd.Flags().BoolVar(&ticker, "ticker", false, "enable the news ticker strip")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")
	return cmd
}

// addCommand creates the "add" command.
func (c *CLI) addCommand() *cobra.Command {
	var at string

	cmd := &cobra.Command{
		Use:   "add <layout-file> <widget-type>",
		Short: "Add a widget instance to a layout file",
		Long:  `Add a widget at --at x,y, or at the first free spot that fits its default size. Widgets already there are pushed down.`,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, typ := args[0], args[1]
			reg, release, err := c.newRegistry()
			if err != nil {
				return err
			}
			defer release()

			cfg, err := layout.ReadFile(path)
			if err != nil {
				return err
			}
			model := layout.NewModel(cfg, reg)

			d, ok := reg.Get(typ)
			if !ok {
				return errors.New(errors.ErrCodeUnknownWidgetType, "unknown widget type %q (see `%s widgets`)", typ, appName)
			}

			engine := newEngine(model, c)
			defer engine.Close()

			var pos layout.Point
			if at != "" {
				if pos, err = parsePoint(at); err != nil {
					return err
				}
			} else if x, y, ok := engine.FirstFit(d.DefaultW, d.DefaultH); ok {
				pos = layout.Point{X: x, Y: y}
			} else {
				pos = layout.Point{Y: engine.Rows()}
			}

			inst, err := model.CreateInstance(typ, pos)
			if err != nil {
				return err
			}
			if !inst.IsFixed() {
				if err := engine.Add(nodeFor(inst, d)); err != nil {
					return err
				}
				model.SetPositions(positions(engine.CurrentLayout()))
			}

			out := model.Config()
			if err := layout.WriteFile(out, path); err != nil {
				return err
			}
			if inst, ok := model.Instance(inst.ID); ok {
				statusFor(cmd).ok("Added %s %s at %d,%d (%dx%d)", inst.Type, StyleHighlight.Render(inst.ID), inst.X, inst.Y, inst.W, inst.H)
			}
			warnBounds(statusFor(cmd), out)
			return nil
		},
		ValidArgsFunction: c.completeWidgetType,
	}

	cmd.Flags().StringVar(&at, "at", "", "grid cell as x,y (default: first free spot)")
	return cmd
}

// setCommand creates the "set" command.
func (c *CLI) setCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set <layout-file> <instance-id> key=value...",
		Short: "Change widget settings through the widget's editor",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, id := args[0], args[1]
			reg, release, err := c.newRegistry()
			if err != nil {
				return err
			}
			defer release()

			cfg, err := layout.ReadFile(path)
			if err != nil {
				return err
			}
			model := layout.NewModel(cfg, reg)

			s, err := editor.Open(model, id, editor.WithLogger(c.Logger), editor.WithContext(cmd.Context()))
			if err != nil {
				return err
			}
			defer s.Close()
			if !s.Available() {
				return errors.New(errors.ErrCodeInvalidInput, "%s: %s", s.Title(), s.Message())
			}

			for _, kv := range args[2:] {
				key, value, ok := strings.Cut(kv, "=")
				if !ok {
					return errors.New(errors.ErrCodeInvalidInput, "expected key=value, got %q", kv)
				}
				if err := s.Set(key, value); err != nil {
					return err
				}
			}

			if err := layout.WriteFile(model.Config(), path); err != nil {
				return err
			}
			statusFor(cmd).ok("Updated %s", StyleHighlight.Render(id))
			for _, f := range s.Fields() {
				statusFor(cmd).field(f.Key, f.Value)
			}
			return nil
		},
		ValidArgsFunction: completeInstanceID,
	}
}

// removeCommand creates the "remove" command.
func (c *CLI) removeCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "remove <layout-file> <instance-id>",
		Aliases: []string{"rm"},
		Short:   "Remove a widget instance from a layout file",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, id := args[0], args[1]
			cfg, err := layout.ReadFile(path)
			if err != nil {
				return err
			}
			model := layout.NewModel(cfg, nil)
			if _, ok := model.Instance(id); !ok {
				return errors.New(errors.ErrCodeNotFound, "no instance %q in %s", id, path)
			}
			model.RemoveInstance(id)
			if err := layout.WriteFile(model.Config(), path); err != nil {
				return err
			}
			statusFor(cmd).ok("Removed %s", StyleHighlight.Render(id))
			return nil
		},
		ValidArgsFunction: completeInstanceID,
	}
}

// =============================================================================
// Grid Helpers
// =============================================================================

// newEngine builds a grid engine over the model's grid instances. Changes
// are applied back to the model when the engine emits.
func newEngine(model *layout.Model, c *CLI) *grid.Engine {
	cfg := model.Config()
	reg := model.Registry()
	var nodes []grid.Node
	for _, inst := range cfg.Layout {
		if inst.IsFixed() {
			continue
		}
		d, _ := reg.Get(inst.Type)
		nodes = append(nodes, nodeFor(inst, d))
	}
	return grid.New(nodes, cfg.RowCount(), func(ns []grid.Node) {
		model.SetPositions(positions(ns))
	},
		grid.WithOverflowRows(c.cfg.Editor.OverflowRows),
		grid.WithDebounce(c.debounce()),
		grid.WithLogger(c.Logger))
}

// nodeFor converts an instance into an engine node bounded by its
// descriptor. Unknown types get no bounds.
func nodeFor(inst layout.Instance, d widget.Descriptor) grid.Node {
	return grid.Node{
		ID: inst.ID,
		X:  inst.X, Y: inst.Y,
		W: inst.W, H: inst.H,
		MinW: d.MinW, MinH: d.MinH,
		MaxW: d.MaxW, MaxH: d.MaxH,
	}
}

func positions(nodes []grid.Node) []layout.Position {
	out := make([]layout.Position, len(nodes))
	for i, n := range nodes {
		out[i] = layout.Position{ID: n.ID, X: n.X, Y: n.Y, W: n.W, H: n.H}
	}
	return out
}

// parsePoint parses "x,y".
func parsePoint(s string) (layout.Point, error) {
	xs, ys, ok := strings.Cut(s, ",")
	x, errX := strconv.Atoi(strings.TrimSpace(xs))
	y, errY := strconv.Atoi(strings.TrimSpace(ys))
	if !ok || errX != nil || errY != nil || x < 0 || y < 0 {
		return layout.Point{}, errors.New(errors.ErrCodeInvalidInput, "invalid cell %q (want x,y)", s)
	}
	return layout.Point{X: x, Y: y}, nil
}

// warnBounds prints one warning per widget outside the visible grid.
func warnBounds(st status, cfg layout.DisplayConfig) {
	for _, err := range layout.CheckBounds(cfg) {
		st.warn("%s", errors.UserMessage(err))
	}
}
