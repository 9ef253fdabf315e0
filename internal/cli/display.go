package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/signboard/pkg/codec"
	"github.com/matzehuels/signboard/pkg/compose"
	"github.com/matzehuels/signboard/pkg/display"
	"github.com/matzehuels/signboard/pkg/layout"
)

// liveInterval is how often the live display redraws.
const liveInterval = 250 * time.Millisecond

// displayCommand creates the "display" command.
func (c *CLI) displayCommand() *cobra.Command {
	var (
		width  int
		height int
		live   bool
	)

	cmd := &cobra.Command{
		Use:   "display [token|url|layout-file]",
		Short: "Render a display in the terminal",
		Long:  `Render a display token, display URL or layout file on the terminal surface. Without an argument the default display is shown.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, release, err := c.newRegistry()
			if err != nil {
				return err
			}
			defer release()

			var arg string
			if len(args) == 1 {
				arg = args[0]
			}
			cfg, err := c.resolveDisplay(statusFor(cmd), arg)
			if err != nil {
				return err
			}
			comp := compose.Compose(cfg, reg)

			if live {
				m := newLiveModel(comp)
				_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), display.Terminal(cmd.Context(), comp, width, height))
			return nil
		},
	}

	cmd.Flags().IntVar(&width, "width", 120, "surface width in columns")
	cmd.Flags().IntVar(&height, "height", 40, "surface height in lines")
	cmd.Flags().BoolVar(&live, "live", false, "keep redrawing until q is pressed")
	return cmd
}

// resolveDisplay turns a command argument into a configuration: an existing
// file is read as a layout file, anything else is decoded as a token, with
// the default substituted for a bad one.
func (c *CLI) resolveDisplay(st status, arg string) (layout.DisplayConfig, error) {
	if arg == "" {
		return layout.Default(), nil
	}
	if st, err := os.Stat(arg); err == nil && !st.IsDir() {
		return layout.ReadFile(arg)
	}
	cfg, ok := codec.DecodeOrDefault(tokenFromArg(arg))
	if !ok {
		st.warn("Invalid token, showing default display")
	}
	return cfg, nil
}

// =============================================================================
// Live Display
// =============================================================================

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(liveInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// liveModel redraws a composition at a fixed interval so that time-based
// widgets stay current.
type liveModel struct {
	comp   compose.Composition
	width  int
	height int
	frame  string
}

func newLiveModel(comp compose.Composition) liveModel {
	return liveModel{comp: comp, width: 120, height: 40}
}

func (m liveModel) Init() tea.Cmd {
	return tick()
}

func (m liveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.frame = m.render()
	case tickMsg:
		m.frame = m.render()
		return m, tick()
	}
	return m, nil
}

func (m liveModel) render() string {
	return display.Terminal(context.Background(), m.comp, m.width, m.height)
}

func (m liveModel) View() string {
	if m.frame == "" {
		return m.render()
	}
	return m.frame
}

