package cli

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/signboard/pkg/server"
	"github.com/matzehuels/signboard/pkg/widget"
)

// widgetsCommand creates the "widgets" command.
func (c *CLI) widgetsCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "widgets",
		Short: "List the registered widget types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, release, err := c.newRegistry()
			if err != nil {
				return err
			}
			defer release()

			if asJSON {
				infos := make([]server.WidgetInfo, 0, reg.Len())
				for _, d := range reg.Descriptors() {
					infos = append(infos, server.NewWidgetInfo(d))
				}
				return printJSON(cmd, infos)
			}
			fmt.Fprintln(cmd.OutOrStdout(), widgetTable(reg.Descriptors()))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print descriptors as JSON")
	return cmd
}

// widgetTable renders descriptors as a table.
func widgetTable(descs []widget.Descriptor) string {
	rows := make([][]string, 0, len(descs))
	for _, d := range descs {
		editable := "—"
		if d.HasEditor() {
			editable = "✓"
		}
		rows = append(rows, []string{
			d.Icon,
			d.Type,
			d.Name,
			fmt.Sprintf("%dx%d", d.DefaultW, d.DefaultH),
			fmt.Sprintf("%dx%d", d.MinW, d.MinH),
			sizeLabel(d.MaxW) + "x" + sizeLabel(d.MaxH),
			editable,
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Type", "Name", "Default", "Min", "Max", "Editor").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle.Padding(0, 1)
			case col == 1:
				return cellStyle.Foreground(colorCyan)
			case col >= 3 && col <= 5:
				return cellStyle.Foreground(colorGray)
			}
			return cellStyle
		})
	return t.Render()
}

func sizeLabel(n int) string {
	if n == 0 {
		return "∞"
	}
	return strconv.Itoa(n)
}
