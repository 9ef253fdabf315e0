package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

// ANSI 256 palette shared by the status output, the widgets table and the
// configurator.
var (
	colorCyan   = lipgloss.Color("37")
	colorGreen  = lipgloss.Color("71")
	colorYellow = lipgloss.Color("214")
	colorRed    = lipgloss.Color("167")
	colorBlue   = lipgloss.Color("75")
	colorWhite  = lipgloss.Color("255")
	colorGray   = lipgloss.Color("245")
	colorDim    = lipgloss.Color("240")
)

var (
	// StyleTitle renders headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleHighlight renders ids and other values the user types back.
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleLink renders URLs.
	StyleLink = lipgloss.NewStyle().Foreground(colorBlue).Underline(true)

	// StyleDim renders secondary text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleWarning renders warnings.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)
)

var (
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)
	styleFieldKey    = lipgloss.NewStyle().Foreground(colorGray).Width(14)
	styleFieldValue  = lipgloss.NewStyle().Foreground(colorWhite)
)

// statusIcon pairs a leading glyph with its color.
type statusIcon struct {
	glyph string
	style lipgloss.Style
}

var (
	iconOK   = statusIcon{"✓", lipgloss.NewStyle().Foreground(colorGreen)}
	iconFail = statusIcon{"✗", lipgloss.NewStyle().Foreground(colorRed)}
	iconWarn = statusIcon{"!", lipgloss.NewStyle().Foreground(colorYellow)}
	iconInfo = statusIcon{"›", lipgloss.NewStyle().Foreground(colorGray)}
)

// status writes one-line messages for humans. Commands write status to
// stderr so that tokens and JSON on stdout stay pipeable.
type status struct {
	w io.Writer
}

// statusFor returns the status writer of cmd.
func statusFor(cmd *cobra.Command) status {
	return status{w: cmd.ErrOrStderr()}
}

func (s status) line(icon statusIcon, msg string) {
	fmt.Fprintln(s.w, icon.style.Render(icon.glyph)+" "+msg)
}

func (s status) ok(format string, args ...any) {
	s.line(iconOK, fmt.Sprintf(format, args...))
}

func (s status) fail(format string, args ...any) {
	s.line(iconFail, fmt.Sprintf(format, args...))
}

func (s status) warn(format string, args ...any) {
	s.line(iconWarn, StyleWarning.Render(fmt.Sprintf(format, args...)))
}

func (s status) info(format string, args ...any) {
	s.line(iconInfo, fmt.Sprintf(format, args...))
}

// detail prints an indented, dimmed line under the previous message.
func (s status) detail(format string, args ...any) {
	fmt.Fprintln(s.w, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

// file prints the path of a file that was written.
func (s status) file(path string) {
	fmt.Fprintln(s.w, "  "+StyleDim.Render("→")+" "+styleFieldValue.Render(path))
}

// field prints one widget setting.
func (s status) field(key, value string) {
	fmt.Fprintln(s.w, "  "+styleFieldKey.Render(key)+" "+styleFieldValue.Render(value))
}
