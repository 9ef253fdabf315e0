package cli

import (
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

// newLogger returns the CLI logger. Timestamps carry centiseconds so that
// debounce and render timings can be followed at debug level.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	l := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
	l.SetStyles(logStyles())
	return l
}

// logStyles colors levels with the CLI palette and highlights error values.
func logStyles() *log.Styles {
	s := log.DefaultStyles()
	s.Levels[log.DebugLevel] = s.Levels[log.DebugLevel].Foreground(colorDim)
	s.Levels[log.InfoLevel] = s.Levels[log.InfoLevel].Foreground(colorCyan)
	s.Levels[log.WarnLevel] = s.Levels[log.WarnLevel].Foreground(colorYellow)
	s.Levels[log.ErrorLevel] = s.Levels[log.ErrorLevel].Foreground(colorRed)
	s.Keys["err"] = lipgloss.NewStyle().Foreground(colorRed)
	return s
}

// logElapsed logs msg at info level with the time since start appended as
// the "took" key.
func logElapsed(l *log.Logger, start time.Time, msg string, keyvals ...any) {
	l.Info(msg, append(keyvals, "took", time.Since(start).Round(time.Millisecond))...)
}
