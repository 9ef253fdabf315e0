package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/x/ansi"
)

// Spinner shows an animated status line while a slow backend operation
// (a Redis dial, a link lookup) runs. It stops on Stop or when its
// context ends.
type Spinner struct {
	w       io.Writer
	message string
	style   spinner.Spinner

	ctx    context.Context
	cancel context.CancelFunc
	once   sync.Once
	done   chan struct{}
	mu     sync.Mutex
	drawn  int
}

// newSpinner creates a spinner on stderr.
func newSpinner(ctx context.Context, message string) *Spinner {
	return newSpinnerTo(ctx, os.Stderr, message)
}

func newSpinnerTo(ctx context.Context, w io.Writer, message string) *Spinner {
	ctx, cancel := context.WithCancel(ctx)
	return &Spinner{
		w:       w,
		message: message,
		style:   spinner.MiniDot,
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
}

// Start begins drawing frames.
func (s *Spinner) Start() {
	go func() {
		defer close(s.done)
		tick := time.NewTicker(s.style.FPS)
		defer tick.Stop()
		for i := 0; ; i++ {
			s.draw(s.style.Frames[i%len(s.style.Frames)])
			select {
			case <-s.ctx.Done():
				s.clear()
				return
			case <-tick.C:
			}
		}
	}()
}

// Stop ends the animation and erases the line. It is safe to call more
// than once.
func (s *Spinner) Stop() {
	s.once.Do(func() {
		s.cancel()
		<-s.done
	})
}

// StopWithError stops the spinner and prints an error line.
func (s *Spinner) StopWithError(message string) {
	s.Stop()
	status{w: s.w}.fail("%s", message)
}

func (s *Spinner) draw(frame string) {
	line := styleIconSpinner.Render(frame) + " " + StyleDim.Render(s.message)
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprint(s.w, "\r"+line)
	s.drawn = ansi.StringWidth(line)
}

func (s *Spinner) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.drawn > 0 {
		fmt.Fprintf(s.w, "\r%*s\r", s.drawn, "")
		s.drawn = 0
	}
}
