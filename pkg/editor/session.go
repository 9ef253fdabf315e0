// Package editor runs the configuration dialog for one widget instance.
//
// A Session binds a widget's editor capability to a layout model: every
// accepted field change is merged into the instance config in call order.
// Widgets whose editor needs a heavyweight capability (see widget.Loader)
// get it loaded in the background. The session stays usable while the load
// runs; if it fails the session reports Disabled and keeps working without
// it.
//
// Closing a session cancels a running load. A capability that arrives
// after Close is released immediately and never reaches the editor, so
// nothing from a closed session leaks into the next one.
package editor

import (
	"context"
	"io"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/signboard/pkg/errors"
	"github.com/matzehuels/signboard/pkg/layout"
	"github.com/matzehuels/signboard/pkg/widget"
)

// NoOptionsMessage is shown for instances without an editor.
const NoOptionsMessage = "no configuration options available"

// LoadState is the state of a session's background capability.
type LoadState int

const (
	// LoadNone means the editor has no capability to load.
	LoadNone LoadState = iota
	LoadPending
	LoadReady
	LoadFailed
)

func (s LoadState) String() string {
	switch s {
	case LoadPending:
		return "loading"
	case LoadReady:
		return "ready"
	case LoadFailed:
		return "failed"
	default:
		return "none"
	}
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the session logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithContext sets the parent context for capability loading.
func WithContext(ctx context.Context) Option {
	return func(s *Session) {
		if ctx != nil {
			s.parent = ctx
		}
	}
}

// Session is an open editor dialog for one instance.
type Session struct {
	id         string
	typ        string
	model      *layout.Model
	editor     widget.Editor
	logger     *log.Logger
	parent     context.Context
	descriptor widget.Descriptor

	mu        sync.Mutex
	cancelled bool
	cancel    context.CancelFunc
	state     LoadState
	loadErr   error
	cap       widget.Capability
	ready     chan struct{}
}

// Open starts a session for instance id. It fails only if id is not in
// the model. An instance whose type is unregistered or has no editor gets
// a session that is not Available.
func Open(model *layout.Model, id string, opts ...Option) (*Session, error) {
	inst, ok := model.Instance(id)
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "no widget instance %q", id)
	}

	s := &Session{
		id:     id,
		typ:    inst.Type,
		model:  model,
		logger: log.New(io.Discard),
		parent: context.Background(),
		ready:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	d, ok := model.Registry().Get(inst.Type)
	if !ok || !d.HasEditor() {
		close(s.ready)
		return s, nil
	}
	s.descriptor = d
	s.editor = d.Editor(inst.Config, func(patch widget.Config) {
		s.apply(patch)
	})

	loader, ok := s.editor.(widget.Loader)
	if !ok {
		close(s.ready)
		return s, nil
	}

	ctx, cancel := context.WithCancel(s.parent)
	s.cancel = cancel
	s.state = LoadPending
	go s.load(ctx, loader)
	return s, nil
}

func (s *Session) load(ctx context.Context, loader widget.Loader) {
	defer close(s.ready)

	c, err := loader.Load(ctx)

	s.mu.Lock()
	if s.cancelled {
		s.mu.Unlock()
		if c != nil {
			c.Close()
		}
		s.logger.Debug("editor capability discarded", "widget", s.id, "type", s.typ)
		return
	}
	if err != nil {
		s.state, s.loadErr = LoadFailed, err
		s.mu.Unlock()
		s.logger.Warn("editor capability unavailable", "widget", s.id, "type", s.typ, "err", err)
		return
	}
	// Attach under the lock so Close cannot release c in between.
	s.state, s.cap = LoadReady, c
	loader.Attach(c)
	s.mu.Unlock()

	s.logger.Debug("editor capability attached", "widget", s.id, "type", s.typ)
}

// apply merges an editor patch into the model unless the session is closed.
func (s *Session) apply(patch widget.Config) {
	s.mu.Lock()
	closed := s.cancelled
	s.mu.Unlock()
	if closed {
		return
	}
	s.model.UpdateInstanceConfig(s.id, patch)
}

// ID returns the edited instance id.
func (s *Session) ID() string {
	return s.id
}

// Type returns the edited instance's widget type.
func (s *Session) Type() string {
	return s.typ
}

// Title returns a heading for the dialog.
func (s *Session) Title() string {
	if s.descriptor.Name != "" {
		return s.descriptor.Name
	}
	return s.typ
}

// Available reports whether the instance can be configured.
func (s *Session) Available() bool {
	return s.editor != nil
}

// Message returns the text shown instead of fields, if any.
func (s *Session) Message() string {
	switch {
	case !s.Available():
		return NoOptionsMessage
	case s.Disabled():
		return "some options are unavailable"
	case s.LoadState() == LoadPending:
		return "loading…"
	}
	return ""
}

// LoadState returns the state of the background capability.
func (s *Session) LoadState() LoadState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Disabled reports whether the capability failed to load.
func (s *Session) Disabled() bool {
	return s.LoadState() == LoadFailed
}

// Err returns the capability load error, if any.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadErr
}

// Ready is closed once no background load is running.
func (s *Session) Ready() <-chan struct{} {
	return s.ready
}

// Closed reports whether Close was called.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancelled
}

// Fields returns the editable fields with their current values.
func (s *Session) Fields() []widget.Field {
	if !s.Available() || s.Closed() {
		return nil
	}
	return s.editor.Fields()
}

// Set changes one field. The change is merged into the model before Set
// returns.
func (s *Session) Set(key, value string) error {
	if !s.Available() {
		return errors.New(errors.ErrCodeInvalidInput, "%s: %s", s.typ, NoOptionsMessage)
	}
	if s.Closed() {
		return errors.New(errors.ErrCodeInvalidInput, "editor session closed")
	}
	return s.editor.Set(key, value)
}

// Close ends the session: a running load is cancelled and an attached
// capability is released. It is safe to call more than once.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.cancelled {
		s.mu.Unlock()
		return nil
	}
	s.cancelled = true
	c := s.cap
	s.cap = nil
	cancel := s.cancel
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if c != nil {
		return c.Close()
	}
	return nil
}
