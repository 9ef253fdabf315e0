// Package grid implements the interactive placement engine behind the
// configurator: drag and resize gestures over a 12-column grid, overlap
// resolution, and debounced "layout changed" notifications.
//
// # Gestures
//
// An [Engine] is a small state machine:
//
//	Idle --BeginDrag--> Dragging --DragTo*--> Dragging --EndDrag--> Idle
//	Idle --BeginResize--> Resizing --ResizeTo*--> Resizing --EndResize--> Idle
//
// Every step that changes geometry restarts the debounce timer. Once no
// step has arrived for the debounce interval the full node set is handed
// to the onChange callback exactly once.
//
// # Collisions
//
// Placement is floating: nodes never drift up to fill vacated space. When
// a step makes the active node overlap others, each overlapped node is
// pushed straight down to just below the node that hit it, and pushes
// cascade. Nodes are never deleted or resized by a collision.
//
// Rows are a soft bound. A node may sit below the visible rows, but no
// push may move a node past rows+overflow. A step that would need to is
// rejected with COLLISION_UNRESOLVABLE and the grid is left as it was
// before the step.
package grid

import (
	"io"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/signboard/pkg/errors"
)

const (
	// DefaultColumns is the grid width.
	DefaultColumns = 12

	// DefaultOverflowRows is how far below the visible rows a push may
	// move a node.
	DefaultOverflowRows = 4
)

// Node is one placed item as the engine sees it. Size bounds of zero mean
// "at least 1" for minimums and unbounded for maximums.
type Node struct {
	ID   string
	X, Y int
	W, H int

	MinW, MinH int
	MaxW, MaxH int
}

func (n Node) overlaps(o Node) bool {
	return n.X < o.X+o.W && o.X < n.X+n.W &&
		n.Y < o.Y+o.H && o.Y < n.Y+n.H
}

func (n Node) clampSize(w, h, columns int) (int, int) {
	w = clampInt(w, max(n.MinW, 1), upper(n.MaxW, w))
	h = clampInt(h, max(n.MinH, 1), upper(n.MaxH, h))
	if w > columns-n.X {
		w = max(columns-n.X, 1)
	}
	return w, h
}

// State is the gesture state of an Engine.
type State int

const (
	Idle State = iota
	Dragging
	Resizing
)

func (s State) String() string {
	switch s {
	case Dragging:
		return "dragging"
	case Resizing:
		return "resizing"
	default:
		return "idle"
	}
}

// Option configures an Engine.
type Option func(*Engine)

// WithColumns overrides the grid width.
func WithColumns(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.columns = n
		}
	}
}

// WithOverflowRows sets the row allowance below the visible rows.
func WithOverflowRows(n int) Option {
	return func(e *Engine) {
		if n >= 0 {
			e.overflow = n
		}
	}
}

// WithDebounce sets the quiet period before a change is emitted.
func WithDebounce(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.delay = d
		}
	}
}

// WithLogger sets the logger used for rejected steps.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// Engine owns the authoritative node set for one configurator session.
type Engine struct {
	mu       sync.Mutex
	nodes    []Node
	columns  int
	rows     int
	overflow int
	delay    time.Duration
	logger   *log.Logger

	state  State
	active string
	before []Node // node set at gesture start
	closed bool

	onChange func([]Node)
	debounce *Debouncer
}

// New creates an engine over a copy of nodes with rows visible rows.
// onChange receives the full node set after each quiet period; it may be nil.
func New(nodes []Node, rows int, onChange func([]Node), opts ...Option) *Engine {
	e := &Engine{
		nodes:    slices.Clone(nodes),
		columns:  DefaultColumns,
		rows:     rows,
		overflow: DefaultOverflowRows,
		delay:    DefaultDebounce,
		logger:   log.New(io.Discard),
		onChange: onChange,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.debounce = NewDebouncer(e.delay, e.emit)
	return e
}

func (e *Engine) emit() {
	e.mu.Lock()
	fn := e.onChange
	nodes := slices.Clone(e.nodes)
	e.mu.Unlock()
	if fn != nil {
		fn(nodes)
	}
}

// MaxRow is the row limit no node may extend past.
func (e *Engine) MaxRow() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.maxRow()
}

func (e *Engine) maxRow() int {
	return e.rows + e.overflow
}

// Rows returns the visible row count.
func (e *Engine) Rows() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rows
}

// SetRows changes the visible row count. Nodes are not moved.
func (e *Engine) SetRows(rows int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rows = rows
}

// State returns the current gesture state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Active returns the id of the node under the current gesture.
func (e *Engine) Active() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.active
}

// CurrentLayout returns the authoritative node set. It does not wait for
// or affect the pending emission.
func (e *Engine) CurrentLayout() []Node {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Clone(e.nodes)
}

// Node returns the node with id.
func (e *Engine) Node(id string) (Node, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if i := e.find(id); i >= 0 {
		return e.nodes[i], true
	}
	return Node{}, false
}

// Pending reports whether an emission is waiting for its quiet period.
func (e *Engine) Pending() bool {
	return e.debounce.Pending()
}

// Flush emits a pending change immediately.
func (e *Engine) Flush() {
	e.debounce.Flush()
}

// Close drops any pending emission and rejects further gestures.
// It is safe to call more than once.
func (e *Engine) Close() {
	e.mu.Lock()
	e.closed = true
	e.onChange = nil
	e.state = Idle
	e.active = ""
	e.before = nil
	e.mu.Unlock()
	e.debounce.Cancel()
}

// =============================================================================
// Gestures
// =============================================================================

// BeginDrag starts moving node id.
func (e *Engine) BeginDrag(id string) error {
	return e.begin(id, Dragging)
}

// DragTo moves the dragged node's top-left corner to x, y.
// x is clamped into the columns and y to [0, MaxRow-h].
func (e *Engine) DragTo(x, y int) error {
	return e.step(Dragging, func(n *Node) {
		n.X = clampInt(x, 0, max(e.columns-n.W, 0))
		n.Y = clampInt(y, 0, max(e.maxRow()-n.H, 0))
	})
}

// EndDrag finishes the drag gesture.
func (e *Engine) EndDrag() error {
	return e.end(Dragging)
}

// BeginResize starts resizing node id.
func (e *Engine) BeginResize(id string) error {
	return e.begin(id, Resizing)
}

// ResizeTo sets the resized node's size, clamped to its bounds, the grid
// width and MaxRow.
func (e *Engine) ResizeTo(w, h int) error {
	return e.step(Resizing, func(n *Node) {
		n.W, n.H = n.clampSize(w, h, e.columns)
		if n.Y+n.H > e.maxRow() {
			n.H = max(e.maxRow()-n.Y, max(n.MinH, 1))
		}
	})
}

// EndResize finishes the resize gesture.
func (e *Engine) EndResize() error {
	return e.end(Resizing)
}

// Abort ends the current gesture and restores the node set from before it
// began.
func (e *Engine) Abort() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == Idle {
		return
	}
	changed := !slices.Equal(e.nodes, e.before)
	e.nodes = e.before
	e.state, e.active, e.before = Idle, "", nil
	if changed {
		e.debounce.Call()
	}
}

// Move runs a complete drag gesture for node id.
func (e *Engine) Move(id string, x, y int) error {
	if err := e.BeginDrag(id); err != nil {
		return err
	}
	err := e.DragTo(x, y)
	if endErr := e.EndDrag(); err == nil {
		err = endErr
	}
	return err
}

// Resize runs a complete resize gesture for node id.
func (e *Engine) Resize(id string, w, h int) error {
	if err := e.BeginResize(id); err != nil {
		return err
	}
	err := e.ResizeTo(w, h)
	if endErr := e.EndResize(); err == nil {
		err = endErr
	}
	return err
}

func (e *Engine) begin(id string, s State) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return errors.New(errors.ErrCodeInvalidInput, "grid engine closed")
	}
	if e.state != Idle {
		return errors.New(errors.ErrCodeInvalidInput, "cannot start %s while %s", s, e.state)
	}
	if e.find(id) < 0 {
		return errors.New(errors.ErrCodeNotFound, "no node %q", id)
	}
	e.state, e.active = s, id
	e.before = slices.Clone(e.nodes)
	return nil
}

func (e *Engine) end(s State) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != s {
		return errors.New(errors.ErrCodeInvalidInput, "not %s", s)
	}
	e.state, e.active, e.before = Idle, "", nil
	return nil
}

// step applies mutate to the active node and resolves collisions. On
// failure the node set is restored to its state before the step.
func (e *Engine) step(s State, mutate func(*Node)) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != s {
		return errors.New(errors.ErrCodeInvalidInput, "not %s", s)
	}
	i := e.find(e.active)
	if i < 0 {
		return errors.New(errors.ErrCodeNotFound, "no node %q", e.active)
	}

	prev := slices.Clone(e.nodes)
	mutate(&e.nodes[i])
	if e.nodes[i] == prev[i] {
		return nil
	}
	if err := e.resolve(i); err != nil {
		e.nodes = prev
		e.logger.Warn("layout step rejected", "node", e.active, "state", s, "err", err)
		return err
	}
	if !slices.Equal(e.nodes, prev) {
		e.debounce.Call()
	}
	return nil
}

// =============================================================================
// Node set edits
// =============================================================================

// Add places n and pushes anything it overlaps downward. It fails if the
// id is taken or the push cannot be resolved.
func (e *Engine) Add(n Node) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return errors.New(errors.ErrCodeInvalidInput, "grid engine closed")
	}
	if e.find(n.ID) >= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "node %q already placed", n.ID)
	}
	n.X = clampInt(n.X, 0, e.columns-1)
	n.W, n.H = max(n.W, 1), max(n.H, 1)
	n.Y = max(n.Y, 0)
	n.W, n.H = n.clampSize(n.W, n.H, e.columns)

	prev := slices.Clone(e.nodes)
	e.nodes = append(e.nodes, n)
	if err := e.resolve(len(e.nodes) - 1); err != nil {
		e.nodes = prev
		e.logger.Warn("add rejected", "node", n.ID, "err", err)
		return err
	}
	e.debounce.Call()
	return nil
}

// Remove deletes node id. Remaining nodes keep their positions.
func (e *Engine) Remove(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	i := e.find(id)
	if i < 0 {
		return
	}
	if e.active == id {
		e.state, e.active, e.before = Idle, "", nil
	}
	e.nodes = slices.Delete(e.nodes, i, i+1)
	e.debounce.Call()
}

// FirstFit returns the first cell, scanning rows top to bottom, where a
// w×h node fits without overlapping anything. ok is false if none exists
// above MaxRow.
func (e *Engine) FirstFit(w, h int) (x, y int, ok bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	w = clampInt(w, 1, e.columns)
	h = max(h, 1)
	for row := 0; row+h <= e.maxRow(); row++ {
		for col := 0; col+w <= e.columns; col++ {
			probe := Node{X: col, Y: row, W: w, H: h}
			if !slices.ContainsFunc(e.nodes, probe.overlaps) {
				return col, row, true
			}
		}
	}
	return 0, 0, false
}

// resolve pushes every node overlapping nodes[moved] downward, cascading,
// until no pushed node overlaps another. The node at moved never moves.
func (e *Engine) resolve(moved int) error {
	maxRow := e.maxRow()
	queue := []int{moved}
	for steps := 0; len(queue) > 0; steps++ {
		if steps > len(e.nodes)*maxRow+1 {
			return errors.New(errors.ErrCodeCollisionUnresolvable, "collision resolution did not settle")
		}
		i := queue[0]
		queue = queue[1:]
		pusher := e.nodes[i]
		for j := range e.nodes {
			if j == i || j == moved || !pusher.overlaps(e.nodes[j]) {
				continue
			}
			e.nodes[j].Y = pusher.Y + pusher.H
			if e.nodes[j].Y+e.nodes[j].H > maxRow {
				return errors.New(errors.ErrCodeCollisionUnresolvable,
					"pushing %q to row %d exceeds row limit %d", e.nodes[j].ID, e.nodes[j].Y, maxRow)
			}
			queue = append(queue, j)
		}
	}
	return nil
}

func (e *Engine) find(id string) int {
	return slices.IndexFunc(e.nodes, func(n Node) bool { return n.ID == id })
}

// clampInt clamps v to [lo, hi], lo winning over hi.
func clampInt(v, lo, hi int) int {
	if v > hi {
		v = hi
	}
	if v < lo {
		v = lo
	}
	return v
}

// upper returns bound, or v when bound is zero (unbounded).
func upper(bound, v int) int {
	if bound <= 0 {
		return v
	}
	return bound
}
