package interaction

import (
	"fmt"
	"strings"
	"sync"

	"github.com/chungquantin/chaseOS/internal/domain/window"
	"github.com/chungquantin/chaseOS/internal/shared/types"
)

// Phase is the gesture state of one window.
type Phase int

const (
	Idle Phase = iota
	Dragging
	Resizing
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Dragging:
		return "dragging"
	case Resizing:
		return "resizing"
	default:
		return "unknown"
	}
}

// Target is the part of a window a pointer-down landed on.
type Target string

const (
	TargetHeader  Target = "header"
	TargetControl Target = "control"
	TargetResize  Target = "resize"
)

// Direction is a resize handle: an edge or a corner.
type Direction string

const (
	North     Direction = "n"
	South     Direction = "s"
	East      Direction = "e"
	West      Direction = "w"
	NorthEast Direction = "ne"
	NorthWest Direction = "nw"
	SouthEast Direction = "se"
	SouthWest Direction = "sw"
)

// ParseDirection validates a handle name.
func ParseDirection(s string) (Direction, error) {
	switch d := Direction(strings.ToLower(s)); d {
	case North, South, East, West, NorthEast, NorthWest, SouthEast, SouthWest:
		return d, nil
	}
	return "", fmt.Errorf("unknown resize direction %q", s)
}

// ParseTarget validates a pointer-down target.
func ParseTarget(s string) (Target, error) {
	switch t := Target(strings.ToLower(s)); t {
	case TargetHeader, TargetControl, TargetResize:
		return t, nil
	}
	return "", fmt.Errorf("unknown pointer target %q", s)
}

func (d Direction) has(edge byte) bool {
	return strings.IndexByte(string(d), edge) >= 0
}

// Proposal is the geometry a pointer move asks the window manager to apply.
type Proposal struct {
	Phase Phase
	Frame types.Frame
}

type gesture struct {
	phase   Phase
	dir     Direction
	offset  types.Position
	pointer types.Position
	start   types.Frame
}

// Controller tracks drag and resize gestures per window. A window is in at
// most one gesture at a time.
type Controller struct {
	mu       sync.Mutex
	gestures map[string]*gesture
}

// NewController creates a controller with every window idle.
func NewController() *Controller {
	return &Controller{gestures: make(map[string]*gesture)}
}

// PointerDown starts a drag from the header or a resize from a handle.
// Control buttons and windows already in a gesture are ignored.
func (c *Controller) PointerDown(id string, target Target, dir Direction, p types.Position, frame types.Frame) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, busy := c.gestures[id]; busy {
		return false
	}

	switch target {
	case TargetHeader:
		c.gestures[id] = &gesture{
			phase:  Dragging,
			offset: p.Sub(frame.Position),
			start:  frame,
		}
		return true
	case TargetResize:
		if _, err := ParseDirection(string(dir)); err != nil {
			return false
		}
		c.gestures[id] = &gesture{
			phase:   Resizing,
			dir:     dir,
			pointer: p,
			start:   frame,
		}
		return true
	default:
		return false
	}
}

// PointerMove computes the geometry for the window's active gesture.
func (c *Controller) PointerMove(id string, p types.Position, vp types.Viewport) (Proposal, bool) {
	c.mu.Lock()
	g, ok := c.gestures[id]
	c.mu.Unlock()
	if !ok {
		return Proposal{}, false
	}

	switch g.phase {
	case Dragging:
		return Proposal{Phase: Dragging, Frame: g.drag(p, vp)}, true
	case Resizing:
		return Proposal{Phase: Resizing, Frame: g.resize(p)}, true
	default:
		return Proposal{}, false
	}
}

// drag places the window under the pointer at the captured offset, fully
// inside the viewport.
func (g *gesture) drag(p types.Position, vp types.Viewport) types.Frame {
	pos := p.Sub(g.offset)
	if vp.Valid() {
		pos = window.ClampToViewport(pos, g.start.Size, vp)
	}
	return types.Frame{Position: pos, Size: g.start.Size}
}

// resize grows far edges by the pointer delta and near edges by its
// negation. Near-edge resizes move the origin so the opposite edge stays
// put, including once the minimum size is reached.
func (g *gesture) resize(p types.Position) types.Frame {
	delta := p.Sub(g.pointer)
	f := g.start

	switch {
	case g.dir.has('e'):
		f.Size.Width = max(window.MinWidth, g.start.Size.Width+delta.X)
	case g.dir.has('w'):
		f.Size.Width = max(window.MinWidth, g.start.Size.Width-delta.X)
		f.Position.X = g.start.Position.X + g.start.Size.Width - f.Size.Width
	}

	switch {
	case g.dir.has('s'):
		f.Size.Height = max(window.MinHeight, g.start.Size.Height+delta.Y)
	case g.dir.has('n'):
		f.Size.Height = max(window.MinHeight, g.start.Size.Height-delta.Y)
		f.Position.Y = g.start.Position.Y + g.start.Size.Height - f.Size.Height
	}

	return f
}

// PointerUp ends the window's gesture and reports which one ended.
func (c *Controller) PointerUp(id string) Phase {
	c.mu.Lock()
	defer c.mu.Unlock()

	g, ok := c.gestures[id]
	if !ok {
		return Idle
	}
	delete(c.gestures, id)
	return g.phase
}

// Release ends every gesture, as a pointer-up anywhere in the document does.
// It returns the ids whose gesture ended.
func (c *Controller) Release() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	ids := make([]string, 0, len(c.gestures))
	for id := range c.gestures {
		ids = append(ids, id)
	}
	clear(c.gestures)
	return ids
}

// Phase returns the window's current gesture state.
func (c *Controller) Phase(id string) Phase {
	c.mu.Lock()
	defer c.mu.Unlock()

	if g, ok := c.gestures[id]; ok {
		return g.phase
	}
	return Idle
}

// Forget drops any gesture for a window that was closed mid-gesture.
func (c *Controller) Forget(id string) {
	c.mu.Lock()
	delete(c.gestures, id)
	c.mu.Unlock()
}
