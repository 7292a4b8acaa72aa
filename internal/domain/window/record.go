package window

import (
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/chungquantin/chaseOS/internal/shared/types"
)

const (
	MinWidth  = 400
	MinHeight = 300

	// InitialZ is the first z value handed out by a fresh manager.
	InitialZ = 1000
	// MaximizedZ is the render z of a maximized window.
	MaximizedZ = 9999

	SpawnStep        = 30
	SpawnProximity   = 50
	MaxSpawnAttempts = 20
)

// Record is one open window.
type Record struct {
	ID          string
	Content     Content
	Position    types.Position
	Size        types.Size
	ZIndex      int
	IsMinimized bool
	StartTime   time.Time
	// Restore holds the frame to return to while the window is maximized.
	Restore *types.Frame

	// stackTop is the manager's next z when this copy was taken.
	stackTop int
}

// IsMaximized reports whether the window currently fills the viewport.
func (r Record) IsMaximized() bool {
	return r.Restore != nil
}

// RenderZ is the stacking value a renderer should use. A maximized window
// renders at MaximizedZ, or above every handed out z once the counter has
// passed it.
func (r Record) RenderZ() int {
	if !r.IsMaximized() {
		return r.ZIndex
	}
	if r.stackTop <= MaximizedZ {
		return MaximizedZ
	}
	return r.stackTop + r.ZIndex
}

// Frame returns the record's current placement.
func (r Record) Frame() types.Frame {
	return types.Frame{Position: r.Position, Size: r.Size}
}

func (r Record) clone() Record {
	if r.Restore != nil {
		f := *r.Restore
		r.Restore = &f
	}
	return r
}

type recordJSON struct {
	ID          string         `json:"id"`
	Content     contentJSON    `json:"content"`
	Position    types.Position `json:"position"`
	Size        types.Size     `json:"size"`
	ZIndex      int            `json:"zIndex"`
	IsMinimized bool           `json:"isMinimized"`
	StartTime   time.Time      `json:"startTime"`
	Restore     *types.Frame   `json:"restore,omitempty"`
	Maximized   bool           `json:"isMaximized"`
	RenderZ     int            `json:"renderZ"`
}

// MarshalJSON encodes the record with its content in tagged form.
func (r Record) MarshalJSON() ([]byte, error) {
	cj, err := encodeContent(r.Content)
	if err != nil {
		return nil, fmt.Errorf("record %s: %w", r.ID, err)
	}
	return sonic.Marshal(recordJSON{
		ID:          r.ID,
		Content:     cj,
		Position:    r.Position,
		Size:        r.Size,
		ZIndex:      r.ZIndex,
		IsMinimized: r.IsMinimized,
		StartTime:   r.StartTime,
		Restore:     r.Restore,
		Maximized:   r.IsMaximized(),
		RenderZ:     r.RenderZ(),
	})
}

// UnmarshalJSON decodes a record. Derived fields are ignored.
func (r *Record) UnmarshalJSON(data []byte) error {
	var rj recordJSON
	if err := sonic.Unmarshal(data, &rj); err != nil {
		return err
	}
	content, err := rj.Content.decode()
	if err != nil {
		return fmt.Errorf("record %s: %w", rj.ID, err)
	}
	*r = Record{
		ID:          rj.ID,
		Content:     content,
		Position:    rj.Position,
		Size:        rj.Size,
		ZIndex:      rj.ZIndex,
		IsMinimized: rj.IsMinimized,
		StartTime:   rj.StartTime,
		Restore:     rj.Restore,
	}
	return nil
}
