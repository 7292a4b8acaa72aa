package desktop

import (
	"context"
	"fmt"

	"github.com/chungquantin/chaseOS/internal/domain/interaction"
	"github.com/chungquantin/chaseOS/internal/domain/window"
	"github.com/chungquantin/chaseOS/internal/shared/types"
	"go.uber.org/zap"
)

// Default placement per content kind.
var defaultFrames = map[window.Kind]types.Frame{
	window.KindBlog:    {Position: types.Position{X: 100, Y: 100}, Size: types.Size{Width: 800, Height: 600}},
	window.KindCompany: {Position: types.Position{X: 200, Y: 200}, Size: types.Size{Width: 700, Height: 500}},
	window.KindFinder:  {Position: types.Position{X: 200, Y: 200}, Size: types.Size{Width: 800, Height: 600}},
}

// DefaultFrame returns the spawn base and size for a content kind.
func DefaultFrame(kind window.Kind) types.Frame {
	return defaultFrames[kind]
}

// Shortcuts handled at the document level.
const (
	ShortcutSearch = "search"
	ShortcutReset  = "reset"
)

// Open resolves the requested content and opens or focuses its window.
// A window that is already open is focused without resolving its content
// again.
func (d *Desktop) Open(ctx context.Context, req types.OpenWindowRequest) (window.OpenResult, error) {
	if res, ok := d.focusExisting(req); ok {
		return res, nil
	}

	content, err := d.resolve(ctx, req)
	if err != nil {
		return window.OpenResult{}, err
	}

	frame := DefaultFrame(content.Kind())
	if req.Position != nil {
		frame.Position = *req.Position
	}
	if req.Size != nil {
		frame.Size = *req.Size
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	res, err := d.windows.Open(content, frame.Size, frame.Position)
	if err != nil {
		return window.OpenResult{}, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	if res.Overlapping {
		d.logger.Debug("window opened over another", zap.String("window_id", res.Record.ID))
	}

	d.persistLocked()
	d.changedLocked()
	return res, nil
}

func (d *Desktop) focusExisting(req types.OpenWindowRequest) (window.OpenResult, bool) {
	var key string
	switch window.Kind(req.Kind) {
	case window.KindBlog:
		key = req.Slug
	case window.KindCompany:
		key = req.CompanyID
	case window.KindFinder:
		key = req.FinderType
	}
	if key == "" {
		return window.OpenResult{}, false
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	rec, ok := d.windows.Get(req.Kind + "-" + key)
	if !ok {
		return window.OpenResult{}, false
	}
	res, err := d.windows.Open(rec.Content, rec.Size, rec.Position)
	if err != nil {
		return window.OpenResult{}, false
	}
	d.persistLocked()
	d.changedLocked()
	return res, true
}

func (d *Desktop) resolve(ctx context.Context, req types.OpenWindowRequest) (window.Content, error) {
	switch window.Kind(req.Kind) {
	case window.KindBlog:
		if req.Slug == "" {
			return nil, fmt.Errorf("%w: blog needs a slug", ErrInvalidRequest)
		}
		post, err := d.resolver.Post(ctx, req.Slug)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrUnknownContent, err)
		}
		return window.Blog{Post: post}, nil
	case window.KindCompany:
		if req.CompanyID == "" {
			return nil, fmt.Errorf("%w: company needs an id", ErrInvalidRequest)
		}
		if _, ok := d.resolver.CompanyName(req.CompanyID); !ok {
			return nil, fmt.Errorf("%w: company %q", ErrUnknownContent, req.CompanyID)
		}
		return window.Company{CompanyID: req.CompanyID}, nil
	case window.KindFinder:
		// Unknown categories still open; they list as empty.
		if req.FinderType == "" {
			return nil, fmt.Errorf("%w: finder needs a type", ErrInvalidRequest)
		}
		return window.Finder{FinderType: req.FinderType}, nil
	default:
		return nil, fmt.Errorf("%w: unknown kind %q", ErrInvalidRequest, req.Kind)
	}
}

// Close removes a window and any gesture on it.
func (d *Desktop) Close(id string) bool {
	return d.mutate(func() bool {
		d.gestures.Forget(id)
		return d.windows.Close(id)
	})
}

// Focus brings a window to the front.
func (d *Desktop) Focus(id string) bool {
	return d.mutate(func() bool { return d.windows.Focus(id) })
}

// Minimize hides a window, ending any gesture on it.
func (d *Desktop) Minimize(id string) bool {
	return d.mutate(func() bool {
		d.gestures.Forget(id)
		return d.windows.Minimize(id)
	})
}

// Restore unhides a window and brings it to the front.
func (d *Desktop) Restore(id string) bool {
	return d.mutate(func() bool { return d.windows.Restore(id) })
}

// ToggleMaximize maximizes against vp, or the default viewport when vp is
// nil, or restores the remembered frame.
func (d *Desktop) ToggleMaximize(id string, vp *types.Viewport) (maximized bool, ok bool) {
	ok = d.mutate(func() bool {
		var applied bool
		maximized, applied = d.windows.ToggleMaximize(id, d.viewport(vp))
		return applied
	})
	return maximized, ok
}

// MoveTo sets a window's position directly.
func (d *Desktop) MoveTo(id string, pos types.Position) bool {
	return d.mutate(func() bool { return d.windows.UpdatePosition(id, pos) })
}

// ResizeTo sets a window's size directly. The minimum size still applies.
func (d *Desktop) ResizeTo(id string, size types.Size) bool {
	return d.mutate(func() bool { return d.windows.UpdateSize(id, size) })
}

// TaskbarClick restores a minimized window and focuses any other.
func (d *Desktop) TaskbarClick(id string) bool {
	return d.mutate(func() bool {
		rec, ok := d.windows.Get(id)
		if !ok {
			return false
		}
		if rec.IsMinimized {
			return d.windows.Restore(id)
		}
		return d.windows.Focus(id)
	})
}

// mutate runs a discrete change and persists it immediately.
func (d *Desktop) mutate(fn func() bool) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !fn() {
		return false
	}
	d.persistLocked()
	d.changedLocked()
	return true
}

// Pointer feeds one pointer event to the interaction controller. Pointer
// down on a header or handle also focuses the window. Moves are applied at
// once and persisted through the debouncer.
func (d *Desktop) Pointer(id string, ev types.PointerRequest) (bool, error) {
	p := types.Position{X: ev.X, Y: ev.Y}

	switch ev.Type {
	case "down":
		target, err := interaction.ParseTarget(ev.Target)
		if err != nil {
			return false, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
		}
		var dir interaction.Direction
		if target == interaction.TargetResize {
			if dir, err = interaction.ParseDirection(ev.Direction); err != nil {
				return false, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
			}
		}
		return d.mutate(func() bool {
			rec, ok := d.windows.Get(id)
			if !ok || rec.IsMinimized {
				return false
			}
			if !d.gestures.PointerDown(id, target, dir, p, rec.Frame()) {
				return false
			}
			d.windows.Focus(id)
			return true
		}), nil

	case "move":
		d.mu.Lock()
		defer d.mu.Unlock()

		prop, ok := d.gestures.PointerMove(id, p, d.viewport(ev.Viewport))
		if !ok {
			return false, nil
		}
		if !d.windows.UpdateFrame(id, prop.Frame) {
			d.gestures.Forget(id)
			return false, nil
		}
		d.opts.Metrics.RecordGesture(prop.Phase.String())
		d.scheduleLayoutLocked()
		d.changedLocked()
		return true, nil

	case "up":
		d.mu.Lock()
		defer d.mu.Unlock()

		return d.gestures.PointerUp(id) != interaction.Idle, nil

	default:
		return false, fmt.Errorf("%w: unknown pointer event %q", ErrInvalidRequest, ev.Type)
	}
}

// ReleasePointer ends every gesture, as a pointer-up outside any window
// does.
func (d *Desktop) ReleasePointer() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	return len(d.gestures.Release())
}

// Shortcut handles a document-level keyboard shortcut: "search" toggles
// the command palette and "reset" clears every persisted key and closes
// everything.
func (d *Desktop) Shortcut(ctx context.Context, name string) error {
	switch name {
	case ShortcutSearch:
		d.mu.Lock()
		defer d.mu.Unlock()

		d.searchOpen = !d.searchOpen
		d.changedLocked()
		return nil

	case ShortcutReset:
		d.mu.Lock()
		defer d.mu.Unlock()

		d.saver.Cancel()
		d.dirty = false
		d.gestures.Release()
		d.windows.Reset()
		d.panels = newPanels()
		d.searchOpen = false
		d.store.Clear(ctx, d.id)

		d.logger.Info("desktop reset")
		d.changedLocked()
		return nil

	default:
		return fmt.Errorf("%w: %q", ErrUnknownShortcut, name)
	}
}
