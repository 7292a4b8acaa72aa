package http

import (
	"fmt"
	"net/http"

	"github.com/chungquantin/chaseOS/internal/domain/desktop"
	"github.com/chungquantin/chaseOS/internal/domain/taskbar"
	"github.com/chungquantin/chaseOS/internal/shared/types"
	"github.com/chungquantin/chaseOS/internal/shared/utils"
	"github.com/gin-gonic/gin"
)

// ChangeResponse reports whether a command changed the desktop, together
// with the resulting state.
type ChangeResponse struct {
	Changed  bool             `json:"changed"`
	WindowID string           `json:"windowId,omitempty"`
	Snapshot desktop.Snapshot `json:"snapshot"`
}

// GetDesktop returns the bound desktop's snapshot.
func (h *Handlers) GetDesktop(c *gin.Context) {
	h.respondCached(c, h.desktop(c).Snapshot())
}

// ListProcesses returns the activity monitor rows.
func (h *Handlers) ListProcesses(c *gin.Context) {
	q := c.Query("q")
	if err := utils.ValidateQuery(q); err != nil {
		badRequest(c, err)
		return
	}

	query := taskbar.ParseQuery(c.Query("sort"), c.Query("order"), q)
	c.JSON(http.StatusOK, gin.H{"processes": h.desktop(c).Processes(query)})
}

// OpenWindow opens or focuses a content window.
func (h *Handlers) OpenWindow(c *gin.Context) {
	var req types.OpenWindowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	d := h.desktop(c)
	res, err := d.Open(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}

	status := http.StatusOK
	if res.Created {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{
		"window":      res.Record,
		"created":     res.Created,
		"overlapping": res.Overlapping,
		"snapshot":    d.Snapshot(),
	})
}

// windowOp runs a command on the window named by the :id parameter.
func (h *Handlers) windowOp(op func(d *desktop.Desktop, id string) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		if err := utils.ValidateID(id, "window_id"); err != nil {
			badRequest(c, err)
			return
		}
		d := h.desktop(c)
		changed := op(d, id)
		c.JSON(http.StatusOK, ChangeResponse{Changed: changed, WindowID: id, Snapshot: d.Snapshot()})
	}
}

// CloseWindow removes a window.
func (h *Handlers) CloseWindow(c *gin.Context) {
	h.windowOp((*desktop.Desktop).Close)(c)
}

// FocusWindow brings a window to the front.
func (h *Handlers) FocusWindow(c *gin.Context) {
	h.windowOp((*desktop.Desktop).Focus)(c)
}

// MinimizeWindow hides a window.
func (h *Handlers) MinimizeWindow(c *gin.Context) {
	h.windowOp((*desktop.Desktop).Minimize)(c)
}

// RestoreWindow unhides a window.
func (h *Handlers) RestoreWindow(c *gin.Context) {
	h.windowOp((*desktop.Desktop).Restore)(c)
}

// TaskbarClick restores a minimized window or focuses any other.
func (h *Handlers) TaskbarClick(c *gin.Context) {
	h.windowOp((*desktop.Desktop).TaskbarClick)(c)
}

// MaximizeWindow toggles maximize against the client's viewport.
func (h *Handlers) MaximizeWindow(c *gin.Context) {
	id := c.Param("id")
	if err := utils.ValidateID(id, "window_id"); err != nil {
		badRequest(c, err)
		return
	}
	var req types.MaximizeRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
	}

	d := h.desktop(c)
	maximized, changed := d.ToggleMaximize(id, req.Viewport)
	c.JSON(http.StatusOK, gin.H{
		"changed":   changed,
		"windowId":  id,
		"maximized": maximized,
		"snapshot":  d.Snapshot(),
	})
}

// MoveWindow sets a window's position.
func (h *Handlers) MoveWindow(c *gin.Context) {
	var req types.PositionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	h.windowOp(func(d *desktop.Desktop, id string) bool {
		return d.MoveTo(id, req.Position)
	})(c)
}

// ResizeWindow sets a window's size. The minimum size still applies.
func (h *Handlers) ResizeWindow(c *gin.Context) {
	var req types.SizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	h.windowOp(func(d *desktop.Desktop, id string) bool {
		return d.ResizeTo(id, req.Size)
	})(c)
}

// PointerEvent feeds a pointer event to the drag/resize controller.
func (h *Handlers) PointerEvent(c *gin.Context) {
	id := c.Param("id")
	if err := utils.ValidateID(id, "window_id"); err != nil {
		badRequest(c, err)
		return
	}
	var req types.PointerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	d := h.desktop(c)
	changed, err := d.Pointer(id, req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, ChangeResponse{Changed: changed, WindowID: id, Snapshot: d.Snapshot()})
}

// ReleasePointer ends every gesture, as a pointer-up outside any window.
func (h *Handlers) ReleasePointer(c *gin.Context) {
	d := h.desktop(c)
	released := d.ReleasePointer()
	c.JSON(http.StatusOK, gin.H{"released": released})
}

// PanelAction opens, closes or focuses a system panel.
func (h *Handlers) PanelAction(c *gin.Context) {
	name, err := desktop.ParsePanel(c.Param("panel"))
	if err != nil {
		h.fail(c, err)
		return
	}

	d := h.desktop(c)
	var changed bool
	switch action := c.Param("action"); action {
	case "open":
		changed, err = d.OpenPanel(name)
	case "close":
		changed, err = d.ClosePanel(name)
	case "focus":
		changed, err = d.FocusPanel(name)
	default:
		badRequest(c, fmt.Errorf("unknown panel action %q", action))
		return
	}
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, ChangeResponse{Changed: changed, Snapshot: d.Snapshot()})
}

// Shortcut handles a document-level keyboard shortcut.
func (h *Handlers) Shortcut(c *gin.Context) {
	d := h.desktop(c)
	if err := d.Shortcut(c.Request.Context(), c.Param("name")); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, ChangeResponse{Changed: true, Snapshot: d.Snapshot()})
}
