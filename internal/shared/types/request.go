package types

// OpenWindowRequest opens a blog, company or finder window.
type OpenWindowRequest struct {
	Kind       string    `json:"kind" binding:"required,oneof=blog company finder"`
	Slug       string    `json:"slug,omitempty"`
	CompanyID  string    `json:"companyId,omitempty"`
	FinderType string    `json:"finderType,omitempty"`
	Position   *Position `json:"position,omitempty"`
	Size       *Size     `json:"size,omitempty"`
}

// PositionRequest repositions a window directly.
type PositionRequest struct {
	Position Position `json:"position"`
}

// SizeRequest resizes a window directly.
type SizeRequest struct {
	Size Size `json:"size"`
}

// MaximizeRequest toggles maximize against the client's viewport.
type MaximizeRequest struct {
	Viewport *Viewport `json:"viewport,omitempty"`
}

// PointerRequest carries one pointer event for the drag/resize controller.
type PointerRequest struct {
	Type      string    `json:"type" binding:"required,oneof=down move up"`
	X         int       `json:"x"`
	Y         int       `json:"y"`
	Target    string    `json:"target,omitempty"`
	Direction string    `json:"direction,omitempty"`
	Viewport  *Viewport `json:"viewport,omitempty"`
}

// WSMessage is the WebSocket envelope for both directions.
type WSMessage struct {
	Type     string             `json:"type"`
	WindowID string             `json:"windowId,omitempty"`
	Panel    string             `json:"panel,omitempty"`
	Open     *OpenWindowRequest `json:"open,omitempty"`
	Pointer  *PointerRequest    `json:"pointer,omitempty"`
	Position *Position          `json:"position,omitempty"`
	Size     *Size              `json:"size,omitempty"`
	Viewport *Viewport          `json:"viewport,omitempty"`
	Message  string             `json:"message,omitempty"`
}
