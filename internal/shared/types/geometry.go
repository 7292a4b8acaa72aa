package types

// Position is a pixel offset from the viewport's top-left corner.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Size represents window dimensions in pixels.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Viewport is the client's visible desktop area.
type Viewport struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Valid reports whether both dimensions are positive.
func (v Viewport) Valid() bool {
	return v.Width > 0 && v.Height > 0
}

// Frame pairs a position with a size.
type Frame struct {
	Position Position `json:"position"`
	Size     Size     `json:"size"`
}

// Add returns p shifted by d in both axes.
func (p Position) Add(d int) Position {
	return Position{X: p.X + d, Y: p.Y + d}
}

// Sub returns the component-wise difference p - q.
func (p Position) Sub(q Position) Position {
	return Position{X: p.X - q.X, Y: p.Y - q.Y}
}
