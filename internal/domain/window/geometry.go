package window

import "github.com/chungquantin/chaseOS/internal/shared/types"

// ClampSize floors a size at the minimum window dimensions.
func ClampSize(s types.Size) types.Size {
	return types.Size{
		Width:  max(s.Width, MinWidth),
		Height: max(s.Height, MinHeight),
	}
}

// ClampToViewport keeps a window of the given size fully inside the
// viewport. When the window is larger than the viewport the origin wins.
func ClampToViewport(p types.Position, s types.Size, vp types.Viewport) types.Position {
	return types.Position{
		X: max(0, min(p.X, vp.Width-s.Width)),
		Y: max(0, min(p.Y, vp.Height-s.Height)),
	}
}

// near reports whether origin a lies inside the SpawnProximity-sided square
// centred on b.
func near(a, b types.Position) bool {
	return 2*abs(a.X-b.X) < SpawnProximity && 2*abs(a.Y-b.Y) < SpawnProximity
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
