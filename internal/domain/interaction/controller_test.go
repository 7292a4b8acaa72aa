package interaction

import (
	"math/rand"
	"testing"

	"github.com/chungquantin/chaseOS/internal/domain/window"
	"github.com/chungquantin/chaseOS/internal/shared/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	viewport = types.Viewport{Width: 1440, Height: 900}
	start    = types.Frame{
		Position: types.Position{X: 200, Y: 150},
		Size:     types.Size{Width: 800, Height: 600},
	}
)

func pos(x, y int) types.Position { return types.Position{X: x, Y: y} }

func TestDragFollowsPointerWithOffset(t *testing.T) {
	c := NewController()
	require.True(t, c.PointerDown("blog-a", TargetHeader, "", pos(250, 160), start))
	assert.Equal(t, Dragging, c.Phase("blog-a"))

	p, ok := c.PointerMove("blog-a", pos(300, 200), viewport)
	require.True(t, ok)
	assert.Equal(t, Dragging, p.Phase)
	assert.Equal(t, pos(250, 190), p.Frame.Position)
	assert.Equal(t, start.Size, p.Frame.Size)

	assert.Equal(t, Dragging, c.PointerUp("blog-a"))
	assert.Equal(t, Idle, c.Phase("blog-a"))

	_, ok = c.PointerMove("blog-a", pos(10, 10), viewport)
	assert.False(t, ok)
}

func TestDragStaysInsideViewport(t *testing.T) {
	c := NewController()
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 200; i++ {
		frame := types.Frame{
			Position: pos(rng.Intn(600), rng.Intn(300)),
			Size:     types.Size{Width: 400 + rng.Intn(600), Height: 300 + rng.Intn(500)},
		}
		grab := frame.Position.Add(rng.Intn(50))
		require.True(t, c.PointerDown("w", TargetHeader, "", grab, frame))

		for j := 0; j < 10; j++ {
			p, ok := c.PointerMove("w", pos(rng.Intn(4000)-1000, rng.Intn(3000)-1000), viewport)
			require.True(t, ok)
			x, y := p.Frame.Position.X, p.Frame.Position.Y
			assert.GreaterOrEqual(t, x, 0)
			assert.GreaterOrEqual(t, y, 0)
			assert.LessOrEqual(t, x, viewport.Width-frame.Size.Width)
			assert.LessOrEqual(t, y, viewport.Height-frame.Size.Height)
		}
		c.PointerUp("w")
	}
}

func TestDragOversizedWindowPinsToOrigin(t *testing.T) {
	c := NewController()
	big := types.Frame{Position: pos(0, 0), Size: types.Size{Width: 2000, Height: 1200}}
	require.True(t, c.PointerDown("w", TargetHeader, "", pos(10, 10), big))

	p, ok := c.PointerMove("w", pos(400, 400), viewport)
	require.True(t, ok)
	assert.Equal(t, pos(0, 0), p.Frame.Position)
}

func TestControlButtonsDoNotStartDrag(t *testing.T) {
	c := NewController()
	assert.False(t, c.PointerDown("w", TargetControl, "", pos(10, 10), start))
	assert.Equal(t, Idle, c.Phase("w"))
}

func TestResizeDirections(t *testing.T) {
	tests := []struct {
		dir   Direction
		delta types.Position
		want  types.Frame
	}{
		{SouthEast, pos(100, 50), types.Frame{Position: pos(200, 150), Size: types.Size{Width: 900, Height: 650}}},
		{East, pos(100, 50), types.Frame{Position: pos(200, 150), Size: types.Size{Width: 900, Height: 600}}},
		{South, pos(100, 50), types.Frame{Position: pos(200, 150), Size: types.Size{Width: 800, Height: 650}}},
		{West, pos(-100, 50), types.Frame{Position: pos(100, 150), Size: types.Size{Width: 900, Height: 600}}},
		{North, pos(100, -50), types.Frame{Position: pos(200, 100), Size: types.Size{Width: 800, Height: 650}}},
		{NorthWest, pos(100, 100), types.Frame{Position: pos(300, 250), Size: types.Size{Width: 700, Height: 500}}},
		{NorthEast, pos(100, 100), types.Frame{Position: pos(200, 250), Size: types.Size{Width: 900, Height: 500}}},
		{SouthWest, pos(100, 100), types.Frame{Position: pos(300, 150), Size: types.Size{Width: 700, Height: 700}}},
	}

	for _, tt := range tests {
		t.Run(string(tt.dir), func(t *testing.T) {
			c := NewController()
			grab := pos(500, 500)
			require.True(t, c.PointerDown("w", TargetResize, tt.dir, grab, start))
			assert.Equal(t, Resizing, c.Phase("w"))

			p, ok := c.PointerMove("w", pos(grab.X+tt.delta.X, grab.Y+tt.delta.Y), viewport)
			require.True(t, ok)
			assert.Equal(t, Resizing, p.Phase)
			assert.Equal(t, tt.want, p.Frame)
		})
	}
}

func TestResizeFloorKeepsOppositeEdgeFixed(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	dirs := []Direction{North, South, East, West, NorthEast, NorthWest, SouthEast, SouthWest}
	right := start.Position.X + start.Size.Width
	bottom := start.Position.Y + start.Size.Height

	for i := 0; i < 500; i++ {
		dir := dirs[rng.Intn(len(dirs))]
		c := NewController()
		grab := pos(600, 400)
		require.True(t, c.PointerDown("w", TargetResize, dir, grab, start))

		p, ok := c.PointerMove("w", pos(grab.X+rng.Intn(3000)-1500, grab.Y+rng.Intn(3000)-1500), viewport)
		require.True(t, ok)
		f := p.Frame

		assert.GreaterOrEqual(t, f.Size.Width, window.MinWidth)
		assert.GreaterOrEqual(t, f.Size.Height, window.MinHeight)
		if dir.has('w') {
			assert.Equal(t, right, f.Position.X+f.Size.Width, "dir %s", dir)
		} else {
			assert.Equal(t, start.Position.X, f.Position.X, "dir %s", dir)
		}
		if dir.has('n') {
			assert.Equal(t, bottom, f.Position.Y+f.Size.Height, "dir %s", dir)
		} else {
			assert.Equal(t, start.Position.Y, f.Position.Y, "dir %s", dir)
		}
	}
}

func TestGesturesAreExclusive(t *testing.T) {
	c := NewController()
	require.True(t, c.PointerDown("w", TargetHeader, "", pos(210, 160), start))
	assert.False(t, c.PointerDown("w", TargetResize, SouthEast, pos(210, 160), start))
	assert.Equal(t, Dragging, c.Phase("w"))

	// Other windows are independent.
	assert.True(t, c.PointerDown("v", TargetResize, SouthEast, pos(0, 0), start))
}

func TestReleaseEndsAllGestures(t *testing.T) {
	c := NewController()
	c.PointerDown("a", TargetHeader, "", pos(210, 160), start)
	c.PointerDown("b", TargetResize, North, pos(210, 160), start)

	ended := c.Release()
	assert.ElementsMatch(t, []string{"a", "b"}, ended)
	assert.Equal(t, Idle, c.Phase("a"))
	assert.Equal(t, Idle, c.Phase("b"))
	assert.Equal(t, Idle, c.PointerUp("a"))
}

func TestParse(t *testing.T) {
	d, err := ParseDirection("NE")
	require.NoError(t, err)
	assert.Equal(t, NorthEast, d)

	_, err = ParseDirection("up")
	assert.Error(t, err)

	tg, err := ParseTarget("header")
	require.NoError(t, err)
	assert.Equal(t, TargetHeader, tg)

	_, err = ParseTarget("body")
	assert.Error(t, err)

	assert.False(t, NewController().PointerDown("w", TargetResize, "x", pos(0, 0), start))
}
