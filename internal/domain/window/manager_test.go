package window

import (
	"encoding/json"
	"math/rand"
	"testing"
	"time"

	"github.com/chungquantin/chaseOS/internal/shared/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	fixedNow    = time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)
	defaultSize = types.Size{Width: 800, Height: 600}
	basePos     = types.Position{X: 100, Y: 100}
)

func newTestManager() *Manager {
	return NewManager().WithClock(func() time.Time { return fixedNow })
}

func blog(slug string) Blog {
	return Blog{Post: Post{Slug: slug, Title: "Post " + slug, PublishedAt: fixedNow.AddDate(0, -1, 0)}}
}

func mustOpen(t *testing.T, m *Manager, c Content) Record {
	t.Helper()
	res, err := m.Open(c, defaultSize, basePos)
	require.NoError(t, err)
	return res.Record
}

func TestOpenAssignsDerivedIDAndZ(t *testing.T) {
	m := newTestManager()

	res, err := m.Open(blog("hello"), types.Size{Width: 100, Height: 100}, basePos)
	require.NoError(t, err)

	assert.True(t, res.Created)
	assert.Equal(t, "blog-hello", res.Record.ID)
	assert.Equal(t, InitialZ, res.Record.ZIndex)
	assert.Equal(t, types.Size{Width: MinWidth, Height: MinHeight}, res.Record.Size)
	assert.Equal(t, fixedNow, res.Record.StartTime)
	assert.False(t, res.Record.IsMinimized)
	assert.Equal(t, InitialZ+1, m.NextZ())
	require.NoError(t, m.CheckInvariants())
}

func TestOpenIsIdempotent(t *testing.T) {
	m := newTestManager()
	first := mustOpen(t, m, Company{CompanyID: "parity"})
	mustOpen(t, m, Finder{FinderType: "blogs"})

	res, err := m.Open(Company{CompanyID: "parity"}, defaultSize, basePos)
	require.NoError(t, err)

	assert.False(t, res.Created)
	assert.Equal(t, 2, m.Len())
	assert.Equal(t, first.Position, res.Record.Position)
	assert.Greater(t, res.Record.ZIndex, first.ZIndex)

	focused, ok := m.Focused()
	require.True(t, ok)
	assert.Equal(t, "company-parity", focused)
	require.NoError(t, m.CheckInvariants())
}

func TestOpenRejectsInvalidContent(t *testing.T) {
	m := newTestManager()

	tests := []struct {
		name    string
		content Content
	}{
		{"nil", nil},
		{"empty company", Company{}},
		{"bad finder", Finder{FinderType: "../etc"}},
		{"untitled blog", Blog{Post: Post{Slug: "x"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.Open(tt.content, defaultSize, basePos)
			assert.ErrorIs(t, err, ErrInvalidContent)
		})
	}
	assert.Equal(t, 0, m.Len())
}

func TestOpenAcceptsPostFileNames(t *testing.T) {
	m := newTestManager()

	rec := mustOpen(t, m, Blog{Post: Post{Slug: "Hello-World", Title: "Hello"}})
	assert.Equal(t, "blog-Hello-World", rec.ID)
	mustOpen(t, m, Blog{Post: Post{Slug: "release_notes.v2", Title: "Notes"}})

	records, nextZ := m.Export()
	restored := newTestManager()
	report := restored.Hydrate(records, nextZ)
	assert.Equal(t, 0, report.Dropped)
	_, ok := restored.Get("blog-Hello-World")
	assert.True(t, ok)
}

func TestSpawnProximityIsCentredSquare(t *testing.T) {
	origin := types.Position{X: 100, Y: 100}
	assert.True(t, near(origin, types.Position{X: 124, Y: 76}))
	assert.False(t, near(origin, types.Position{X: 125, Y: 100}))
	assert.False(t, near(origin, types.Position{X: 100, Y: 75}))
	assert.False(t, near(origin, types.Position{X: 130, Y: 130}))
}

func TestSpawnScenario(t *testing.T) {
	m := newTestManager()

	a := mustOpen(t, m, blog("a"))
	b := mustOpen(t, m, blog("b"))

	assert.Equal(t, types.Position{X: 100, Y: 100}, a.Position)
	assert.Equal(t, types.Position{X: 130, Y: 130}, b.Position)

	require.True(t, m.Minimize("blog-a"))
	require.True(t, m.Restore("blog-a"))

	a, _ = m.Get("blog-a")
	b, _ = m.Get("blog-b")
	assert.Greater(t, a.ZIndex, b.ZIndex)
	require.NoError(t, m.CheckInvariants())
}

func TestSpawnSkipsOccupiedPositions(t *testing.T) {
	m := newTestManager()
	mustOpen(t, m, blog("a"))
	mustOpen(t, m, blog("b"))

	// A window moved far away frees its slot for the next spawn.
	require.True(t, m.UpdatePosition("blog-a", types.Position{X: 900, Y: 600}))
	c := mustOpen(t, m, blog("c"))
	assert.Equal(t, types.Position{X: 100, Y: 100}, c.Position)

	// {110,110} is next to c and {140,140} next to b.
	d, err := m.Open(blog("d"), defaultSize, types.Position{X: 110, Y: 110})
	require.NoError(t, err)
	assert.Equal(t, types.Position{X: 170, Y: 170}, d.Record.Position)
	assert.False(t, d.Overlapping)
}

func TestSpawnGivesUpAfterMaxAttempts(t *testing.T) {
	m := newTestManager()
	for i := 0; i <= MaxSpawnAttempts; i++ {
		slug := string(rune('a' + i))
		res, err := m.Open(blog(slug), defaultSize, basePos)
		require.NoError(t, err)
		if i < MaxSpawnAttempts {
			assert.False(t, res.Overlapping, "window %d", i)
		}
	}

	res, err := m.Open(blog("overflow"), defaultSize, basePos)
	require.NoError(t, err)
	assert.True(t, res.Created)
	assert.True(t, res.Overlapping)
	assert.Equal(t, basePos.Add(MaxSpawnAttempts*SpawnStep), res.Record.Position)
}

func TestUnknownIDsAreNoops(t *testing.T) {
	m := newTestManager()
	mustOpen(t, m, blog("a"))
	require.True(t, m.Close("blog-a"))

	before := m.NextZ()
	assert.False(t, m.Close("blog-a"))
	assert.False(t, m.Focus("blog-a"))
	assert.False(t, m.Minimize("blog-a"))
	assert.False(t, m.Restore("blog-a"))
	assert.False(t, m.UpdatePosition("blog-a", types.Position{X: 1, Y: 1}))
	assert.False(t, m.UpdateSize("blog-a", defaultSize))
	_, ok := m.ToggleMaximize("blog-a", types.Viewport{Width: 1440, Height: 900})
	assert.False(t, ok)

	assert.Equal(t, 0, m.Len())
	assert.Equal(t, before, m.NextZ())
	_, found := m.Focused()
	assert.False(t, found)
}

func TestMinimizeRestoreRoundTrip(t *testing.T) {
	m := newTestManager()
	mustOpen(t, m, blog("a"))
	mustOpen(t, m, Finder{FinderType: "videos"})
	before, _ := m.Get("blog-a")

	require.True(t, m.Minimize("blog-a"))
	minimized, _ := m.Get("blog-a")
	assert.True(t, minimized.IsMinimized)
	assert.Equal(t, before.ZIndex, minimized.ZIndex)
	assert.Len(t, m.Visible(), 1)

	require.True(t, m.Restore("blog-a"))
	after, _ := m.Get("blog-a")

	assert.False(t, after.IsMinimized)
	assert.Greater(t, after.ZIndex, before.ZIndex)
	assert.Equal(t, before.ID, after.ID)
	assert.Equal(t, before.Content, after.Content)
	assert.Equal(t, before.Position, after.Position)
	assert.Equal(t, before.Size, after.Size)
}

func TestUpdateSizeClamps(t *testing.T) {
	m := newTestManager()
	mustOpen(t, m, blog("a"))

	require.True(t, m.UpdateSize("blog-a", types.Size{Width: 10, Height: 2000}))
	rec, _ := m.Get("blog-a")
	assert.Equal(t, types.Size{Width: MinWidth, Height: 2000}, rec.Size)

	require.True(t, m.UpdateFrame("blog-a", types.Frame{
		Position: types.Position{X: 5, Y: 6},
		Size:     types.Size{Width: -1, Height: 0},
	}))
	rec, _ = m.Get("blog-a")
	assert.Equal(t, types.Position{X: 5, Y: 6}, rec.Position)
	assert.Equal(t, types.Size{Width: MinWidth, Height: MinHeight}, rec.Size)
}

func TestMaximizedStaysOnTopPastRenderZ(t *testing.T) {
	m := newTestManager()
	m.Hydrate(nil, 12000)
	vp := types.Viewport{Width: 1440, Height: 900}

	mustOpen(t, m, blog("a"))
	mustOpen(t, m, blog("b"))
	_, ok := m.ToggleMaximize("blog-a", vp)
	require.True(t, ok)

	for range 3 {
		require.True(t, m.Focus("blog-b"))
	}
	a, _ := m.Get("blog-a")
	b, _ := m.Get("blog-b")
	assert.Greater(t, b.ZIndex, MaximizedZ)
	assert.Greater(t, a.RenderZ(), b.RenderZ())

	visible := m.Visible()
	assert.Equal(t, "blog-a", visible[len(visible)-1].ID)
}

func TestToggleMaximize(t *testing.T) {
	m := newTestManager()
	mustOpen(t, m, blog("a"))
	mustOpen(t, m, blog("b"))
	vp := types.Viewport{Width: 1440, Height: 900}
	before, _ := m.Get("blog-a")

	maximized, ok := m.ToggleMaximize("blog-a", vp)
	require.True(t, ok)
	assert.True(t, maximized)

	rec, _ := m.Get("blog-a")
	assert.True(t, rec.IsMaximized())
	assert.Equal(t, types.Position{}, rec.Position)
	assert.Equal(t, types.Size{Width: 1440, Height: 900}, rec.Size)
	assert.Equal(t, MaximizedZ, rec.RenderZ())

	visible := m.Visible()
	assert.Equal(t, "blog-a", visible[len(visible)-1].ID)

	// Focusing another window does not lift it over the maximized one.
	require.True(t, m.Focus("blog-b"))
	visible = m.Visible()
	assert.Equal(t, "blog-a", visible[len(visible)-1].ID)

	maximized, ok = m.ToggleMaximize("blog-a", vp)
	require.True(t, ok)
	assert.False(t, maximized)
	rec, _ = m.Get("blog-a")
	assert.False(t, rec.IsMaximized())
	assert.Equal(t, before.Frame(), rec.Frame())
}

func TestMoveLeavesMaximized(t *testing.T) {
	m := newTestManager()
	mustOpen(t, m, blog("a"))
	m.ToggleMaximize("blog-a", types.Viewport{Width: 1440, Height: 900})

	require.True(t, m.UpdatePosition("blog-a", types.Position{X: 40, Y: 40}))
	rec, _ := m.Get("blog-a")
	assert.False(t, rec.IsMaximized())
	assert.Equal(t, types.Position{X: 40, Y: 40}, rec.Position)
}

func TestZOrderMonotonicity(t *testing.T) {
	m := newTestManager()
	rng := rand.New(rand.NewSource(42))
	contents := []Content{
		blog("a"), blog("b"), blog("c"),
		Company{CompanyID: "polkadot"}, Company{CompanyID: "parity"},
		Finder{FinderType: "blogs"}, Finder{FinderType: "images"},
	}

	for i := 0; i < 500; i++ {
		c := contents[rng.Intn(len(contents))]
		id := IDFor(c)
		var touched bool
		switch rng.Intn(6) {
		case 0:
			_, err := m.Open(c, defaultSize, basePos)
			require.NoError(t, err)
			touched = true
		case 1:
			touched = m.Focus(id)
		case 2:
			touched = m.Restore(id)
		case 3:
			m.Minimize(id)
		case 4:
			m.Close(id)
		case 5:
			m.UpdatePosition(id, types.Position{X: rng.Intn(1000), Y: rng.Intn(800)})
		}

		require.NoError(t, m.CheckInvariants(), "step %d", i)
		if touched {
			rec, ok := m.Get(id)
			require.True(t, ok)
			for _, other := range m.List() {
				if other.ID != id {
					assert.Greater(t, rec.ZIndex, other.ZIndex, "step %d", i)
				}
			}
		}
	}
}

func TestAllocateZSharesCounter(t *testing.T) {
	m := newTestManager()
	a := mustOpen(t, m, blog("a"))

	panelZ := m.AllocateZ()
	assert.Greater(t, panelZ, a.ZIndex)

	require.True(t, m.Focus("blog-a"))
	rec, _ := m.Get("blog-a")
	assert.Greater(t, rec.ZIndex, panelZ)
}

func TestResetClearsEverything(t *testing.T) {
	m := newTestManager()
	mustOpen(t, m, blog("a"))
	mustOpen(t, m, blog("b"))

	m.Reset()

	assert.Equal(t, 0, m.Len())
	assert.Equal(t, InitialZ, m.NextZ())
	assert.Empty(t, m.List())
}

func TestPersistenceRoundTrip(t *testing.T) {
	cases := map[string][]Content{
		"empty": nil,
		"one":   {blog("a")},
		"many":  {blog("a"), Company{CompanyID: "substrate"}, Finder{FinderType: "videos"}},
	}

	for name, contents := range cases {
		t.Run(name, func(t *testing.T) {
			m := newTestManager()
			for _, c := range contents {
				mustOpen(t, m, c)
			}
			if len(contents) > 1 {
				m.Minimize(IDFor(contents[0]))
				m.ToggleMaximize(IDFor(contents[1]), types.Viewport{Width: 1280, Height: 720})
			}
			records, nextZ := m.Export()

			data, err := json.Marshal(records)
			require.NoError(t, err)
			var decoded []Record
			require.NoError(t, json.Unmarshal(data, &decoded))

			restored := newTestManager()
			report := restored.Hydrate(decoded, nextZ)

			assert.Equal(t, len(contents), report.Loaded)
			assert.Zero(t, report.Dropped)
			assert.Zero(t, report.Repaired)
			assert.Equal(t, nextZ, restored.NextZ())

			got := restored.List()
			require.Len(t, got, len(records))
			for i := range records {
				assert.Equal(t, records[i].ID, got[i].ID)
				assert.Equal(t, records[i].Content, got[i].Content)
				assert.Equal(t, records[i].Position, got[i].Position)
				assert.Equal(t, records[i].Size, got[i].Size)
				assert.Equal(t, records[i].ZIndex, got[i].ZIndex)
				assert.Equal(t, records[i].IsMinimized, got[i].IsMinimized)
				assert.True(t, records[i].StartTime.Equal(got[i].StartTime))
				assert.Equal(t, records[i].Restore, got[i].Restore)
			}
			require.NoError(t, restored.CheckInvariants())
		})
	}
}

func TestHydrateRepairsCorruptState(t *testing.T) {
	m := newTestManager()

	report := m.Hydrate([]Record{
		{ID: "blog-a", Content: blog("a"), Size: types.Size{Width: 10, Height: 10}, ZIndex: 1005},
		{ID: "wrong", Content: Company{CompanyID: "parity"}, Size: defaultSize, ZIndex: 1005},
		{ID: "blog-a", Content: blog("a"), Size: defaultSize, ZIndex: 1001},
		{ID: "nothing", Size: defaultSize, ZIndex: 1002},
	}, 3)

	assert.Equal(t, 2, report.Loaded)
	assert.Equal(t, 2, report.Dropped)
	assert.Equal(t, 3, report.Repaired)

	a, ok := m.Get("blog-a")
	require.True(t, ok)
	assert.Equal(t, types.Size{Width: MinWidth, Height: MinHeight}, a.Size)

	parity, ok := m.Get("company-parity")
	require.True(t, ok)
	assert.NotEqual(t, a.ZIndex, parity.ZIndex)
	assert.Greater(t, m.NextZ(), 1005)
	require.NoError(t, m.CheckInvariants())
}
