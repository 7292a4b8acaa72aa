package window

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/chungquantin/chaseOS/internal/infrastructure/monitoring"
	"github.com/chungquantin/chaseOS/internal/shared/types"
	"go.uber.org/zap"
)

// Manager owns the window collection and the z counter of one desktop.
// Operations on unknown ids are no-ops and report false.
type Manager struct {
	mu          sync.Mutex
	order       []string           // Protected by mu
	records     map[string]*Record // Protected by mu
	nextZ       int                // Protected by mu
	lastTouched string             // Protected by mu
	now         func() time.Time
	logger      *zap.Logger
	metrics     *monitoring.Metrics
}

// OpenResult describes the outcome of Open.
type OpenResult struct {
	Record  Record
	Created bool
	// Overlapping is set when the spawn search gave up and the window was
	// placed on top of another one.
	Overlapping bool
}

// HydrateReport describes what Hydrate had to repair.
type HydrateReport struct {
	Loaded   int
	Dropped  int
	Repaired int
}

// NewManager creates an empty manager.
func NewManager() *Manager {
	return &Manager{
		records: make(map[string]*Record),
		nextZ:   InitialZ,
		now:     time.Now,
		logger:  zap.NewNop(),
	}
}

// WithMetrics adds metrics tracking to the manager
func (m *Manager) WithMetrics(metrics *monitoring.Metrics) *Manager {
	m.metrics = metrics
	return m
}

// WithLogger sets the logger used for spawn diagnostics.
func (m *Manager) WithLogger(logger *zap.Logger) *Manager {
	if logger != nil {
		m.logger = logger
	}
	return m
}

// WithClock overrides the clock used for start times.
func (m *Manager) WithClock(now func() time.Time) *Manager {
	if now != nil {
		m.now = now
	}
	return m
}

// Open shows content in a window. An already open window for the same
// content is focused instead; at most one window exists per content.
func (m *Manager) Open(content Content, defaultSize types.Size, base types.Position) (OpenResult, error) {
	if err := ValidateContent(content); err != nil {
		return OpenResult{}, err
	}
	id := IDFor(content)

	m.mu.Lock()
	defer m.mu.Unlock()

	if rec, ok := m.records[id]; ok {
		m.focusLocked(rec)
		m.metrics.RecordWindowOp("open", false)
		return OpenResult{Record: m.copyLocked(*rec)}, nil
	}

	pos, overlapping := m.spawnPositionLocked(base)
	if overlapping {
		m.logger.Debug("spawn search exhausted, placing window over another",
			zap.String("window_id", id),
			zap.Int("x", pos.X),
			zap.Int("y", pos.Y),
		)
	}

	rec := &Record{
		ID:        id,
		Content:   content,
		Position:  pos,
		Size:      ClampSize(defaultSize),
		ZIndex:    m.takeZLocked(),
		StartTime: m.now(),
	}
	m.records[id] = rec
	m.order = append(m.order, id)
	m.lastTouched = id

	m.metrics.RecordWindowOp("open", true)
	m.metrics.AddWindowsOpen(1)

	return OpenResult{Record: m.copyLocked(*rec), Created: true, Overlapping: overlapping}, nil
}

// spawnPositionLocked walks diagonally from base until no existing window
// origin is near the candidate, giving up after MaxSpawnAttempts steps.
func (m *Manager) spawnPositionLocked(base types.Position) (types.Position, bool) {
	candidate := base
	for attempt := 0; attempt < MaxSpawnAttempts; attempt++ {
		if !m.occupiedLocked(candidate) {
			return candidate, false
		}
		candidate = candidate.Add(SpawnStep)
	}
	return candidate, m.occupiedLocked(candidate)
}

func (m *Manager) occupiedLocked(p types.Position) bool {
	for _, rec := range m.records {
		if near(rec.Position, p) {
			return true
		}
	}
	return false
}

// Close removes a window.
func (m *Manager) Close(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.records[id]; !ok {
		m.metrics.RecordWindowOp("close", false)
		return false
	}

	delete(m.records, id)
	for i, oid := range m.order {
		if oid == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	if m.lastTouched == id {
		m.lastTouched = ""
	}

	m.metrics.RecordWindowOp("close", true)
	m.metrics.AddWindowsOpen(-1)
	return true
}

// Focus brings a window to the front.
func (m *Manager) Focus(id string) bool {
	return m.apply("focus", id, m.focusLocked)
}

// Minimize hides a window without changing its z value.
func (m *Manager) Minimize(id string) bool {
	return m.apply("minimize", id, func(rec *Record) {
		rec.IsMinimized = true
	})
}

// Restore unhides a window and brings it to the front.
func (m *Manager) Restore(id string) bool {
	return m.apply("restore", id, func(rec *Record) {
		rec.IsMinimized = false
		m.focusLocked(rec)
	})
}

// UpdatePosition moves a window. Moving a maximized window leaves the
// maximized state.
func (m *Manager) UpdatePosition(id string, pos types.Position) bool {
	return m.apply("position", id, func(rec *Record) {
		rec.Restore = nil
		rec.Position = pos
	})
}

// UpdateSize resizes a window, re-applying the minimum size.
func (m *Manager) UpdateSize(id string, size types.Size) bool {
	return m.apply("size", id, func(rec *Record) {
		rec.Restore = nil
		rec.Size = ClampSize(size)
	})
}

// UpdateFrame moves and resizes a window in one step, as a near-edge
// resize does.
func (m *Manager) UpdateFrame(id string, frame types.Frame) bool {
	return m.apply("frame", id, func(rec *Record) {
		rec.Restore = nil
		rec.Position = frame.Position
		rec.Size = ClampSize(frame.Size)
	})
}

// ToggleMaximize fills the viewport with a window, or returns it to the
// frame remembered when it was maximized. Maximizing also focuses.
func (m *Manager) ToggleMaximize(id string, vp types.Viewport) (maximized bool, ok bool) {
	ok = m.apply("maximize", id, func(rec *Record) {
		if rec.Restore != nil {
			rec.Position = rec.Restore.Position
			rec.Size = rec.Restore.Size
			rec.Restore = nil
			return
		}
		prev := rec.Frame()
		rec.Restore = &prev
		rec.Position = types.Position{}
		rec.Size = ClampSize(types.Size{Width: vp.Width, Height: vp.Height})
		m.focusLocked(rec)
		maximized = true
	})
	return maximized, ok
}

func (m *Manager) apply(op, id string, fn func(*Record)) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[id]
	if ok {
		fn(rec)
	}
	m.metrics.RecordWindowOp(op, ok)
	return ok
}

func (m *Manager) focusLocked(rec *Record) {
	rec.ZIndex = m.takeZLocked()
	m.lastTouched = rec.ID
}

func (m *Manager) takeZLocked() int {
	z := m.nextZ
	m.nextZ++
	return z
}

// AllocateZ hands out a z value from the shared counter for surfaces that
// stack with windows but are not records, such as system panels.
func (m *Manager) AllocateZ() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.takeZLocked()
}

func (m *Manager) copyLocked(rec Record) Record {
	out := rec.clone()
	out.stackTop = m.nextZ
	return out
}

// Get returns a copy of a window record.
func (m *Manager) Get(id string) (Record, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[id]
	if !ok {
		return Record{}, false
	}
	return m.copyLocked(*rec), true
}

// List returns copies of all records in insertion order.
func (m *Manager) List() []Record {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.listLocked()
}

func (m *Manager) listLocked() []Record {
	out := make([]Record, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.copyLocked(*m.records[id]))
	}
	return out
}

// Visible returns the non-minimized records from back to front.
func (m *Manager) Visible() []Record {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Record, 0, len(m.order))
	for _, id := range m.order {
		if rec := m.records[id]; !rec.IsMinimized {
			out = append(out, m.copyLocked(*rec))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].RenderZ() != out[j].RenderZ() {
			return out[i].RenderZ() < out[j].RenderZ()
		}
		return out[i].ZIndex < out[j].ZIndex
	})
	return out
}

// Len returns the number of open windows.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.records)
}

// NextZ returns the value the next focus will receive.
func (m *Manager) NextZ() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.nextZ
}

// Focused returns the id of the most recently opened, focused or restored
// window that is still open.
func (m *Manager) Focused() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.lastTouched, m.lastTouched != ""
}

// Export returns the collection and counter for persistence.
func (m *Manager) Export() ([]Record, int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.listLocked(), m.nextZ
}

// Reset drops every window and restarts the z counter.
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.metrics.AddWindowsOpen(-len(m.records))
	m.records = make(map[string]*Record)
	m.order = nil
	m.nextZ = InitialZ
	m.lastTouched = ""
}

// Hydrate replaces the collection with persisted state. Records that cannot
// be trusted are dropped; undersized windows, mismatched ids and colliding
// z values are repaired, and the counter is raised above every loaded z.
func (m *Manager) Hydrate(records []Record, nextZ int) HydrateReport {
	m.mu.Lock()
	defer m.mu.Unlock()

	var report HydrateReport
	prevLen := len(m.records)

	loaded := make(map[string]*Record, len(records))
	order := make([]string, 0, len(records))
	maxZ := InitialZ - 1
	for i := range records {
		rec := records[i].clone()
		if rec.Content == nil || ValidateContent(rec.Content) != nil {
			report.Dropped++
			continue
		}
		repaired := false
		if want := IDFor(rec.Content); rec.ID != want {
			rec.ID = want
			repaired = true
		}
		if _, dup := loaded[rec.ID]; dup {
			report.Dropped++
			continue
		}
		if clamped := ClampSize(rec.Size); clamped != rec.Size {
			rec.Size = clamped
			repaired = true
		}
		if repaired {
			report.Repaired++
		}
		loaded[rec.ID] = &rec
		order = append(order, rec.ID)
		maxZ = max(maxZ, rec.ZIndex)
	}

	m.nextZ = max(nextZ, maxZ+1, InitialZ)

	// Colliding z values are renumbered above everything else, in their
	// previous stacking order.
	byZ := make([]*Record, 0, len(order))
	for _, id := range order {
		byZ = append(byZ, loaded[id])
	}
	sort.SliceStable(byZ, func(i, j int) bool { return byZ[i].ZIndex < byZ[j].ZIndex })
	seen := make(map[int]bool, len(byZ))
	for _, rec := range byZ {
		if seen[rec.ZIndex] {
			rec.ZIndex = m.takeZLocked()
			report.Repaired++
		}
		seen[rec.ZIndex] = true
	}

	m.records = loaded
	m.order = order
	m.lastTouched = ""
	top := 0
	for _, rec := range loaded {
		if m.lastTouched == "" || rec.ZIndex > top {
			m.lastTouched, top = rec.ID, rec.ZIndex
		}
	}

	report.Loaded = len(loaded)
	m.metrics.AddWindowsOpen(len(loaded) - prevLen)
	return report
}

// CheckInvariants verifies the z-order and size invariants.
func (m *Manager) CheckInvariants() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	seen := make(map[int]string, len(m.records))
	maxZ, maxID := 0, ""
	for _, id := range m.order {
		rec := m.records[id]
		if rec.Size.Width < MinWidth || rec.Size.Height < MinHeight {
			return fmt.Errorf("window %s: size %dx%d below minimum", id, rec.Size.Width, rec.Size.Height)
		}
		if other, dup := seen[rec.ZIndex]; dup {
			return fmt.Errorf("windows %s and %s share z %d", other, id, rec.ZIndex)
		}
		if rec.ZIndex >= m.nextZ {
			return fmt.Errorf("window %s: z %d not below counter %d", id, rec.ZIndex, m.nextZ)
		}
		seen[rec.ZIndex] = id
		if maxID == "" || rec.ZIndex > maxZ {
			maxZ, maxID = rec.ZIndex, id
		}
	}
	if m.lastTouched != "" && m.lastTouched != maxID {
		return fmt.Errorf("last touched window %s is not topmost (%s is)", m.lastTouched, maxID)
	}
	return nil
}
