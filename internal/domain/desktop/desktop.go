package desktop

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/chungquantin/chaseOS/internal/domain/interaction"
	"github.com/chungquantin/chaseOS/internal/domain/taskbar"
	"github.com/chungquantin/chaseOS/internal/domain/window"
	"github.com/chungquantin/chaseOS/internal/infrastructure/monitoring"
	"github.com/chungquantin/chaseOS/internal/shared/types"
	"github.com/chungquantin/chaseOS/internal/storage/debounce"
	"github.com/chungquantin/chaseOS/internal/storage/kv"
	"go.uber.org/zap"
)

// Persisted keys. Each is stored and defaulted independently.
const (
	KeyWindows     = "windows"
	KeyNextZ       = "next-z-index"
	KeyTaskManager = "task-manager"
	KeyGitHub      = "github"
)

var (
	ErrUnknownContent  = errors.New("unknown content")
	ErrUnknownPanel    = errors.New("unknown panel")
	ErrUnknownShortcut = errors.New("unknown shortcut")
	ErrInvalidRequest  = errors.New("invalid request")
)

// Resolver looks up what a window is about to show.
type Resolver interface {
	Post(ctx context.Context, slug string) (window.Post, error)
	CompanyName(id string) (string, bool)
}

// Options configures a desktop.
type Options struct {
	// Viewport is used when a command does not carry the client's viewport.
	Viewport types.Viewport
	// Debounce delays layout writes caused by pointer moves.
	Debounce time.Duration
	Now      func() time.Time
	Logger   *zap.Logger
	Metrics  *monitoring.Metrics
}

func (o Options) withDefaults() Options {
	if !o.Viewport.Valid() {
		o.Viewport = types.Viewport{Width: 1440, Height: 900}
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}

// Snapshot is a read-only view of a desktop after a change.
type Snapshot struct {
	DesktopID  string              `json:"desktopId"`
	Version    uint64              `json:"version"`
	Windows    []window.Record     `json:"windows"`
	RenderSet  []window.Record     `json:"renderSet"`
	Taskbar    []taskbar.Entry     `json:"taskbar"`
	Panels     map[PanelName]Panel `json:"panels"`
	NextZ      int                 `json:"nextZ"`
	Focused    string              `json:"focused,omitempty"`
	SearchOpen bool                `json:"searchOpen"`
	Viewport   types.Viewport      `json:"viewport"`
}

// Desktop is one client's window manager together with its system panels
// and persistence. Commands are serialized by mu, so they apply in arrival
// order exactly as a single event loop would.
type Desktop struct {
	id       string
	store    *kv.Store
	resolver Resolver
	opts     Options
	logger   *zap.Logger

	mu         sync.Mutex
	windows    *window.Manager         // Protected by mu
	gestures   *interaction.Controller // Protected by mu
	panels     map[PanelName]*Panel    // Protected by mu
	searchOpen bool                    // Protected by mu
	version    uint64                  // Protected by mu
	lastActive time.Time               // Protected by mu
	dirty      bool                    // Protected by mu; a debounced layout write is owed

	saver *debounce.Debouncer

	obsMu     sync.Mutex
	observers map[int]chan Snapshot // Protected by obsMu
	nextObs   int                   // Protected by obsMu
}

// New creates a desktop and hydrates it from the store.
func New(ctx context.Context, id string, store *kv.Store, resolver Resolver, opts Options) *Desktop {
	opts = opts.withDefaults()
	logger := opts.Logger.With(zap.String("desktop_id", id))

	d := &Desktop{
		id:       id,
		store:    store,
		resolver: resolver,
		opts:     opts,
		logger:   logger,
		windows: window.NewManager().
			WithMetrics(opts.Metrics).
			WithLogger(logger).
			WithClock(opts.Now),
		gestures:   interaction.NewController(),
		panels:     newPanels(),
		lastActive: opts.Now(),
		observers:  make(map[int]chan Snapshot),
	}
	d.saver = debounce.New(opts.Debounce, d.flushLayout)
	d.hydrate(ctx)
	return d
}

// ID returns the desktop id, which is also its store namespace.
func (d *Desktop) ID() string { return d.id }

func (d *Desktop) hydrate(ctx context.Context) {
	records := kv.Load(ctx, d.store, d.id, KeyWindows, []window.Record(nil))
	nextZ := kv.Load(ctx, d.store, d.id, KeyNextZ, window.InitialZ)
	tm := kv.Load(ctx, d.store, d.id, KeyTaskManager, Panel{})
	gh := kv.Load(ctx, d.store, d.id, KeyGitHub, Panel{})

	d.mu.Lock()
	defer d.mu.Unlock()

	d.panels[PanelTaskManager] = &tm
	d.panels[PanelGitHub] = &gh
	for _, p := range d.panels {
		if p.ZIndex > 0 {
			nextZ = max(nextZ, p.ZIndex+1)
		}
	}

	report := d.windows.Hydrate(records, nextZ)
	if report.Dropped > 0 || report.Repaired > 0 {
		d.logger.Warn("repaired persisted layout",
			zap.Int("loaded", report.Loaded),
			zap.Int("dropped", report.Dropped),
			zap.Int("repaired", report.Repaired),
		)
	}
	if err := d.windows.CheckInvariants(); err != nil {
		d.logger.Error("hydrated layout violates invariants", zap.Error(err))
	}
}

// flushLayout is the debounced write. It runs on the timer goroutine and
// writes nothing when a direct write or a reset has happened since the
// write was scheduled.
func (d *Desktop) flushLayout() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.dirty {
		return
	}
	d.writeLayoutLocked()
}

// writeLayoutLocked writes the window collection and counter as they are
// now. Every layout write holds mu until the store returns, so the last
// write always carries the latest state.
func (d *Desktop) writeLayoutLocked() {
	records, nextZ := d.windows.Export()
	ctx := context.Background()
	d.store.Save(ctx, d.id, KeyWindows, records)
	d.store.Save(ctx, d.id, KeyNextZ, nextZ)
	d.dirty = false
}

// persistLocked writes the layout now, replacing any pending debounced
// write.
func (d *Desktop) persistLocked() {
	d.saver.Cancel()
	d.writeLayoutLocked()
}

// scheduleLayoutLocked defers the layout write by the debounce delay.
func (d *Desktop) scheduleLayoutLocked() {
	if d.opts.Debounce <= 0 {
		d.persistLocked()
		return
	}
	d.dirty = true
	d.saver.Trigger()
}

func (d *Desktop) savePanelLocked(name PanelName) {
	d.store.Save(context.Background(), d.id, panelKey(name), *d.panels[name])
}

// changedLocked records a state change and broadcasts the result.
func (d *Desktop) changedLocked() {
	d.version++
	d.lastActive = d.opts.Now()
	d.broadcast(d.snapshotLocked())
}

// Snapshot returns the current state.
func (d *Desktop) Snapshot() Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.snapshotLocked()
}

func (d *Desktop) snapshotLocked() Snapshot {
	records := d.windows.List()
	focused, _ := d.windows.Focused()

	panels := make(map[PanelName]Panel, len(d.panels))
	for name, p := range d.panels {
		panels[name] = p.clone()
	}

	return Snapshot{
		DesktopID:  d.id,
		Version:    d.version,
		Windows:    records,
		RenderSet:  taskbar.RenderSet(records),
		Taskbar:    taskbar.Entries(records, focused, d.resolver),
		Panels:     panels,
		NextZ:      d.windows.NextZ(),
		Focused:    focused,
		SearchOpen: d.searchOpen,
		Viewport:   d.opts.Viewport,
	}
}

// Processes returns the activity monitor rows.
func (d *Desktop) Processes(q taskbar.Query) []taskbar.Process {
	d.mu.Lock()
	records := d.windows.List()
	d.mu.Unlock()

	return taskbar.Processes(records, d.resolver, d.opts.Now(), q)
}

// Subscribe registers an observer. The channel holds the latest snapshot
// only; a slow reader skips intermediate versions. cancel must be called
// to release the observer.
func (d *Desktop) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)

	d.obsMu.Lock()
	id := d.nextObs
	d.nextObs++
	d.observers[id] = ch
	d.obsMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			d.obsMu.Lock()
			delete(d.observers, id)
			d.obsMu.Unlock()
		})
	}
}

// Observers returns the number of subscribed observers.
func (d *Desktop) Observers() int {
	d.obsMu.Lock()
	defer d.obsMu.Unlock()

	return len(d.observers)
}

func (d *Desktop) broadcast(s Snapshot) {
	d.obsMu.Lock()
	defer d.obsMu.Unlock()

	for _, ch := range d.observers {
		select {
		case <-ch:
		default:
		}
		ch <- s
	}
}

// LastActive returns when the desktop last changed.
func (d *Desktop) LastActive() time.Time {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.lastActive
}

// Flush writes any pending debounced layout change.
func (d *Desktop) Flush() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.saver.Cancel()
	if d.dirty {
		d.writeLayoutLocked()
	}
}

// Shutdown flushes pending writes and stops accepting debounced ones.
func (d *Desktop) Shutdown() {
	d.Flush()
	d.saver.Stop()
}

func (d *Desktop) viewport(vp *types.Viewport) types.Viewport {
	if vp != nil && vp.Valid() {
		return *vp
	}
	return d.opts.Viewport
}
