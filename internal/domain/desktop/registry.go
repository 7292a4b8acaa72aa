package desktop

import (
	"context"
	"sync"
	"time"

	"github.com/chungquantin/chaseOS/internal/storage/kv"
	"go.uber.org/zap"
)

// Registry owns every live desktop, creating them on first use and
// dropping idle ones. A dropped desktop is rebuilt from the store on its
// next request.
type Registry struct {
	store    *kv.Store
	resolver Resolver
	opts     Options
	idleTTL  time.Duration

	mu       sync.Mutex
	desktops map[string]*Desktop // Protected by mu
}

// NewRegistry creates an empty registry. A non-positive idleTTL keeps
// desktops forever.
func NewRegistry(store *kv.Store, resolver Resolver, opts Options, idleTTL time.Duration) *Registry {
	return &Registry{
		store:    store,
		resolver: resolver,
		opts:     opts.withDefaults(),
		idleTTL:  idleTTL,
		desktops: make(map[string]*Desktop),
	}
}

// Get returns the desktop for id, hydrating it from the store if it is not
// live.
func (r *Registry) Get(ctx context.Context, id string) *Desktop {
	r.mu.Lock()
	defer r.mu.Unlock()

	if d, ok := r.desktops[id]; ok {
		return d
	}

	d := New(ctx, id, r.store, r.resolver, r.opts)
	r.desktops[id] = d
	r.opts.Metrics.SetDesktopsActive(len(r.desktops))
	r.opts.Logger.Debug("desktop loaded", zap.String("desktop_id", id), zap.Int("windows", len(d.Snapshot().Windows)))
	return d
}

// Len returns the number of live desktops.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.desktops)
}

// Sweep flushes and drops desktops idle since before now - idleTTL that
// have no observers. It returns how many were dropped.
func (r *Registry) Sweep() int {
	if r.idleTTL <= 0 {
		return 0
	}
	cutoff := r.opts.Now().Add(-r.idleTTL)

	r.mu.Lock()
	defer r.mu.Unlock()

	dropped := 0
	for id, d := range r.desktops {
		if d.Observers() > 0 || d.LastActive().After(cutoff) {
			continue
		}
		d.Shutdown()
		delete(r.desktops, id)
		dropped++
	}
	if dropped > 0 {
		r.opts.Metrics.SetDesktopsActive(len(r.desktops))
		r.opts.Logger.Info("evicted idle desktops", zap.Int("count", dropped), zap.Int("remaining", len(r.desktops)))
	}
	return dropped
}

// Run sweeps every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	if r.idleTTL <= 0 || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}

// Close flushes every pending write. Call it before closing the store.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, d := range r.desktops {
		d.Shutdown()
	}
	r.opts.Logger.Info("flushed desktops", zap.Int("count", len(r.desktops)))
}
