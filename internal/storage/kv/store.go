package kv

import (
	"context"
	"errors"
	"time"

	"github.com/chungquantin/chaseOS/internal/infrastructure/monitoring"
	"go.uber.org/zap"
)

// Store is the fail-soft adapter over a Backend. Reads fall back to the
// caller's default and writes log instead of returning errors, so storage
// trouble never reaches the desktop.
type Store struct {
	backend Backend
	codec   *Codec
	logger  *zap.Logger
	metrics *monitoring.Metrics
	timeout time.Duration
}

// New wraps a backend.
func New(backend Backend, codec *Codec, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		backend: backend,
		codec:   codec,
		logger:  logger,
		timeout: 2 * time.Second,
	}
}

// WithMetrics adds metrics tracking to the store
func (s *Store) WithMetrics(metrics *monitoring.Metrics) *Store {
	s.metrics = metrics
	return s
}

// Save encodes and writes one key. Failures are logged and counted.
func (s *Store) Save(ctx context.Context, namespace, key string, v any) {
	timer := monitoring.NewTimer()

	data, err := s.codec.Encode(v)
	if err == nil {
		ctx, cancel := context.WithTimeout(ctx, s.timeout)
		err = s.backend.Put(ctx, namespace, key, data)
		cancel()
	}
	if err != nil {
		s.metrics.RecordStoreError(key, "save")
		s.logger.Warn("failed to persist key, keeping in-memory state",
			zap.String("namespace", namespace),
			zap.String("key", key),
			zap.Error(err),
		)
		return
	}
	s.metrics.RecordStoreWrite(key, timer.Elapsed())
}

// Delete removes one key, logging failures.
func (s *Store) Delete(ctx context.Context, namespace, key string) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.backend.Delete(ctx, namespace, key); err != nil {
		s.metrics.RecordStoreError(key, "delete")
		s.logger.Warn("failed to delete key", zap.String("namespace", namespace), zap.String("key", key), zap.Error(err))
	}
}

// Clear removes every key of a namespace, logging failures.
func (s *Store) Clear(ctx context.Context, namespace string) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.backend.DeleteNamespace(ctx, namespace); err != nil {
		s.metrics.RecordStoreError("*", "clear")
		s.logger.Warn("failed to clear namespace", zap.String("namespace", namespace), zap.Error(err))
	}
}

// Close closes the backend and codec.
func (s *Store) Close() error {
	s.codec.Close()
	return s.backend.Close()
}

// Load reads one key. A missing key, a backend error or an undecodable
// value all yield def.
func Load[T any](ctx context.Context, s *Store, namespace, key string, def T) T {
	timer := monitoring.NewTimer()
	defer func() { s.metrics.RecordStoreRead(timer.Elapsed()) }()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	data, err := s.backend.Get(ctx, namespace, key)
	if errors.Is(err, ErrNotFound) {
		s.metrics.RecordStoreFallback(key, "missing")
		return def
	}
	if err != nil {
		s.metrics.RecordStoreFallback(key, "backend")
		s.logger.Warn("failed to read key, using default",
			zap.String("namespace", namespace),
			zap.String("key", key),
			zap.Error(err),
		)
		return def
	}

	var v T
	if err := s.codec.Decode(data, &v); err != nil {
		s.metrics.RecordStoreFallback(key, "corrupt")
		s.logger.Warn("stored value is corrupt, using default",
			zap.String("namespace", namespace),
			zap.String("key", key),
			zap.Error(err),
		)
		return def
	}
	return v
}
