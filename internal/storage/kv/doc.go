// Package kv persists desktop layout as independent keys per namespace.
//
// Backends:
//   - SQLite: one kv table in a modernc.org/sqlite database (default)
//   - File: one file per key, written atomically
//   - Memory: process-local, for tests and ephemeral servers
//
// Store sits in front of a backend and never returns errors to callers:
// Load falls back to a default and Save logs a warning. There is no
// transaction across keys.
//
// Example Usage:
//
//	backend, _ := kv.Open("sqlite", "data/chaseos.db")
//	codec, _ := kv.NewCodec(4096)
//	store := kv.New(backend, codec, logger)
//
//	store.Save(ctx, "desk_01H...", "next-z-index", 1042)
//	next := kv.Load(ctx, store, "desk_01H...", "next-z-index", 1000)
package kv
