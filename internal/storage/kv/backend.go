package kv

import (
	"context"
	"errors"
	"fmt"
	"regexp"
)

// ErrNotFound is returned by backends for absent keys.
var ErrNotFound = errors.New("key not found")

var namePattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,128}$`)

// Backend is raw byte storage partitioned by namespace. Implementations
// must be safe for concurrent use.
type Backend interface {
	Get(ctx context.Context, namespace, key string) ([]byte, error)
	Put(ctx context.Context, namespace, key string, value []byte) error
	Delete(ctx context.Context, namespace, key string) error
	DeleteNamespace(ctx context.Context, namespace string) error
	Close() error
}

// Open selects a backend by driver name: "sqlite", "file" or "memory".
func Open(driver, path string) (Backend, error) {
	switch driver {
	case "sqlite":
		return OpenSQLite(path)
	case "file":
		return OpenFile(path)
	case "memory", "":
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", driver)
	}
}

func validateName(kind, name string) error {
	if !namePattern.MatchString(name) {
		return fmt.Errorf("invalid %s %q", kind, name)
	}
	return nil
}
