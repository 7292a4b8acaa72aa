package kv

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// File stores each value as <root>/<namespace>/<key>.json.
type File struct {
	root string
}

// OpenFile creates the root directory if needed.
func OpenFile(root string) (*File, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create store root: %w", err)
	}
	return &File{root: root}, nil
}

func (f *File) path(namespace, key string) (string, error) {
	if err := validateName("namespace", namespace); err != nil {
		return "", err
	}
	if err := validateName("key", key); err != nil {
		return "", err
	}
	return filepath.Join(f.root, namespace, key+".json"), nil
}

func (f *File) Get(_ context.Context, namespace, key string) ([]byte, error) {
	p, err := f.path(namespace, key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	return data, err
}

// Put writes through a temp file and rename so readers never see a torn value.
func (f *File) Put(_ context.Context, namespace, key string, value []byte) error {
	p, err := f.path(namespace, key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(p), key+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), p)
}

func (f *File) Delete(_ context.Context, namespace, key string) error {
	p, err := f.path(namespace, key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func (f *File) DeleteNamespace(_ context.Context, namespace string) error {
	if err := validateName("namespace", namespace); err != nil {
		return err
	}
	return os.RemoveAll(filepath.Join(f.root, namespace))
}

func (f *File) Close() error { return nil }
