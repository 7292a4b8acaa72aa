package paths

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Default locations under the deployment root.
const (
	Data      = "data"
	Content   = "content"
	Posts     = "content/posts"
	Media     = "content/media"
	Companies = "content/companies.toml"
)

// Layout resolves configured paths against a deployment root.
type Layout struct {
	Root string
}

// New creates a layout. An empty root means the working directory.
func New(root string) (Layout, error) {
	if root == "" {
		root = "."
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return Layout{}, fmt.Errorf("failed to resolve root %q: %w", root, err)
	}
	return Layout{Root: abs}, nil
}

// Resolve returns p unchanged when absolute, otherwise joined to the root.
// Special names such as ":memory:" pass through.
func (l Layout) Resolve(p string) string {
	if p == "" || filepath.IsAbs(p) || strings.HasPrefix(p, ":") {
		return p
	}
	return filepath.Join(l.Root, p)
}

// Within resolves a client-supplied relative path and rejects results
// outside dir.
func Within(dir, rel string) (string, error) {
	if filepath.IsAbs(rel) {
		return "", fmt.Errorf("path %q must be relative", rel)
	}
	full := filepath.Join(dir, rel)
	back, err := filepath.Rel(dir, full)
	if err != nil || back == ".." || strings.HasPrefix(back, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q escapes %s", rel, dir)
	}
	return full, nil
}

// Exists reports whether p exists.
func Exists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
