package content

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charlievieth/fastwalk"
	"github.com/chungquantin/chaseOS/internal/domain/window"
	"github.com/goccy/go-yaml"
	"github.com/microcosm-cc/bluemonday"
	"github.com/saintfish/chardet"
	"go.uber.org/zap"
	"golang.org/x/net/html/charset"
)

const (
	// RecentMonths is the window the recent filter keeps.
	RecentMonths = 2
	// ExcerptLength bounds the plain text kept for search.
	ExcerptLength = 280
)

var (
	ErrPostNotFound = errors.New("post not found")
	errFrontmatter  = errors.New("missing frontmatter")

	frontmatterPattern = regexp.MustCompile(`(?s)^---\s*\n(.*?)\n---\s*(?:\n|$)(.*)$`)
	whitespacePattern  = regexp.MustCompile(`\s+`)

	publishedLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}
)

// Metadata is the frontmatter of one post.
type Metadata struct {
	Title       string `json:"title" yaml:"title"`
	PublishedAt string `json:"publishedAt" yaml:"publishedAt"`
	Summary     string `json:"summary" yaml:"summary"`
	Image       string `json:"image,omitempty" yaml:"image"`
}

// Post is one blog post as served by the posts endpoint. Content is the
// raw markdown body; rendering it is the client's job.
type Post struct {
	Metadata Metadata `json:"metadata"`
	Slug     string   `json:"slug"`
	Content  string   `json:"content"`

	Published time.Time `json:"-"`
	Excerpt   string    `json:"-"`
}

// WindowPost converts the post to the metadata a blog window carries.
func (p Post) WindowPost() window.Post {
	return window.Post{
		Slug:        p.Slug,
		Title:       p.Metadata.Title,
		PublishedAt: p.Published,
		Summary:     p.Metadata.Summary,
		Image:       p.Metadata.Image,
	}
}

// Posts reads blog posts from a directory tree. Files are re-read on every
// call so edits show up without a restart.
type Posts struct {
	dir       string
	glob      string
	logger    *zap.Logger
	sanitizer *bluemonday.Policy
}

// NewPosts creates a post source rooted at dir. glob is matched against
// slash separated paths relative to dir.
func NewPosts(dir, glob string, logger *zap.Logger) (*Posts, error) {
	if !doublestar.ValidatePattern(glob) {
		return nil, fmt.Errorf("invalid posts glob %q", glob)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Posts{
		dir:       dir,
		glob:      glob,
		logger:    logger,
		sanitizer: bluemonday.StrictPolicy(),
	}, nil
}

// All returns every readable post, newest first. A missing directory is an
// empty blog, not an error.
func (p *Posts) All(ctx context.Context) ([]Post, error) {
	if _, err := os.Stat(p.dir); errors.Is(err, os.ErrNotExist) {
		return []Post{}, nil
	}

	var (
		mu    sync.Mutex
		paths []string
	)
	conf := fastwalk.Config{Follow: false}
	err := fastwalk.Walk(&conf, p.dir, func(path string, d os.DirEntry, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err != nil || d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(p.dir, path)
		if err != nil {
			return nil
		}
		if ok, _ := doublestar.Match(p.glob, filepath.ToSlash(rel)); ok {
			mu.Lock()
			paths = append(paths, path)
			mu.Unlock()
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk posts: %w", err)
	}

	// fastwalk visits files concurrently; sort for a stable slug winner.
	sort.Strings(paths)

	posts := make([]Post, 0, len(paths))
	seen := make(map[string]bool, len(paths))
	for _, path := range paths {
		post, err := p.read(path)
		if err != nil {
			p.logger.Warn("skipping post", zap.String("path", path), zap.Error(err))
			continue
		}
		if seen[post.Slug] {
			p.logger.Warn("duplicate post slug", zap.String("slug", post.Slug), zap.String("path", path))
			continue
		}
		seen[post.Slug] = true
		posts = append(posts, post)
	}

	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].Published.After(posts[j].Published)
	})
	return posts, nil
}

// List returns posts newest first. With recent set, only posts published
// within the last RecentMonths calendar months of now are kept.
func (p *Posts) List(ctx context.Context, recent bool, now time.Time) ([]Post, error) {
	posts, err := p.All(ctx)
	if err != nil {
		return nil, err
	}
	if !recent {
		return posts, nil
	}
	return FilterRecent(posts, now), nil
}

// Get returns the post with the given slug.
func (p *Posts) Get(ctx context.Context, slug string) (Post, error) {
	posts, err := p.All(ctx)
	if err != nil {
		return Post{}, err
	}
	for _, post := range posts {
		if post.Slug == slug {
			return post, nil
		}
	}
	return Post{}, fmt.Errorf("%w: %s", ErrPostNotFound, slug)
}

// FilterRecent keeps posts published at or after now minus RecentMonths.
func FilterRecent(posts []Post, now time.Time) []Post {
	cutoff := now.AddDate(0, -RecentMonths, 0)
	out := make([]Post, 0, len(posts))
	for _, post := range posts {
		if !post.Published.Before(cutoff) {
			out = append(out, post)
		}
	}
	return out
}

func (p *Posts) read(path string) (Post, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Post{}, err
	}
	text, err := toUTF8(data)
	if err != nil {
		return Post{}, err
	}

	slug := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	post, err := ParsePost(slug, text)
	if err != nil {
		return Post{}, err
	}
	post.Excerpt = p.excerpt(post.Content)
	return post, nil
}

// ParsePost splits a document into YAML frontmatter and body.
func ParsePost(slug, text string) (Post, error) {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	m := frontmatterPattern.FindStringSubmatch(strings.TrimPrefix(text, "\ufeff"))
	if m == nil {
		return Post{}, errFrontmatter
	}

	var meta Metadata
	if err := yaml.Unmarshal([]byte(m[1]), &meta); err != nil {
		return Post{}, fmt.Errorf("parse frontmatter: %w", err)
	}
	if meta.Title == "" {
		return Post{}, errors.New("frontmatter has no title")
	}
	published, err := parsePublished(meta.PublishedAt)
	if err != nil {
		return Post{}, err
	}

	return Post{
		Metadata:  meta,
		Slug:      slug,
		Content:   strings.TrimSpace(m[2]),
		Published: published,
	}, nil
}

func parsePublished(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range publishedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid publishedAt %q", s)
}

func (p *Posts) excerpt(body string) string {
	plain := p.sanitizer.Sanitize(body)
	plain = strings.TrimSpace(whitespacePattern.ReplaceAllString(plain, " "))
	if utf8.RuneCountInString(plain) <= ExcerptLength {
		return plain
	}
	return string([]rune(plain)[:ExcerptLength])
}

// toUTF8 decodes data in whatever encoding it was saved in.
func toUTF8(data []byte) (string, error) {
	if utf8.Valid(data) {
		return string(data), nil
	}

	result, err := chardet.NewTextDetector().DetectBest(data)
	if err != nil || result == nil {
		return "", fmt.Errorf("unknown text encoding")
	}
	enc, name := charset.Lookup(result.Charset)
	if enc == nil {
		return "", fmt.Errorf("unsupported text encoding %q", result.Charset)
	}
	decoded, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", name, err)
	}
	return string(bytes.TrimPrefix(decoded, []byte("\ufeff"))), nil
}
