package window

import (
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/bytedance/sonic"
)

// Kind names a window content variant.
type Kind string

const (
	KindBlog    Kind = "blog"
	KindCompany Kind = "company"
	KindFinder  Kind = "finder"
)

var (
	ErrInvalidContent = errors.New("invalid window content")

	contentKeyPattern = regexp.MustCompile(`^[A-Za-z0-9._-]{1,128}$`)
)

// Content is the closed set of things a window can show. The unexported
// marker keeps implementations inside this package so type switches over
// Blog, Company and Finder stay exhaustive.
type Content interface {
	Kind() Kind
	// Key is the content identity the window id is derived from.
	Key() string
	isContent()
}

// Post is the blog metadata a blog window carries.
type Post struct {
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	PublishedAt time.Time `json:"publishedAt"`
	Summary     string    `json:"summary"`
	Image       string    `json:"image,omitempty"`
}

// Blog shows one blog post.
type Blog struct {
	Post Post
}

// Company shows one work history entry.
type Company struct {
	CompanyID string
}

// Finder shows a folder listing for a category such as "blogs" or "videos".
type Finder struct {
	FinderType string
}

func (Blog) Kind() Kind    { return KindBlog }
func (Company) Kind() Kind { return KindCompany }
func (Finder) Kind() Kind  { return KindFinder }

func (b Blog) Key() string    { return b.Post.Slug }
func (c Company) Key() string { return c.CompanyID }
func (f Finder) Key() string  { return f.FinderType }

func (Blog) isContent()    {}
func (Company) isContent() {}
func (Finder) isContent()  {}

// IDFor derives the deterministic window id for content, e.g. "blog-hello".
func IDFor(c Content) string {
	return string(c.Kind()) + "-" + c.Key()
}

// ValidateContent checks the content identity is usable as an id suffix.
func ValidateContent(c Content) error {
	if c == nil {
		return fmt.Errorf("%w: missing content", ErrInvalidContent)
	}
	if !contentKeyPattern.MatchString(c.Key()) {
		return fmt.Errorf("%w: %s key %q", ErrInvalidContent, c.Kind(), c.Key())
	}
	if b, ok := c.(Blog); ok && b.Post.Title == "" {
		return fmt.Errorf("%w: blog %q has no title", ErrInvalidContent, b.Post.Slug)
	}
	return nil
}

// contentJSON is the tagged wire form: {"kind": "...", ...payload}.
type contentJSON struct {
	Kind       Kind   `json:"kind"`
	Post       *Post  `json:"post,omitempty"`
	CompanyID  string `json:"companyId,omitempty"`
	FinderType string `json:"finderType,omitempty"`
}

func encodeContent(c Content) (contentJSON, error) {
	switch v := c.(type) {
	case Blog:
		p := v.Post
		return contentJSON{Kind: KindBlog, Post: &p}, nil
	case Company:
		return contentJSON{Kind: KindCompany, CompanyID: v.CompanyID}, nil
	case Finder:
		return contentJSON{Kind: KindFinder, FinderType: v.FinderType}, nil
	default:
		return contentJSON{}, fmt.Errorf("%w: unknown content %T", ErrInvalidContent, c)
	}
}

func (cj contentJSON) decode() (Content, error) {
	switch cj.Kind {
	case KindBlog:
		if cj.Post == nil {
			return nil, fmt.Errorf("%w: blog without post", ErrInvalidContent)
		}
		return Blog{Post: *cj.Post}, nil
	case KindCompany:
		return Company{CompanyID: cj.CompanyID}, nil
	case KindFinder:
		return Finder{FinderType: cj.FinderType}, nil
	default:
		return nil, fmt.Errorf("%w: unknown kind %q", ErrInvalidContent, cj.Kind)
	}
}

// MarshalContent encodes content in its tagged JSON form.
func MarshalContent(c Content) ([]byte, error) {
	cj, err := encodeContent(c)
	if err != nil {
		return nil, err
	}
	return sonic.Marshal(cj)
}

// UnmarshalContent decodes tagged JSON content.
func UnmarshalContent(data []byte) (Content, error) {
	var cj contentJSON
	if err := sonic.Unmarshal(data, &cj); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidContent, err)
	}
	return cj.decode()
}
