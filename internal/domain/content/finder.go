package content

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/charlievieth/fastwalk"
	"github.com/chungquantin/chaseOS/internal/domain/window"
	"github.com/chungquantin/chaseOS/internal/shared/types"
	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"
)

// MediaURLPrefix is where the server exposes the media directory.
const MediaURLPrefix = "/media"

const modifiedLayout = "Jan 2, 2006"

// ItemType distinguishes finder entries.
type ItemType string

const (
	ItemFile   ItemType = "file"
	ItemFolder ItemType = "folder"
)

// Item is one finder entry. Open is set for entries that open a window;
// media entries carry a URL instead.
type Item struct {
	ID          string                   `json:"id"`
	Name        string                   `json:"name"`
	Type        ItemType                 `json:"type"`
	Size        string                   `json:"size,omitempty"`
	Modified    string                   `json:"modified"`
	Description string                   `json:"description,omitempty"`
	MIME        string                   `json:"mime,omitempty"`
	URL         string                   `json:"url,omitempty"`
	Open        *types.OpenWindowRequest `json:"open,omitempty"`
}

// Listing is the content of one finder window.
type Listing struct {
	FinderType string `json:"finderType"`
	Title      string `json:"title"`
	Items      []Item `json:"items"`
}

// Library answers content queries for the desktop: finder listings,
// command palette search and the app registry.
type Library struct {
	posts    *Posts
	catalog  *Catalog
	mediaDir string
	logger   *zap.Logger
}

// NewLibrary combines the content sources.
func NewLibrary(posts *Posts, catalog *Catalog, mediaDir string, logger *zap.Logger) *Library {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Library{posts: posts, catalog: catalog, mediaDir: mediaDir, logger: logger}
}

// Posts returns the post source.
func (l *Library) Posts() *Posts { return l.posts }

// Catalog returns the company catalog.
func (l *Library) Catalog() *Catalog { return l.catalog }

// Post returns the window metadata of a post.
func (l *Library) Post(ctx context.Context, slug string) (window.Post, error) {
	post, err := l.posts.Get(ctx, slug)
	if err != nil {
		return window.Post{}, err
	}
	return post.WindowPost(), nil
}

// CompanyName resolves a company's display name.
func (l *Library) CompanyName(id string) (string, bool) {
	return l.catalog.CompanyName(id)
}

// KnownFinder reports whether a finder category has an app.
func KnownFinder(finderType string) bool {
	_, ok := FinderApp(finderType)
	return ok
}

// Finder lists one category. Unknown categories produce an empty listing.
func (l *Library) Finder(ctx context.Context, finderType string) (Listing, error) {
	listing := Listing{FinderType: finderType, Title: finderType, Items: []Item{}}
	app, ok := FinderApp(finderType)
	if !ok {
		l.logger.Debug("unknown finder category", zap.String("finder_type", finderType))
		return listing, nil
	}
	listing.Title = app.Name

	var err error
	switch finderType {
	case "blogs":
		listing.Items, err = l.postItems(ctx)
	case "companies":
		listing.Items = l.companyItems()
	case "images":
		listing.Items, err = l.mediaItems(ctx, finderType, "image/")
	case "videos":
		listing.Items, err = l.mediaItems(ctx, finderType, "video/")
	}
	if err != nil {
		return Listing{}, fmt.Errorf("finder %s: %w", finderType, err)
	}
	return listing, nil
}

func (l *Library) postItems(ctx context.Context) ([]Item, error) {
	posts, err := l.posts.All(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]Item, 0, len(posts))
	for _, post := range posts {
		items = append(items, Item{
			ID:          "post-" + post.Slug,
			Name:        post.Metadata.Title,
			Type:        ItemFile,
			Size:        humanize.Bytes(uint64(len(post.Content))),
			Modified:    post.Published.Format(modifiedLayout),
			Description: post.Metadata.Summary,
			Open:        &types.OpenWindowRequest{Kind: "blog", Slug: post.Slug},
		})
	}
	return items, nil
}

func (l *Library) companyItems() []Item {
	companies := l.catalog.List()
	items := make([]Item, 0, len(companies))
	for _, company := range companies {
		items = append(items, Item{
			ID:          "company-" + company.ID,
			Name:        company.Name,
			Type:        ItemFolder,
			Modified:    company.Duration,
			Description: company.Role,
			Open:        &types.OpenWindowRequest{Kind: "company", CompanyID: company.ID},
		})
	}
	return items
}

// mediaItems lists files under mediaDir/<category> whose sniffed MIME type
// has the given prefix.
func (l *Library) mediaItems(ctx context.Context, category, mimePrefix string) ([]Item, error) {
	root := filepath.Join(l.mediaDir, category)
	if _, err := os.Stat(root); errors.Is(err, os.ErrNotExist) {
		return []Item{}, nil
	}

	var (
		mu    sync.Mutex
		items []Item
	)
	conf := fastwalk.Config{Follow: false}
	err := fastwalk.Walk(&conf, root, func(p string, d os.DirEntry, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err != nil || d.IsDir() {
			return nil
		}
		mtype, err := mimetype.DetectFile(p)
		if err != nil || !strings.HasPrefix(mtype.String(), mimePrefix) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		mu.Lock()
		items = append(items, Item{
			ID:       category + "-" + rel,
			Name:     filepath.Base(p),
			Type:     ItemFile,
			Size:     humanize.Bytes(uint64(info.Size())),
			Modified: info.ModTime().Format(modifiedLayout),
			MIME:     mtype.String(),
			URL:      path.Join(MediaURLPrefix, category, rel),
		})
		mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, err
	}

	if items == nil {
		items = []Item{}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}
