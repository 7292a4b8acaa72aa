package content

import (
	"context"
	"strings"

	"github.com/chungquantin/chaseOS/internal/shared/types"
)

// HitKind groups command palette results.
type HitKind string

const (
	HitApp     HitKind = "app"
	HitPost    HitKind = "post"
	HitCompany HitKind = "company"
)

// Hit is one command palette result. Selecting it either opens a window
// (Open) or toggles a system panel (Panel).
type Hit struct {
	Kind     HitKind                  `json:"kind"`
	ID       string                   `json:"id"`
	Title    string                   `json:"title"`
	Subtitle string                   `json:"subtitle,omitempty"`
	Icon     string                   `json:"icon,omitempty"`
	Open     *types.OpenWindowRequest `json:"open,omitempty"`
	Panel    string                   `json:"panel,omitempty"`
}

// Search matches query case-insensitively against app names, post titles,
// summaries and excerpts, and company names and roles. An empty query
// returns everything, apps first.
func (l *Library) Search(ctx context.Context, query string) ([]Hit, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	match := func(fields ...string) bool {
		if q == "" {
			return true
		}
		for _, f := range fields {
			if strings.Contains(strings.ToLower(f), q) {
				return true
			}
		}
		return false
	}

	hits := []Hit{}
	for _, app := range apps {
		if !match(app.Name, app.Description) {
			continue
		}
		hit := Hit{Kind: HitApp, ID: app.ID, Title: app.Name, Subtitle: app.Description, Icon: app.Icon}
		if app.Type == types.AppTypeFinder {
			hit.Open = &types.OpenWindowRequest{Kind: "finder", FinderType: app.FinderType}
		} else {
			hit.Panel = app.ID
		}
		hits = append(hits, hit)
	}

	posts, err := l.posts.All(ctx)
	if err != nil {
		return nil, err
	}
	for _, post := range posts {
		if !match(post.Metadata.Title, post.Metadata.Summary, post.Excerpt) {
			continue
		}
		hits = append(hits, Hit{
			Kind:     HitPost,
			ID:       post.Slug,
			Title:    post.Metadata.Title,
			Subtitle: post.Metadata.Summary,
			Open:     &types.OpenWindowRequest{Kind: "blog", Slug: post.Slug},
		})
	}

	for _, company := range l.catalog.List() {
		if !match(company.Name, company.Role) {
			continue
		}
		hits = append(hits, Hit{
			Kind:     HitCompany,
			ID:       company.ID,
			Title:    company.Name,
			Subtitle: company.Role,
			Icon:     company.Logo,
			Open:     &types.OpenWindowRequest{Kind: "company", CompanyID: company.ID},
		})
	}
	return hits, nil
}
