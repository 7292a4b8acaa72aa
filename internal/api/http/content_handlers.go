package http

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/chungquantin/chaseOS/internal/domain/content"
	"github.com/chungquantin/chaseOS/internal/shared/paths"
	"github.com/chungquantin/chaseOS/internal/shared/types"
	"github.com/chungquantin/chaseOS/internal/shared/utils"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ListPosts returns posts newest first, optionally only those published in
// the last two months.
func (h *Handlers) ListPosts(c *gin.Context) {
	recent := false
	if raw := c.Query("recent"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			badRequest(c, fmt.Errorf("recent must be true or false"))
			return
		}
		recent = v
	}

	posts, err := h.library.Posts().List(c.Request.Context(), recent, h.now())
	if err != nil {
		h.fail(c, err)
		return
	}
	h.respondCached(c, posts)
}

// GetPost returns one post.
func (h *Handlers) GetPost(c *gin.Context) {
	slug := c.Param("slug")
	if err := utils.ValidateID(slug, "slug"); err != nil {
		badRequest(c, err)
		return
	}

	post, err := h.library.Posts().Get(c.Request.Context(), slug)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.respondCached(c, post)
}

// ListRepositories returns the GitHub window's repositories.
func (h *Handlers) ListRepositories(c *gin.Context) {
	repos, err := h.repos.Repositories(c.Request.Context())
	if err != nil {
		h.logger.Error("GitHub API error", zap.Error(err))
		c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch repositories"})
		return
	}
	c.JSON(http.StatusOK, repos)
}

// GetCompany returns one work history entry.
func (h *Handlers) GetCompany(c *gin.Context) {
	id := c.Param("id")
	if err := utils.ValidateID(id, "company_id"); err != nil {
		badRequest(c, err)
		return
	}

	company, err := h.library.Catalog().Get(id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, company)
}

// ListCompanies returns the whole catalog.
func (h *Handlers) ListCompanies(c *gin.Context) {
	c.JSON(http.StatusOK, h.library.Catalog().List())
}

// GetFinder lists one finder category. Unknown categories are empty.
func (h *Handlers) GetFinder(c *gin.Context) {
	finderType := c.Param("type")
	if err := utils.ValidateID(finderType, "finder_type"); err != nil {
		badRequest(c, err)
		return
	}

	listing, err := h.library.Finder(c.Request.Context(), finderType)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, listing)
}

// Search handles the command palette.
func (h *Handlers) Search(c *gin.Context) {
	q := c.Query("q")
	if err := utils.ValidateQuery(q); err != nil {
		badRequest(c, err)
		return
	}

	hits, err := h.library.Search(c.Request.Context(), q)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"query": q, "results": hits})
}

// ListApps returns the desktop icons, optionally filtered by type.
func (h *Handlers) ListApps(c *gin.Context) {
	apps := content.Apps()
	if t := c.Query("type"); t != "" {
		apps = content.AppsByType(types.AppType(t))
	}
	c.JSON(http.StatusOK, gin.H{"apps": apps})
}

// Media serves a file from the media directory.
func (h *Handlers) Media(c *gin.Context) {
	rel := c.Param("filepath")
	if len(rel) > 0 && rel[0] == '/' {
		rel = rel[1:]
	}
	full, err := paths.Within(h.mediaDir, rel)
	if err != nil || rel == "" || !paths.Exists(full) {
		c.JSON(http.StatusNotFound, gin.H{"error": "media not found"})
		return
	}
	c.File(full)
}
