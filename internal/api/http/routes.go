package http

import "github.com/gin-gonic/gin"

// Register mounts every HTTP route. desktop binds requests to a desktop
// and must run before any handler that reads one.
func (h *Handlers) Register(router gin.IRouter, desktop gin.HandlerFunc) {
	router.GET("/", h.Root)
	router.GET("/health", h.Health)
	router.GET("/media/*filepath", h.Media)

	api := router.Group("/api")

	// Content
	api.GET("/posts", h.ListPosts)
	api.GET("/posts/:slug", h.GetPost)
	api.GET("/github/repositories", h.ListRepositories)
	api.GET("/companies", h.ListCompanies)
	api.GET("/companies/:id", h.GetCompany)
	api.GET("/finder/:type", h.GetFinder)
	api.GET("/search", h.Search)
	api.GET("/apps", h.ListApps)

	// Desktop
	d := api.Group("/desktop", desktop)
	d.GET("", h.GetDesktop)
	d.GET("/processes", h.ListProcesses)
	d.POST("/windows", h.OpenWindow)
	d.DELETE("/windows/:id", h.CloseWindow)
	d.POST("/windows/:id/focus", h.FocusWindow)
	d.POST("/windows/:id/minimize", h.MinimizeWindow)
	d.POST("/windows/:id/restore", h.RestoreWindow)
	d.POST("/windows/:id/maximize", h.MaximizeWindow)
	d.PUT("/windows/:id/position", h.MoveWindow)
	d.PUT("/windows/:id/size", h.ResizeWindow)
	d.POST("/windows/:id/pointer", h.PointerEvent)
	d.POST("/taskbar/:id", h.TaskbarClick)
	d.POST("/pointer/release", h.ReleasePointer)
	d.POST("/panels/:panel/:action", h.PanelAction)
	d.POST("/shortcuts/:name", h.Shortcut)

	api.POST("/logs", desktop, h.IngestLogs)
}
