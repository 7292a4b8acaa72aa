package content

import "github.com/chungquantin/chaseOS/internal/shared/types"

// Action app ids double as system panel names.
const (
	AppTaskManager = "task-manager"
	AppGitHub      = "github"
)

var apps = []types.App{
	{ID: "blogs", Name: "Blogs", Description: "Browse all blog posts", Icon: "FileText", Type: types.AppTypeFinder, FinderType: "blogs"},
	{ID: "companies", Name: "Companies", Description: "View work experience", Icon: "Building2", Type: types.AppTypeFinder, FinderType: "companies"},
	{ID: AppTaskManager, Name: "Activity Monitor", Description: "Manage running windows and processes", Icon: "/apps/activity-monitor.png", Type: types.AppTypeAction},
	{ID: "images", Name: "Photos", Description: "Browse and view images", Icon: "/apps/image-gallery.png", Type: types.AppTypeFinder, FinderType: "images"},
	{ID: "videos", Name: "Videos", Description: "Edit and create videos", Icon: "/apps/capcut.webp", Type: types.AppTypeFinder, FinderType: "videos"},
	{ID: AppGitHub, Name: "GitHub", Description: "Browse repositories and contributions", Icon: "Github", Type: types.AppTypeAction},
}

// Apps returns the desktop icons in display order.
func Apps() []types.App {
	out := make([]types.App, len(apps))
	copy(out, apps)
	return out
}

// AppsByType returns the apps of one type.
func AppsByType(t types.AppType) []types.App {
	var out []types.App
	for _, app := range apps {
		if app.Type == t {
			out = append(out, app)
		}
	}
	return out
}

// AppByID finds an app.
func AppByID(id string) (types.App, bool) {
	for _, app := range apps {
		if app.ID == id {
			return app, true
		}
	}
	return types.App{}, false
}

// FinderApp returns the finder app showing a category.
func FinderApp(finderType string) (types.App, bool) {
	for _, app := range apps {
		if app.Type == types.AppTypeFinder && app.FinderType == finderType {
			return app, true
		}
	}
	return types.App{}, false
}
