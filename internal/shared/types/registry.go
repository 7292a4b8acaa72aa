package types

// AppType distinguishes desktop icons that open a finder window from those
// that toggle a system panel.
type AppType string

const (
	AppTypeFinder AppType = "finder"
	AppTypeAction AppType = "action"
)

// App is one desktop icon in the app registry.
type App struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Icon        string  `json:"icon"`
	Type        AppType `json:"type"`
	FinderType  string  `json:"finderType,omitempty"`
}
