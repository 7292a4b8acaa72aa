package taskbar

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/chungquantin/chaseOS/internal/domain/window"
	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// UnknownCompany names company windows whose id is not in the catalog.
const UnknownCompany = "Unknown Company"

// Namer resolves display names that records do not carry themselves.
type Namer interface {
	CompanyName(id string) (string, bool)
}

// NamerFunc adapts a function to Namer.
type NamerFunc func(id string) (string, bool)

func (f NamerFunc) CompanyName(id string) (string, bool) { return f(id) }

var titleCaser = cases.Title(language.English)

// Name is the human readable name of a window's content: the post title,
// the company name, or "<Type> Finder".
func Name(c window.Content, names Namer) string {
	switch v := c.(type) {
	case window.Blog:
		return v.Post.Title
	case window.Company:
		if names != nil {
			if name, ok := names.CompanyName(v.CompanyID); ok && name != "" {
				return name
			}
		}
		return UnknownCompany
	case window.Finder:
		return titleCaser.String(v.FinderType) + " Finder"
	default:
		return "Unknown Window"
	}
}

// SortKey selects the process list ordering.
type SortKey string

const (
	SortByName    SortKey = "name"
	SortByRuntime SortKey = "runtime"
)

// Order is the sort direction.
type Order string

const (
	Asc  Order = "asc"
	Desc Order = "desc"
)

// Query controls the process list.
type Query struct {
	Sort   SortKey
	Order  Order
	Filter string
}

// ParseQuery normalizes raw query parameters, falling back to name
// ascending for unknown values.
func ParseQuery(sortKey, order, filter string) Query {
	q := Query{Sort: SortByName, Order: Asc, Filter: strings.TrimSpace(filter)}
	if SortKey(sortKey) == SortByRuntime {
		q.Sort = SortByRuntime
	}
	if Order(order) == Desc {
		q.Order = Desc
	}
	return q
}

// Process is one row of the activity monitor.
type Process struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Type        window.Kind   `json:"type"`
	IsMinimized bool          `json:"isMinimized"`
	StartTime   time.Time     `json:"startTime"`
	Runtime     time.Duration `json:"-"`
	RuntimeSecs int64         `json:"runtime"`
	RuntimeText string        `json:"runtimeText"`
}

// Processes lists one row per record, filtered by a case-insensitive
// substring of the name and sorted per q.
func Processes(records []window.Record, names Namer, now time.Time, q Query) []Process {
	filter := strings.ToLower(q.Filter)

	out := make([]Process, 0, len(records))
	for _, rec := range records {
		name := Name(rec.Content, names)
		if filter != "" && !strings.Contains(strings.ToLower(name), filter) {
			continue
		}
		runtime := max(now.Sub(rec.StartTime), 0).Truncate(time.Second)
		out = append(out, Process{
			ID:          rec.ID,
			Name:        name,
			Type:        rec.Content.Kind(),
			IsMinimized: rec.IsMinimized,
			StartTime:   rec.StartTime,
			Runtime:     runtime,
			RuntimeSecs: int64(runtime / time.Second),
			RuntimeText: FormatRuntime(runtime),
		})
	}

	var compare func(a, b Process) int
	switch q.Sort {
	case SortByRuntime:
		compare = func(a, b Process) int { return int(a.Runtime - b.Runtime) }
	default:
		coll := collate.New(language.English, collate.IgnoreCase)
		compare = func(a, b Process) int { return coll.CompareString(a.Name, b.Name) }
	}
	sort.SliceStable(out, func(i, j int) bool {
		if q.Order == Desc {
			return compare(out[j], out[i]) < 0
		}
		return compare(out[i], out[j]) < 0
	})
	return out
}

// FormatRuntime renders a duration as "h:mm:ss", "m:ss" or "Ns".
func FormatRuntime(d time.Duration) string {
	secs := int(d / time.Second)
	h, m, s := secs/3600, (secs%3600)/60, secs%60
	switch {
	case h > 0:
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	case m > 0:
		return fmt.Sprintf("%d:%02d", m, s)
	default:
		return fmt.Sprintf("%ds", s)
	}
}

func sortByRenderZ(records []window.Record) {
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].RenderZ() != records[j].RenderZ() {
			return records[i].RenderZ() < records[j].RenderZ()
		}
		return records[i].ZIndex < records[j].ZIndex
	})
}
