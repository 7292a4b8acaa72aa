package ws

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/chungquantin/chaseOS/internal/api/middleware"
	"github.com/chungquantin/chaseOS/internal/domain/desktop"
	"github.com/chungquantin/chaseOS/internal/domain/window"
	"github.com/chungquantin/chaseOS/internal/shared/types"
	"github.com/chungquantin/chaseOS/internal/storage/kv"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeResolver struct{}

func (fakeResolver) Post(_ context.Context, slug string) (window.Post, error) {
	if slug == "missing" {
		return window.Post{}, desktop.ErrUnknownContent
	}
	return window.Post{Slug: slug, Title: "Post " + slug}, nil
}

func (fakeResolver) CompanyName(id string) (string, bool) {
	return "Parity Technologies", id == "parity"
}

func newRegistry(t *testing.T) *desktop.Registry {
	t.Helper()
	codec, err := kv.NewCodec(0)
	require.NoError(t, err)
	r := desktop.NewRegistry(kv.New(kv.NewMemory(), codec, nil), fakeResolver{}, desktop.Options{}, 0)
	t.Cleanup(r.Close)
	return r
}

func newDesktop(t *testing.T) *desktop.Desktop {
	t.Helper()
	return newRegistry(t).Get(context.Background(), "ws-test")
}

func startServer(t *testing.T) (*httptest.Server, *desktop.Registry) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	registry := newRegistry(t)
	router := gin.New()
	router.GET("/api/desktop/stream",
		middleware.Desktop(middleware.DefaultDesktopConfig()),
		NewHandler(registry, nil, nil).HandleConnection,
	)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv, registry
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/desktop/stream"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	resp.Body.Close()
	t.Cleanup(func() { conn.Close() })
	return conn
}

// readUntil reads messages until one satisfies match.
func readUntil(t *testing.T, conn *websocket.Conn, match func(Outbound) bool) Outbound {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	for {
		var out Outbound
		require.NoError(t, conn.ReadJSON(&out))
		if match(out) {
			return out
		}
	}
}

func isType(typ string) func(Outbound) bool {
	return func(o Outbound) bool { return o.Type == typ }
}

func TestStreamSendsInitialSnapshot(t *testing.T) {
	srv, _ := startServer(t)
	conn := dial(t, srv)

	out := readUntil(t, conn, isType(TypeSnapshot))
	require.NotNil(t, out.Snapshot)
	assert.Empty(t, out.Snapshot.Windows)
	assert.NotEmpty(t, out.Snapshot.DesktopID)
}

func TestStreamCommandsProduceSnapshots(t *testing.T) {
	srv, _ := startServer(t)
	conn := dial(t, srv)
	readUntil(t, conn, isType(TypeSnapshot))

	require.NoError(t, conn.WriteJSON(types.WSMessage{
		Type: "open",
		Open: &types.OpenWindowRequest{Kind: "blog", Slug: "a"},
	}))
	out := readUntil(t, conn, func(o Outbound) bool {
		return o.Type == TypeSnapshot && len(o.Snapshot.Windows) == 1
	})
	assert.Equal(t, "blog-a", out.Snapshot.Windows[0].ID)

	require.NoError(t, conn.WriteJSON(types.WSMessage{Type: "minimize", WindowID: "blog-a"}))
	out = readUntil(t, conn, func(o Outbound) bool {
		return o.Type == TypeSnapshot && len(o.Snapshot.Windows) == 1 && o.Snapshot.Windows[0].IsMinimized
	})
	assert.Empty(t, out.Snapshot.RenderSet)
}

func TestStreamPingAndErrors(t *testing.T) {
	srv, _ := startServer(t)
	conn := dial(t, srv)
	readUntil(t, conn, isType(TypeSnapshot))

	require.NoError(t, conn.WriteJSON(types.WSMessage{Type: "ping"}))
	readUntil(t, conn, isType(TypePong))

	require.NoError(t, conn.WriteJSON(types.WSMessage{Type: "teleport"}))
	out := readUntil(t, conn, isType(TypeError))
	assert.Contains(t, out.Message, "unknown message type")

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))
	out = readUntil(t, conn, isType(TypeError))
	assert.Equal(t, "malformed message", out.Message)
}

func TestStreamKeepsDesktopAlive(t *testing.T) {
	srv, registry := startServer(t)
	conn := dial(t, srv)
	readUntil(t, conn, isType(TypeSnapshot))

	assert.Equal(t, 1, registry.Len())
	assert.Equal(t, 0, registry.Sweep(), "sweep is disabled without an idle TTL")
}

func TestDispatch(t *testing.T) {
	ctx := context.Background()
	d := newDesktop(t)

	require.NoError(t, Dispatch(ctx, d, types.WSMessage{Type: "open", Open: &types.OpenWindowRequest{Kind: "company", CompanyID: "parity"}}))
	require.NoError(t, Dispatch(ctx, d, types.WSMessage{Type: "move", WindowID: "company-parity", Position: &types.Position{X: 10, Y: 20}}))
	require.NoError(t, Dispatch(ctx, d, types.WSMessage{Type: "resize", WindowID: "company-parity", Size: &types.Size{Width: 640, Height: 480}}))

	snap := d.Snapshot()
	require.Len(t, snap.Windows, 1)
	assert.Equal(t, types.Position{X: 10, Y: 20}, snap.Windows[0].Position)
	assert.Equal(t, types.Size{Width: 640, Height: 480}, snap.Windows[0].Size)

	require.NoError(t, Dispatch(ctx, d, types.WSMessage{Type: "panel_open", Panel: "task-manager"}))
	assert.True(t, d.Snapshot().Panels[desktop.PanelTaskManager].Open)

	require.NoError(t, Dispatch(ctx, d, types.WSMessage{Type: "shortcut", Message: "search"}))
	assert.True(t, d.Snapshot().SearchOpen)

	require.NoError(t, Dispatch(ctx, d, types.WSMessage{Type: "close", WindowID: "company-parity"}))
	assert.Empty(t, d.Snapshot().Windows)

	// Unknown windows are no-ops
	assert.NoError(t, Dispatch(ctx, d, types.WSMessage{Type: "focus", WindowID: "blog-ghost"}))
}

func TestDispatchErrors(t *testing.T) {
	ctx := context.Background()
	d := newDesktop(t)

	tests := []struct {
		name string
		msg  types.WSMessage
		want error
	}{
		{"open without request", types.WSMessage{Type: "open"}, desktop.ErrInvalidRequest},
		{"move without position", types.WSMessage{Type: "move", WindowID: "x"}, desktop.ErrInvalidRequest},
		{"resize without size", types.WSMessage{Type: "resize", WindowID: "x"}, desktop.ErrInvalidRequest},
		{"pointer without event", types.WSMessage{Type: "pointer", WindowID: "x"}, desktop.ErrInvalidRequest},
		{"unknown panel", types.WSMessage{Type: "panel_open", Panel: "calculator"}, desktop.ErrUnknownPanel},
		{"unknown shortcut", types.WSMessage{Type: "shortcut", Message: "undo"}, desktop.ErrUnknownShortcut},
		{"unknown content", types.WSMessage{Type: "open", Open: &types.OpenWindowRequest{Kind: "blog", Slug: "missing"}}, desktop.ErrUnknownContent},
		{"unknown type", types.WSMessage{Type: "teleport"}, ErrUnknownMessage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, Dispatch(ctx, d, tt.msg), tt.want)
		})
	}
}

func TestOriginCheckerDefaultAllowsAll(t *testing.T) {
	h := NewHandler(newRegistry(t), nil, nil)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://elsewhere.example")
	assert.True(t, h.upgrader.CheckOrigin(req))
}
