package ws

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/chungquantin/chaseOS/internal/api/middleware"
	"github.com/chungquantin/chaseOS/internal/domain/desktop"
	"github.com/chungquantin/chaseOS/internal/infrastructure/monitoring"
	"github.com/chungquantin/chaseOS/internal/shared/types"
	"github.com/chungquantin/chaseOS/internal/shared/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	sendBuffer = 16
)

// Outbound message types.
const (
	TypeSnapshot = "snapshot"
	TypePong     = "pong"
	TypeError    = "error"
)

// Outbound is a server to client message.
type Outbound struct {
	Type     string            `json:"type"`
	Snapshot *desktop.Snapshot `json:"snapshot,omitempty"`
	Message  string            `json:"message,omitempty"`
	Time     int64             `json:"timestamp"`
}

// Handler upgrades desktop stream connections.
type Handler struct {
	desktops *desktop.Registry
	upgrader websocket.Upgrader
	logger   *zap.Logger
	metrics  *monitoring.Metrics
}

// NewHandler creates a stream handler. checkOrigin may be nil to accept
// every origin.
func NewHandler(desktops *desktop.Registry, checkOrigin func(*http.Request) bool, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if checkOrigin == nil {
		checkOrigin = func(*http.Request) bool { return true }
	}
	return &Handler{
		desktops: desktops,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     checkOrigin,
		},
		logger: logger,
	}
}

// WithMetrics adds metrics tracking to the handler
func (h *Handler) WithMetrics(metrics *monitoring.Metrics) *Handler {
	h.metrics = metrics
	return h
}

// HandleConnection upgrades the request and serves the connection until
// either side closes it.
func (h *Handler) HandleConnection(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	desktopID := middleware.DesktopID(c)
	s := &session{
		id:      uuid.NewString(),
		conn:    conn,
		desktop: h.desktops.Get(c.Request.Context(), desktopID),
		send:    make(chan Outbound, sendBuffer),
		logger:  h.logger.With(zap.String("desktop_id", desktopID)),
		metrics: h.metrics,
	}
	s.logger = s.logger.With(zap.String("conn_id", s.id))

	h.metrics.IncWSConnections()
	defer h.metrics.DecWSConnections()

	s.logger.Debug("stream connected")
	s.serve(context.WithoutCancel(c.Request.Context()))
	s.logger.Debug("stream closed")
}

// session is one connection bound to one desktop.
type session struct {
	id      string
	conn    *websocket.Conn
	desktop *desktop.Desktop
	send    chan Outbound
	logger  *zap.Logger
	metrics *monitoring.Metrics
}

func (s *session) serve(ctx context.Context) {
	snapshots, cancel := s.desktop.Subscribe()
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.writeLoop(snapshots)
	}()

	s.readLoop(ctx)
	close(s.send)
	<-done
	s.conn.Close()
}

func (s *session) readLoop(ctx context.Context) {
	s.conn.SetReadLimit(utils.MaxMessageSize)
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Warn("stream read error", zap.Error(err))
			}
			return
		}

		var msg types.WSMessage
		if err := sonic.Unmarshal(data, &msg); err != nil {
			s.reply(Outbound{Type: TypeError, Message: "malformed message"})
			continue
		}
		s.metrics.RecordWSMessage("in", msg.Type)

		if msg.Type == "ping" {
			s.reply(Outbound{Type: TypePong})
			continue
		}
		if err := Dispatch(ctx, s.desktop, msg); err != nil {
			s.reply(Outbound{Type: TypeError, Message: err.Error()})
		}
	}
}

// reply queues a message, dropping it if the writer is backed up.
func (s *session) reply(out Outbound) {
	select {
	case s.send <- out:
	default:
		s.logger.Warn("stream send buffer full", zap.String("type", out.Type))
	}
}

func (s *session) writeLoop(snapshots <-chan desktop.Snapshot) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	// Unblocks the reader when a write fails.
	defer s.conn.Close()

	initial := s.desktop.Snapshot()
	if err := s.write(Outbound{Type: TypeSnapshot, Snapshot: &initial}); err != nil {
		return
	}

	for {
		select {
		case out, ok := <-s.send:
			if !ok {
				s.conn.SetWriteDeadline(time.Now().Add(writeWait))
				s.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := s.write(out); err != nil {
				return
			}
		case snap := <-snapshots:
			if err := s.write(Outbound{Type: TypeSnapshot, Snapshot: &snap}); err != nil {
				return
			}
		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (s *session) write(out Outbound) error {
	out.Time = time.Now().Unix()
	data, err := sonic.Marshal(out)
	if err != nil {
		return err
	}
	s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		s.logger.Debug("stream write failed", zap.Error(err))
		return err
	}
	s.metrics.RecordWSMessage("out", out.Type)
	return nil
}

// ErrUnknownMessage is returned for message types Dispatch does not handle.
var ErrUnknownMessage = errors.New("unknown message type")

// Dispatch applies one client message to d. Commands on unknown windows
// are no-ops, as over HTTP.
func Dispatch(ctx context.Context, d *desktop.Desktop, msg types.WSMessage) error {
	switch msg.Type {
	case "open":
		if msg.Open == nil {
			return fmt.Errorf("%w: open needs a request", desktop.ErrInvalidRequest)
		}
		_, err := d.Open(ctx, *msg.Open)
		return err
	case "close":
		d.Close(msg.WindowID)
	case "focus":
		d.Focus(msg.WindowID)
	case "minimize":
		d.Minimize(msg.WindowID)
	case "restore":
		d.Restore(msg.WindowID)
	case "taskbar":
		d.TaskbarClick(msg.WindowID)
	case "maximize":
		d.ToggleMaximize(msg.WindowID, msg.Viewport)
	case "move":
		if msg.Position == nil {
			return fmt.Errorf("%w: move needs a position", desktop.ErrInvalidRequest)
		}
		d.MoveTo(msg.WindowID, *msg.Position)
	case "resize":
		if msg.Size == nil {
			return fmt.Errorf("%w: resize needs a size", desktop.ErrInvalidRequest)
		}
		d.ResizeTo(msg.WindowID, *msg.Size)
	case "pointer":
		if msg.Pointer == nil {
			return fmt.Errorf("%w: pointer needs an event", desktop.ErrInvalidRequest)
		}
		_, err := d.Pointer(msg.WindowID, *msg.Pointer)
		return err
	case "release":
		d.ReleasePointer()
	case "panel_open", "panel_close", "panel_focus":
		name, err := desktop.ParsePanel(msg.Panel)
		if err != nil {
			return err
		}
		switch msg.Type {
		case "panel_open":
			_, err = d.OpenPanel(name)
		case "panel_close":
			_, err = d.ClosePanel(name)
		default:
			_, err = d.FocusPanel(name)
		}
		return err
	case "shortcut":
		return d.Shortcut(ctx, msg.Message)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownMessage, msg.Type)
	}
	return nil
}
