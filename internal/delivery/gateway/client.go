package gateway

import (
	"log/slog"
	"sync"
	"time"

	"beacon/config"
	"beacon/internal/domain/realtime"
	"beacon/internal/domain/service"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
)

var (
	// ErrClientClosed is returned by Emit once the connection is closing.
	ErrClientClosed = errors.New("client closed")

	// ErrSendBufferFull is returned by Emit when the client has fallen behind.
	ErrSendBufferFull = errors.New("client send buffer full")
)

// wsConn is the part of *websocket.Conn the pumps use.
type wsConn interface {
	SetReadLimit(limit int64)
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	SetPongHandler(h func(appData string) error)
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	WriteControl(messageType int, data []byte, deadline time.Time) error
	Close() error
}

// client is one websocket connection. Outbound frames go through a bounded buffer
// drained by writePump; inbound frames are handled one at a time by readPump.
type client struct {
	id     realtime.ConnID
	userID uuid.UUID
	conn   wsConn

	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once

	cfg     config.WebSocketConfig
	metrics service.RealtimeMetrics
	logger  *slog.Logger
}

var _ realtime.Conn = (*client)(nil)

func newClient(conn wsConn, userID uuid.UUID, cfg config.WebSocketConfig, metrics service.RealtimeMetrics, logger *slog.Logger) *client {
	id := realtime.ConnID(uuid.NewString())

	return &client{
		id:      id,
		userID:  userID,
		conn:    conn,
		send:    make(chan []byte, cfg.SendBuffer),
		done:    make(chan struct{}),
		cfg:     cfg,
		metrics: metrics,
		logger:  logger.With(slog.String("connection_id", string(id)), slog.String("user_id", userID.String())),
	}
}

func (c *client) ID() realtime.ConnID { return c.id }

func (c *client) UserID() uuid.UUID { return c.userID }

// Emit encodes one event and queues it without waiting for the network. A full
// buffer drops the event.
func (c *client) Emit(event string, payload any) error {
	frame, err := encodeFrame(event, payload)
	if err != nil {
		return err
	}

	select {
	case <-c.done:
		return ErrClientClosed
	default:
	}

	select {
	case c.send <- frame:
		return nil
	default:
		c.metrics.FrameDropped()
		c.logger.Warn("[Gateway] Send buffer full, dropping event", slog.String("event", event))

		return ErrSendBufferFull
	}
}

// Close stops both pumps. It is safe to call more than once.
func (c *client) Close() error {
	c.closeOnce.Do(func() {
		close(c.done)
	})

	return nil
}

func (c *client) pingPeriod() time.Duration {
	return (c.cfg.PongWait * 9) / 10
}

// writePump owns all writes to the socket.
func (c *client) writePump() {
	ticker := time.NewTicker(c.pingPeriod())
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case frame := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				c.logger.Debug("[Gateway] Write failed", slog.Any("error", err))
				_ = c.Close()

				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logger.Debug("[Gateway] Ping failed", slog.Any("error", err))
				_ = c.Close()

				return
			}

		case <-c.done:
			c.flush()
			_ = c.conn.WriteControl(
				websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(c.cfg.WriteWait),
			)

			return
		}
	}
}

// flush writes whatever is still buffered, best effort.
func (c *client) flush() {
	for {
		select {
		case frame := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		default:
			return
		}
	}
}

// readPump feeds inbound frames to handle until the socket fails or the client is
// closed. It returns after closing the client.
func (c *client) readPump(handle func(frame []byte)) {
	defer func() {
		_ = c.Close()
	}()

	c.conn.SetReadLimit(c.cfg.MaxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	})

	for {
		_, frame, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Info("[Gateway] Connection lost", slog.Any("error", err))
			}

			return
		}

		select {
		case <-c.done:
			return
		default:
		}

		handle(frame)
	}
}
