package relay

import (
	"context"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	readLimit    = 1024 * 1024
	pongWait     = 60 * time.Second
	pingInterval = 25 * time.Second
	sendBuffer   = 32
)

// Connection pairs one websocket with its hub session and runs the
// read/write pumps. All disconnect paths funnel through cleanup, so the
// hub never keeps a stale session.
type Connection struct {
	session      *Session
	ws           *websocket.Conn
	send         chan []byte
	hub          *Hub
	writeTimeout time.Duration
	logger       *zap.Logger
}

// NewConnection wraps an upgraded websocket. The session is bound after
// the hub registers this connection as its outbound.
func NewConnection(ws *websocket.Conn, hub *Hub, writeTimeout time.Duration, logger *zap.Logger) *Connection {
	return &Connection{
		ws:           ws,
		send:         make(chan []byte, sendBuffer),
		hub:          hub,
		writeTimeout: writeTimeout,
		logger:       logger,
	}
}

// Bind attaches the hub session. Must happen before Start.
func (c *Connection) Bind(session *Session) {
	c.session = session
}

func (c *Connection) sessionID() string {
	if c.session == nil {
		return ""
	}
	return c.session.ID()
}

// Send enqueues a frame for writing. Frames are dropped when the buffer is
// full rather than blocking the hub.
func (c *Connection) Send(frame []byte) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Warn("attempted to send on closed connection", zap.String("session_id", c.sessionID()))
		}
	}()
	select {
	case c.send <- frame:
	default:
		c.logger.Warn("dropping outgoing frame, buffer full", zap.String("session_id", c.sessionID()))
	}
}

// Start launches the write pump and blocks in the read pump until the
// connection dies.
func (c *Connection) Start(ctx context.Context) {
	go c.writePump(ctx)
	c.readPump(ctx)
}

func (c *Connection) readPump(ctx context.Context) {
	defer c.cleanup()
	c.ws.SetReadLimit(readLimit)
	c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		c.ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		_, message, err := c.ws.ReadMessage()
		if err != nil {
			c.logger.Info("connection read closed", zap.String("session_id", c.session.ID()), zap.Error(err))
			return
		}

		if _, err := c.hub.HandleFrame(c.session, message); err != nil {
			c.logger.Warn("failed to handle frame", zap.String("session_id", c.session.ID()), zap.Error(err))
		}
	}
}

func (c *Connection) writePump(ctx context.Context) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case frame, ok := <-c.send:
			if !ok {
				_ = c.write(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.write(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.write(websocket.PingMessage, []byte("ping")); err != nil {
				return
			}
		}
	}
}

func (c *Connection) write(messageType int, data []byte) error {
	c.ws.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	return c.ws.WriteMessage(messageType, data)
}

func (c *Connection) cleanup() {
	close(c.send)
	_ = c.ws.Close()
	if err := c.hub.Disconnect(c.session); err != nil {
		c.logger.Warn("disconnect cleanup failed", zap.String("session_id", c.session.ID()), zap.Error(err))
	}
}
