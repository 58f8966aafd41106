package relay

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// AuthFunc verifies the client token presented at upgrade time. The REST
// surface and the relay share one token service; events themselves carry
// no credential.
type AuthFunc func(token string) error

// Server upgrades HTTP requests to relay websocket connections.
type Server struct {
	hub          *Hub
	authenticate AuthFunc
	writeTimeout time.Duration
	logger       *zap.Logger
	upgrader     websocket.Upgrader
}

// NewServer builds the websocket endpoint for the hub.
func NewServer(hub *Hub, authenticate AuthFunc, writeTimeout time.Duration, logger *zap.Logger) *Server {
	if writeTimeout <= 0 {
		writeTimeout = 10 * time.Second
	}
	return &Server{
		hub:          hub,
		authenticate: authenticate,
		writeTimeout: writeTimeout,
		logger:       logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// HandleWS is the HTTP handler for the /ws endpoint.
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	if s.authenticate != nil {
		token := r.URL.Query().Get("token")
		if token == "" {
			http.Error(w, "token is required", http.StatusUnauthorized)
			return
		}
		if err := s.authenticate(token); err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}
	}

	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", zap.Error(err))
		return
	}

	conn := NewConnection(ws, s.hub, s.writeTimeout, s.logger)
	session, err := s.hub.Connect(conn)
	if err != nil {
		s.logger.Error("hub rejected connection", zap.Error(err))
		_ = ws.Close()
		return
	}
	conn.Bind(session)

	go conn.Start(context.Background())
	s.logger.Info("relay client connected", zap.String("session_id", session.ID()))
}
