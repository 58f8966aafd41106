package relay

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrNotInitialized is returned when hub operations run before NewHub.
var ErrNotInitialized = errors.New("relay: hub not initialized")

// Outcome classifies what happened to an inbound event. The wire contract
// stays fire-and-forget; outcomes exist for callers and tests.
type Outcome int

const (
	// Delivered means the event was fanned out to at least one recipient
	// (for joins: the confirmation reached the requester).
	Delivered Outcome = iota
	// DroppedInvalid means a required field was missing and the event was
	// discarded without propagation.
	DroppedInvalid
	// DroppedEmptyRoom means the event was valid but no session was
	// subscribed to the target room.
	DroppedEmptyRoom
)

// Outbound delivers encoded frames to one client. Implementations must not
// block; the websocket transport enqueues to a buffered channel.
type Outbound interface {
	Send(frame []byte)
}

// Session is the server-side state of one live connection. It exists from
// connect to disconnect; a reconnecting client gets a brand new session.
type Session struct {
	id  string
	out Outbound
}

// ID returns the connection identifier assigned at connect time.
func (s *Session) ID() string {
	return s.id
}

// PositionRecorder persists last-known positions. Called asynchronously
// with a bounded backlog; failures and overflow never affect fan-out.
type PositionRecorder interface {
	RecordPosition(ctx context.Context, update PositionUpdate) error
}

const (
	recordTimeout     = 5 * time.Second
	maxPendingRecords = 32
)

// Hub is the real-time relay: it owns sessions, applies routing policy, and
// fans events out to room members. One instance per process, explicitly
// constructed and injected where needed.
type Hub struct {
	mu        sync.RWMutex
	sessions  map[string]*Session
	rooms     *Rooms
	recorder  PositionRecorder
	recordSem chan struct{}
	logger    *zap.Logger
}

// NewHub builds a hub. recorder may be nil when persistence is not wired.
func NewHub(rooms *Rooms, recorder PositionRecorder, logger *zap.Logger) *Hub {
	if rooms == nil {
		rooms = NewRooms()
	}
	return &Hub{
		sessions:  make(map[string]*Session),
		rooms:     rooms,
		recorder:  recorder,
		recordSem: make(chan struct{}, maxPendingRecords),
		logger:    logger,
	}
}

func (h *Hub) ready() bool {
	return h != nil && h.sessions != nil
}

// Connect registers a new session with a fresh connection identifier.
func (h *Hub) Connect(out Outbound) (*Session, error) {
	if !h.ready() {
		return nil, ErrNotInitialized
	}
	session := &Session{id: uuid.NewString(), out: out}
	h.mu.Lock()
	h.sessions[session.id] = session
	h.mu.Unlock()
	h.logger.Info("client connected", zap.String("session_id", session.id))
	return session, nil
}

// Disconnect removes the session and clears every room membership it held.
// Runs on every disconnect path, normal or not.
func (h *Hub) Disconnect(session *Session) error {
	if !h.ready() {
		return ErrNotInitialized
	}
	if session == nil {
		return nil
	}
	h.mu.Lock()
	delete(h.sessions, session.id)
	h.mu.Unlock()
	h.rooms.LeaveAll(session.id)
	h.logger.Info("client disconnected", zap.String("session_id", session.id))
	return nil
}

// HandleFrame decodes one inbound frame and dispatches it. Unknown events
// and malformed frames are dropped with a log line only.
func (h *Hub) HandleFrame(session *Session, raw []byte) (Outcome, error) {
	if !h.ready() {
		return DroppedInvalid, ErrNotInitialized
	}
	env, err := DecodeEnvelope(raw)
	if err != nil {
		h.logger.Warn("dropping malformed frame", zap.String("session_id", session.id), zap.Error(err))
		return DroppedInvalid, nil
	}

	switch env.Event {
	case EventJoinCart:
		req, err := DecodePayload[JoinRequest](env.Data)
		if err != nil {
			h.logger.Warn("dropping malformed join", zap.String("session_id", session.id), zap.Error(err))
			return DroppedInvalid, nil
		}
		return h.Join(session, req.CartID), nil
	case EventPosition:
		update, err := DecodePayload[PositionUpdate](env.Data)
		if err != nil {
			h.logger.Warn("dropping malformed position", zap.String("session_id", session.id), zap.Error(err))
			return DroppedInvalid, nil
		}
		return h.Position(session, update, raw), nil
	case EventAlert:
		return h.Alert(session, raw), nil
	default:
		h.logger.Warn("dropping unknown event", zap.String("event", env.Event), zap.String("session_id", session.id))
		return DroppedInvalid, nil
	}
}

// Join subscribes the session to a cart's room and confirms to the
// requester only. An empty cart ID is ignored without an error round-trip.
func (h *Hub) Join(session *Session, cartID string) Outcome {
	if cartID == "" {
		h.logger.Warn("ignoring join with empty cart id", zap.String("session_id", session.id))
		return DroppedInvalid
	}

	h.rooms.Join(cartID, session.id)

	frame, err := BuildFrame(EventJoinedRoom, JoinedRoom{CartID: cartID})
	if err != nil {
		h.logger.Error("encode join confirmation failed", zap.Error(err))
		return DroppedInvalid
	}
	session.out.Send(frame)
	h.logger.Info("session joined cart room",
		zap.String("session_id", session.id),
		zap.String("cart_id", cartID))
	return Delivered
}

// Position fans the producer's frame out verbatim to every member of the
// cart's room, sender included if it happens to be joined. Events without a
// cart ID are dropped.
func (h *Hub) Position(session *Session, update PositionUpdate, raw []byte) Outcome {
	if update.CartID == "" {
		h.logger.Warn("dropping position without cart id", zap.String("session_id", session.id))
		return DroppedInvalid
	}

	if h.recorder != nil {
		select {
		case h.recordSem <- struct{}{}:
			go h.record(update)
		default:
			h.logger.Warn("skipping position record, recorder saturated",
				zap.String("cart_id", update.CartID))
		}
	}

	members := h.rooms.Members(update.CartID)
	if len(members) == 0 {
		return DroppedEmptyRoom
	}

	delivered := 0
	h.mu.RLock()
	for _, id := range members {
		if target, ok := h.sessions[id]; ok {
			target.out.Send(raw)
			delivered++
		}
	}
	h.mu.RUnlock()

	if delivered == 0 {
		return DroppedEmptyRoom
	}
	h.logger.Debug("position fanned out",
		zap.String("cart_id", update.CartID),
		zap.Int("recipients", delivered))
	return Delivered
}

// Alert broadcasts the frame verbatim to every connected session regardless
// of room membership. The payload is not validated here; the durable layer
// owns that.
func (h *Hub) Alert(session *Session, raw []byte) Outcome {
	h.mu.RLock()
	delivered := len(h.sessions)
	for _, target := range h.sessions {
		target.out.Send(raw)
	}
	h.mu.RUnlock()

	if delivered == 0 {
		return DroppedEmptyRoom
	}
	h.logger.Info("alert broadcast",
		zap.String("session_id", session.id),
		zap.Int("recipients", delivered))
	return Delivered
}

// SessionCount returns the number of live sessions.
func (h *Hub) SessionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

func (h *Hub) record(update PositionUpdate) {
	defer func() { <-h.recordSem }()
	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()
	if err := h.recorder.RecordPosition(ctx, update); err != nil {
		h.logger.Warn("record position failed",
			zap.String("cart_id", update.CartID),
			zap.Error(err))
	}
}
