package relay

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Event names carried in the envelope, client and server side.
const (
	EventJoinCart   = "join_cart"
	EventJoinedRoom = "joined_room"
	EventPosition   = "position_update"
	EventAlert      = "alert"
)

// Envelope is the wire frame: an event name plus its JSON payload.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// JoinRequest subscribes the sending session to one cart's room.
type JoinRequest struct {
	CartID string `json:"cart_id"`
}

// JoinedRoom acknowledges a join, sent only to the requester.
type JoinedRoom struct {
	CartID string `json:"cart_id"`
}

// PositionUpdate is a producer's location fix for one cart.
type PositionUpdate struct {
	CartID    string   `json:"cart_id"`
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Heading   *float64 `json:"heading,omitempty"`
	Battery   *int     `json:"battery,omitempty"`
}

// DecodeEnvelope parses a raw frame into an Envelope.
func DecodeEnvelope(raw []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("relay: decode frame: %w", err)
	}
	if env.Event == "" {
		return nil, errors.New("relay: frame missing event name")
	}
	return &env, nil
}

// BuildFrame encodes an outgoing event frame.
func BuildFrame(event string, payload interface{}) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Event: event, Data: body})
}

// DecodePayload is a convenience helper for event handlers.
func DecodePayload[T any](data json.RawMessage) (T, error) {
	var target T
	if err := json.Unmarshal(data, &target); err != nil {
		var zero T
		return zero, err
	}
	return target, nil
}
