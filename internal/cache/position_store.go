package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrPositionNotFound means no snapshot exists for the cart yet.
var ErrPositionNotFound = errors.New("position not found")

// LastPosition is the cached last-known fix for one cart, served to
// viewers joining before any live stream exists.
type LastPosition struct {
	CartID     string    `json:"cart_id"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	Heading    *float64  `json:"heading,omitempty"`
	Battery    *int      `json:"battery,omitempty"`
	RecordedAt time.Time `json:"recorded_at"`
}

// PositionStore caches last-known positions in redis.
type PositionStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewPositionStore returns redis-backed store.
func NewPositionStore(client *redis.Client, ttl time.Duration) *PositionStore {
	return &PositionStore{client: client, ttl: ttl}
}

func (s *PositionStore) key(cartID string) string {
	return fmt.Sprintf("carts:position:%s", cartID)
}

// Save caches the fix.
func (s *PositionStore) Save(ctx context.Context, pos LastPosition) error {
	data, err := json.Marshal(pos)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key(pos.CartID), data, s.ttl).Err()
}

// Get returns the cached fix for one cart.
func (s *PositionStore) Get(ctx context.Context, cartID string) (*LastPosition, error) {
	result, err := s.client.Get(ctx, s.key(cartID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrPositionNotFound
		}
		return nil, err
	}
	var pos LastPosition
	if err := json.Unmarshal([]byte(result), &pos); err != nil {
		return nil, err
	}
	return &pos, nil
}

// Delete removes a cached fix.
func (s *PositionStore) Delete(ctx context.Context, cartID string) error {
	return s.client.Del(ctx, s.key(cartID)).Err()
}
