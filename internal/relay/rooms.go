package relay

import "sync"

// Rooms maps a cart identifier to the set of subscribed session IDs.
// Rooms are derived from memberships: they come into existence on first
// join and vanish when the last member leaves, with no explicit lifecycle.
type Rooms struct {
	mu      sync.RWMutex
	members map[string]map[string]struct{}
}

// NewRooms returns an empty registry.
func NewRooms() *Rooms {
	return &Rooms{members: make(map[string]map[string]struct{})}
}

// Join adds the session to the room. Joining twice is a no-op.
func (r *Rooms) Join(roomID, sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	set, ok := r.members[roomID]
	if !ok {
		set = make(map[string]struct{})
		r.members[roomID] = set
	}
	set[sessionID] = struct{}{}
}

// LeaveAll removes the session from every room it had joined.
func (r *Rooms) LeaveAll(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for roomID, set := range r.members {
		delete(set, sessionID)
		if len(set) == 0 {
			delete(r.members, roomID)
		}
	}
}

// Members returns a snapshot of the session IDs in the room, possibly empty.
func (r *Rooms) Members(roomID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	set := r.members[roomID]
	if len(set) == 0 {
		return nil
	}
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	return ids
}

// Contains reports whether the session is currently in the room.
func (r *Rooms) Contains(roomID, sessionID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.members[roomID][sessionID]
	return ok
}
