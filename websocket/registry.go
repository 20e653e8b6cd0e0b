package websocket

import (
	"sort"
	"sync"
)

// Handle is a live connection as seen by the registry: it accepts encoded
// frames without blocking and can be closed.
type Handle interface {
	// Send queues frame for delivery and reports false if the connection
	// cannot take it right now.
	Send(frame []byte) bool
	Close()
}

// Member is a registered user of a room.
type Member struct {
	UserID   uint   `json:"userId"`
	UserName string `json:"userName"`
}

type registration struct {
	handle Handle
	name   string
	seq    uint64
}

// Registry maps (room, user) pairs to live connections. It is the only place
// that connection membership is mutated.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]map[uint]*registration
	seq   uint64
}

func NewRegistry() *Registry {
	return &Registry{rooms: make(map[string]map[uint]*registration)}
}

// Register binds handle to (roomID, userID). If the pair already had a
// handle it is replaced and returned so the caller can close it.
func (r *Registry) Register(roomID string, userID uint, displayName string, handle Handle) Handle {
	r.mu.Lock()
	defer r.mu.Unlock()

	users, ok := r.rooms[roomID]
	if !ok {
		users = make(map[uint]*registration)
		r.rooms[roomID] = users
	}

	var previous Handle
	if existing, ok := users[userID]; ok && existing.handle != handle {
		previous = existing.handle
	}
	r.seq++
	users[userID] = &registration{handle: handle, name: displayName, seq: r.seq}
	return previous
}

// Holds reports whether (roomID, userID) is currently bound to handle.
func (r *Registry) Holds(roomID string, userID uint, handle Handle) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	reg, ok := r.rooms[roomID][userID]
	return ok && reg.handle == handle
}

// Unregister removes (roomID, userID). It reports whether anything was removed.
func (r *Registry) Unregister(roomID string, userID uint) bool {
	return r.remove(roomID, userID, nil)
}

// UnregisterHandle removes (roomID, userID) only while it is still bound to
// handle, so a superseded connection cannot evict its replacement.
func (r *Registry) UnregisterHandle(roomID string, userID uint, handle Handle) bool {
	return r.remove(roomID, userID, handle)
}

func (r *Registry) remove(roomID string, userID uint, handle Handle) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	users, ok := r.rooms[roomID]
	if !ok {
		return false
	}
	existing, ok := users[userID]
	if !ok || (handle != nil && existing.handle != handle) {
		return false
	}
	delete(users, userID)
	if len(users) == 0 {
		delete(r.rooms, roomID)
	}
	return true
}

// List returns every handle in roomID in registration order.
func (r *Registry) List(roomID string) []Handle {
	return r.handles(roomID, func(uint) bool { return true })
}

// ListOthers returns the handles in roomID except excludingUserID's, in
// registration order.
func (r *Registry) ListOthers(roomID string, excludingUserID uint) []Handle {
	return r.handles(roomID, func(userID uint) bool { return userID != excludingUserID })
}

func (r *Registry) handles(roomID string, keep func(uint) bool) []Handle {
	regs := r.snapshot(roomID, keep)
	out := make([]Handle, len(regs))
	for i, reg := range regs {
		out[i] = reg.handle
	}
	return out
}

// Members lists the users connected to roomID in registration order.
func (r *Registry) Members(roomID string) []Member {
	r.mu.RLock()
	ids := make(map[*registration]uint)
	for userID, reg := range r.rooms[roomID] {
		ids[reg] = userID
	}
	r.mu.RUnlock()

	regs := make([]*registration, 0, len(ids))
	for reg := range ids {
		regs = append(regs, reg)
	}
	sort.Slice(regs, func(i, j int) bool { return regs[i].seq < regs[j].seq })

	members := make([]Member, len(regs))
	for i, reg := range regs {
		members[i] = Member{UserID: ids[reg], UserName: reg.name}
	}
	return members
}

func (r *Registry) snapshot(roomID string, keep func(uint) bool) []*registration {
	r.mu.RLock()
	regs := make([]*registration, 0, len(r.rooms[roomID]))
	for userID, reg := range r.rooms[roomID] {
		if keep(userID) {
			regs = append(regs, reg)
		}
	}
	r.mu.RUnlock()

	sort.Slice(regs, func(i, j int) bool { return regs[i].seq < regs[j].seq })
	return regs
}

// RoomCount is the number of rooms with at least one live connection.
func (r *Registry) RoomCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}

// Close closes every registered handle and empties the registry.
func (r *Registry) Close() {
	r.mu.Lock()
	rooms := r.rooms
	r.rooms = make(map[string]map[uint]*registration)
	r.mu.Unlock()

	for _, users := range rooms {
		for _, reg := range users {
			reg.handle.Close()
		}
	}
}
