package service

import "sync"

// roomLocks serializes work on a single room. Entries are dropped once no
// goroutine holds or waits for them.
type roomLocks struct {
	mu    sync.Mutex
	locks map[string]*roomLock
}

type roomLock struct {
	mu   sync.Mutex
	refs int
}

func newRoomLocks() *roomLocks {
	return &roomLocks{locks: make(map[string]*roomLock)}
}

// lock blocks until roomID is free and returns the matching unlock.
func (l *roomLocks) lock(roomID string) func() {
	l.mu.Lock()
	rl, ok := l.locks[roomID]
	if !ok {
		rl = &roomLock{}
		l.locks[roomID] = rl
	}
	rl.refs++
	l.mu.Unlock()

	rl.mu.Lock()
	return func() {
		rl.mu.Unlock()
		l.mu.Lock()
		rl.refs--
		if rl.refs == 0 {
			delete(l.locks, roomID)
		}
		l.mu.Unlock()
	}
}

// inflight tracks rooms with a generation running.
type inflight struct {
	mu    sync.Mutex
	rooms map[string]struct{}
}

func newInflight() *inflight {
	return &inflight{rooms: make(map[string]struct{})}
}

// begin marks roomID busy and reports false if it already was.
func (f *inflight) begin(roomID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, busy := f.rooms[roomID]; busy {
		return false
	}
	f.rooms[roomID] = struct{}{}
	return true
}

func (f *inflight) end(roomID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.rooms, roomID)
}
