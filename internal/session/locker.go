package session

import "sync"

// Locker serializes load-then-store access to a user's memory. Feedback,
// review reactions, and turns for the same user may arrive on independent
// goroutines; without a per-user critical section a stale snapshot can
// overwrite another handler's update.
type Locker struct {
	mu    sync.Mutex
	users map[string]*sync.Mutex
}

func NewLocker() *Locker {
	return &Locker{users: make(map[string]*sync.Mutex)}
}

// Lock acquires the user's mutex and returns the matching unlock.
func (l *Locker) Lock(userID string) func() {
	l.mu.Lock()
	m, ok := l.users[userID]
	if !ok {
		m = &sync.Mutex{}
		l.users[userID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
