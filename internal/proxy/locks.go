package proxy

import "sync"

// ownerLocks serializes the resolve/dispatch/update path per owner.
// Two messages from the same owner in quick succession would otherwise
// both read the pre-update latch target across the dispatch I/O waits
// and clobber each other's last_proxied write.
type ownerLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newOwnerLocks() *ownerLocks {
	return &ownerLocks{locks: make(map[string]*sync.Mutex)}
}

func (l *ownerLocks) lock(ownerID string) *sync.Mutex {
	l.mu.Lock()
	m, ok := l.locks[ownerID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[ownerID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m
}
