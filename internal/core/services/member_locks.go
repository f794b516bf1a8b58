package services

import "sync"

// memberLocks serializes postings per member id so two chunks never update the same balance at once.
type memberLocks struct {
	mu    sync.Mutex
	locks map[string]*memberLock
}

type memberLock struct {
	mu   sync.Mutex
	refs int
}

func newMemberLocks() *memberLocks {
	return &memberLocks{locks: make(map[string]*memberLock)}
}

// Lock acquires the lock for id and returns its release func.
func (l *memberLocks) Lock(id string) func() {
	l.mu.Lock()
	lk, ok := l.locks[id]
	if !ok {
		lk = &memberLock{}
		l.locks[id] = lk
	}
	lk.refs++
	l.mu.Unlock()

	lk.mu.Lock()
	return func() {
		lk.mu.Unlock()
		l.mu.Lock()
		lk.refs--
		if lk.refs == 0 {
			delete(l.locks, id)
		}
		l.mu.Unlock()
	}
}
