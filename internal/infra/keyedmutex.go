package infra

import (
	"context"
	"sync"
)

// KeyedMutex serializes operations per key. It is used to serialize session
// lifecycle operations per chat user, so two rapid messages from the same
// user cannot interleave create/select/delete against the shared store.
//
// Lock entries are reference-counted and removed once the last holder or
// waiter releases, so the map does not grow with the number of users seen.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyedLock
}

type keyedLock struct {
	ch   chan struct{}
	refs int
}

// NewKeyedMutex creates an empty keyed mutex.
func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{locks: make(map[string]*keyedLock)}
}

// Lock acquires the lock for key, blocking until it is available or ctx is
// done. On a ctx error the lock is not held.
func (m *KeyedMutex) Lock(ctx context.Context, key string) error {
	m.mu.Lock()
	l, ok := m.locks[key]
	if !ok {
		l = &keyedLock{ch: make(chan struct{}, 1)}
		m.locks[key] = l
	}
	l.refs++
	m.mu.Unlock()

	select {
	case l.ch <- struct{}{}:
		return nil
	case <-ctx.Done():
		m.release(key, l)
		return ctx.Err()
	}
}

// Unlock releases the lock for key. Calling Unlock for a key that is not
// held is a no-op.
func (m *KeyedMutex) Unlock(key string) {
	m.mu.Lock()
	l, ok := m.locks[key]
	m.mu.Unlock()
	if !ok {
		return
	}

	select {
	case <-l.ch:
	default:
	}
	m.release(key, l)
}

func (m *KeyedMutex) release(key string, l *keyedLock) {
	m.mu.Lock()
	l.refs--
	if l.refs <= 0 {
		delete(m.locks, key)
	}
	m.mu.Unlock()
}
