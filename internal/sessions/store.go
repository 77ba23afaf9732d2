// Package sessions binds local chat identities to remote agent sessions and
// manages the session lifecycle against the agent run service.
package sessions

import "sync"

// Binding ties one local chat user to one remote session. A user has at
// most one binding at a time; re-selection overwrites it wholesale.
type Binding struct {
	// UserID is the local chat identity (Telegram numeric id as string).
	UserID string
	// RemoteSessionID is the agent service session id.
	RemoteSessionID string
	// RemoteUserHandle is the handle used in agent service paths
	// (Telegram username, or "user<id>" when the account has none).
	RemoteUserHandle string
}

// Store holds session bindings. Implementations must be safe for concurrent
// use.
type Store interface {
	Get(userID string) (Binding, bool)
	Put(binding Binding)
	Delete(userID string)
	Len() int
}

// MemoryStore is the in-memory Store. Bindings do not survive restarts;
// users transparently get a fresh session on the next message.
type MemoryStore struct {
	mu       sync.RWMutex
	bindings map[string]Binding
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{bindings: make(map[string]Binding)}
}

// Get returns the binding for userID, if any.
func (s *MemoryStore) Get(userID string) (Binding, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.bindings[userID]
	return b, ok
}

// Put stores binding, overwriting any existing one for the same user.
func (s *MemoryStore) Put(binding Binding) {
	s.mu.Lock()
	s.bindings[binding.UserID] = binding
	s.mu.Unlock()
}

// Delete removes the binding for userID.
func (s *MemoryStore) Delete(userID string) {
	s.mu.Lock()
	delete(s.bindings, userID)
	s.mu.Unlock()
}

// Len returns the number of active bindings.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.bindings)
}
