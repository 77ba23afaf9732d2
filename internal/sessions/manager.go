package sessions

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/masterversa/acharya/internal/agentapi"
	"github.com/masterversa/acharya/internal/infra"
)

// AgentService is the subset of the agent run service the manager needs.
// *agentapi.Client satisfies it; tests substitute fakes.
type AgentService interface {
	CreateSession(ctx context.Context, userHandle string) (string, error)
	ListSessions(ctx context.Context, userHandle string) ([]agentapi.Session, error)
	DeleteSession(ctx context.Context, userHandle, sessionID string) error
}

// ErrNoSession is returned when an operation needs an active binding and
// the user has none.
var ErrNoSession = errors.New("no active session")

// ErrNoPendingDelete is returned by ConfirmDelete when no delete was
// requested first. Deletion is a two-step handshake; the remote call is
// never issued without a prior RequestDelete.
var ErrNoPendingDelete = errors.New("no pending delete to confirm")

// Manager drives the session lifecycle: ensure-on-demand creation, explicit
// selection, listing, and confirmed deletion. All operations for a given
// user are serialized, so rapid messages from one user cannot interleave
// lifecycle transitions. Every remote call is single-attempt; a failure is
// reported to the caller and never corrupts the local binding.
type Manager struct {
	store  Store
	client AgentService
	locks  *infra.KeyedMutex
	logger *slog.Logger

	mu            sync.Mutex
	pendingDelete map[string]struct{}
}

// NewManager creates a Manager over store and client.
func NewManager(store Store, client AgentService, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		store:         store,
		client:        client,
		locks:         infra.NewKeyedMutex(),
		logger:        logger.With("component", "sessions"),
		pendingDelete: make(map[string]struct{}),
	}
}

// EnsureResult reports the binding in effect after Ensure and whether it
// was created by this call.
type EnsureResult struct {
	Binding Binding
	Created bool
}

// Ensure returns the user's binding, creating a remote session first when
// none exists. A second Ensure without an intervening delete reuses the
// stored remote id. On creation failure the user stays without a session.
func (m *Manager) Ensure(ctx context.Context, userID, userHandle string) (EnsureResult, error) {
	if err := m.locks.Lock(ctx, userID); err != nil {
		return EnsureResult{}, err
	}
	defer m.locks.Unlock(userID)

	if binding, ok := m.store.Get(userID); ok {
		return EnsureResult{Binding: binding}, nil
	}

	sessionID, err := m.client.CreateSession(ctx, userHandle)
	if err != nil {
		m.logger.Error("create session failed", "user_id", userID, "error", err)
		return EnsureResult{}, err
	}

	binding := Binding{
		UserID:           userID,
		RemoteSessionID:  sessionID,
		RemoteUserHandle: userHandle,
	}
	m.store.Put(binding)
	m.logger.Info("session created", "user_id", userID, "session_id", sessionID)
	return EnsureResult{Binding: binding, Created: true}, nil
}

// Create always provisions a fresh remote session and overwrites any
// existing binding. Backs the explicit "new session" command.
func (m *Manager) Create(ctx context.Context, userID, userHandle string) (Binding, error) {
	if err := m.locks.Lock(ctx, userID); err != nil {
		return Binding{}, err
	}
	defer m.locks.Unlock(userID)

	sessionID, err := m.client.CreateSession(ctx, userHandle)
	if err != nil {
		m.logger.Error("create session failed", "user_id", userID, "error", err)
		return Binding{}, err
	}

	binding := Binding{
		UserID:           userID,
		RemoteSessionID:  sessionID,
		RemoteUserHandle: userHandle,
	}
	m.store.Put(binding)
	m.logger.Info("session created", "user_id", userID, "session_id", sessionID)
	return binding, nil
}

// Select binds the user to an existing remote session, overwriting any
// current binding unconditionally.
func (m *Manager) Select(ctx context.Context, userID, userHandle, sessionID string) (Binding, error) {
	if err := m.locks.Lock(ctx, userID); err != nil {
		return Binding{}, err
	}
	defer m.locks.Unlock(userID)

	binding := Binding{
		UserID:           userID,
		RemoteSessionID:  sessionID,
		RemoteUserHandle: userHandle,
	}
	m.store.Put(binding)
	m.logger.Info("session selected", "user_id", userID, "session_id", sessionID)
	return binding, nil
}

// List returns the user's remote sessions. Pure query: the local store is
// never mutated, whatever the backend returns.
func (m *Manager) List(ctx context.Context, userHandle string) ([]agentapi.Session, error) {
	return m.client.ListSessions(ctx, userHandle)
}

// Current returns the user's binding, if any.
func (m *Manager) Current(userID string) (Binding, bool) {
	return m.store.Get(userID)
}

// Active returns the number of bound sessions.
func (m *Manager) Active() int {
	return m.store.Len()
}

// RequestDelete marks the user's binding for deletion and returns it so the
// front-end can ask for confirmation. The remote call is deferred until
// ConfirmDelete.
func (m *Manager) RequestDelete(ctx context.Context, userID string) (Binding, error) {
	if err := m.locks.Lock(ctx, userID); err != nil {
		return Binding{}, err
	}
	defer m.locks.Unlock(userID)

	binding, ok := m.store.Get(userID)
	if !ok {
		return Binding{}, ErrNoSession
	}

	m.mu.Lock()
	m.pendingDelete[userID] = struct{}{}
	m.mu.Unlock()

	return binding, nil
}

// ConfirmDelete completes a pending delete: it issues the remote delete and,
// on success, removes the local binding. Without a pending request it does
// nothing and never touches the backend. On remote failure the binding and
// the pending mark are both left intact.
func (m *Manager) ConfirmDelete(ctx context.Context, userID string) error {
	if err := m.locks.Lock(ctx, userID); err != nil {
		return err
	}
	defer m.locks.Unlock(userID)

	m.mu.Lock()
	_, pending := m.pendingDelete[userID]
	m.mu.Unlock()
	if !pending {
		return ErrNoPendingDelete
	}

	binding, ok := m.store.Get(userID)
	if !ok {
		m.clearPending(userID)
		return ErrNoSession
	}

	if err := m.client.DeleteSession(ctx, binding.RemoteUserHandle, binding.RemoteSessionID); err != nil {
		m.logger.Error("delete session failed",
			"user_id", userID,
			"session_id", binding.RemoteSessionID,
			"error", err)
		return err
	}

	m.store.Delete(userID)
	m.clearPending(userID)
	m.logger.Info("session deleted", "user_id", userID, "session_id", binding.RemoteSessionID)
	return nil
}

// CancelDelete withdraws a pending delete request.
func (m *Manager) CancelDelete(userID string) {
	m.clearPending(userID)
}

// Forget drops the local binding without a remote call. Used when the
// backend reports the session as already gone.
func (m *Manager) Forget(userID string) {
	m.store.Delete(userID)
	m.clearPending(userID)
}

func (m *Manager) clearPending(userID string) {
	m.mu.Lock()
	delete(m.pendingDelete, userID)
	m.mu.Unlock()
}
