package sessions

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/masterversa/acharya/internal/agentapi"
)

// fakeAgent records calls and returns scripted results.
type fakeAgent struct {
	mu sync.Mutex

	createCalls int
	createErr   error
	nextID      int

	deleteCalls []string
	deleteErr   error

	sessions []agentapi.Session
	listErr  error
}

func (f *fakeAgent) CreateSession(ctx context.Context, userHandle string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	if f.createErr != nil {
		return "", f.createErr
	}
	f.nextID++
	return fmt.Sprintf("sess-%d", f.nextID), nil
}

func (f *fakeAgent) ListSessions(ctx context.Context, userHandle string) ([]agentapi.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sessions, f.listErr
}

func (f *fakeAgent) DeleteSession(ctx context.Context, userHandle, sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleteCalls = append(f.deleteCalls, sessionID)
	return nil
}

func newTestManager(agent *fakeAgent) *Manager {
	return NewManager(NewMemoryStore(), agent, nil)
}

func TestManager_EnsureCreatesOnce(t *testing.T) {
	agent := &fakeAgent{}
	m := newTestManager(agent)
	ctx := context.Background()

	first, err := m.Ensure(ctx, "u1", "alice")
	if err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	if !first.Created {
		t.Error("first Ensure did not report creation")
	}

	second, err := m.Ensure(ctx, "u1", "alice")
	if err != nil {
		t.Fatalf("second Ensure: %v", err)
	}
	if second.Created {
		t.Error("second Ensure created a duplicate session")
	}
	if second.Binding.RemoteSessionID != first.Binding.RemoteSessionID {
		t.Errorf("remote id changed: %q -> %q", first.Binding.RemoteSessionID, second.Binding.RemoteSessionID)
	}
	if agent.createCalls != 1 {
		t.Errorf("CreateSession called %d times, want 1", agent.createCalls)
	}
}

func TestManager_EnsureFailureLeavesNoSession(t *testing.T) {
	agent := &fakeAgent{createErr: errors.New("backend down")}
	m := newTestManager(agent)

	if _, err := m.Ensure(context.Background(), "u1", "alice"); err == nil {
		t.Fatal("Ensure succeeded against failing backend")
	}
	if _, ok := m.Current("u1"); ok {
		t.Error("failed Ensure left a binding behind")
	}
}

func TestManager_SelectOverwrites(t *testing.T) {
	agent := &fakeAgent{}
	m := newTestManager(agent)
	ctx := context.Background()

	if _, err := m.Ensure(ctx, "u1", "alice"); err != nil {
		t.Fatalf("Ensure: %v", err)
	}

	if _, err := m.Select(ctx, "u1", "alice", "picked-session"); err != nil {
		t.Fatalf("Select: %v", err)
	}

	binding, _ := m.Current("u1")
	if binding.RemoteSessionID != "picked-session" {
		t.Errorf("RemoteSessionID = %q, want picked-session", binding.RemoteSessionID)
	}
}

func TestManager_ListDoesNotMutateStore(t *testing.T) {
	agent := &fakeAgent{sessions: []agentapi.Session{{ID: "r1"}, {ID: "r2"}}}
	m := newTestManager(agent)
	ctx := context.Background()

	if _, err := m.Ensure(ctx, "u1", "alice"); err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	before, _ := m.Current("u1")

	if _, err := m.List(ctx, "alice"); err != nil {
		t.Fatalf("List: %v", err)
	}

	after, ok := m.Current("u1")
	if !ok || after != before {
		t.Errorf("List mutated the store: %+v -> %+v", before, after)
	}
}

func TestManager_DeleteRequiresConfirmation(t *testing.T) {
	agent := &fakeAgent{}
	m := newTestManager(agent)
	ctx := context.Background()

	if _, err := m.Ensure(ctx, "u1", "alice"); err != nil {
		t.Fatalf("Ensure: %v", err)
	}

	// Confirm without a prior request: no remote call, binding intact.
	if err := m.ConfirmDelete(ctx, "u1"); !errors.Is(err, ErrNoPendingDelete) {
		t.Fatalf("ConfirmDelete without request = %v, want ErrNoPendingDelete", err)
	}
	if len(agent.deleteCalls) != 0 {
		t.Fatal("remote delete issued without confirmation handshake")
	}

	binding, err := m.RequestDelete(ctx, "u1")
	if err != nil {
		t.Fatalf("RequestDelete: %v", err)
	}
	if err := m.ConfirmDelete(ctx, "u1"); err != nil {
		t.Fatalf("ConfirmDelete: %v", err)
	}

	if len(agent.deleteCalls) != 1 || agent.deleteCalls[0] != binding.RemoteSessionID {
		t.Errorf("deleteCalls = %v", agent.deleteCalls)
	}
	if _, ok := m.Current("u1"); ok {
		t.Error("binding survived confirmed delete")
	}
}

func TestManager_CancelDelete(t *testing.T) {
	agent := &fakeAgent{}
	m := newTestManager(agent)
	ctx := context.Background()

	if _, err := m.Ensure(ctx, "u1", "alice"); err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	if _, err := m.RequestDelete(ctx, "u1"); err != nil {
		t.Fatalf("RequestDelete: %v", err)
	}
	m.CancelDelete("u1")

	if err := m.ConfirmDelete(ctx, "u1"); !errors.Is(err, ErrNoPendingDelete) {
		t.Errorf("ConfirmDelete after cancel = %v, want ErrNoPendingDelete", err)
	}
	if len(agent.deleteCalls) != 0 {
		t.Error("remote delete issued after cancellation")
	}
	if _, ok := m.Current("u1"); !ok {
		t.Error("binding lost after cancelled delete")
	}
}

func TestManager_DeleteFailureKeepsBinding(t *testing.T) {
	agent := &fakeAgent{deleteErr: errors.New("409 conflict")}
	m := newTestManager(agent)
	ctx := context.Background()

	if _, err := m.Ensure(ctx, "u1", "alice"); err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	if _, err := m.RequestDelete(ctx, "u1"); err != nil {
		t.Fatalf("RequestDelete: %v", err)
	}
	if err := m.ConfirmDelete(ctx, "u1"); err == nil {
		t.Fatal("ConfirmDelete succeeded despite backend failure")
	}

	if _, ok := m.Current("u1"); !ok {
		t.Error("binding removed on failed remote delete")
	}

	// The pending mark survives, so the user can retry the confirmation.
	agent.deleteErr = nil
	if err := m.ConfirmDelete(ctx, "u1"); err != nil {
		t.Errorf("retry ConfirmDelete: %v", err)
	}
}

func TestManager_RequestDeleteWithoutSession(t *testing.T) {
	m := newTestManager(&fakeAgent{})

	if _, err := m.RequestDelete(context.Background(), "u1"); !errors.Is(err, ErrNoSession) {
		t.Errorf("RequestDelete = %v, want ErrNoSession", err)
	}
}

func TestManager_ConcurrentEnsureSingleCreate(t *testing.T) {
	agent := &fakeAgent{}
	m := newTestManager(agent)
	ctx := context.Background()

	var wg sync.WaitGroup
	ids := make([]string, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := m.Ensure(ctx, "u1", "alice")
			if err != nil {
				t.Errorf("Ensure: %v", err)
				return
			}
			ids[i] = res.Binding.RemoteSessionID
		}(i)
	}
	wg.Wait()

	if agent.createCalls != 1 {
		t.Errorf("CreateSession called %d times under contention, want 1", agent.createCalls)
	}
	for i, id := range ids {
		if id != ids[0] {
			t.Errorf("goroutine %d saw session %q, others saw %q", i, id, ids[0])
		}
	}
}
