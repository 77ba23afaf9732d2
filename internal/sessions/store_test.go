package sessions

import (
	"sync"
	"testing"
)

func TestMemoryStore_PutGetDelete(t *testing.T) {
	store := NewMemoryStore()

	if _, ok := store.Get("u1"); ok {
		t.Error("empty store returned a binding")
	}

	store.Put(Binding{UserID: "u1", RemoteSessionID: "s1", RemoteUserHandle: "alice"})

	got, ok := store.Get("u1")
	if !ok {
		t.Fatal("binding not found after Put")
	}
	if got.RemoteSessionID != "s1" || got.RemoteUserHandle != "alice" {
		t.Errorf("binding = %+v", got)
	}

	store.Delete("u1")
	if _, ok := store.Get("u1"); ok {
		t.Error("binding survived Delete")
	}
}

func TestMemoryStore_LastWriteWins(t *testing.T) {
	store := NewMemoryStore()

	store.Put(Binding{UserID: "u1", RemoteSessionID: "old"})
	store.Put(Binding{UserID: "u1", RemoteSessionID: "new"})

	got, _ := store.Get("u1")
	if got.RemoteSessionID != "new" {
		t.Errorf("RemoteSessionID = %q, want new (last write wins)", got.RemoteSessionID)
	}
	if store.Len() != 1 {
		t.Errorf("Len = %d, want 1 (at most one binding per user)", store.Len())
	}
}

func TestMemoryStore_ConcurrentAccess(t *testing.T) {
	store := NewMemoryStore()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			store.Put(Binding{UserID: "u1", RemoteSessionID: "s"})
			store.Get("u1")
			store.Len()
		}()
	}
	wg.Wait()

	if _, ok := store.Get("u1"); !ok {
		t.Error("binding missing after concurrent writes")
	}
}
