package infra

import (
	"sync"
	"sync/atomic"
)

// Group suppresses duplicate concurrent work: only one execution is
// in-flight for a given key at a time, and duplicate callers wait for the
// original and receive its result.
type Group[K comparable, V any] struct {
	mu    sync.Mutex
	calls map[K]*call[V]

	shared atomic.Uint64
	runs   atomic.Uint64
}

type call[V any] struct {
	wg     sync.WaitGroup
	val    V
	err    error
	shared bool
}

// Do executes fn under key, coalescing concurrent callers. The third return
// value reports whether the result was shared with another caller.
func (g *Group[K, V]) Do(key K, fn func() (V, error)) (V, error, bool) {
	g.mu.Lock()
	if g.calls == nil {
		g.calls = make(map[K]*call[V])
	}

	if c, ok := g.calls[key]; ok {
		c.shared = true
		g.mu.Unlock()
		g.shared.Add(1)
		c.wg.Wait()
		return c.val, c.err, true
	}

	c := new(call[V])
	c.wg.Add(1)
	g.calls[key] = c
	g.mu.Unlock()
	g.runs.Add(1)

	c.val, c.err = fn()

	g.mu.Lock()
	delete(g.calls, key)
	g.mu.Unlock()
	c.wg.Done()

	return c.val, c.err, c.shared
}

// Forget drops any in-flight call for key; the next Do executes fn afresh
// instead of waiting on the previous call.
func (g *Group[K, V]) Forget(key K) {
	g.mu.Lock()
	delete(g.calls, key)
	g.mu.Unlock()
}

// Stats reports how many calls ran versus how many were coalesced.
func (g *Group[K, V]) Stats() (runs, shared uint64) {
	return g.runs.Load(), g.shared.Load()
}
