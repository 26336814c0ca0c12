// Package inflight rejects overlapping work for the same key instead of queueing it.
package inflight

import (
	"errors"
	"sync"
)

// ErrBusy is returned by Acquire while the key is held.
var ErrBusy = errors.New("inflight: key busy")

// Guard tracks keys with work in progress. The zero value is ready to use.
type Guard struct {
	mu   sync.Mutex
	busy map[string]struct{}
}

// Acquire marks key busy and returns its release func, or ErrBusy.
func (g *Guard) Acquire(key string) (func(), error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.busy == nil {
		g.busy = make(map[string]struct{})
	}
	if _, ok := g.busy[key]; ok {
		return nil, ErrBusy
	}
	g.busy[key] = struct{}{}
	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.busy, key)
			g.mu.Unlock()
		})
	}, nil
}

// Busy reports whether key is currently held.
func (g *Guard) Busy(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.busy[key]
	return ok
}
