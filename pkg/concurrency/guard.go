package concurrency

import (
	"context"
	"errors"
	"sync"
)

var ErrBusy = errors.New("a task for this key is already running")

// ConcurrencyGuard lets at most one task run per key. Callers that lose the
// race get ErrBusy instead of waiting.
type ConcurrencyGuard struct {
	mu   sync.Mutex
	busy map[string]struct{}
}

func NewConcurrencyGuard() *ConcurrencyGuard {
	return &ConcurrencyGuard{busy: make(map[string]struct{})}
}

func (g *ConcurrencyGuard) acquire(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.busy[key]; ok {
		return false
	}
	g.busy[key] = struct{}{}
	return true
}

func (g *ConcurrencyGuard) release(key string) {
	g.mu.Lock()
	delete(g.busy, key)
	g.mu.Unlock()
}

// Execute runs task unless another task with the same key is running.
func (g *ConcurrencyGuard) Execute(key string, task func() error) error {
	if !g.acquire(key) {
		return ErrBusy
	}
	defer g.release(key)
	return task()
}

// ExecuteWithContext is Execute for tasks that take a context. A context that
// is already done is reported without running the task.
func (g *ConcurrencyGuard) ExecuteWithContext(ctx context.Context, key string, task func(context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return g.Execute(key, func() error {
		return task(ctx)
	})
}

// IsBusy reports whether a task for key is running.
func (g *ConcurrencyGuard) IsBusy(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.busy[key]
	return ok
}
