// Package scope ties background work to the lifetime of a view.
package scope

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Group owns a context and the goroutines started under it. Close cancels
// the context and waits for every goroutine, after which no continuation
// started through the group can still be running.
type Group struct {
	ctx    context.Context
	cancel context.CancelFunc
	eg     *errgroup.Group

	mu     sync.Mutex
	closed bool
}

func New(parent context.Context) *Group {
	ctx, cancel := context.WithCancel(parent)
	eg, ctx := errgroup.WithContext(ctx)
	return &Group{ctx: ctx, cancel: cancel, eg: eg}
}

// Context is cancelled when the group is closed.
func (g *Group) Context() context.Context {
	return g.ctx
}

// Go runs fn in the background. It reports false, without running fn, once
// the group is closed. Errors returned by fn are left to fn to report; they
// do not cancel sibling tasks.
func (g *Group) Go(fn func(ctx context.Context)) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return false
	}
	g.eg.Go(func() error {
		fn(g.ctx)
		return nil
	})
	return true
}

// Close cancels the group and blocks until all tasks have returned. It is
// safe to call more than once.
func (g *Group) Close() {
	g.mu.Lock()
	g.closed = true
	g.mu.Unlock()

	g.cancel()
	_ = g.eg.Wait()
}
