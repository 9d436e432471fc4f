package view

import (
	"context"
	"sync"

	"github.com/sourcegraph/conc/panics"

	"github.com/noah-isme/resto-dashboard/internal/filters"
)

// Runner executes background refreshes.
type Runner interface {
	Go(fn func())
}

// RunnerFunc adapts a function to Runner.
type RunnerFunc func(fn func())

func (f RunnerFunc) Go(fn func()) { f(fn) }

// Group is a Runner that tracks its goroutines so they can be awaited.
// A panicking fn is recovered and handed to OnPanic.
type Group struct {
	OnPanic func(err error)

	mu     sync.Mutex
	active int
	idle   chan struct{}
}

// Go runs fn in a new goroutine.
func (g *Group) Go(fn func()) {
	g.mu.Lock()
	if g.active == 0 {
		g.idle = make(chan struct{})
	}
	g.active++
	g.mu.Unlock()

	go func() {
		defer g.done()
		var catcher panics.Catcher
		catcher.Try(fn)
		if r := catcher.Recovered(); r != nil && g.OnPanic != nil {
			g.OnPanic(r.AsError())
		}
	}()
}

func (g *Group) done() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.active--
	if g.active == 0 {
		close(g.idle)
	}
}

// Idle returns a channel closed once no fn is running.
func (g *Group) Idle() <-chan struct{} {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.active == 0 {
		closed := make(chan struct{})
		close(closed)
		return closed
	}
	return g.idle
}

// Wait blocks until every started fn has returned.
func (g *Group) Wait() {
	<-g.Idle()
}

// WaitContext is Wait bounded by ctx.
func (g *Group) WaitContext(ctx context.Context) error {
	select {
	case <-g.Idle():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Dispatcher is implemented by every View.
type Dispatcher interface {
	Dispatch(ctx context.Context, state filters.State, runner Runner)
}

// Bind re-dispatches v whenever a field in deps changes. fetchCtx supplies the
// context for each dispatch; a cancelled context suppresses it.
func Bind(v Dispatcher, store *filters.Store, deps filters.Fields, fetchCtx func() context.Context, runner Runner) func() {
	return store.Subscribe(deps, func(state filters.State) {
		v.Dispatch(fetchCtx(), state, runner)
	})
}
