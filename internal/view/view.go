package view

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/resto-dashboard/internal/filters"
)

// Status is the lifecycle state of a view.
type Status string

const (
	StatusLoading Status = "loading"
	StatusSuccess Status = "success"
	StatusEmpty   Status = "empty"
	StatusError   Status = "error"
)

// Outcome values reported to a RefreshObserver.
const (
	OutcomeSuccess = "success"
	OutcomeEmpty   = "empty"
	OutcomeError   = "error"
	OutcomeStale   = "stale"
)

// Fetcher loads a view's payload for the given filter state.
type Fetcher[T any] func(ctx context.Context, state filters.State) (T, error)

// RefreshObserver is told how every refresh ended.
type RefreshObserver interface {
	ObserveViewRefresh(view, outcome string, duration time.Duration)
}

// Snapshot is a point-in-time copy of a view.
type Snapshot[T any] struct {
	Name      string    `json:"name"`
	Status    Status    `json:"status"`
	Data      T         `json:"data"`
	Error     string    `json:"error,omitempty"`
	Sequence  uint64    `json:"sequence"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Option configures a View.
type Option[T any] func(*View[T])

// WithEmpty sets the predicate that turns a successful payload into StatusEmpty.
func WithEmpty[T any](isEmpty func(T) bool) Option[T] {
	return func(v *View[T]) { v.isEmpty = isEmpty }
}

// WithDefault sets the payload shown before the first fetch and after a failure.
func WithDefault[T any](value T) Option[T] {
	return func(v *View[T]) {
		v.fallback = value
		v.snap.Data = value
	}
}

// WithErrorStatus makes a failed fetch settle in StatusError instead of StatusEmpty.
func WithErrorStatus[T any]() Option[T] {
	return func(v *View[T]) { v.errorStatus = true }
}

// WithRetainOnError keeps the previous payload and status when a fetch fails.
func WithRetainOnError[T any]() Option[T] {
	return func(v *View[T]) { v.retain = true }
}

// WithObserver reports refresh outcomes to observer.
func WithObserver[T any](observer RefreshObserver) Option[T] {
	return func(v *View[T]) { v.observer = observer }
}

// View owns one fetched payload. Every refresh takes a sequence number and
// only the newest issued refresh may update the payload.
type View[T any] struct {
	name        string
	fetch       Fetcher[T]
	isEmpty     func(T) bool
	fallback    T
	errorStatus bool
	retain      bool
	observer    RefreshObserver
	logger      zerolog.Logger

	mu      sync.Mutex
	issued  uint64
	settled Status
	snap    Snapshot[T]
}

// New builds a view in StatusLoading holding its default payload.
func New[T any](name string, fetch Fetcher[T], logger zerolog.Logger, opts ...Option[T]) *View[T] {
	v := &View[T]{
		name:    name,
		fetch:   fetch,
		settled: StatusEmpty,
		logger:  logger.With().Str("component", "view").Str("view", name).Logger(),
	}
	v.snap = Snapshot[T]{Name: name, Status: StatusLoading}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Name returns the view name.
func (v *View[T]) Name() string {
	return v.name
}

// Snapshot returns a copy of the current state.
func (v *View[T]) Snapshot() Snapshot[T] {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.snap
}

// Refresh issues one fetch and waits for it. The returned error is the fetch
// error, reported even when the view has already degraded to its default.
func (v *View[T]) Refresh(ctx context.Context, state filters.State) (Snapshot[T], error) {
	seq := v.begin()
	err := v.run(ctx, seq, state)
	return v.Snapshot(), err
}

// Dispatch issues one fetch on runner. The sequence number is taken before
// Dispatch returns, so dispatch order decides which result wins.
func (v *View[T]) Dispatch(ctx context.Context, state filters.State, runner Runner) {
	if ctx.Err() != nil {
		return
	}
	seq := v.begin()
	if runner == nil {
		_ = v.run(ctx, seq, state)
		return
	}
	runner.Go(func() { _ = v.run(ctx, seq, state) })
}

func (v *View[T]) begin() uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.issued++
	v.snap.Status = StatusLoading
	v.snap.Sequence = v.issued
	return v.issued
}

func (v *View[T]) run(ctx context.Context, seq uint64, state filters.State) error {
	start := time.Now()
	data, err := v.fetch(ctx, state)
	outcome := v.complete(seq, data, err)
	if v.observer != nil {
		v.observer.ObserveViewRefresh(v.name, outcome, time.Since(start))
	}
	return err
}

func (v *View[T]) complete(seq uint64, data T, err error) string {
	v.mu.Lock()
	defer v.mu.Unlock()

	if seq != v.issued {
		v.logger.Debug().Uint64("sequence", seq).Uint64("newest", v.issued).Msg("discarding stale response")
		return OutcomeStale
	}

	v.snap.UpdatedAt = time.Now().UTC()
	if err != nil {
		v.logger.Warn().Err(err).Uint64("sequence", seq).Msg("view fetch failed")
		v.snap.Error = err.Error()
		switch {
		case v.retain:
			v.snap.Status = v.settled
		case v.errorStatus:
			v.snap.Data = v.fallback
			v.snap.Status = StatusError
			v.settled = StatusError
		default:
			v.snap.Data = v.fallback
			v.snap.Status = StatusEmpty
			v.settled = StatusEmpty
		}
		return OutcomeError
	}

	v.snap.Data = data
	v.snap.Error = ""
	if v.isEmpty != nil && v.isEmpty(data) {
		v.snap.Status = StatusEmpty
		v.settled = StatusEmpty
		return OutcomeEmpty
	}
	v.snap.Status = StatusSuccess
	v.settled = StatusSuccess
	return OutcomeSuccess
}
