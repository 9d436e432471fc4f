package view

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/resto-dashboard/internal/filters"
)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

type outcomeRecorder struct {
	mu       sync.Mutex
	outcomes []string
}

func (r *outcomeRecorder) ObserveViewRefresh(_ string, outcome string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, outcome)
}

func listEmpty(items []string) bool { return len(items) == 0 }

func TestRefreshSuccessAndEmpty(t *testing.T) {
	payload := []string{"a"}
	v := New("restaurants", func(context.Context, filters.State) ([]string, error) {
		return payload, nil
	}, testLogger(), WithDefault([]string{}), WithEmpty(listEmpty))

	require.Equal(t, StatusLoading, v.Snapshot().Status)
	require.NotNil(t, v.Snapshot().Data)

	snap, err := v.Refresh(context.Background(), filters.State{})
	require.NoError(t, err)
	require.Equal(t, StatusSuccess, snap.Status)
	require.Equal(t, []string{"a"}, snap.Data)
	require.Equal(t, uint64(1), snap.Sequence)

	payload = []string{}
	snap, err = v.Refresh(context.Background(), filters.State{})
	require.NoError(t, err)
	require.Equal(t, StatusEmpty, snap.Status)
	require.Empty(t, snap.Data)
}

func TestRefreshFailureFallsBackToDefault(t *testing.T) {
	fail := false
	v := New("orders", func(context.Context, filters.State) ([]string, error) {
		if fail {
			return nil, errors.New("backend down")
		}
		return []string{"order"}, nil
	}, testLogger(), WithDefault([]string{}), WithEmpty(listEmpty))

	_, err := v.Refresh(context.Background(), filters.State{})
	require.NoError(t, err)

	fail = true
	snap, err := v.Refresh(context.Background(), filters.State{})
	require.Error(t, err)
	require.Equal(t, StatusEmpty, snap.Status)
	require.Equal(t, []string{}, snap.Data)
	require.Equal(t, "backend down", snap.Error)
}

func TestErrorStatusView(t *testing.T) {
	v := New("trends", func(context.Context, filters.State) (*string, error) {
		return nil, errors.New("nope")
	}, testLogger(), WithErrorStatus[*string]())

	snap, err := v.Refresh(context.Background(), filters.State{})
	require.Error(t, err)
	require.Equal(t, StatusError, snap.Status)
	require.Nil(t, snap.Data)
}

func TestRetainOnErrorKeepsPreviousData(t *testing.T) {
	fail := false
	v := New("overview", func(context.Context, filters.State) (int, error) {
		if fail {
			return 0, errors.New("timeout")
		}
		return 42, nil
	}, testLogger(), WithRetainOnError[int]())

	snap, err := v.Refresh(context.Background(), filters.State{})
	require.NoError(t, err)
	require.Equal(t, 42, snap.Data)

	fail = true
	snap, err = v.Refresh(context.Background(), filters.State{})
	require.Error(t, err)
	require.Equal(t, 42, snap.Data)
	require.Equal(t, StatusSuccess, snap.Status)
	require.Equal(t, "timeout", snap.Error)
}

func TestNewestDispatchWinsRegardlessOfCompletionOrder(t *testing.T) {
	gates := map[string]chan struct{}{
		"first":  make(chan struct{}),
		"second": make(chan struct{}),
	}
	recorder := &outcomeRecorder{}
	v := New("orders", func(_ context.Context, state filters.State) (string, error) {
		<-gates[state.AmountRange.Min]
		return state.AmountRange.Min, nil
	}, testLogger(), WithObserver[string](recorder))

	group := &Group{}
	v.Dispatch(context.Background(), filters.State{AmountRange: filters.AmountRange{Min: "first"}}, group)
	v.Dispatch(context.Background(), filters.State{AmountRange: filters.AmountRange{Min: "second"}}, group)
	require.Equal(t, StatusLoading, v.Snapshot().Status)

	close(gates["second"])
	time.Sleep(10 * time.Millisecond)
	close(gates["first"])
	group.Wait()

	snap := v.Snapshot()
	require.Equal(t, StatusSuccess, snap.Status)
	require.Equal(t, "second", snap.Data)
	require.Equal(t, uint64(2), snap.Sequence)
	require.ElementsMatch(t, []string{OutcomeSuccess, OutcomeStale}, recorder.outcomes)
}

func TestDispatchSkipsCancelledContext(t *testing.T) {
	calls := 0
	v := New("top", func(context.Context, filters.State) (int, error) {
		calls++
		return 1, nil
	}, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	v.Dispatch(ctx, filters.State{}, nil)

	require.Zero(t, calls)
	require.Zero(t, v.Snapshot().Sequence)
}

func TestBindRefetchesOnDeclaredFieldsOnly(t *testing.T) {
	var mu sync.Mutex
	var seen []filters.State
	v := New("overview", func(_ context.Context, state filters.State) (filters.State, error) {
		mu.Lock()
		seen = append(seen, state)
		mu.Unlock()
		return state, nil
	}, testLogger())

	store := filters.NewStore(filters.Default(time.Date(2024, 6, 21, 0, 0, 0, 0, time.UTC), 7))
	group := &Group{}
	unbind := Bind(v, store, filters.FieldDateRange, context.Background, group)

	store.Update(func(s *filters.State) { s.AmountRange.Min = "10" })
	group.Wait()
	require.Empty(t, seen)

	store.Update(func(s *filters.State) { s.DateRange.Start = "2024-06-01" })
	group.Wait()
	require.Len(t, seen, 1)
	require.Equal(t, "2024-06-01", seen[0].DateRange.Start)
	require.Equal(t, "10", seen[0].AmountRange.Min)
	require.Equal(t, StatusSuccess, v.Snapshot().Status)

	unbind()
	store.Update(func(s *filters.State) { s.DateRange.End = "2024-06-30" })
	group.Wait()
	require.Len(t, seen, 1)
}

func TestGroupWaitContextTimesOut(t *testing.T) {
	group := &Group{}
	release := make(chan struct{})
	group.Go(func() { <-release })

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	require.ErrorIs(t, group.WaitContext(ctx), context.DeadlineExceeded)

	close(release)
	require.NoError(t, group.WaitContext(context.Background()))
}

func TestGroupRecoversPanickingRefresh(t *testing.T) {
	var recovered error
	group := &Group{OnPanic: func(err error) { recovered = err }}
	group.Go(func() { panic("boom") })

	require.NoError(t, group.WaitContext(context.Background()))
	require.Error(t, recovered)
	require.Contains(t, recovered.Error(), "boom")

	ran := false
	group.Go(func() { ran = true })
	group.Wait()
	require.True(t, ran)
}
