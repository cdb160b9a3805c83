package schedule

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pawcal/pawcal/internal/reminder"
)

func TestDebouncerRunsLastTrigger(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)

	var calls atomic.Int32
	var last atomic.Value
	for _, v := range []string{"a", "b", "c"} {
		d.Trigger(func() {
			calls.Add(1)
			last.Store(v)
		})
	}
	assert.True(t, d.Pending())

	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, "c", last.Load())
	assert.False(t, d.Pending())

	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
}

func TestDebouncerCancel(t *testing.T) {
	d := NewDebouncer(10 * time.Millisecond)

	var calls atomic.Int32
	d.Trigger(func() { calls.Add(1) })
	d.Cancel()
	assert.False(t, d.Pending())

	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, int32(0), calls.Load())
}

type finderFunc func(ctx context.Context, term string) ([]reminder.OwnerOption, error)

func (f finderFunc) SearchOwners(ctx context.Context, term string) ([]reminder.OwnerOption, error) {
	return f(ctx, term)
}

func TestOwnerSearchMinimumLength(t *testing.T) {
	var calls atomic.Int32
	s := NewOwnerSearch(finderFunc(func(ctx context.Context, term string) ([]reminder.OwnerOption, error) {
		calls.Add(1)
		return []reminder.OwnerOption{ownerA}, nil
	}), 5*time.Millisecond, 2, nil)

	s.SetTerm("N")
	assert.False(t, s.HasQuery())
	assert.False(t, s.Fetching())

	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, int32(0), calls.Load())
	assert.Empty(t, s.Results())
}

func TestOwnerSearchDebouncesTyping(t *testing.T) {
	var (
		mu    sync.Mutex
		terms []string
	)
	results := make(chan SearchResult, 4)
	s := NewOwnerSearch(finderFunc(func(ctx context.Context, term string) ([]reminder.OwnerOption, error) {
		mu.Lock()
		terms = append(terms, term)
		mu.Unlock()
		return []reminder.OwnerOption{ownerA}, nil
	}), 20*time.Millisecond, 2, func(r SearchResult) { results <- r })

	s.SetTerm("Ng")
	s.SetTerm("Ngu")
	s.SetTerm("Nguy")
	assert.True(t, s.Fetching())

	select {
	case r := <-results:
		assert.Equal(t, "Nguy", r.Term)
		assert.Equal(t, []reminder.OwnerOption{ownerA}, r.Owners)
	case <-time.After(time.Second):
		t.Fatal("no search result")
	}

	mu.Lock()
	assert.Equal(t, []string{"Nguy"}, terms)
	mu.Unlock()
	assert.Equal(t, []reminder.OwnerOption{ownerA}, s.Results())
	assert.False(t, s.Fetching())
}

func TestOwnerSearchDropsStaleResults(t *testing.T) {
	release := make(chan struct{})
	results := make(chan SearchResult, 4)
	s := NewOwnerSearch(finderFunc(func(ctx context.Context, term string) ([]reminder.OwnerOption, error) {
		if term == "Ngu" {
			<-release
			return []reminder.OwnerOption{ownerA}, nil
		}
		return []reminder.OwnerOption{ownerB}, nil
	}), 5*time.Millisecond, 2, func(r SearchResult) { results <- r })

	s.SetTerm("Ngu")
	// Let the first lookup start and block.
	time.Sleep(30 * time.Millisecond)

	s.SetTerm("Tran")
	select {
	case r := <-results:
		assert.Equal(t, "Tran", r.Term)
	case <-time.After(time.Second):
		t.Fatal("no search result")
	}

	close(release)
	select {
	case r := <-results:
		t.Fatalf("stale result delivered for %q", r.Term)
	case <-time.After(50 * time.Millisecond):
	}
	assert.Equal(t, []reminder.OwnerOption{ownerB}, s.Results())
}

func TestOwnerSearchErrorClearsResults(t *testing.T) {
	results := make(chan SearchResult, 1)
	s := NewOwnerSearch(finderFunc(func(ctx context.Context, term string) ([]reminder.OwnerOption, error) {
		return nil, errors.New("offline")
	}), 5*time.Millisecond, 2, func(r SearchResult) { results <- r })

	s.SetTerm("Le")
	r := <-results
	assert.Error(t, r.Err)
	assert.Empty(t, r.Owners)
	assert.Empty(t, s.Results())
}

func TestOwnerSearchCancel(t *testing.T) {
	var calls atomic.Int32
	s := NewOwnerSearch(finderFunc(func(ctx context.Context, term string) ([]reminder.OwnerOption, error) {
		calls.Add(1)
		return nil, nil
	}), 10*time.Millisecond, 2, nil)

	s.SetTerm("Nguyen")
	s.Cancel()
	assert.Equal(t, "", s.Term())
	assert.False(t, s.Fetching())

	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, int32(0), calls.Load())
}
