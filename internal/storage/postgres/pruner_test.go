package postgres

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakePurgeStore records the cutoffs it was asked to purge.
type fakePurgeStore struct {
	mu      sync.Mutex
	cutoffs []time.Time
	err     error
}

func (f *fakePurgeStore) Purge(_ context.Context, cutoff time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cutoffs = append(f.cutoffs, cutoff)
	if f.err != nil {
		return 0, f.err
	}
	return 1, nil
}

func (f *fakePurgeStore) calls() []time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]time.Time, len(f.cutoffs))
	copy(out, f.cutoffs)
	return out
}

func waitForCalls(t *testing.T, store *fakePurgeStore, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(store.calls()) >= n {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("store saw %d purge calls, want at least %d", len(store.calls()), n)
}

func TestPruner_PurgesOnSchedule(t *testing.T) {
	store := &fakePurgeStore{}
	p := NewPruner(store, 10*time.Millisecond, time.Hour, zap.NewNop())

	done := make(chan error, 1)
	go func() { done <- p.Start() }()

	waitForCalls(t, store, 2)
	p.Stop()
	require.NoError(t, <-done)

	// Every cutoff trails the clock by the retention window.
	for _, cutoff := range store.calls() {
		age := time.Since(cutoff)
		assert.Greater(t, age, 59*time.Minute)
		assert.Less(t, age, 61*time.Minute)
	}
}

func TestPruner_KeepsRunningAfterPurgeError(t *testing.T) {
	store := &fakePurgeStore{err: errors.New("connection refused")}
	p := NewPruner(store, 10*time.Millisecond, time.Hour, zap.NewNop())

	done := make(chan error, 1)
	go func() { done <- p.Start() }()

	waitForCalls(t, store, 3)
	p.Stop()
	require.NoError(t, <-done)
}

func TestPruner_StopBeforeFirstTick(t *testing.T) {
	store := &fakePurgeStore{}
	p := NewPruner(store, time.Hour, time.Hour, zap.NewNop())

	done := make(chan error, 1)
	go func() { done <- p.Start() }()

	p.Stop()
	p.Stop() // idempotent

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("pruner did not stop")
	}
	assert.Empty(t, store.calls())
}
