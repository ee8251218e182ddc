package scheduler

import (
	"context"
	"fmt"
	"sync"
)

// RunLockManager serializes scheduling runs per user. The engine itself
// provides no mutual exclusion: two concurrent runs for the same user would
// read the same committed state and produce conflicting plans, so callers
// route every run through this gate.
//
// Uses a keyed gate pattern: each user gets a one-slot channel, allowing
// concurrent runs for different users while blocking concurrent runs for the
// same user with a bounded, context-controlled wait.
type RunLockManager struct {
	mu    sync.Mutex // Guards the gates map itself
	gates map[string]chan struct{}
}

// NewRunLockManager creates a new RunLockManager.
func NewRunLockManager() *RunLockManager {
	return &RunLockManager{
		gates: make(map[string]chan struct{}),
	}
}

// Acquire blocks until the user's gate is free or the context is done.
// On success it returns a release function the caller must invoke when the
// run completes.
func (m *RunLockManager) Acquire(ctx context.Context, userID string) (func(), error) {
	gate := m.gate(userID)
	select {
	case gate <- struct{}{}:
		return func() { <-gate }, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("waiting for scheduling lock for user %q: %w", userID, ctx.Err())
	}
}

// TryAcquire acquires the user's gate without waiting.
// Returns false when a run is already in flight for that user.
func (m *RunLockManager) TryAcquire(userID string) (func(), bool) {
	gate := m.gate(userID)
	select {
	case gate <- struct{}{}:
		return func() { <-gate }, true
	default:
		return nil, false
	}
}

// gate returns the per-user gate, creating it on first access.
func (m *RunLockManager) gate(userID string) chan struct{} {
	m.mu.Lock()
	defer m.mu.Unlock()

	g, exists := m.gates[userID]
	if !exists {
		g = make(chan struct{}, 1)
		m.gates[userID] = g
	}
	return g
}
