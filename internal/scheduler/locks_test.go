package scheduler

import (
	"context"
	"testing"
	"time"
)

func TestRunLockManagerSerializesPerUser(t *testing.T) {
	m := NewRunLockManager()

	release, err := m.Acquire(context.Background(), "alice")
	if err != nil {
		t.Fatalf("first acquire failed: %v", err)
	}

	// Same user: a second run must not start.
	if _, ok := m.TryAcquire("alice"); ok {
		t.Error("TryAcquire succeeded while a run is in flight for the same user")
	}

	// Different user: independent gate.
	releaseBob, ok := m.TryAcquire("bob")
	if !ok {
		t.Error("TryAcquire for a different user should succeed")
	} else {
		releaseBob()
	}

	release()
	release2, ok := m.TryAcquire("alice")
	if !ok {
		t.Error("TryAcquire should succeed after release")
	} else {
		release2()
	}
}

func TestRunLockManagerAcquireRespectsContext(t *testing.T) {
	m := NewRunLockManager()

	release, err := m.Acquire(context.Background(), "alice")
	if err != nil {
		t.Fatalf("first acquire failed: %v", err)
	}
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if _, err := m.Acquire(ctx, "alice"); err == nil {
		t.Fatal("expected bounded wait to fail while the gate is held")
	}
}

func TestRunLockManagerAcquireUnblocksOnRelease(t *testing.T) {
	m := NewRunLockManager()

	release, err := m.Acquire(context.Background(), "alice")
	if err != nil {
		t.Fatalf("first acquire failed: %v", err)
	}

	acquired := make(chan struct{})
	go func() {
		r, err := m.Acquire(context.Background(), "alice")
		if err == nil {
			r()
		}
		close(acquired)
	}()

	release()

	select {
	case <-acquired:
	case <-time.After(2 * time.Second):
		t.Fatal("waiter never acquired the gate after release")
	}
}
