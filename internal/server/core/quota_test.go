package core

import (
	"errors"
	"testing"
	"time"
)

func TestQuotaTracker_CheckAndRecord(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	window := 5 * time.Minute

	t.Run("first crossing of the cap is admitted", func(t *testing.T) {
		q := NewQuotaTracker(100, window)

		// 60 used, 40 remaining: a 400-byte download is still admitted
		if err := q.CheckAndRecord("username", 60, "f1", now); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := q.CheckAndRecord("username", 400, "f2", now); err != nil {
			t.Fatalf("the request crossing the cap must be admitted, got %v", err)
		}
		// Now the quota is exhausted; the next request is blocked
		if err := q.CheckAndRecord("username", 1, "f3", now); !errors.Is(err, ErrRateLimited) {
			t.Errorf("expected ErrRateLimited after exhaustion, got %v", err)
		}
	})

	t.Run("exactly at the cap blocks the next request", func(t *testing.T) {
		q := NewQuotaTracker(100, window)

		if err := q.CheckAndRecord("username", 100, "f1", now); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := q.CheckAndRecord("username", 1, "f2", now); !errors.Is(err, ErrRateLimited) {
			t.Errorf("expected ErrRateLimited with zero remaining, got %v", err)
		}
	})

	t.Run("budget replenishes as records age out", func(t *testing.T) {
		q := NewQuotaTracker(100, window)

		if err := q.CheckAndRecord("username", 150, "f1", now); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := q.CheckAndRecord("username", 1, "f2", now.Add(time.Minute)); !errors.Is(err, ErrRateLimited) {
			t.Fatalf("expected ErrRateLimited inside the window, got %v", err)
		}

		// Sliding window, not a fixed reset: once the record is older than
		// the window the full budget is back
		later := now.Add(window + time.Second)
		if err := q.CheckAndRecord("username", 50, "f3", later); err != nil {
			t.Errorf("expected admission after the window slid, got %v", err)
		}
		if got := q.Remaining("username", later); got != 50 {
			t.Errorf("expected 50 remaining, got %d", got)
		}
	})

	t.Run("record at the window edge still counts", func(t *testing.T) {
		q := NewQuotaTracker(100, window)

		if err := q.CheckAndRecord("username", 100, "f1", now); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		// timestamp == now-window is inside the window
		edge := now.Add(window)
		if err := q.CheckAndRecord("username", 1, "f2", edge); !errors.Is(err, ErrRateLimited) {
			t.Errorf("expected the edge record to still count, got %v", err)
		}
	})

	t.Run("users do not share budget", func(t *testing.T) {
		q := NewQuotaTracker(100, window)

		if err := q.CheckAndRecord("alice", 500, "f1", now); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := q.CheckAndRecord("bob", 10, "f2", now); err != nil {
			t.Errorf("bob must have a full budget, got %v", err)
		}
	})
}

func TestQuotaTracker_Remaining(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	q := NewQuotaTracker(100, 5*time.Minute)

	if got := q.Remaining("username", now); got != 100 {
		t.Fatalf("expected full budget, got %d", got)
	}

	q.CheckAndRecord("username", 150, "f1", now)
	if got := q.Remaining("username", now); got != -50 {
		t.Errorf("expected -50 after the boundary download landed, got %d", got)
	}
}
