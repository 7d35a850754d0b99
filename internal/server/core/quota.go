package core

import (
	"sync"
	"time"
)

// DownloadRecord is one admitted download inside the quota window.
type DownloadRecord struct {
	Timestamp time.Time
	Size      int64
	FileID    string
}

// QuotaTracker enforces a per-user sliding-window byte budget on
// downloads. Budget replenishes continuously as records age out of the
// window; there is no fixed-interval reset.
type QuotaTracker struct {
	mu      sync.Mutex
	records map[string][]DownloadRecord
	cap     int64
	window  time.Duration
}

// NewQuotaTracker creates a tracker allowing trafficCap bytes per user
// over a trailing window.
func NewQuotaTracker(trafficCap int64, window time.Duration) *QuotaTracker {
	return &QuotaTracker{
		records: make(map[string][]DownloadRecord),
		cap:     trafficCap,
		window:  window,
	}
}

// CheckAndRecord admits or rejects a download of size bytes at now.
// The budget is evaluated before this download is counted: a request is
// rejected only when the quota was already exhausted by prior downloads,
// so the request that first crosses the cap is admitted and only the next
// one is blocked. Permissive at the boundary by policy.
func (q *QuotaTracker) CheckAndRecord(user string, size int64, fileID string, now time.Time) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	recs := q.prune(user, now)
	var used int64
	for _, r := range recs {
		used += r.Size
	}
	if q.cap-used <= 0 {
		return ErrRateLimited
	}

	q.records[user] = append(recs, DownloadRecord{Timestamp: now, Size: size, FileID: fileID})
	return nil
}

// Remaining reports the unconsumed budget at now. Negative once the
// admitted over-the-boundary download has landed.
func (q *QuotaTracker) Remaining(user string, now time.Time) int64 {
	q.mu.Lock()
	defer q.mu.Unlock()

	recs := q.prune(user, now)
	remaining := q.cap
	for _, r := range recs {
		remaining -= r.Size
	}
	return remaining
}

// prune drops records that fell out of the window. Caller holds q.mu.
func (q *QuotaTracker) prune(user string, now time.Time) []DownloadRecord {
	cutoff := now.Add(-q.window)
	recs := q.records[user][:0]
	for _, r := range q.records[user] {
		if !r.Timestamp.Before(cutoff) {
			recs = append(recs, r)
		}
	}
	q.records[user] = recs
	return recs
}
