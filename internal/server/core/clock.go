package core

import "time"

// Clock supplies the current time. It is injected everywhere time matters
// (token expiry, quota windows) so behavior is deterministic under test.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }
