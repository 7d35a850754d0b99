package api

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRateLimiter(t *testing.T) {
	t.Run("enforces the burst", func(t *testing.T) {
		rl := NewRateLimiter(0.001, 3)
		defer rl.Stop()

		for i := 0; i < 3; i++ {
			require.True(t, rl.allow("10.0.0.1"), "request %d within burst", i+1)
		}
		require.False(t, rl.allow("10.0.0.1"), "request past the burst")

		// Other IPs have their own bucket
		require.True(t, rl.allow("10.0.0.2"))
	})

	t.Run("keeps limiting after Stop", func(t *testing.T) {
		rl := NewRateLimiter(0.001, 1)
		rl.Stop()

		require.True(t, rl.allow("10.0.0.3"))
		require.False(t, rl.allow("10.0.0.3"))
	})
}
