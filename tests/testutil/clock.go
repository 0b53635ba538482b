package testutil

import (
	"time"

	"github.com/light-bringer/changeproxy/internal/pkg/clock"
)

// NewFixedClock returns a mock clock stopped at t, for date proxies and
// load timing in tests.
func NewFixedClock(t time.Time) *clock.MockClock {
	return clock.NewMockClock(t)
}
