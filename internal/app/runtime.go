package app

import (
	"os"
	"sync"
	"sync/atomic"
)

var (
	testModeOnce sync.Once
	testMode     atomic.Bool
)

// InTestMode reports whether DRIVELINE_TEST_MODE is set. Middleware that gets
// in the way of integration tests (rate limiting, strict transport headers)
// checks this flag.
func InTestMode() bool {
	testModeOnce.Do(func() {
		testMode.Store(os.Getenv("DRIVELINE_TEST_MODE") == "1")
	})
	return testMode.Load()
}
