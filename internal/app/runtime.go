package app

import (
	"os"
	"sync"
	"sync/atomic"
)

const testModeEnv = "LUMINA_TEST_MODE"

var (
	testModeFlag atomic.Bool
	testModeOnce sync.Once
)

func detectTestMode() {
	switch os.Getenv(testModeEnv) {
	case "1", "true":
		testModeFlag.Store(true)
	default:
		testModeFlag.Store(false)
	}
}

// InTestMode reports whether the process should skip runtime side effects
// such as opening listeners or dialing external services. CI sets
// LUMINA_TEST_MODE so the serve and worker commands exit cleanly.
func InTestMode() bool {
	testModeOnce.Do(detectTestMode)
	return testModeFlag.Load()
}

// RefreshTestMode re-reads the environment, for tests that flip the flag.
func RefreshTestMode() {
	detectTestMode()
}
