package app

import (
	"os"
	"strconv"
	"sync/atomic"
)

const testModeEnv = "SOCIETYHUB_TEST_MODE"

// testMode caches the parsed flag; nil until first read.
var testMode atomic.Pointer[bool]

func readTestMode() *bool {
	enabled, err := strconv.ParseBool(os.Getenv(testModeEnv))
	enabled = err == nil && enabled
	testMode.Store(&enabled)
	return &enabled
}

// InTestMode reports whether main should return before starting the server, worker or seed.
// SOCIETYHUB_TEST_MODE accepts any strconv.ParseBool value.
func InTestMode() bool {
	if v := testMode.Load(); v != nil {
		return *v
	}
	return *readTestMode()
}

// RefreshTestMode re-reads SOCIETYHUB_TEST_MODE after the environment changes.
func RefreshTestMode() {
	readTestMode()
}
