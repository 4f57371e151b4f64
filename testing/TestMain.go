// Package testing puts test binaries into a hermetic configuration: the
// runtime test-mode flag is set and settings that would reach redis or
// postgres default to their offline values unless the caller set them.
package testing

import (
	"os"
	"sync"
	stdtesting "testing"
)

const testModeEnv = "SOCIETYHUB_TEST_MODE"

// offlineDefaults apply only to variables the environment leaves unset.
var offlineDefaults = map[string]string{
	"SEED_DEMO_DATA": "false",
	"JOBS_ENABLED":   "false",
	"VENDOR_SOURCE":  "memory",
	"LOG_LEVEL":      "error",
}

var once sync.Once

// Setup enables test mode and fills in offline defaults. It is safe to call repeatedly.
func Setup() {
	once.Do(func() {
		_ = os.Setenv(testModeEnv, "1")
		for key, value := range offlineDefaults {
			if _, ok := os.LookupEnv(key); !ok {
				_ = os.Setenv(key, value)
			}
		}
	})
}

func init() {
	Setup()
}

// TestMain can be delegated to from a package's own TestMain.
func TestMain(m *stdtesting.M) {
	Setup()
	os.Exit(m.Run())
}
