package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/societyhub/societyhub/internal/app"
	"github.com/societyhub/societyhub/internal/shared"
	"github.com/societyhub/societyhub/internal/vendors"
	societytesting "github.com/societyhub/societyhub/testing"
)

func TestMain(m *testing.M) {
	societytesting.TestMain(m)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestTestModeIsActive(t *testing.T) {
	app.RefreshTestMode()
	assert.True(t, app.InTestMode())
	assert.Equal(t, "false", os.Getenv("SEED_DEMO_DATA"))
	assert.Equal(t, "false", os.Getenv("JOBS_ENABLED"))
	assert.Equal(t, app.VendorSourceMemory, os.Getenv("VENDOR_SOURCE"))
}

func TestBuildDirectoryMemory(t *testing.T) {
	cfg := &app.Config{VendorSource: app.VendorSourceMemory}
	dir, closeFn, err := buildDirectory(context.Background(), cfg, nil, quietLogger())
	require.NoError(t, err)
	defer closeFn()

	_, ok := dir.(*vendors.MemoryDirectory)
	assert.True(t, ok)
	name, err := dir.VendorName(context.Background(), "VEN-005")
	require.NoError(t, err)
	assert.Equal(t, "CleanPro Housekeeping", name)
}

func TestBuildDirectoryCached(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	cfg := &app.Config{VendorSource: app.VendorSourceMemory, VendorCacheTTL: time.Minute}
	dir, closeFn, err := buildDirectory(context.Background(), cfg, client, quietLogger())
	require.NoError(t, err)
	defer closeFn()

	_, ok := dir.(*vendors.CachedDirectory)
	require.True(t, ok)
	name, err := dir.VendorName(context.Background(), "VEN-001")
	require.NoError(t, err)
	assert.Equal(t, "QuickFix Plumbing Services", name)
	assert.True(t, mr.Exists(shared.VendorNameKey("VEN-001")))
}

func TestEnqueueOverdueScanRequiresRedis(t *testing.T) {
	err := enqueueOverdueScan(context.Background(), &app.Config{})
	require.Error(t, err)
}
