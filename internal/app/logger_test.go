package app

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&Config{LogFormat: "json", LogLevel: "warn"}, &buf)

	logger.Info("dropped")
	logger.Warn("vendor payment net amount is negative", "payment_id", "p-1")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "p-1", entry["payment_id"])
}

func TestNewLoggerTextDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(nil, &buf)

	logger.Debug("hidden")
	logger.Info("vendor payment created")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "vendor payment created")
}
