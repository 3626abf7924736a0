package utils

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
}

func TestLoggerJSONCarriesComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LoggerConfig{Format: "json", Output: &buf}).WithComponent("ledger")

	logger.Info("wallet created", "wallet_id", "w-1")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "wallet created", entry["msg"])
	assert.Equal(t, "ledger", entry["component"])
	assert.Equal(t, "w-1", entry["wallet_id"])
	assert.Equal(t, "ledger", logger.Component())
}

func TestLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LoggerConfig{Level: "warn", Output: &buf})

	logger.Info("hidden")
	assert.Zero(t, buf.Len())

	logger.LogError(context.Background(), "failed", errors.New("boom"))
	assert.Contains(t, buf.String(), "boom")
}
