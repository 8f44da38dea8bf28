package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerWritesJSONEntries(t *testing.T) {
	var buf bytes.Buffer
	lgr := NewWithWriter("order-desk", &buf)

	lgr.Error("transition_failed", "Status change failed", "req-1", map[string]interface{}{
		"order_id": 7,
	}, errors.New("boom"))

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))

	assert.Equal(t, "error", entry["level"])
	assert.Equal(t, "order-desk", entry["service"])
	assert.Equal(t, "transition_failed", entry["action"])
	assert.Equal(t, "req-1", entry["request_id"])
	assert.Equal(t, "Status change failed", entry["message"])
	assert.Equal(t, "boom", entry["error"])
	assert.Contains(t, entry, "hostname")

	details, ok := entry["details"].(map[string]interface{})
	require.True(t, ok)
	assert.EqualValues(t, 7, details["order_id"])
}

func TestLoggerOmitsEmptyRequestID(t *testing.T) {
	var buf bytes.Buffer
	NewWithWriter("cli", &buf).Info("service_started", "started", "", nil)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.NotContains(t, entry, "request_id")
	assert.NotContains(t, entry, "details")
}

func TestNopLogger(t *testing.T) {
	assert.NotPanics(t, func() {
		Nop().Error("x", "y", "", nil, errors.New("z"))
	})
}
