package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBufferedLogger(t *testing.T) (*Logger, *bytes.Buffer) {
	t.Helper()
	l := New(Options{Level: "debug", Format: "json"})
	buf := &bytes.Buffer{}
	l.SetOutput(buf)
	return l, buf
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	return out
}

func TestLogger_FormatArgs(t *testing.T) {
	l, buf := newBufferedLogger(t)

	l.Info("booked %d slots for %s", 3, "alice")

	line := decodeLine(t, buf)
	assert.Equal(t, "booked 3 slots for alice", line["msg"])
	assert.Equal(t, "info", line["level"])
}

func TestLogger_KeyValueArgs(t *testing.T) {
	l, buf := newBufferedLogger(t)

	l.Warning("slot rejected", "worker_id", 7, "reason", "overlap")

	line := decodeLine(t, buf)
	assert.Equal(t, "slot rejected", line["msg"])
	assert.Equal(t, float64(7), line["worker_id"])
	assert.Equal(t, "overlap", line["reason"])
}

func TestLogger_WithComponentDoesNotLeak(t *testing.T) {
	l, buf := newBufferedLogger(t)

	scoped := l.WithComponent("scheduler")
	scoped.Error("run failed")
	line := decodeLine(t, buf)
	assert.Equal(t, "scheduler", line["component"])

	buf.Reset()
	l.Error("plain")
	line = decodeLine(t, buf)
	_, ok := line["component"]
	assert.False(t, ok)
}

func TestLogger_StructuredError(t *testing.T) {
	l, buf := newBufferedLogger(t)

	l.StructuredError(errors.New("boom"), map[string]interface{}{"store_id": 4})

	line := decodeLine(t, buf)
	assert.Equal(t, "boom", line["error"])
	assert.Equal(t, float64(4), line["store_id"])
}

func TestLogger_SetLogLevel(t *testing.T) {
	l, buf := newBufferedLogger(t)

	require.NoError(t, l.SetLogLevel("error"))
	l.Info("hidden")
	assert.Zero(t, buf.Len())

	assert.Error(t, l.SetLogLevel("loud"))
}

func TestLogger_FileOutputAndClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "booking.log")
	l := New(Options{Level: "info", Format: "json", File: path, MaxSize: 1})
	require.NotNil(t, l.file)

	l.WithComponent("api").Info("written to file")
	require.NoError(t, l.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "written to file")

	// lumberjack reopens lazily; a second close is a no-op
	assert.NoError(t, l.Close())
}

func TestLogger_CloseWithoutFile(t *testing.T) {
	assert.NoError(t, NewNop().Close())
}
