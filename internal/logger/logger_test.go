package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultWritesMessage(t *testing.T) {
	var buf bytes.Buffer
	l := New(WithWriter(&buf))
	l.Info("hello", "key", "value")

	out := buf.String()
	assert.Contains(t, out, "hello")
	assert.Contains(t, out, "value")
}

func TestDebugFilteredByDefault(t *testing.T) {
	var buf bytes.Buffer
	l := New(WithWriter(&buf))
	l.Debug("hidden")

	assert.Empty(t, buf.String())
}

func TestWithDebugEnablesDebug(t *testing.T) {
	var buf bytes.Buffer
	l := New(WithWriter(&buf), WithDebug(true))
	l.Debug("debug msg")

	assert.Contains(t, buf.String(), "debug msg")
}

func TestJSONHandler(t *testing.T) {
	var buf bytes.Buffer
	l := New(WithWriter(&buf), WithJSON(true))
	l.Info("structured", "count", 42)

	var parsed map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &parsed))
	assert.Equal(t, "structured", parsed["msg"])
	assert.EqualValues(t, 42, parsed["count"])
}
