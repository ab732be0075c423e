package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jsonLogger(t *testing.T, level Level) (Logger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	l, err := NewLogger(&Config{Level: level, Format: JSONFormat, Writer: &buf, DisableTimestamp: true})
	require.NoError(t, err)
	return l, &buf
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var entries []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		entry := make(map[string]interface{})
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		entries = append(entries, entry)
	}
	return entries
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"default", *DefaultConfig(), false},
		{"debug", *DebugConfig(), false},
		{"bad level", Config{Level: "loud", Format: TextFormat, Output: StderrOutput}, true},
		{"bad format", Config{Level: InfoLevel, Format: "xml", Output: StderrOutput}, true},
		{"bad output", Config{Level: InfoLevel, Format: TextFormat, Output: "syslog"}, true},
		{"file without path", Config{Level: InfoLevel, Format: TextFormat, Output: FileOutput}, true},
		{"writer overrides output", Config{Level: InfoLevel, Format: TextFormat, Writer: &bytes.Buffer{}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLogger_FieldsAreKept(t *testing.T) {
	l, buf := jsonLogger(t, InfoLevel)

	l.WithComponent("parsers").WithField("source", "assignments").Info("loaded")
	l.Debug("hidden")

	entries := decodeLines(t, buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "loaded", entries[0]["msg"])
	assert.Equal(t, "parsers", entries[0]["component"])
	assert.Equal(t, "assignments", entries[0]["source"])
}

func TestTimedOperation(t *testing.T) {
	l, buf := jsonLogger(t, InfoLevel)

	err := TimedOperation("load", l, func() error { return nil })
	require.NoError(t, err)

	failure := errors.New("boom")
	err = TimedOperation("load", l, func() error { return failure })
	assert.Same(t, failure, err)

	entries := decodeLines(t, buf)
	require.Len(t, entries, 2)
	assert.Equal(t, "success", entries[0]["status"])
	assert.Equal(t, "error", entries[1]["status"])
	assert.Equal(t, "boom", entries[1]["error"])
	assert.Equal(t, "load", entries[1]["operation"])
}

func TestOperationLogger_Count(t *testing.T) {
	l, buf := jsonLogger(t, InfoLevel)

	NewOperationLogger("ingest", l).WithField("source", "maintenance").Count("rows parsed", "rows", 12)

	entries := decodeLines(t, buf)
	require.Len(t, entries, 1)
	assert.Equal(t, float64(12), entries[0]["rows"])
	assert.Equal(t, "maintenance", entries[0]["source"])
}
