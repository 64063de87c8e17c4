package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlogLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	l := NewSlog(InfoLevel, &buf, false)

	l.Debug("hidden")
	assert.Zero(t, buf.Len())

	l.Info("sent", "bytes", 5)
	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "sent", rec["msg"])
	assert.Equal(t, "INFO", rec["level"])
	assert.EqualValues(t, 5, rec["bytes"])
	assert.Contains(t, rec, "ts")
}

func TestSlogLogger_SetLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewSlog(WarnLevel, &buf, false)
	assert.Equal(t, WarnLevel, l.Level())

	l.Info("dropped")
	assert.Zero(t, buf.Len())

	l.SetLevel(DebugLevel)
	assert.Equal(t, DebugLevel, l.Level())
	l.Debug("kept")
	assert.Contains(t, buf.String(), "kept")
}

func TestSlogLogger_WithSharesLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewSlog(WarnLevel, &buf, false)
	child := l.With("transport", "loopback")

	l.SetLevel(DebugLevel)
	child.Debug("child record")
	assert.Contains(t, buf.String(), `"transport":"loopback"`)
}

func TestSlogLogger_Console(t *testing.T) {
	var buf bytes.Buffer
	l := NewSlog(DebugLevel, &buf, true)
	l.Warn("unrecognized controller command", "token", "++bogus")
	assert.Contains(t, buf.String(), "unrecognized controller command")
	assert.Contains(t, buf.String(), "++bogus")
}

func TestDiscard(t *testing.T) {
	l := Discard()
	l.Error("nothing")
	assert.Equal(t, ErrorLevel, l.Level())
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
		ok   bool
	}{
		{"debug", DebugLevel, true},
		{"info", InfoLevel, true},
		{"warning", WarnLevel, true},
		{"error", ErrorLevel, true},
		{"loud", WarnLevel, false},
	}
	for _, tt := range tests {
		got, ok := ParseLevel(tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
	}
}

func TestSlogLogger_WithLevelIsIndependent(t *testing.T) {
	var buf bytes.Buffer
	base := NewSlog(WarnLevel, &buf, false)
	chatty := base.WithLevel(DebugLevel)
	quiet := base.WithLevel(ErrorLevel)

	assert.Equal(t, WarnLevel, base.Level())
	assert.Equal(t, DebugLevel, chatty.Level())
	assert.Equal(t, ErrorLevel, quiet.Level())

	chatty.Debug("from chatty")
	quiet.Warn("from quiet")
	base.Info("from base")
	assert.Contains(t, buf.String(), "from chatty")
	assert.NotContains(t, buf.String(), "from quiet")
	assert.NotContains(t, buf.String(), "from base")

	quiet.SetLevel(DebugLevel)
	assert.Equal(t, WarnLevel, base.Level())
	assert.Equal(t, DebugLevel, chatty.Level())

	// With still shares the level of its parent
	tagged := chatty.With("transport", "tcp")
	chatty.SetLevel(ErrorLevel)
	assert.Equal(t, ErrorLevel, tagged.Level())
}
