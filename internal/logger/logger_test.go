package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_NopBeforeInit(t *testing.T) {
	l := New()
	require.NotNil(t, l.Log)
	l.Log.Info("dropped")
}

func TestInit_FiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf)
	require.NoError(t, l.Init("warn"))

	l.Log.Info("hidden message")
	l.Log.Warn("visible message")
	_ = l.Log.Sync()

	out := buf.String()
	assert.NotContains(t, out, "hidden message")
	assert.True(t, strings.Contains(out, "visible message"), "got %q", out)
	assert.Contains(t, out, "WARN")
}

func TestInit_BadLevel(t *testing.T) {
	l := New()
	err := l.Init("loud")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loud")
}
