package logging

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	l, err := ParseLevel("debug")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, l)

	l, err = ParseLevel(" WARN ")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, l)

	_, err = ParseLevel("loud")
	assert.Error(t, err)
}

func TestPrettyHandler(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	log := slog.New(NewPrettyHandler(&buf, slog.LevelInfo))

	log.Debug("hidden")
	log.With("tool", "pieChart").WithGroup("cache").Info("rendered", "hits", 3, slog.Group("page", "id", "p1"))

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "INFO  rendered")
	assert.Contains(t, out, "tool=pieChart")
	assert.Contains(t, out, "cache.hits=3")
	assert.Contains(t, out, "cache.page.id=p1")
}

func TestSetupRejectsUnknownFormat(t *testing.T) {
	assert.Error(t, Setup("info", "xml"))
	assert.Error(t, Setup("nope", "json"))
}
