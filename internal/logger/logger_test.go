package logger

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_ConsoleOnly(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Options{Output: &buf, JSON: true, Level: "debug"})
	require.NoError(t, err)
	defer l.Close()

	l.Component("sampler").Debug().Int("paths", 10).Msg("sampled")

	out := buf.String()
	assert.Contains(t, out, `"component":"sampler"`)
	assert.Contains(t, out, `"paths":10`)
	assert.Empty(t, l.Path())
}

func TestNew_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Options{Output: &buf, JSON: true, Level: "WARN"})
	require.NoError(t, err)

	l.Info().Msg("hidden")
	l.Warn().Msg("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestNew_InvalidLevel(t *testing.T) {
	_, err := New(Options{Level: "chatty"})
	assert.Error(t, err)
}

func TestNew_WritesLogFile(t *testing.T) {
	dir := t.TempDir()
	var buf bytes.Buffer
	l, err := New(Options{Output: &buf, Name: "test", LogDir: dir, JSON: true})
	require.NoError(t, err)

	l.Info().Str("ticker", "SPY").Msg("loaded")
	require.NoError(t, l.Close())

	assert.True(t, strings.HasPrefix(l.Path(), dir))
	data, err := os.ReadFile(l.Path())
	require.NoError(t, err)
	assert.Contains(t, string(data), `"ticker":"SPY"`)
}
