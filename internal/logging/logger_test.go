package logging

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func captureDefault(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	return &buf
}

func TestWithHandle(t *testing.T) {
	buf := captureDefault(t)

	WithHandle("alice").Warn("analysis failed")

	assert.Contains(t, buf.String(), "handle=alice")
	assert.Contains(t, buf.String(), "analysis failed")
}

func TestWithError(t *testing.T) {
	buf := captureDefault(t)

	WithError(errors.New("boom")).Warn("lookup failed")

	assert.Contains(t, buf.String(), "error=boom")
}
