package logger

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("nonsense"))
}

func TestMultiHandler_AddsRequestID(t *testing.T) {
	var buf bytes.Buffer
	h := NewMultiHandler(slog.NewTextHandler(&buf, nil))
	log := slog.New(h)

	ctx := WithRequestID(context.Background(), "abc-123")
	log.InfoContext(ctx, "hello")

	assert.Contains(t, buf.String(), "request_id=abc-123")
	assert.Contains(t, buf.String(), "msg=hello")
}

func TestMultiHandler_RespectsLevels(t *testing.T) {
	var infoBuf, errBuf bytes.Buffer
	h := NewMultiHandler(
		slog.NewTextHandler(&infoBuf, &slog.HandlerOptions{Level: slog.LevelInfo}),
		slog.NewTextHandler(&errBuf, &slog.HandlerOptions{Level: slog.LevelError}),
	)
	log := slog.New(h)

	log.Info("only info")

	assert.Contains(t, infoBuf.String(), "only info")
	assert.Empty(t, errBuf.String())
}
