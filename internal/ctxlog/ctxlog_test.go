package ctxlog

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromContext_FallsBackToDefault(t *testing.T) {
	assert.Same(t, slog.Default(), FromContext(context.Background()))
}

func TestDebugFromContext_FallsBackToAppLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	ctx := WithLogger(context.Background(), logger)

	require.Same(t, logger, DebugFromContext(ctx))

	debug := slog.New(slog.NewTextHandler(&buf, nil))
	ctx = WithDebugLogger(ctx, debug)
	assert.Same(t, debug, DebugFromContext(ctx))
	assert.Same(t, logger, FromContext(ctx))
}
