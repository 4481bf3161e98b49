package logger_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillback/loglearn/internal/platform/logger"
)

func TestFromContextRoundTrip(t *testing.T) {
	t.Parallel()

	buf, log := logger.SetupTestLogger(t)
	ctx := logger.WithLogger(context.Background(), log)

	logger.FromContext(ctx).Info("through context")

	entries, err := buf.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "through context", entries[0]["msg"])
}

func TestFromContextFallsBackToDefault(t *testing.T) {
	t.Parallel()

	assert.Same(t, slog.Default().Handler(), logger.FromContext(context.Background()).Handler())
	assert.NotNil(t, logger.FromContext(nil)) //nolint:staticcheck // nil context fallback is the behavior under test
}
