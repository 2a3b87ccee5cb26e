package logger

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestFrom_FallsBackToSingleton(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	restore := Replace(zap.New(core))
	defer restore()

	From(context.Background()).Info("plain")
	From(nil).Info("nil ctx") //nolint:staticcheck // nil context is handled

	assert.Equal(t, 2, logs.Len())
}

func TestToContext_ScopedFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	restore := Replace(zap.New(core))
	defer restore()

	ctx := ToContext(context.Background(), With(RequestID("r-1"), Connector("Fudan")))
	From(ctx).Warn("exchange failed", Err(errors.New("boom")), Code("general"))

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "r-1", fields["request_id"])
	assert.Equal(t, "Fudan", fields["connector"])
	assert.Equal(t, "general", fields["error_code"])
	assert.Equal(t, "boom", fields["error"])
}

func TestReplace_RestoreKeepsUsableLogger(t *testing.T) {
	restore := Replace(zap.NewNop())
	restore()
	assert.NotNil(t, L())
	assert.NotNil(t, Named("test"))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("DEBUG"))
	assert.Equal(t, zapcore.WarnLevel, parseLevel("warn"))
	assert.Equal(t, zapcore.ErrorLevel, parseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("nonsense"))
}
