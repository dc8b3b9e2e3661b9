package logging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"INFO", zapcore.InfoLevel},
		{" warn ", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseLevel("verbose")
	assert.Error(t, err)
}

func TestNew(t *testing.T) {
	logger, err := New("debug", "development")
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))

	logger, err = New("warn", "production")
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))

	_, err = New("loud", "production")
	assert.Error(t, err)
}

func TestFromContext_AddsRequestID(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	base := zap.New(core)

	ctx := WithRequestID(context.Background(), "rid-42")
	FromContext(ctx, base).Info("hello")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "rid-42", entries[0].ContextMap()["request_id"])
	assert.Equal(t, "rid-42", RequestIDFromContext(ctx))
}

func TestFromContext_NoRequestID(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	FromContext(context.Background(), zap.New(core)).Info("plain")

	require.Len(t, logs.All(), 1)
	assert.NotContains(t, logs.All()[0].ContextMap(), "request_id")
	assert.NotNil(t, FromContext(context.Background(), nil))
}
