package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithWriter_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter("wishlist", "info", &buf)

	l.Info("hello", slog.String("key", "value"))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "hello", entry["msg"])
	assert.Equal(t, "wishlist", entry["service"])
	assert.Equal(t, "value", entry["key"])
}

func TestNewWithWriter_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter("wishlist", "warn", &buf)

	l.Info("suppressed")
	assert.Zero(t, buf.Len())

	l.Warn("emitted")
	assert.Contains(t, buf.String(), "emitted")
}

func TestNewWithWriter_UnknownLevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter("wishlist", "bogus", &buf)

	l.Debug("suppressed")
	assert.Zero(t, buf.Len())

	l.Info("emitted")
	assert.Contains(t, buf.String(), "emitted")
}

func TestCorrelationID_RoundTrip(t *testing.T) {
	ctx := WithCorrelationID(context.Background(), "corr-123")
	assert.Equal(t, "corr-123", CorrelationIDFromContext(ctx))
	assert.Empty(t, CorrelationIDFromContext(context.Background()))
}

func TestUserID_RoundTrip(t *testing.T) {
	ctx := WithUserID(context.Background(), "u1")
	assert.Equal(t, "u1", UserIDFromContext(ctx))
	assert.Empty(t, UserIDFromContext(context.Background()))
}

func TestWithContext_EnrichesFields(t *testing.T) {
	var buf bytes.Buffer
	base := NewWithWriter("wishlist", "info", &buf)

	ctx := WithCorrelationID(context.Background(), "corr-abc")
	ctx = WithUserID(ctx, "u1")

	WithContext(ctx, base).Info("enriched")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "corr-abc", entry["correlation_id"])
	assert.Equal(t, "u1", entry["user_id"])
}

func TestFromContext_FallbackToDefault(t *testing.T) {
	assert.Equal(t, slog.Default(), FromContext(context.Background()))

	var buf bytes.Buffer
	l := NewWithWriter("wishlist", "info", &buf)
	ctx := NewContext(context.Background(), l)
	assert.Equal(t, l, FromContext(ctx))
}
