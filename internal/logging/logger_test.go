package logging

import (
	"path/filepath"
	"testing"

	"dtefiler/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestUninitializedIsNoop(t *testing.T) {
	UseLogger(zap.NewNop())
	// Must not panic
	Get(CategoryPortal).Info("hello %s", "world")
	Session("transition %d", 1)
}

func TestCategoriesAreNamed(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	UseLogger(zap.New(core))
	t.Cleanup(func() { UseLogger(zap.NewNop()) })

	Portal("click %s", "#bt_ingresar")
	Get(CategorySession).With("run", "abc").Warn("aborted: %s", "authentication failed")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "portal", entries[0].LoggerName)
	assert.Equal(t, "click #bt_ingresar", entries[0].Message)
	assert.Equal(t, "session", entries[1].LoggerName)
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, "abc", entries[1].ContextMap()["run"])
}

func TestGetCachesLoggers(t *testing.T) {
	UseLogger(zap.NewNop())
	assert.Same(t, Get(CategoryRecords), Get(CategoryRecords))
}

func TestInitialize(t *testing.T) {
	t.Cleanup(func() { UseLogger(zap.NewNop()) })

	t.Run("invalid level", func(t *testing.T) {
		err := Initialize(config.LoggingConfig{Level: "loud"}, false)
		assert.Error(t, err)
	})

	t.Run("file output with disabled category", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "dtefiler.log")
		lc := config.LoggingConfig{
			Level:      "info",
			Format:     "json",
			File:       path,
			Categories: map[string]bool{"confirm": false},
		}
		require.NoError(t, Initialize(lc, false))

		assert.True(t, Root().Core().Enabled(zapcore.InfoLevel))
		assert.False(t, Root().Core().Enabled(zapcore.DebugLevel))
		assert.False(t, Get(CategoryConfirm).sugar.Desugar().Core().Enabled(zapcore.ErrorLevel))
	})

	t.Run("verbose forces debug", func(t *testing.T) {
		require.NoError(t, Initialize(config.LoggingConfig{Level: "warn", File: filepath.Join(t.TempDir(), "x.log")}, true))
		assert.True(t, Root().Core().Enabled(zapcore.DebugLevel))
	})
}
