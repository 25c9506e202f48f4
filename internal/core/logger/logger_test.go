package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewWithRotate_WritesFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "app.log")
	l, cleanup := NewWithRotate("info", true, FileRotate{Filename: file, MaxSizeMB: 1})

	l.Info("generation created", zap.Int64("id", 7))
	l.Debug("below level")
	cleanup()

	b, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"msg":"generation created"`)
	assert.NotContains(t, string(b), "below level")
}

func TestBuild_UnknownLevelFallsBackToInfo(t *testing.T) {
	l, cleanup := Build(Options{Level: "loud"})
	defer cleanup()
	assert.True(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, l.Core().Enabled(zapcore.DebugLevel))
}

func TestToWriter(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	w := ToWriter(zap.New(core), zapcore.WarnLevel)

	msg := []byte("[GIN-debug] route registered\n")
	n, err := w.Write(msg)
	require.NoError(t, err)
	assert.Equal(t, len(msg), n)

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "[GIN-debug] route registered", entries[0].Message)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
}
