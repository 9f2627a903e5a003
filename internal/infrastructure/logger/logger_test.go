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

func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"INFO":    zapcore.InfoLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"bogus":   zapcore.InfoLevel,
		"":        zapcore.InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestNew(t *testing.T) {
	t.Run("nil config uses defaults", func(t *testing.T) {
		l, err := New(nil)
		require.NoError(t, err)
		assert.NotNil(t, l)
	})

	t.Run("writes json to file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "app.log")
		l, err := New(&Config{Level: "info", Format: "json", Output: path})
		require.NoError(t, err)

		l.Info("hello")
		require.NoError(t, l.Sync())

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), `"msg":"hello"`)
	})

	t.Run("tees into extra cores at the configured level", func(t *testing.T) {
		core, recorded := observer.New(zapcore.DebugLevel)
		l, err := New(&Config{Level: "warn", Format: "json", Output: "stderr"}, core)
		require.NoError(t, err)

		l.Info("dropped")
		l.Warn("kept")

		require.Len(t, recorded.All(), 1)
		assert.Equal(t, "kept", recorded.All()[0].Message)
	})

	t.Run("keeps a stricter extra core unchanged", func(t *testing.T) {
		core, recorded := observer.New(zapcore.ErrorLevel)
		l, err := New(&Config{Level: "debug", Format: "json", Output: "stderr"}, core)
		require.NoError(t, err)

		l.Debug("primary only")
		l.Warn("primary only")
		l.Error("both")

		require.Len(t, recorded.All(), 1)
		assert.Equal(t, "both", recorded.All()[0].Message)
	})

	t.Run("skips nil extra cores", func(t *testing.T) {
		l, err := New(&Config{Level: "info", Output: "stderr"}, nil)
		require.NoError(t, err)
		assert.NotNil(t, l)
	})
}

func TestNew_Redaction(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)
	l, err := New(&Config{Level: "debug", Format: "json", Output: "stderr", Service: "pm-backend"}, core)
	require.NoError(t, err)

	l.With(zap.String("api_key", "gsk_live")).Info("calling model",
		zap.String("Authorization", "Bearer abc"),
		zap.String("model", "llama"),
	)

	require.Len(t, recorded.All(), 1)
	fields := recorded.All()[0].ContextMap()
	assert.Equal(t, Redacted, fields["api_key"])
	assert.Equal(t, Redacted, fields["Authorization"])
	assert.Equal(t, "llama", fields["model"])
	assert.Equal(t, "pm-backend", fields["service"])
}

func TestNew_RedactionDisabled(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)
	l, err := New(&Config{Level: "debug", Output: "stderr", RedactKeys: []string{}}, core)
	require.NoError(t, err)

	l.Info("raw", zap.String("token", "t1"))
	assert.Equal(t, "t1", recorded.All()[0].ContextMap()["token"])
}

func TestNew_UnwritableOutput(t *testing.T) {
	_, err := New(&Config{Output: filepath.Join(t.TempDir(), "missing", "app.log")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open log output")
}
