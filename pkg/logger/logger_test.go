package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name        string
		environment string
		level       string
	}{
		{"dev environment with debug level", "dev", "debug"},
		{"prod environment with info level", "prod", "info"},
		{"staging environment with warn level", "staging", "warn"},
		{"unknown level falls back to info", "prod", "verbose"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, err := NewLogger(tt.environment, tt.level, "maintenance-engine")
			require.NoError(t, err)
			require.NotNil(t, log)

			// Логгер должен принимать все уровни без паники
			log.Debug("debug message", String("key", "value"))
			log.Info("info message", Int("count", 1))
			log.Warn("warn message", Bool("flag", true))
			log.Error("error message", Error(errors.New("test error")))
		})
	}
}

func TestLoggerWith(t *testing.T) {
	log, err := NewLogger("dev", "debug", "maintenance-engine")
	require.NoError(t, err)

	child := log.With(String("equipment_id", "eq-1"))
	require.NotNil(t, child)

	// Дочерний логгер не должен затрагивать родительский
	assert.NotSame(t, log, child)
	child.Info("child logger message")
}

func TestFieldHelpers(t *testing.T) {
	assert.Equal(t, "key", String("key", "val").Key)
	assert.Equal(t, "count", Int("count", 5).Key)
	assert.Equal(t, "total", Int64("total", 10).Key)
	assert.Equal(t, "score", Float64("score", 1.5).Key)
	assert.Equal(t, "ok", Bool("ok", true).Key)
	assert.Equal(t, "elapsed", Duration("elapsed", time.Second).Key)
	assert.Equal(t, "at", Time("at", time.Now()).Key)
	assert.Equal(t, "error", Error(nil).Key)
	assert.Equal(t, "error", Error(errors.New("boom")).Key)
}

func TestCtxField(t *testing.T) {
	t.Run("context with trace_id", func(t *testing.T) {
		ctx := context.WithValue(context.Background(), "trace_id", "abc-123")
		field := CtxField(ctx)
		assert.Equal(t, "trace_id", field.Key)
		assert.Equal(t, "abc-123", field.String)
	})

	t.Run("context without trace_id", func(t *testing.T) {
		field := CtxField(context.Background())
		assert.Equal(t, "unknown", field.String)
	})
}
