package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestMaskName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"John Smith", "J. S."},
		{"smith, john", "S. J."},
		{"Mary  Ann O'Neil", "M. A. O."},
		{"", ""},
		{" , ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, MaskName(tt.in))
		})
	}
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zapcore.WarnLevel, parseLevel("WARN"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("verbose"))
}

func TestZapAdapter_Fields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewZapAdapter(zap.New(core)).
		WithFields(map[string]interface{}{"requestId": "r-1"}).
		WithError(errors.New("boom"))

	log.Warn("stage failed", map[string]interface{}{"stage": "score", "durationMs": int64(12)})

	entries := logs.All()
	if assert.Len(t, entries, 1) {
		ctx := entries[0].ContextMap()
		assert.Equal(t, "stage failed", entries[0].Message)
		assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
		assert.Equal(t, "r-1", ctx["requestId"])
		assert.Equal(t, "boom", ctx["error"])
		assert.Equal(t, "score", ctx["stage"])
		assert.EqualValues(t, 12, ctx["durationMs"])
	}
}
