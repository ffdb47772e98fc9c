package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew_Levels(t *testing.T) {
	tests := map[string]zapcore.Level{
		"":      zapcore.InfoLevel,
		"debug": zapcore.DebugLevel,
		"warn":  zapcore.WarnLevel,
		"error": zapcore.ErrorLevel,
	}
	for level, want := range tests {
		logger, err := New(level)
		require.NoError(t, err)
		assert.True(t, logger.Core().Enabled(want), level)
		if want > zapcore.DebugLevel {
			assert.False(t, logger.Core().Enabled(want-1), level)
		}
	}
}

func TestNew_UnknownLevel(t *testing.T) {
	_, err := New("loud")
	assert.Error(t, err)
}
