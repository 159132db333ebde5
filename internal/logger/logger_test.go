package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	t.Run("accepts known levels", func(t *testing.T) {
		for _, lvl := range []string{"debug", "info", "WARN", " error "} {
			log, err := New(lvl)
			require.NoError(t, err, lvl)
			assert.NotNil(t, log)
		}
	})

	t.Run("debug level enables debug", func(t *testing.T) {
		log, err := New("debug")
		require.NoError(t, err)
		assert.True(t, log.Desugar().Core().Enabled(zapcore.DebugLevel))
	})

	t.Run("rejects unknown level", func(t *testing.T) {
		_, err := New("verbose")
		assert.Error(t, err)
	})
}
