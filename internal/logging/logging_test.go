package logging_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/goliatone/go-formsubmit/internal/logging"
)

func TestNewHonoursLevel(t *testing.T) {
	logger, err := logging.New("warn", "json")
	require.NoError(t, err)
	require.False(t, logger.Core().Enabled(zapcore.InfoLevel))
	require.True(t, logger.Core().Enabled(zapcore.WarnLevel))

	logger, err = logging.New("debug", "console")
	require.NoError(t, err)
	require.True(t, logger.Core().Enabled(zapcore.DebugLevel))
}

func TestNewRejectsBadInput(t *testing.T) {
	_, err := logging.New("loud", "json")
	require.Error(t, err)

	_, err = logging.New("info", "xml")
	require.Error(t, err)
}
