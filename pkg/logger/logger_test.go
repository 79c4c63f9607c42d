package logger

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, logrus.DebugLevel, parseLevel("debug"))
	assert.Equal(t, logrus.WarnLevel, parseLevel("warn"))
	// 空值或乱值回落到 Info
	assert.Equal(t, logrus.InfoLevel, parseLevel(""))
	assert.Equal(t, logrus.InfoLevel, parseLevel("loud"))
}

func TestNewLoggerRespectsLogLevelEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	assert.Equal(t, logrus.DebugLevel, NewLogger().GetLevel())

	t.Setenv("LOG_LEVEL", "")
	assert.Equal(t, logrus.InfoLevel, NewLogger().GetLevel())
}
