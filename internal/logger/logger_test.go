package logger

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestSetup(t *testing.T) {
	defer logrus.SetLevel(logrus.InfoLevel)

	Setup("debug", "text")
	assert.Equal(t, logrus.DebugLevel, logrus.GetLevel())

	Setup("nonsense", "json")
	assert.Equal(t, logrus.InfoLevel, logrus.GetLevel())
}

func TestFormatter(t *testing.T) {
	assert.IsType(t, &logrus.TextFormatter{}, Formatter("TEXT"))
	assert.IsType(t, &logrus.JSONFormatter{}, Formatter("json"))
	assert.IsType(t, &logrus.JSONFormatter{}, Formatter(""))
}
