package logger

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"hr_contract_notifier/internal/infra/config"
)

func TestInit(t *testing.T) {
	Init(&config.AppConfig{LogLevel: "debug", Environment: "production"})
	assert.Equal(t, logrus.DebugLevel, Log.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, Log.Formatter)

	Init(&config.AppConfig{LogLevel: "chatty", Environment: "development"})
	assert.Equal(t, logrus.InfoLevel, Log.GetLevel())
	assert.IsType(t, &logrus.TextFormatter{}, Log.Formatter)
}

func TestComponent(t *testing.T) {
	entry := Component("dispatcher")
	assert.Equal(t, "dispatcher", entry.Data["component"])
}
