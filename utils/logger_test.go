package utils

import (
	"testing"

	"go.uber.org/zap/zapcore"

	"serenity/config"
)

func TestLoggerHonorsConfiguredLevel(t *testing.T) {
	prevEnv, prevLevel := config.AppConfig.Env, config.AppConfig.LogLevel
	defer func() {
		config.AppConfig.Env, config.AppConfig.LogLevel = prevEnv, prevLevel
	}()

	config.AppConfig.Env = "production"
	config.AppConfig.LogLevel = "warn"
	InitializeLogger()

	if Logger.Core().Enabled(zapcore.InfoLevel) {
		t.Error("info should be disabled when LOG_LEVEL is warn")
	}
	if !Logger.Core().Enabled(zapcore.WarnLevel) {
		t.Error("warn should be enabled when LOG_LEVEL is warn")
	}
}

func TestLoggerFallsBackOnUnknownLevel(t *testing.T) {
	prevEnv, prevLevel := config.AppConfig.Env, config.AppConfig.LogLevel
	defer func() {
		config.AppConfig.Env, config.AppConfig.LogLevel = prevEnv, prevLevel
	}()

	config.AppConfig.Env = "production"
	config.AppConfig.LogLevel = "chatty"
	InitializeLogger()

	if !Logger.Core().Enabled(zapcore.InfoLevel) {
		t.Error("an unknown LOG_LEVEL should fall back to info in production")
	}
}
