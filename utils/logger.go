package utils

import (
	"log"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"serenity/config"
)

// Logger is the process-wide logger, built once from the loaded config.
var Logger *zap.Logger

// InitializeLogger builds the global logger: production encoding when
// ENV is production, verbosity from LOG_LEVEL.
func InitializeLogger() {
	var cfg zap.Config
	if config.IsProduction() {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	level := zapcore.InfoLevel
	if !config.IsProduction() {
		level = zapcore.DebugLevel
	}
	if parsed, err := zapcore.ParseLevel(config.AppConfig.LogLevel); err == nil {
		level = parsed
	}
	cfg.Level = zap.NewAtomicLevelAt(level)

	var err error
	Logger, err = cfg.Build()
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
}

// GetLogger returns the global logger, building it on first use.
func GetLogger() *zap.Logger {
	if Logger == nil {
		InitializeLogger()
	}
	return Logger
}
