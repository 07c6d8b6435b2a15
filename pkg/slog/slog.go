// Package slog provides a shared sugared zap logger for the whole process.
package slog

import (
	"log"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var logger *zap.SugaredLogger

// Init configures the process logger. Must be called once, before Get.
func Init() {
	config := zap.NewProductionConfig()
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zapLogger, err := config.Build()
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	logger = zapLogger.Sugar()
}

// Get returns the process logger.
func Get() *zap.SugaredLogger {
	if logger == nil {
		Init()
	}
	return logger
}
