package logger

import (
	"go.uber.org/zap"
)

// LoggerAdapter pairs the general logger with an optional MultiLogger so
// callers can log to categories without checking whether files are enabled
type LoggerAdapter struct {
	multiLogger  *MultiLogger
	singleLogger *zap.Logger
}

// NewLoggerAdapter creates a new logger adapter. multiLogger may be nil.
func NewLoggerAdapter(general *zap.Logger, multiLogger *MultiLogger) *LoggerAdapter {
	if general == nil {
		general = zap.NewNop()
	}
	return &LoggerAdapter{
		multiLogger:  multiLogger,
		singleLogger: general,
	}
}

// General returns the general logger
func (la *LoggerAdapter) General() *zap.Logger {
	return la.singleLogger
}

// Engine returns the engine logger, or the general logger without category files
func (la *LoggerAdapter) Engine() *zap.Logger {
	if la.multiLogger != nil {
		return la.multiLogger.Engine()
	}
	return la.singleLogger
}

// LogError logs an error to the general log and, when enabled, the error category
func (la *LoggerAdapter) LogError(msg string, fields ...zap.Field) {
	la.singleLogger.Error(msg, fields...)
	if la.multiLogger != nil {
		la.multiLogger.LogAppError(msg, fields...)
	}
}

// Sync flushes all loggers
func (la *LoggerAdapter) Sync() error {
	err := la.singleLogger.Sync()
	if la.multiLogger != nil {
		if mErr := la.multiLogger.Sync(); mErr != nil {
			err = mErr
		}
	}
	return err
}

// GetMultiLogger returns the underlying multi-logger (if available)
func (la *LoggerAdapter) GetMultiLogger() *MultiLogger {
	return la.multiLogger
}

// LogsDir returns the category logs directory, or "" without a MultiLogger
func (la *LoggerAdapter) LogsDir() string {
	if la.multiLogger == nil {
		return ""
	}
	return la.multiLogger.GetLogsDir()
}
