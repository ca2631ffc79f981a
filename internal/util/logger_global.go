package util

import (
	"io"
	"sync"
)

var (
	globalLogger LoggerInterface = NewLogger("info", nil, FormatText)
	globalMu     sync.RWMutex
)

// InitLogger replaces the global logger. Passing a nil writer silences logging.
func InitLogger(logLevel string, w io.Writer, format LogFormat) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalLogger = NewLogger(logLevel, w, format)
}

// Log returns the global logger
func Log() LoggerInterface {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalLogger
}

// LogInfo convenience functions for logging
func LogInfo(msg string, fields ...Field) {
	Log().Info(msg, fields...)
}

func LogDebug(msg string, fields ...Field) {
	Log().Debug(msg, fields...)
}

func LogDebugf(format string, args ...interface{}) {
	Log().Debugf(format, args...)
}

func LogWarn(msg string, fields ...Field) {
	Log().Warn(msg, fields...)
}

func LogError(msg string, fields ...Field) {
	Log().Error(msg, fields...)
}
