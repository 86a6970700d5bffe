package model3d

import "go.uber.org/zap"

// log is the package logger. The library stays silent unless the
// caller installs a logger with SetLogger.
var log = zap.NewNop()

// SetLogger routes the library's diagnostic output (load progress,
// skipped PLY properties, parser statistics) to the given logger.
// Passing nil restores the no-op default.
func SetLogger(l *zap.Logger) {
	if l == nil {
		log = zap.NewNop()
		return
	}
	log = l
}
