package writer

import (
	"sync"

	"go.uber.org/zap"
)

var (
	logger     *zap.Logger
	loggerOnce sync.Once
)

// Logger returns the writer package's logger instance.
// It uses a no-op logger by default.
func Logger() *zap.Logger {
	loggerOnce.Do(func() {
		if logger == nil {
			logger = zap.NewNop()
		}
	})
	return logger
}

// SetLogger configures the logger for blob statistics: records emitted,
// records merged by deduplication and the final size.
// This must be called before any Write.
func SetLogger(l *zap.Logger) {
	logger = l
}
