package loader

import (
	"sync"

	"go.uber.org/zap"
)

var (
	logger     *zap.Logger
	loggerOnce sync.Once
)

// Logger returns the logger for module indexing and type loads.
// It uses a no-op logger by default.
func Logger() *zap.Logger {
	loggerOnce.Do(func() {
		if logger == nil {
			logger = zap.NewNop()
		}
	})
	return logger
}

// SetLogger sets the logger that receives module indexing, type load and
// dropped-member events (the latter only when StrictReferences is unset).
// This must be called before loading any module.
func SetLogger(l *zap.Logger) {
	logger = l
}
