// Package logging holds the package-level logger used to report
// structural warnings (spec §7: bad state ids popped mid-loop, malformed
// communication records) without aborting the containing operation.
package logging

import (
	"sync/atomic"

	"go.uber.org/zap"
)

var current atomic.Pointer[zap.Logger]

func init() {
	current.Store(zap.NewNop())
}

// Set installs logger as the package-level logger. Passing nil restores
// the no-op logger.
func Set(logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	current.Store(logger)
}

// Get returns the current sugared logger.
func Get() *zap.SugaredLogger {
	return current.Load().Sugar()
}
