package core

// logging.go - package-level structured logger, following
// core/system_health_logging.go's HealthLogger: a *logrus.Logger
// defaulting to JSON output. No log call here participates in control
// flow; the constructors always also return the error.

import (
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	logOnce sync.Once
	// Log is the package-level structured logger used by the batch and
	// block constructors to record rejected constructions (Warn) and
	// successful constructions (Debug).
	Log *logrus.Logger
)

func initLog() {
	l := logrus.New()
	l.SetFormatter(&logrus.JSONFormatter{})
	l.SetOutput(os.Stderr)
	l.SetLevel(logrus.InfoLevel)
	Log = l
}

func logger() *logrus.Logger {
	logOnce.Do(initLog)
	return Log
}
