// Package logging builds the process logger shared by the apps.
package logging

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// New returns a logger on stderr. Debug mode lowers the level and adds
// full timestamps.
func New(debug bool) *logrus.Logger {
	return NewWithOutput(os.Stderr, debug)
}

// NewWithOutput is New with an explicit destination.
func NewWithOutput(w io.Writer, debug bool) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(w)

	if debug {
		logger.SetLevel(logrus.DebugLevel)
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
		logger.Debug("Debug logging enabled")
	} else {
		logger.SetLevel(logrus.InfoLevel)
		logger.SetFormatter(&logrus.TextFormatter{
			DisableTimestamp: true,
		})
	}

	return logger
}
