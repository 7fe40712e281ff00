package logger

import (
	"io"

	"github.com/sirupsen/logrus"
)

// Nop returns a logger that discards everything. Used in tests.
func Nop() *LogrusLogger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return &LogrusLogger{log: log}
}
