package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

// LogrusLogger implements ports.Logger on top of a configured logrus
// instance.
type LogrusLogger struct {
	log *logrus.Logger
}

// New creates a logger with the level taken from LOG_LEVEL; verbose forces
// debug output.
func New(verbose bool) *LogrusLogger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	log.SetLevel(levelFromEnv())
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	}
	return &LogrusLogger{log: log}
}

// NewJSON creates a logger emitting JSON lines, for running under a log
// collector.
func NewJSON(verbose bool) *LogrusLogger {
	l := New(verbose)
	l.log.SetFormatter(&logrus.JSONFormatter{})
	return l
}

func levelFromEnv() logrus.Level {
	switch os.Getenv("LOG_LEVEL") {
	case "debug":
		return logrus.DebugLevel
	case "warn":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

func (l *LogrusLogger) Debug(msg string, fields map[string]interface{}) {
	l.log.WithFields(logrus.Fields(fields)).Debug(msg)
}

func (l *LogrusLogger) Info(msg string, fields map[string]interface{}) {
	l.log.WithFields(logrus.Fields(fields)).Info(msg)
}

func (l *LogrusLogger) Warn(msg string, fields map[string]interface{}) {
	l.log.WithFields(logrus.Fields(fields)).Warn(msg)
}

func (l *LogrusLogger) Error(msg string, err error, fields map[string]interface{}) {
	entry := l.log.WithFields(logrus.Fields(fields))
	if err != nil {
		entry = entry.WithError(err)
	}
	entry.Error(msg)
}
