package contract

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

var logger = newLogger(os.Stderr)

func newLogger(out io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(out)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, DisableColors: true})
	l.SetLevel(logrus.InfoLevel)
	return l
}

// Logger returns the process-wide logger.
func Logger() *logrus.Logger {
	return logger
}

// SetLogOutput redirects the process-wide logger. Used by tests.
func SetLogOutput(out io.Writer) {
	logger.SetOutput(out)
}

// SetVerbose switches debug logging on or off.
func SetVerbose(verbose bool) {
	if verbose {
		logger.SetLevel(logrus.DebugLevel)
		return
	}
	logger.SetLevel(logrus.InfoLevel)
}

func entry(fields []logrus.Fields) *logrus.Entry {
	e := logrus.NewEntry(logger)
	for _, f := range fields {
		e = e.WithFields(f)
	}
	return e
}

// LogDebug logs a debug message.
func LogDebug(msg string, fields ...logrus.Fields) {
	entry(fields).Debug(msg)
}

// LogInfo logs an informational message.
func LogInfo(msg string, fields ...logrus.Fields) {
	entry(fields).Info(msg)
}

// LogWarn logs a warning message with its cause.
func LogWarn(msg string, err error, fields ...logrus.Fields) {
	entry(fields).WithError(err).Warn(msg)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	logger.WithError(err).Fatal(msg)
}
