package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Fields is a set of structured log fields (wrapper for logrus)
type Fields = logrus.Fields

// log is the process-wide logger
var log = newLogger()

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.Out = os.Stdout
	l.Level = logrus.InfoLevel
	l.Formatter = &logrus.TextFormatter{
		DisableColors: true,
		FullTimestamp: true,
	}
	return l
}

// Setup applies the configured level and formatter
func Setup(level string, json bool) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)
	if json {
		log.SetFormatter(&logrus.JSONFormatter{})
	}
}

// SetOutput sets the logger output.
func SetOutput(out io.Writer) {
	log.SetOutput(out)
}

// L returns the underlying logger
func L() *logrus.Logger {
	return log
}

// With returns an entry carrying the given fields
func With(fields Fields) *logrus.Entry {
	return log.WithFields(fields)
}

func Debugf(format string, args ...any) { log.Debugf(format, args...) }
func Infof(format string, args ...any)  { log.Infof(format, args...) }
func Warnf(format string, args ...any)  { log.Warnf(format, args...) }
func Errorf(format string, args ...any) { log.Errorf(format, args...) }
func Fatalf(format string, args ...any) { log.Fatalf(format, args...) }
