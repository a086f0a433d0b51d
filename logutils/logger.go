package logutils

import (
	"github.com/sirupsen/logrus"
)

// Log is the process logger. It starts at info level.
var Log = newLogger()

// Fields is the type of logrus.Fields.
type Fields = logrus.Fields

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetFormatter(&logrus.TextFormatter{
		TimestampFormat:           "2006-01-02 15:04:05",
		ForceColors:               true,
		EnvironmentOverrideColors: true,
		FullTimestamp:             true,
	})
	l.SetReportCaller(true)
	return l
}

// SetLevel parses a level name such as "debug" or "warn" and applies it.
// Unknown names leave the current level untouched and return the parse error.
func SetLevel(name string) error {
	level, err := logrus.ParseLevel(name)
	if err != nil {
		return err
	}
	Log.SetLevel(level)
	return nil
}
