package logger

import (
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
)

// New returns new logger writing to standard error with <lvl> severity
func New(lvl logrus.Level) *logrus.Logger {
	formatter := prefixed.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.Stamp,
		ForceFormatting: true,
	}
	return &logrus.Logger{
		Out:       os.Stderr,
		Formatter: &formatter,
		Level:     lvl,
		Hooks:     make(logrus.LevelHooks),
	}
}

// NewNamed returns new logger with severity level named <lvlName>: "trace", "debug", "info", "warn" or "error".
//
// Empty <lvlName> means "info".
func NewNamed(lvlName string) (*logrus.Logger, error) {
	if lvlName == "" {
		return New(logrus.InfoLevel), nil
	}
	lvl, err := logrus.ParseLevel(lvlName)
	if err != nil {
		return nil, errors.Wrap(err, "Parse log level")
	}
	return New(lvl), nil
}
