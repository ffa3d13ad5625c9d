package logger

import (
	"regexp"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/zenizh/go-capturer"
)

var timeRx = `[A-Z][a-z]{2} [ 0-9]{2} [0-9]{2}:[0-9]{2}:[0-9]{2}`

func TestNew(t *testing.T) {
	out := capturer.CaptureStderr(func() {
		log := New(logrus.DebugLevel)
		log.Trace("message")
		log.Debug("message")
		log.WithField("path", "settings.json").Info("message")
		log.Warn("message")
		log.Error("message")
		assert.Panics(t, func() { log.Panic("message") }, "should panic")
	})
	assert.NotRegexp(t, regexp.MustCompile(`TRAC`), out, "should not print trace messages with debug level logger")
	assert.Regexp(t, regexp.MustCompile(timeRx), out, "should print timestamp")
	assert.Regexp(t, regexp.MustCompile(`DEBU.*message`), out)
	assert.Regexp(t, regexp.MustCompile(`INFO.*message.*path=settings\.json`), out)
	assert.Regexp(t, regexp.MustCompile(`WARN.*message`), out)
	assert.Regexp(t, regexp.MustCompile(`ERRO.*message`), out)
	assert.Regexp(t, regexp.MustCompile(`PANI.*message`), out)
}

func TestNewNamed(t *testing.T) {
	log, err := NewNamed("")
	assert.NoError(t, err, "should not return error")
	assert.Exactly(t, logrus.InfoLevel, log.Level, "empty name should give info level")

	log, err = NewNamed("trace")
	assert.NoError(t, err, "should not return error")
	assert.Exactly(t, logrus.TraceLevel, log.Level)

	log, err = NewNamed("loud")
	assert.Error(t, err, "should return error on unknown level")
	assert.Nil(t, log)
}
