// Package logging builds the JSON logger shared by the server, the store and the middleware.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

// New returns a logrus logger writing one JSON object per line to w.
// Timestamps are rendered in loc under the "ts" key. Unknown levels fall back to info.
func New(w io.Writer, level string, loc *time.Location) *logrus.Logger {
	if w == nil {
		w = os.Stdout
	}
	if loc == nil {
		loc = time.UTC
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	return &logrus.Logger{
		Out:       w,
		Formatter: NewFormatter(loc),
		Hooks:     make(logrus.LevelHooks),
		Level:     lvl,
		ExitFunc:  os.Exit,
	}
}

// NewFormatter returns the JSON formatter used across the service.
func NewFormatter(loc *time.Location) logrus.Formatter {
	return &locationFormatter{
		loc: loc,
		inner: &logrus.JSONFormatter{
			TimestampFormat: time.RFC3339Nano,
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime: "ts",
			},
		},
	}
}

// Discard is a logger that drops everything; handy as a default in tests and constructors.
func Discard() *logrus.Logger {
	return New(io.Discard, "panic", time.UTC)
}

type locationFormatter struct {
	loc   *time.Location
	inner logrus.Formatter
}

func (f *locationFormatter) Format(e *logrus.Entry) ([]byte, error) {
	e.Time = e.Time.In(f.loc)
	return f.inner.Format(e)
}
