package main

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"golang.org/x/term"
)

// logrusLogger adapts a logrus entry to analyzer.Logger.
type logrusLogger struct {
	entry *logrus.Entry
}

// newLogger logs to w at info level, or debug when verbose. Colours are
// used only when w is a terminal.
func newLogger(w io.Writer, verbose bool) *logrusLogger {
	l := logrus.New()
	l.SetOutput(w)

	tty := false
	if f, ok := w.(*os.File); ok {
		tty = term.IsTerminal(int(f.Fd()))
	}
	l.SetFormatter(&logrus.TextFormatter{
		DisableColors:    !tty,
		DisableTimestamp: !tty,
		FullTimestamp:    true,
	})

	l.SetLevel(logrus.InfoLevel)
	if verbose {
		l.SetLevel(logrus.DebugLevel)
	}
	return &logrusLogger{entry: logrus.NewEntry(l)}
}

// with returns a logger that adds key to every message.
func (l *logrusLogger) with(key string, value interface{}) *logrusLogger {
	return &logrusLogger{entry: l.entry.WithField(key, value)}
}

func (l *logrusLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.entry.WithFields(fields(keysAndValues)).Debug(msg)
}

func (l *logrusLogger) Info(msg string, keysAndValues ...interface{}) {
	l.entry.WithFields(fields(keysAndValues)).Info(msg)
}

func (l *logrusLogger) Error(msg string, keysAndValues ...interface{}) {
	l.entry.WithFields(fields(keysAndValues)).Error(msg)
}

// fields pairs up alternating keys and values. A trailing key without a
// value is kept with a nil value.
func fields(keysAndValues []interface{}) logrus.Fields {
	f := make(logrus.Fields, len(keysAndValues)/2)
	for i := 0; i < len(keysAndValues); i += 2 {
		key := fmt.Sprint(keysAndValues[i])
		var value interface{}
		if i+1 < len(keysAndValues) {
			value = keysAndValues[i+1]
		}
		f[key] = value
	}
	return f
}
