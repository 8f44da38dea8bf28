package logger

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

type Logger interface {
	Info(action, message, requestID string, details map[string]interface{})
	Debug(action, message, requestID string, details map[string]interface{})
	Error(action, message, requestID string, details map[string]interface{}, err error)
}

type jsonLogger struct {
	zl zerolog.Logger
}

func New(service string) Logger {
	return NewWithWriter(service, os.Stdout)
}

// NewWithWriter writes JSON lines to w. zerolog serialises each event itself,
// so concurrent callers need no extra locking.
func NewWithWriter(service string, w io.Writer) Logger {
	hostname, _ := os.Hostname()

	zl := zerolog.New(w).With().
		Timestamp().
		Str("service", service).
		Str("hostname", hostname).
		Logger()

	return &jsonLogger{zl: zl}
}

// Nop discards everything.
func Nop() Logger {
	return &jsonLogger{zl: zerolog.Nop()}
}

func (l *jsonLogger) Info(action, message, requestID string, details map[string]interface{}) {
	l.log(l.zl.Info(), action, message, requestID, details)
}

func (l *jsonLogger) Debug(action, message, requestID string, details map[string]interface{}) {
	l.log(l.zl.Debug(), action, message, requestID, details)
}

func (l *jsonLogger) Error(action, message, requestID string, details map[string]interface{}, err error) {
	l.log(l.zl.Error().Err(err), action, message, requestID, details)
}

func (l *jsonLogger) log(ev *zerolog.Event, action, message, requestID string, details map[string]interface{}) {
	ev = ev.Str("action", action)
	if requestID != "" {
		ev = ev.Str("request_id", requestID)
	}
	if len(details) > 0 {
		ev = ev.Interface("details", details)
	}
	ev.Msg(message)
}
