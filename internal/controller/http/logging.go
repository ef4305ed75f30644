package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

// LogFormatter plugs logrus into chi's middleware.RequestLogger.
type LogFormatter struct {
	Logger *logrus.Logger
}

func (f *LogFormatter) NewLogEntry(r *http.Request) middleware.LogEntry {
	return &logEntry{entry: f.Logger.WithFields(logrus.Fields{
		"request_id":  middleware.GetReqID(r.Context()),
		"method":      r.Method,
		"path":        r.URL.Path,
		"remote_addr": r.RemoteAddr,
	})}
}

type logEntry struct {
	entry *logrus.Entry
}

func (l *logEntry) Write(status, bytes int, _ http.Header, elapsed time.Duration, _ any) {
	l.entry.WithFields(logrus.Fields{
		"status":      status,
		"bytes":       bytes,
		"duration_ms": float64(elapsed.Microseconds()) / 1000,
	}).Info("Request completed")
}

func (l *logEntry) Panic(v any, stack []byte) {
	l.entry.WithFields(logrus.Fields{
		"panic": v,
		"stack": string(stack),
	}).Error("Request panicked")
}
