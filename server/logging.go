package main

import (
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

func newLogger(level, format string) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)
	if strings.EqualFold(format, "json") {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: "15:04:05.000000"})
	}
	return l
}

// requestLogger logs one line per request. The wrapped writer keeps the
// Flusher and Hijacker of the underlying connection, which SSE and the
// websocket upgrade rely on.
func requestLogger(log *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			entry := log.WithFields(logrus.Fields{
				"method": r.Method,
				"path":   r.URL.Path,
				"status": ww.Status(),
				"bytes":  ww.BytesWritten(),
				"dur":    time.Since(start).Round(time.Microsecond).String(),
				"req_id": middleware.GetReqID(r.Context()),
			})
			if ww.Status() >= 500 {
				entry.Warn("request")
				return
			}
			entry.Debug("request")
		})
	}
}
