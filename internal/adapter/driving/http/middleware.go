package httphandler

import (
	"log/slog"
	"net/http"
	"time"
)

// unmatchedRoute labels requests that no registered pattern served.
const unmatchedRoute = "unmatched"

// RequestObserver records per-request metrics.
type RequestObserver interface {
	ObserveHTTPRequest(route, method string, status int, duration time.Duration)
}

// responseRecorder remembers the status written through it.
type responseRecorder struct {
	http.ResponseWriter
	status  int
	written bool
}

func (rr *responseRecorder) WriteHeader(status int) {
	if !rr.written {
		rr.status = status
		rr.written = true
	}
	rr.ResponseWriter.WriteHeader(status)
}

func (rr *responseRecorder) Write(b []byte) (int, error) {
	rr.written = true
	return rr.ResponseWriter.Write(b)
}

// instrument logs every request and, when observer is set, records it under
// the matched route pattern so metric labels stay bounded. Panics below it
// are turned into a 500 before the request is logged.
func instrument(logger *slog.Logger, observer RequestObserver, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rr := &responseRecorder{ResponseWriter: w, status: http.StatusOK}

		serveRecovered(logger, rr, r, next)

		elapsed := time.Since(start)
		route := r.Pattern
		if route == "" {
			route = unmatchedRoute
		}

		logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"route", route,
			"status", rr.status,
			"duration", elapsed.Round(time.Microsecond),
		)

		if observer != nil {
			observer.ObserveHTTPRequest(route, r.Method, rr.status, elapsed)
		}
	})
}

// serveRecovered runs next and answers 500 if it panics. Nothing is written
// when the handler had already started its response.
func serveRecovered(logger *slog.Logger, rr *responseRecorder, r *http.Request, next http.Handler) {
	defer func() {
		v := recover()
		if v == nil {
			return
		}
		logger.Error("panic recovered", "panic", v, "path", r.URL.Path)
		if rr.written {
			return
		}
		writeError(rr, http.StatusInternalServerError, "internal server error")
	}()

	next.ServeHTTP(rr, r)
}
