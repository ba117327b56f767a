// Package middleware holds the HTTP middleware wrapped around the router.
package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"blogapi/app/apierror"
	"blogapi/app/controllers"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Logger logs method, path, status and duration of each request.
func Logger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			logger.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"duration", time.Since(start),
			)
		})
	}
}

// Recoverer turns a panic into a logged 500 with the standard error body.
func Recoverer(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rv := recover()
				if rv == nil {
					return
				}
				if rv == http.ErrAbortHandler {
					panic(rv)
				}
				err := fmt.Errorf("panic: %v", rv)
				logger.Error("panic serving request", "method", r.Method, "path", r.URL.Path, "error", err)
				Write(w, controllers.ErrorResponse(apierror.Internal(err)))
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// StandardHeaders sets the JSON and CORS headers before the handler runs, so
// they are present on every response the router produces.
func StandardHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for k, v := range controllers.StandardHeaders() {
			w.Header().Set(k, v)
		}
		next.ServeHTTP(w, r)
	})
}

// Write sends resp on w.
func Write(w http.ResponseWriter, resp *controllers.Response) {
	for k, v := range resp.Headers {
		w.Header().Set(k, v)
	}
	w.WriteHeader(resp.StatusCode)
	if len(resp.Body) > 0 {
		w.Write(resp.Body)
	}
}
