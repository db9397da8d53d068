package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// ContextKey is used for values stored in the request context.
type ContextKey string

// RequestIDKey holds the id assigned to the current request.
const RequestIDKey ContextKey = "requestID"

// RequestIDFromContext returns the request id, or "" outside a request.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDKey).(string)
	return id
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(status int) {
	rec.status = status
	rec.ResponseWriter.WriteHeader(status)
}

// RequestLogger tags every request with an id (reusing X-Request-ID when
// the caller sent one) and logs its outcome.
func (h *MovieHandler) RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if _, err := uuid.Parse(requestID); err != nil {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", requestID)
		ctx := context.WithValue(r.Context(), RequestIDKey, requestID)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r.WithContext(ctx))

		h.logger.InfoContext(ctx, "HTTP request handled",
			slog.String("request_id", requestID),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", rec.status),
			slog.Duration("duration", time.Since(start)))
	})
}

// routeNotFound and methodNotAllowed replace the plain-text mux defaults.
func (h *MovieHandler) routeNotFound(w http.ResponseWriter, r *http.Request) {
	h.respondError(w, r, http.StatusNotFound, msgRouteNotFound)
}

func (h *MovieHandler) methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	h.respondError(w, r, http.StatusMethodNotAllowed, msgMethodNotAllowed)
}

// RecoverPanic turns a handler panic into a 500 response.
func (h *MovieHandler) RecoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				w.Header().Set("Connection", "close")
				h.logger.ErrorContext(r.Context(), "Recovered from panic", slog.String("error", fmt.Sprint(err)), slog.String("path", r.URL.Path))
				h.respondError(w, r, http.StatusInternalServerError, "the server encountered a problem and could not process your request")
			}
		}()
		next.ServeHTTP(w, r)
	})
}
