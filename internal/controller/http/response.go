package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/KarpovAlexandrGo/task-tracker/internal/usecase"
	"github.com/KarpovAlexandrGo/task-tracker/pkg/logger"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Message    string    `json:"message" example:"Resource not found"`
	Detail     string    `json:"detail,omitempty" example:"task not found"`
	StatusCode int       `json:"statusCode" example:"404"`
	Timestamp  time.Time `json:"timestamp"`
}

// clientError is a request rejected by the transport before it reached the
// task service: malformed JSON, a bad id, failed field validation.
type clientError struct {
	detail string
}

func (e *clientError) Error() string { return e.detail }

func badRequest(format string, args ...any) error {
	return &clientError{detail: fmt.Sprintf(format, args...)}
}

var now = time.Now

// respondError classifies err, logs it and writes the error envelope.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	resp := ErrorResponse{Timestamp: now().UTC()}

	var ce *clientError
	switch {
	case errors.As(err, &ce):
		resp.StatusCode = http.StatusBadRequest
		resp.Message = "Invalid request"
		resp.Detail = ce.detail
	case usecase.KindOf(err) == usecase.KindNotFound:
		resp.StatusCode = http.StatusNotFound
		resp.Message = "Resource not found"
		resp.Detail = err.Error()
	case usecase.KindOf(err) == usecase.KindInvalidArgument:
		resp.StatusCode = http.StatusBadRequest
		resp.Message = "Invalid request"
		resp.Detail = err.Error()
	default:
		resp.StatusCode = http.StatusInternalServerError
		resp.Message = "Internal server error"
		resp.Detail = "An unexpected error occurred while processing the request"
	}

	entry := logger.Log.WithFields(logrus.Fields{
		"request_id": middleware.GetReqID(r.Context()),
		"method":     r.Method,
		"path":       r.URL.Path,
		"status":     resp.StatusCode,
	}).WithError(err)
	if resp.StatusCode >= http.StatusInternalServerError {
		entry.Error("Request failed")
	} else {
		entry.Warn("Request rejected")
	}

	respondWithJSON(w, resp.StatusCode, resp)
}

func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			logger.Log.WithError(err).Error("Failed to encode response")
		}
	}
}

// Recoverer turns a panic in a handler into the generic 500 envelope. When
// the handler already started its response, the panic is only logged.
func Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			log := logger.Log.WithField("stack", string(debug.Stack()))
			if ww.Status() != 0 {
				log.WithField("status", ww.Status()).Error("Recovered from panic after response started")
				return
			}
			log.Error("Recovered from panic")
			respondError(ww, r, fmt.Errorf("panic: %v", rec))
		}()

		next.ServeHTTP(ww, r)
	})
}
