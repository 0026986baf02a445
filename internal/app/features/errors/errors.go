// internal/app/features/errors/errors.go
//
// Package errors writes JSON error responses and logs server-side failures.
// Handlers pass any error from the workflow or stores to Respond; the
// apperr taxonomy decides the status code.
package errors

import (
	stderrors "errors"
	"net/http"

	"github.com/dalemusser/dexterhub/internal/app/system/apperr"
	"github.com/dalemusser/dexterhub/internal/app/system/auth"
	"github.com/dalemusser/dexterhub/internal/app/system/requestid"
	"github.com/dalemusser/dexterhub/internal/app/system/respond"
	"go.uber.org/zap"
)

const serverErrorText = "An internal error occurred."

// ErrorLogger logs failures with request context and writes the response.
type ErrorLogger struct {
	Log *zap.Logger
}

// NewErrorLogger constructs an ErrorLogger.
func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	return &ErrorLogger{Log: logger}
}

// Classify maps err to a status code, a client-safe message and any
// per-field validation messages.
func Classify(err error) (int, string, map[string]string) {
	var ve *apperr.ValidationError
	switch {
	case stderrors.As(err, &ve):
		return http.StatusBadRequest, "validation failed", ve.FieldMap()
	case stderrors.Is(err, apperr.ErrUnauthenticated):
		return http.StatusUnauthorized, "authentication required", nil
	case stderrors.Is(err, apperr.ErrUnauthorized):
		return http.StatusForbidden, err.Error(), nil
	case stderrors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound, err.Error(), nil
	case stderrors.Is(err, apperr.ErrInvalidStateTransition), stderrors.Is(err, apperr.ErrConflict):
		return http.StatusConflict, err.Error(), nil
	}
	return http.StatusInternalServerError, serverErrorText, nil
}

// Respond writes err as JSON. Server errors are logged in full and reported
// to the client with a generic message.
func (l *ErrorLogger) Respond(w http.ResponseWriter, r *http.Request, err error) {
	status, msg, fields := Classify(err)
	if status >= http.StatusInternalServerError {
		l.LogServerError(w, r, "request failed", err, serverErrorText)
		return
	}
	respond.Error(w, status, msg, fields)
}

// LogServerError logs err and writes a 500 with userMsg.
func (l *ErrorLogger) LogServerError(w http.ResponseWriter, r *http.Request, msg string, err error, userMsg string) {
	l.Log.Error(msg, l.fields(r, err)...)
	respond.Error(w, http.StatusInternalServerError, userMsg, nil)
}

// LogBadRequest logs err at debug level and writes a 400 with userMsg.
func (l *ErrorLogger) LogBadRequest(w http.ResponseWriter, r *http.Request, msg string, err error, userMsg string) {
	l.Log.Debug(msg, l.fields(r, err)...)
	respond.Error(w, http.StatusBadRequest, userMsg, nil)
}

func (l *ErrorLogger) fields(r *http.Request, err error) []zap.Field {
	fields := []zap.Field{
		zap.Error(err),
		zap.String("request_id", requestid.FromContext(r.Context())),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
	}
	if a, ok := auth.CurrentActor(r); ok {
		fields = append(fields, zap.String("actor_id", a.ID.Hex()), zap.String("role", a.Role))
	}
	return fields
}

// NotFound answers unknown routes.
func NotFound(w http.ResponseWriter, r *http.Request) {
	respond.Error(w, http.StatusNotFound, "route not found", nil)
}

// MethodNotAllowed answers known routes called with the wrong method.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	respond.Error(w, http.StatusMethodNotAllowed, "method not allowed", nil)
}
