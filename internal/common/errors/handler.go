// internal/common/errors/handler.go
package errors

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Logger is the minimal logging surface the responder needs.
type Logger interface {
	Error(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
}

// HTTPResponder converts StandardError values into HTTP responses with a
// consistent JSON body, logging infrastructure failures along the way.
type HTTPResponder struct {
	logger Logger
}

func NewHTTPResponder(logger Logger) *HTTPResponder {
	return &HTTPResponder{logger: logger}
}

// statusFor maps internal error codes to HTTP status codes.
func statusFor(code ErrorCode) int {
	switch code {
	case ErrCodeInvalidCredentials, ErrCodeTokenInvalid, ErrCodeSessionNotFound:
		return http.StatusUnauthorized
	case ErrCodeEmailAlreadyUsed, ErrCodeValidationFailed:
		return http.StatusBadRequest
	case ErrCodeUserNotFound, ErrCodeTaskNotFound, ErrCodeNotificationNotFound:
		return http.StatusNotFound
	case ErrCodeDatabaseConnectionFailed, ErrCodeQueryExecutionFailed, ErrCodeSessionStoreFailed:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// Respond writes the error as a JSON response and aborts the handler chain.
func (r *HTTPResponder) Respond(c *gin.Context, err error) {
	stdErr := r.normalizeError(err)
	status := statusFor(stdErr.Code)

	fields := map[string]interface{}{
		"code":    stdErr.Code,
		"status":  status,
		"path":    c.FullPath(),
		"details": stdErr.Details,
	}
	if status >= http.StatusInternalServerError {
		r.logger.Error("request failed", fields)
	} else {
		r.logger.Warn("request rejected", fields)
	}

	c.AbortWithStatusJSON(status, gin.H{
		"error": stdErr.Message,
		"code":  stdErr.Code,
	})
}

// normalizeError ensures we always have a StandardError
func (r *HTTPResponder) normalizeError(err error) *StandardError {
	if stdErr, ok := err.(*StandardError); ok {
		return stdErr
	}
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}
