package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/culinara/culinara/internal/feed"
)

// Error is an HTTP error with a client-safe detail message
type Error struct {
	Code   int
	Detail string
}

// NewError creates a new API error
func NewError(code int, detail string) *Error {
	return &Error{
		Code:   code,
		Detail: detail,
	}
}

// Error implements the error interface
func (e *Error) Error() string {
	return http.StatusText(e.Code) + ": " + e.Detail
}

var errInternal = NewError(http.StatusInternalServerError, "Internal server error")

// toAPIError classifies err. Feed rejections keep their detail; anything else
// is an internal error whose cause is not shown to clients.
func toAPIError(err error) *Error {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}

	var fe *feed.Error
	if errors.As(err, &fe) {
		switch fe.Kind {
		case feed.KindBadRequest:
			return NewError(http.StatusBadRequest, fe.Detail)
		case feed.KindUnauthenticated:
			return NewError(http.StatusUnauthorized, fe.Detail)
		case feed.KindNotFound:
			return NewError(http.StatusNotFound, fe.Detail)
		}
	}
	return errInternal
}

// writeError renders err as {"detail": ...} and logs internal failures
func (r *Router) writeError(c *gin.Context, err error) {
	apiErr := toAPIError(err)
	if apiErr.Code >= http.StatusInternalServerError {
		_ = c.Error(err)
		r.logger.Error("request failed",
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
	}
	if apiErr.Code == http.StatusUnauthorized {
		c.Header("WWW-Authenticate", `Bearer realm="api"`)
	}
	c.AbortWithStatusJSON(apiErr.Code, gin.H{"detail": apiErr.Detail})
}
