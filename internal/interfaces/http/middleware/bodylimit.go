package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/projectmgmt/backend/internal/interfaces/http/dto"
)

// BodyLimit answers 413 up front when Content-Length is over maxBytes and
// otherwise wraps the body so reads past the limit fail with
// *http.MaxBytesError, which HandleValidationError also turns into a 413.
// maxBytes <= 0 disables the check.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	if maxBytes <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			abortTooLarge(c, maxBytes)
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

func abortTooLarge(c *gin.Context, limit int64) {
	c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, dto.NewErrorResponseWithRequestID(
		dto.ErrCodePayloadTooLarge,
		fmt.Sprintf("Request body exceeds %d bytes", limit),
		GetRequestID(c),
	))
}
