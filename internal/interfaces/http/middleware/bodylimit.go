package middleware

import (
	"net/http"

	"github.com/erp/backoffice/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// BodyLimit rejects requests whose declared body exceeds maxBytes and caps
// streamed bodies at the same size. A non-positive maxBytes disables it.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxBytes <= 0 {
			c.Next()
			return
		}
		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge,
				dto.NewErrorResponse(dto.ErrCodeRequestTooLarge, "Request body exceeds maximum allowed size"))
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
