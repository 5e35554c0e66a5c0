package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ComunidadDecidida/mayoristas/internal/interfaces/http/dto"
)

// DefaultMaxBodyBytes is the request body limit applied when none is
// configured
const DefaultMaxBodyBytes = 1 << 20

// BodyLimit rejects requests whose declared Content-Length exceeds
// maxBytes and caps the readable body for chunked requests
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBodyBytes
	}
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge,
				dto.NewErrorResponse(dto.ErrCodeBadRequest, "Request body too large"))
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
