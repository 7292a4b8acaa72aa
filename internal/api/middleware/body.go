package middleware

import (
	"bytes"
	"io"
	"net/http"

	"github.com/chungquantin/chaseOS/internal/shared/utils"
	"github.com/gin-gonic/gin"
)

// JSONBody rejects oversized or malformed JSON request bodies before they
// reach a handler. Requests without a body pass through.
func JSONBody(v *utils.JSONSizeValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body == nil || c.Request.ContentLength == 0 {
			c.Next()
			return
		}

		data, err := io.ReadAll(io.LimitReader(c.Request.Body, int64(v.Limit())+1))
		c.Request.Body.Close()
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
			return
		}
		if err := v.ValidateSize(data); err != nil {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{"error": err.Error()})
			return
		}
		if len(data) > 0 && c.ContentType() == gin.MIMEJSON {
			if err := v.ValidateJSON(data); err != nil {
				c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
		}

		c.Request.Body = io.NopCloser(bytes.NewReader(data))
		c.Next()
	}
}
