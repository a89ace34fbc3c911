package middleware

import (
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequireJSON rejects write requests that don't declare a JSON body.
// A missing or wrong Content-Type never reaches the store.
func RequireJSON() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetString("requestID")

		ct := c.GetHeader("Content-Type")
		if ct == "" {
			c.AbortWithStatusJSON(http.StatusUnsupportedMediaType, gin.H{
				"error":     "Content-Type must be application/json",
				"requestID": requestID,
			})
			return
		}

		mediaType, _, err := mime.ParseMediaType(ct)
		if err != nil || mediaType != "application/json" {
			c.AbortWithStatusJSON(http.StatusUnsupportedMediaType, gin.H{
				"error":     "Content-Type must be application/json",
				"requestID": requestID,
			})
			return
		}

		c.Next()
	}
}
