package root

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Healthcheck lets them know our heart is still beating
func Healthcheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  http.StatusOK,
		"message": "Healthy",
	})
}
