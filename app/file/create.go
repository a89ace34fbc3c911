package file

import (
	"errors"
	"net/http"

	"webbot/file-api/internal"
	"webbot/file-api/internal/model"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func FileCreate(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	var data map[string]any
	if err := c.BindJSON(&data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Malformed or invalid JSON request body",
			"requestID": requestID,
		})
		return
	}

	f := &model.File{}
	if err := f.Deserialize(data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     err.Error(),
			"requestID": requestID,
		})
		return
	}

	if err := d.Store.Create(f); err != nil {
		if errors.Is(err, model.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":     err.Error(),
				"requestID": requestID,
			})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to save file record", zap.Error(err))
		return
	}

	c.JSON(http.StatusCreated, f)
}
