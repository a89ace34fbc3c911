package file

import (
	"errors"
	"net/http"
	"strconv"

	"webbot/file-api/internal"
	"webbot/file-api/internal/store"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// FileDelete soft deletes a record. The endpoint is idempotent, deleting an
// unknown or already deleted ID is a no-op that still returns 204.
func FileDelete(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	fileID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "File ID must be a number",
			"requestID": requestID,
		})
		return
	}

	f, err := d.Store.FindByID(uint(fileID))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.Status(http.StatusNoContent)
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to fetch file from db", zap.Error(err))
		return
	}

	if err := d.Store.SoftDelete(f); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to delete file record", zap.Error(err))
		return
	}

	c.Status(http.StatusNoContent)
}
