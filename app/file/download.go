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

// FileDownload fetches a record's object from remote storage and streams it
// back as an attachment named after the original file.
func FileDownload(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	webbotID, err := strconv.Atoi(c.Param("webbotID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Webbot ID must be a number",
			"requestID": requestID,
		})
		return
	}

	fileID, err := strconv.ParseUint(c.Param("fileID"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "File ID must be a number",
			"requestID": requestID,
		})
		return
	}

	localPath, name, err := d.Lifecycle.Download(c.Request.Context(), webbotID, uint(fileID))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":     "File not found",
				"requestID": requestID,
			})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to download file", zap.Uint64("id", fileID), zap.Error(err))
		return
	}

	c.FileAttachment(localPath, name)
}
