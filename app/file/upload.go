package file

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"webbot/file-api/internal"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// FileUpload accepts one or more multipart files under the files[] field
// and runs each through the upload lifecycle. Per-file failures show up in
// the batch result, the endpoint itself still answers 200.
func FileUpload(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	webbotID, err := strconv.Atoi(c.Param("webbotID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Webbot ID must be a number",
			"requestID": requestID,
		})
		return
	}

	if !strings.HasPrefix(c.Request.Header.Get("Content-Type"), "multipart/form-data") {
		c.JSON(http.StatusBadRequest, gin.H{
			"message":   "No files to upload",
			"requestID": requestID,
		})
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{
				"error":     "Request body size exceeds limit",
				"requestID": requestID,
			})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to parse multipart form", zap.Error(err))
		return
	}

	files := form.File["files[]"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"message":   "No files to upload",
			"requestID": requestID,
		})
		return
	}

	res := d.Lifecycle.UploadBatch(c.Request.Context(), webbotID, files)

	c.JSON(http.StatusOK, res)
}
