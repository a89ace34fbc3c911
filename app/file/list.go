package file

import (
	"errors"
	"net/http"
	"strconv"

	"webbot/file-api/internal"
	"webbot/file-api/internal/model"
	"webbot/file-api/internal/store"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func FileList(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	criteria, err := parseCriteria(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     err.Error(),
			"requestID": requestID,
		})
		return
	}

	files, err := d.Store.Filter(criteria)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to list file records", zap.Error(err))
		return
	}

	c.JSON(http.StatusOK, files)
}

func parseCriteria(c *gin.Context) (store.Criteria, error) {
	var criteria store.Criteria

	if raw, ok := c.GetQuery("webbot_id"); ok {
		id, err := strconv.Atoi(raw)
		if err != nil {
			return criteria, errors.New("webbot_id must be a number")
		}
		criteria.WebbotID = &id
	}

	if raw, ok := c.GetQuery("name"); ok {
		criteria.Name = &raw
	}

	if raw, ok := c.GetQuery("status"); ok {
		st, err := model.ParseFileStatus(raw)
		if err != nil {
			return criteria, err
		}
		criteria.Status = &st
	}

	if raw, ok := c.GetQuery("source"); ok {
		src, err := model.ParseFileSource(raw)
		if err != nil {
			return criteria, err
		}
		criteria.Source = &src
	}

	if raw, ok := c.GetQuery("public"); ok {
		public, err := strconv.ParseBool(raw)
		if err != nil {
			return criteria, errors.New("public must be a boolean")
		}
		criteria.Public = &public
	}

	if raw, ok := c.GetQuery("active"); ok {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			return criteria, errors.New("active must be a boolean")
		}
		criteria.Active = &active
	}

	return criteria, nil
}
