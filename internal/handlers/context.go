package handlers

import (
	"github.com/gin-gonic/gin"

	apperrors "github.com/dmorenov/cajadesk/pkg/errors"
)

func bindJSON(c *gin.Context, out any) error {
	if err := c.ShouldBindJSON(out); err != nil {
		return apperrors.NewBadRequest("invalid JSON payload")
	}
	return nil
}

func invalidPayload(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.NewBadRequest(err.Error())
}
