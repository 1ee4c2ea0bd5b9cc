package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yukikurage/enterprise-core-api/internal/dto"
	apierrors "github.com/yukikurage/enterprise-core-api/internal/errors"
	"github.com/yukikurage/enterprise-core-api/internal/middleware"
	"github.com/yukikurage/enterprise-core-api/internal/services"
	"github.com/yukikurage/enterprise-core-api/internal/utils"
)

type ActivityHandler struct {
	activity *services.ActivityService
	log      logrus.FieldLogger
}

func NewActivityHandler(activity *services.ActivityService, log logrus.FieldLogger) *ActivityHandler {
	return &ActivityHandler{activity: activity, log: log}
}

// ListActivity returns the tenant's audit trail, newest first
func (h *ActivityHandler) ListActivity(c *gin.Context) {
	params := utils.GetPaginationParams(c)
	entries, total, err := h.activity.ListActivity(c.Request.Context(), middleware.CurrentCaller(c), params)
	if err != nil {
		apierrors.Respond(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToActivityListResponse(entries, params, total))
}
