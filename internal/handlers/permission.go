package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yukikurage/enterprise-core-api/internal/dto"
	apierrors "github.com/yukikurage/enterprise-core-api/internal/errors"
	"github.com/yukikurage/enterprise-core-api/internal/services"
)

type PermissionHandler struct {
	permissions *services.PermissionService
	log         logrus.FieldLogger
}

func NewPermissionHandler(permissions *services.PermissionService, log logrus.FieldLogger) *PermissionHandler {
	return &PermissionHandler{permissions: permissions, log: log}
}

// ListPermissions returns the permission catalog
func (h *PermissionHandler) ListPermissions(c *gin.Context) {
	perms, err := h.permissions.ListPermissions(c.Request.Context())
	if err != nil {
		apierrors.Respond(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"permissions": dto.ToPermissionDTOs(perms)})
}
