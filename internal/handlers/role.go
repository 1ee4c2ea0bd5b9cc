package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yukikurage/enterprise-core-api/internal/dto"
	apierrors "github.com/yukikurage/enterprise-core-api/internal/errors"
	"github.com/yukikurage/enterprise-core-api/internal/middleware"
	"github.com/yukikurage/enterprise-core-api/internal/services"
)

type RoleHandler struct {
	roles *services.RoleService
	log   logrus.FieldLogger
}

func NewRoleHandler(roles *services.RoleService, log logrus.FieldLogger) *RoleHandler {
	return &RoleHandler{roles: roles, log: log}
}

// ListRoles returns system roles first, then the tenant's roles
func (h *RoleHandler) ListRoles(c *gin.Context) {
	roles, err := h.roles.ListRoles(c.Request.Context(), middleware.CurrentCaller(c))
	if err != nil {
		apierrors.Respond(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"roles": dto.ToRoleDTOs(roles)})
}

func (h *RoleHandler) GetRole(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	role, err := h.roles.GetRole(c.Request.Context(), middleware.CurrentCaller(c), id)
	if err != nil {
		apierrors.Respond(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToRoleDTO(*role))
}

func (h *RoleHandler) CreateRole(c *gin.Context) {
	var req dto.CreateRoleRequest
	if !bindJSON(c, &req) {
		return
	}
	role, err := h.roles.CreateRole(c.Request.Context(), middleware.CurrentCaller(c), services.CreateRoleInput{
		Name:          req.Name,
		Description:   req.Description,
		PermissionIDs: req.PermissionIDs,
	})
	if err != nil {
		apierrors.Respond(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToRoleDTO(*role))
}

func (h *RoleHandler) UpdateRole(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req dto.UpdateRoleRequest
	if !bindJSON(c, &req) {
		return
	}
	role, err := h.roles.UpdateRole(c.Request.Context(), middleware.CurrentCaller(c), id, services.UpdateRoleInput{
		Name:        req.Name,
		Description: req.Description,
		Version:     req.Version,
	})
	if err != nil {
		apierrors.Respond(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToRoleSummaryDTO(*role))
}

func (h *RoleHandler) DeleteRole(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.roles.DeleteRole(c.Request.Context(), middleware.CurrentCaller(c), id); err != nil {
		apierrors.Respond(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AssignPermissions replaces the role's permission set
func (h *RoleHandler) AssignPermissions(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req dto.AssignPermissionsRequest
	if !bindJSON(c, &req) {
		return
	}
	role, err := h.roles.AssignPermissions(c.Request.Context(), middleware.CurrentCaller(c), id, req.PermissionIDs, req.Version)
	if err != nil {
		apierrors.Respond(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToRoleDTO(*role))
}
