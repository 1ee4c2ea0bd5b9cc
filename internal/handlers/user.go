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

type UserHandler struct {
	users *services.UserService
	log   logrus.FieldLogger
}

func NewUserHandler(users *services.UserService, log logrus.FieldLogger) *UserHandler {
	return &UserHandler{users: users, log: log}
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	params := utils.GetPaginationParams(c)
	users, total, err := h.users.ListUsers(c.Request.Context(), middleware.CurrentCaller(c), params)
	if err != nil {
		apierrors.Respond(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToUserListResponse(users, params, total))
}

// CreateUser adds a user to the caller's tenant
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req dto.CreateUserRequest
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.users.CreateUser(c.Request.Context(), middleware.CurrentCaller(c), services.CreateUserInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		apierrors.Respond(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToUserDTO(*user))
}

func (h *UserHandler) UpdateUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req dto.UpdateUserRequest
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.users.UpdateUser(c.Request.Context(), middleware.CurrentCaller(c), id, services.UpdateUserInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		IsActive:  req.IsActive,
		Version:   req.Version,
	})
	if err != nil {
		apierrors.Respond(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	user, err := h.users.GetUser(c.Request.Context(), middleware.CurrentCaller(c), id)
	if err != nil {
		apierrors.Respond(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToUserDetailDTO(user))
}

// AssignRoles replaces the user's role set
func (h *UserHandler) AssignRoles(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req dto.AssignRolesRequest
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.users.AssignRoles(c.Request.Context(), middleware.CurrentCaller(c), id, req.RoleIDs)
	if err != nil {
		apierrors.Respond(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToUserDetailDTO(user))
}

func (h *UserHandler) DeleteUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.users.DeleteUser(c.Request.Context(), middleware.CurrentCaller(c), id); err != nil {
		apierrors.Respond(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}
