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

type ProjectHandler struct {
	projects *services.ProjectService
	log      logrus.FieldLogger
}

func NewProjectHandler(projects *services.ProjectService, log logrus.FieldLogger) *ProjectHandler {
	return &ProjectHandler{projects: projects, log: log}
}

func (h *ProjectHandler) ListProjects(c *gin.Context) {
	params := utils.GetPaginationParams(c)
	projects, total, err := h.projects.ListProjects(c.Request.Context(), middleware.CurrentCaller(c), params)
	if err != nil {
		apierrors.Respond(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToProjectListResponse(projects, params, total))
}

func (h *ProjectHandler) GetProject(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	project, err := h.projects.GetProject(c.Request.Context(), middleware.CurrentCaller(c), id)
	if err != nil {
		apierrors.Respond(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToProjectDTO(*project))
}

func (h *ProjectHandler) CreateProject(c *gin.Context) {
	var req dto.CreateProjectRequest
	if !bindJSON(c, &req) {
		return
	}
	project, err := h.projects.CreateProject(c.Request.Context(), middleware.CurrentCaller(c), services.CreateProjectInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		apierrors.Respond(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToProjectDTO(*project))
}

func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req dto.UpdateProjectRequest
	if !bindJSON(c, &req) {
		return
	}
	project, err := h.projects.UpdateProject(c.Request.Context(), middleware.CurrentCaller(c), id, services.UpdateProjectInput{
		Name:        req.Name,
		Description: req.Description,
		Version:     req.Version,
	})
	if err != nil {
		apierrors.Respond(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToProjectDTO(*project))
}

// DeleteProject deletes the project together with its tasks
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.projects.DeleteProject(c.Request.Context(), middleware.CurrentCaller(c), id); err != nil {
		apierrors.Respond(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}
