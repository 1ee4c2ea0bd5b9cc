package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yukikurage/enterprise-core-api/internal/dto"
	apierrors "github.com/yukikurage/enterprise-core-api/internal/errors"
	"github.com/yukikurage/enterprise-core-api/internal/middleware"
	"github.com/yukikurage/enterprise-core-api/internal/models"
	"github.com/yukikurage/enterprise-core-api/internal/services"
	"github.com/yukikurage/enterprise-core-api/internal/utils"
)

type TaskHandler struct {
	tasks *services.TaskService
	log   logrus.FieldLogger
}

func NewTaskHandler(tasks *services.TaskService, log logrus.FieldLogger) *TaskHandler {
	return &TaskHandler{tasks: tasks, log: log}
}

// ListTasks returns the tasks of one project. Optional query: status.
func (h *TaskHandler) ListTasks(c *gin.Context) {
	projectID, ok := pathID(c)
	if !ok {
		return
	}

	var status *models.TaskStatus
	if s := c.Query("status"); s != "" {
		v := models.TaskStatus(s)
		status = &v
	}

	params := utils.GetPaginationParams(c)
	tasks, total, err := h.tasks.ListTasks(c.Request.Context(), middleware.CurrentCaller(c), projectID, status, params)
	if err != nil {
		apierrors.Respond(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToTaskListResponse(tasks, params, total))
}

func (h *TaskHandler) CreateTask(c *gin.Context) {
	projectID, ok := pathID(c)
	if !ok {
		return
	}
	var req dto.CreateTaskRequest
	if !bindJSON(c, &req) {
		return
	}
	task, err := h.tasks.CreateTask(c.Request.Context(), middleware.CurrentCaller(c), projectID, services.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		DueDate:     req.DueDate,
	})
	if err != nil {
		apierrors.Respond(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task))
}

func (h *TaskHandler) UpdateTask(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req dto.UpdateTaskRequest
	if !bindJSON(c, &req) {
		return
	}
	task, err := h.tasks.UpdateTask(c.Request.Context(), middleware.CurrentCaller(c), id, services.UpdateTaskInput{
		Title:        req.Title,
		Description:  req.Description,
		Status:       req.Status,
		DueDate:      req.DueDate,
		ClearDueDate: req.ClearDueDate,
		Version:      req.Version,
	})
	if err != nil {
		apierrors.Respond(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

func (h *TaskHandler) DeleteTask(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.tasks.DeleteTask(c.Request.Context(), middleware.CurrentCaller(c), id); err != nil {
		apierrors.Respond(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}
