package services

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/yukikurage/enterprise-core-api/internal/constants"
	"github.com/yukikurage/enterprise-core-api/internal/models"
	"github.com/yukikurage/enterprise-core-api/internal/repository"
	"github.com/yukikurage/enterprise-core-api/internal/tenancy"
	"github.com/yukikurage/enterprise-core-api/internal/utils"
)

// TaskService handles task business logic
type TaskService struct {
	tasks    repository.TaskRepository
	projects repository.ProjectRepository
}

// NewTaskService creates a new TaskService
func NewTaskService(tasks repository.TaskRepository, projects repository.ProjectRepository) *TaskService {
	return &TaskService{tasks: tasks, projects: projects}
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	Title       string
	Description string
	Status      models.TaskStatus
	DueDate     *time.Time
}

// UpdateTaskInput represents input for updating a task
type UpdateTaskInput struct {
	Title        *string
	Description  *string
	Status       *models.TaskStatus
	DueDate      *time.Time
	ClearDueDate bool
	Version      *int64
}

func validateTaskTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", fmt.Errorf("%w: title is required", ErrValidation)
	}
	if utf8.RuneCountInString(title) > constants.MaxTaskTitleLength {
		return "", fmt.Errorf("%w: title must be at most %d characters", ErrValidation, constants.MaxTaskTitleLength)
	}
	return title, nil
}

func validateTaskStatus(status models.TaskStatus) error {
	if !status.Valid() {
		return fmt.Errorf("%w: invalid status %q", ErrValidation, status)
	}
	return nil
}

// CreateTask adds a task to a project visible to the caller.
func (s *TaskService) CreateTask(ctx context.Context, caller tenancy.Caller, projectID uuid.UUID, input CreateTaskInput) (*models.Task, error) {
	title, err := validateTaskTitle(input.Title)
	if err != nil {
		return nil, err
	}
	status := input.Status
	if status == "" {
		status = models.TaskStatusTodo
	}
	if err := validateTaskStatus(status); err != nil {
		return nil, err
	}

	project, err := s.projects.FindByID(ctx, caller, projectID)
	if err != nil {
		return nil, err
	}

	task := &models.Task{
		ProjectID:   project.ID,
		Title:       title,
		Description: input.Description,
		Status:      status,
		DueDate:     input.DueDate,
	}
	if err := s.tasks.Create(ctx, caller, task); err != nil {
		return nil, err
	}
	return task, nil
}

// ListTasks lists a project's tasks, optionally filtered by status.
func (s *TaskService) ListTasks(ctx context.Context, caller tenancy.Caller, projectID uuid.UUID, status *models.TaskStatus, params utils.PaginationParams) ([]models.Task, int64, error) {
	if status != nil {
		if err := validateTaskStatus(*status); err != nil {
			return nil, 0, err
		}
	}
	if _, err := s.projects.FindByID(ctx, caller, projectID); err != nil {
		return nil, 0, err
	}
	return s.tasks.ListByProject(ctx, caller, projectID, repository.TaskFilter{Status: status}, params)
}

func (s *TaskService) GetTask(ctx context.Context, caller tenancy.Caller, id uuid.UUID) (*models.Task, error) {
	return s.tasks.FindByID(ctx, caller, id)
}

func (s *TaskService) UpdateTask(ctx context.Context, caller tenancy.Caller, id uuid.UUID, input UpdateTaskInput) (*models.Task, error) {
	task, err := s.tasks.FindByID(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if input.Version != nil {
		task.Version = *input.Version
	}
	if input.Title != nil {
		title, err := validateTaskTitle(*input.Title)
		if err != nil {
			return nil, err
		}
		task.Title = title
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.Status != nil {
		if err := validateTaskStatus(*input.Status); err != nil {
			return nil, err
		}
		task.Status = *input.Status
	}
	if input.ClearDueDate {
		task.DueDate = nil
	} else if input.DueDate != nil {
		task.DueDate = input.DueDate
	}

	if err := s.tasks.Update(ctx, caller, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *TaskService) DeleteTask(ctx context.Context, caller tenancy.Caller, id uuid.UUID) error {
	return s.tasks.Delete(ctx, caller, id)
}
