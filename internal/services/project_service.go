package services

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/yukikurage/enterprise-core-api/internal/constants"
	"github.com/yukikurage/enterprise-core-api/internal/models"
	"github.com/yukikurage/enterprise-core-api/internal/repository"
	"github.com/yukikurage/enterprise-core-api/internal/tenancy"
	"github.com/yukikurage/enterprise-core-api/internal/utils"
	"gorm.io/gorm"
)

// ProjectService handles project business logic
type ProjectService struct {
	db       *gorm.DB
	projects repository.ProjectRepository
	tasks    repository.TaskRepository
}

// NewProjectService creates a new ProjectService
func NewProjectService(db *gorm.DB, projects repository.ProjectRepository, tasks repository.TaskRepository) *ProjectService {
	return &ProjectService{db: db, projects: projects, tasks: tasks}
}

// CreateProjectInput represents input for creating a project
type CreateProjectInput struct {
	Name        string
	Description string
}

// UpdateProjectInput represents input for updating a project
type UpdateProjectInput struct {
	Name        *string
	Description *string
	Version     *int64
}

func validateProjectName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: name is required", ErrValidation)
	}
	if utf8.RuneCountInString(name) > constants.MaxProjectNameLength {
		return "", fmt.Errorf("%w: name must be at most %d characters", ErrValidation, constants.MaxProjectNameLength)
	}
	return name, nil
}

func (s *ProjectService) CreateProject(ctx context.Context, caller tenancy.Caller, input CreateProjectInput) (*models.Project, error) {
	name, err := validateProjectName(input.Name)
	if err != nil {
		return nil, err
	}
	project := &models.Project{Name: name, Description: input.Description}
	if err := s.projects.Create(ctx, caller, project); err != nil {
		return nil, err
	}
	return project, nil
}

func (s *ProjectService) GetProject(ctx context.Context, caller tenancy.Caller, id uuid.UUID) (*models.Project, error) {
	return s.projects.FindByID(ctx, caller, id)
}

func (s *ProjectService) ListProjects(ctx context.Context, caller tenancy.Caller, params utils.PaginationParams) ([]models.Project, int64, error) {
	return s.projects.List(ctx, caller, params)
}

func (s *ProjectService) UpdateProject(ctx context.Context, caller tenancy.Caller, id uuid.UUID, input UpdateProjectInput) (*models.Project, error) {
	project, err := s.projects.FindByID(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if input.Version != nil {
		project.Version = *input.Version
	}
	if input.Name != nil {
		name, err := validateProjectName(*input.Name)
		if err != nil {
			return nil, err
		}
		project.Name = name
	}
	if input.Description != nil {
		project.Description = *input.Description
	}
	if err := s.projects.Update(ctx, caller, project); err != nil {
		return nil, err
	}
	return project, nil
}

// DeleteProject soft-deletes the project and every task in it.
func (s *ProjectService) DeleteProject(ctx context.Context, caller tenancy.Caller, id uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.projects.WithTx(tx).Delete(ctx, caller, id); err != nil {
			return err
		}
		return s.tasks.WithTx(tx).DeleteByProject(ctx, caller, id)
	})
}
