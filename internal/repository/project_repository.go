package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/yukikurage/enterprise-core-api/internal/database"
	"github.com/yukikurage/enterprise-core-api/internal/models"
	"github.com/yukikurage/enterprise-core-api/internal/tenancy"
	"github.com/yukikurage/enterprise-core-api/internal/utils"
	"gorm.io/gorm"
)

// GormProjectRepository is a GORM implementation of ProjectRepository
type GormProjectRepository struct {
	store *tenancy.Store[models.Project]
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &GormProjectRepository{store: tenancy.NewStore[models.Project](db, tenancy.TenantScoped)}
}

func (r *GormProjectRepository) WithTx(tx *gorm.DB) ProjectRepository {
	return NewProjectRepository(tx)
}

func (r *GormProjectRepository) Create(ctx context.Context, caller tenancy.Caller, project *models.Project) error {
	return r.store.Create(ctx, caller, project)
}

func (r *GormProjectRepository) FindByID(ctx context.Context, caller tenancy.Caller, id uuid.UUID) (*models.Project, error) {
	return r.store.Get(ctx, caller, id)
}

func (r *GormProjectRepository) List(ctx context.Context, caller tenancy.Caller, params utils.PaginationParams) ([]models.Project, int64, error) {
	total, err := r.store.Count(ctx, caller)
	if err != nil {
		return nil, 0, err
	}
	projects, err := r.store.List(ctx, caller, database.OrderBy("name"), database.Paginate(params))
	if err != nil {
		return nil, 0, err
	}
	return projects, total, nil
}

func (r *GormProjectRepository) Update(ctx context.Context, caller tenancy.Caller, project *models.Project) error {
	return r.store.Update(ctx, caller, project)
}

func (r *GormProjectRepository) Delete(ctx context.Context, caller tenancy.Caller, id uuid.UUID) error {
	return r.store.Delete(ctx, caller, id)
}
