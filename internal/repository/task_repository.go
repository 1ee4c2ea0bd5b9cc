package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/yukikurage/enterprise-core-api/internal/database"
	"github.com/yukikurage/enterprise-core-api/internal/models"
	"github.com/yukikurage/enterprise-core-api/internal/tenancy"
	"github.com/yukikurage/enterprise-core-api/internal/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	store *tenancy.Store[models.Task]
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{store: tenancy.NewStore[models.Task](db, tenancy.TenantScoped)}
}

func (r *GormTaskRepository) WithTx(tx *gorm.DB) TaskRepository {
	return NewTaskRepository(tx)
}

func (r *GormTaskRepository) Create(ctx context.Context, caller tenancy.Caller, task *models.Task) error {
	return r.store.Create(ctx, caller, task)
}

func (r *GormTaskRepository) FindByID(ctx context.Context, caller tenancy.Caller, id uuid.UUID) (*models.Task, error) {
	return r.store.Get(ctx, caller, id)
}

// ListByProject retrieves tasks with filtering and pagination
func (r *GormTaskRepository) ListByProject(ctx context.Context, caller tenancy.Caller, projectID uuid.UUID, filter TaskFilter, params utils.PaginationParams) ([]models.Task, int64, error) {
	where := func(db *gorm.DB) *gorm.DB {
		db = db.Where(clause.Eq{Column: tenancy.Column("project_id"), Value: projectID})
		if filter.Status != nil {
			db = db.Where(clause.Eq{Column: tenancy.Column("status"), Value: *filter.Status})
		}
		return db
	}

	total, err := r.store.Count(ctx, caller, where)
	if err != nil {
		return nil, 0, err
	}
	tasks, err := r.store.List(ctx, caller, where, database.OrderBy("created_at DESC"), database.Paginate(params))
	if err != nil {
		return nil, 0, err
	}
	return tasks, total, nil
}

func (r *GormTaskRepository) Update(ctx context.Context, caller tenancy.Caller, task *models.Task) error {
	return r.store.Update(ctx, caller, task)
}

func (r *GormTaskRepository) Delete(ctx context.Context, caller tenancy.Caller, id uuid.UUID) error {
	return r.store.Delete(ctx, caller, id)
}

func (r *GormTaskRepository) DeleteByProject(ctx context.Context, caller tenancy.Caller, projectID uuid.UUID) error {
	tasks, err := r.store.List(ctx, caller, func(db *gorm.DB) *gorm.DB {
		return db.Where(clause.Eq{Column: tenancy.Column("project_id"), Value: projectID})
	})
	if err != nil {
		return err
	}
	for _, t := range tasks {
		if err := r.store.Delete(ctx, caller, t.ID); err != nil {
			return err
		}
	}
	return nil
}
