package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/yukikurage/enterprise-core-api/internal/models"
	"github.com/yukikurage/enterprise-core-api/internal/tenancy"
	"gorm.io/gorm"
)

// GormTenantRepository is a GORM implementation of TenantRepository
type GormTenantRepository struct {
	db    *gorm.DB
	store *tenancy.Store[models.Tenant]
}

// NewTenantRepository creates a new TenantRepository
func NewTenantRepository(db *gorm.DB) TenantRepository {
	return &GormTenantRepository{db: db, store: tenancy.NewStore[models.Tenant](db, tenancy.Global)}
}

func (r *GormTenantRepository) WithTx(tx *gorm.DB) TenantRepository {
	return NewTenantRepository(tx)
}

func (r *GormTenantRepository) Create(ctx context.Context, caller tenancy.Caller, tenant *models.Tenant) error {
	return r.store.Create(ctx, caller, tenant)
}

func (r *GormTenantRepository) FindByID(ctx context.Context, caller tenancy.Caller, id uuid.UUID) (*models.Tenant, error) {
	if !caller.IsSystem() && caller.TenantID != id {
		return nil, tenancy.ErrNotFound
	}
	return r.store.Get(ctx, caller, id)
}

func (r *GormTenantRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Tenant{}).Where("slug = ?", slug).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
