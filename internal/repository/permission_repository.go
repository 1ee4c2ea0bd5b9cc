package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/yukikurage/enterprise-core-api/internal/database"
	"github.com/yukikurage/enterprise-core-api/internal/models"
	"github.com/yukikurage/enterprise-core-api/internal/tenancy"
	"gorm.io/gorm"
)

// GormPermissionRepository is a GORM implementation of PermissionRepository
type GormPermissionRepository struct {
	db    *gorm.DB
	store *tenancy.Store[models.Permission]
}

// NewPermissionRepository creates a new PermissionRepository
func NewPermissionRepository(db *gorm.DB) PermissionRepository {
	return &GormPermissionRepository{db: db, store: tenancy.NewStore[models.Permission](db, tenancy.Global)}
}

func (r *GormPermissionRepository) WithTx(tx *gorm.DB) PermissionRepository {
	return NewPermissionRepository(tx)
}

func (r *GormPermissionRepository) Create(ctx context.Context, permission *models.Permission) error {
	return r.store.Create(ctx, tenancy.SystemCaller(), permission)
}

func (r *GormPermissionRepository) List(ctx context.Context) ([]models.Permission, error) {
	return r.store.List(ctx, tenancy.Anonymous(), database.OrderBy("code"))
}

func (r *GormPermissionRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Permission, error) {
	if len(ids) == 0 {
		return []models.Permission{}, nil
	}
	return r.store.List(ctx, tenancy.Anonymous(), whereIDIn(ids), database.OrderBy("code"))
}

func (r *GormPermissionRepository) CodesForUser(ctx context.Context, userID uuid.UUID) ([]string, error) {
	codes := []string{}
	err := r.db.WithContext(ctx).
		Model(&models.Permission{}).
		Distinct("permissions.code").
		Joins("JOIN role_permissions ON role_permissions.permission_id = permissions.id").
		Joins("JOIN roles ON roles.id = role_permissions.role_id").
		Joins("JOIN user_roles ON user_roles.role_id = roles.id").
		Joins("JOIN users ON users.id = user_roles.user_id").
		Where("user_roles.user_id = ?", userID).
		Where("permissions.is_deleted = ? AND roles.is_deleted = ?", false, false).
		Where("(roles.tenant_id IS NULL OR roles.tenant_id = users.tenant_id)").
		Order("permissions.code").
		Pluck("permissions.code", &codes).Error
	if err != nil {
		return nil, err
	}
	return codes, nil
}
