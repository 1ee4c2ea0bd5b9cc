package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/yukikurage/enterprise-core-api/internal/database"
	"github.com/yukikurage/enterprise-core-api/internal/models"
	"github.com/yukikurage/enterprise-core-api/internal/tenancy"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormRoleRepository is a GORM implementation of RoleRepository
type GormRoleRepository struct {
	db    *gorm.DB
	store *tenancy.Store[models.Role]
}

// NewRoleRepository creates a new RoleRepository
func NewRoleRepository(db *gorm.DB) RoleRepository {
	return &GormRoleRepository{db: db, store: tenancy.NewStore[models.Role](db, tenancy.Shared)}
}

func (r *GormRoleRepository) WithTx(tx *gorm.DB) RoleRepository {
	return NewRoleRepository(tx)
}

func (r *GormRoleRepository) Create(ctx context.Context, caller tenancy.Caller, role *models.Role) error {
	return r.store.Create(ctx, caller, role)
}

func (r *GormRoleRepository) FindByID(ctx context.Context, caller tenancy.Caller, id uuid.UUID) (*models.Role, error) {
	return r.store.Get(ctx, caller, id)
}

func (r *GormRoleRepository) FindByIDs(ctx context.Context, caller tenancy.Caller, ids []uuid.UUID) ([]models.Role, error) {
	if len(ids) == 0 {
		return []models.Role{}, nil
	}
	return r.store.List(ctx, caller, whereIDIn(ids))
}

func (r *GormRoleRepository) FindSystemRole(ctx context.Context, name string) (*models.Role, error) {
	return r.store.First(ctx, tenancy.SystemCaller(), func(db *gorm.DB) *gorm.DB {
		return db.Where(clause.Eq{Column: tenancy.Column("tenant_id"), Value: nil}).
			Where(clause.Eq{Column: tenancy.Column("name"), Value: name})
	})
}

func (r *GormRoleRepository) TenantNameTaken(ctx context.Context, caller tenancy.Caller, name string, exclude uuid.UUID) (bool, error) {
	n, err := r.store.Count(ctx, caller, func(db *gorm.DB) *gorm.DB {
		return db.Where(clause.Eq{Column: tenancy.Column("tenant_id"), Value: caller.TenantID}).
			Where(clause.Eq{Column: tenancy.Column("name"), Value: name}).
			Where(clause.Neq{Column: tenancy.Column("id"), Value: exclude})
	})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *GormRoleRepository) List(ctx context.Context, caller tenancy.Caller) ([]models.Role, error) {
	return r.store.List(ctx, caller,
		database.OrderBy("CASE WHEN tenant_id IS NULL THEN 0 ELSE 1 END"),
		database.OrderBy("name"),
	)
}

func (r *GormRoleRepository) Update(ctx context.Context, caller tenancy.Caller, role *models.Role) error {
	return r.store.Update(ctx, caller, role)
}

func (r *GormRoleRepository) Delete(ctx context.Context, caller tenancy.Caller, id uuid.UUID) error {
	return r.store.Delete(ctx, caller, id)
}

func (r *GormRoleRepository) CountHolders(ctx context.Context, roleID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.UserRole{}).
		Joins("JOIN users ON users.id = user_roles.user_id").
		Where("user_roles.role_id = ? AND users.is_deleted = ?", roleID, false).
		Count(&count).Error
	return count, err
}

func (r *GormRoleRepository) ReplacePermissions(ctx context.Context, roleID uuid.UUID, permissionIDs []uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("role_id = ?", roleID).Delete(&models.RolePermission{}).Error; err != nil {
			return err
		}
		if len(permissionIDs) == 0 {
			return nil
		}

		links := make([]models.RolePermission, 0, len(permissionIDs))
		for _, id := range dedupeIDs(permissionIDs) {
			links = append(links, models.RolePermission{RoleID: roleID, PermissionID: id})
		}
		return tx.Create(&links).Error
	})
}

func (r *GormRoleRepository) Permissions(ctx context.Context, roleIDs []uuid.UUID) (map[uuid.UUID][]models.Permission, error) {
	out := make(map[uuid.UUID][]models.Permission, len(roleIDs))
	if len(roleIDs) == 0 {
		return out, nil
	}

	var links []models.RolePermission
	if err := r.db.WithContext(ctx).Where("role_id IN ?", roleIDs).Find(&links).Error; err != nil {
		return nil, err
	}
	if len(links) == 0 {
		return out, nil
	}

	permIDs := make([]uuid.UUID, 0, len(links))
	for _, l := range links {
		permIDs = append(permIDs, l.PermissionID)
	}
	var perms []models.Permission
	if err := r.db.WithContext(ctx).
		Where("id IN ? AND is_deleted = ?", dedupeIDs(permIDs), false).
		Order("code").
		Find(&perms).Error; err != nil {
		return nil, err
	}

	for _, p := range perms {
		for _, l := range links {
			if l.PermissionID == p.ID {
				out[l.RoleID] = append(out[l.RoleID], p)
			}
		}
	}
	return out, nil
}

func whereIDIn(ids []uuid.UUID) func(*gorm.DB) *gorm.DB {
	values := make([]interface{}, len(ids))
	for i, id := range ids {
		values[i] = id
	}
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(clause.IN{Column: tenancy.Column("id"), Values: values})
	}
}
