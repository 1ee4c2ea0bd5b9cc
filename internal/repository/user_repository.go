package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/yukikurage/enterprise-core-api/internal/database"
	"github.com/yukikurage/enterprise-core-api/internal/models"
	"github.com/yukikurage/enterprise-core-api/internal/tenancy"
	"github.com/yukikurage/enterprise-core-api/internal/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormUserRepository is a GORM implementation of UserRepository
type GormUserRepository struct {
	db    *gorm.DB
	store *tenancy.Store[models.User]
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &GormUserRepository{db: db, store: tenancy.NewStore[models.User](db, tenancy.TenantScoped)}
}

func (r *GormUserRepository) WithTx(tx *gorm.DB) UserRepository {
	return NewUserRepository(tx)
}

func (r *GormUserRepository) Create(ctx context.Context, caller tenancy.Caller, user *models.User) error {
	return r.store.Create(ctx, caller, user)
}

func (r *GormUserRepository) FindByID(ctx context.Context, caller tenancy.Caller, id uuid.UUID) (*models.User, error) {
	return r.store.Get(ctx, caller, id)
}

func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.store.First(ctx, tenancy.SystemCaller(), func(db *gorm.DB) *gorm.DB {
		return db.Where(clause.Eq{Column: tenancy.Column("email"), Value: email})
	})
}

func (r *GormUserRepository) FindByRefreshTokenHash(ctx context.Context, hash string) (*models.User, error) {
	return r.store.First(ctx, tenancy.SystemCaller(), func(db *gorm.DB) *gorm.DB {
		return db.Where(clause.Eq{Column: tenancy.Column("refresh_token_hash"), Value: hash})
	})
}

func (r *GormUserRepository) EmailTaken(ctx context.Context, email string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GormUserRepository) List(ctx context.Context, caller tenancy.Caller, params utils.PaginationParams) ([]models.User, int64, error) {
	total, err := r.store.Count(ctx, caller)
	if err != nil {
		return nil, 0, err
	}
	users, err := r.store.List(ctx, caller, database.OrderBy("email"), database.Paginate(params))
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *GormUserRepository) Update(ctx context.Context, caller tenancy.Caller, user *models.User) error {
	return r.store.Update(ctx, caller, user)
}

func (r *GormUserRepository) Delete(ctx context.Context, caller tenancy.Caller, id uuid.UUID) error {
	return r.store.Delete(ctx, caller, id)
}

func (r *GormUserRepository) ReplaceRoles(ctx context.Context, userID uuid.UUID, roleIDs []uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&models.UserRole{}).Error; err != nil {
			return err
		}
		if len(roleIDs) == 0 {
			return nil
		}

		now := time.Now().UTC()
		links := make([]models.UserRole, 0, len(roleIDs))
		for _, id := range dedupeIDs(roleIDs) {
			links = append(links, models.UserRole{UserID: userID, RoleID: id, AssignedAt: now})
		}
		return tx.Create(&links).Error
	})
}

func (r *GormUserRepository) RoleIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&models.UserRole{}).
		Where("user_id = ?", userID).
		Pluck("role_id", &ids).Error
	return ids, err
}

func dedupeIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
