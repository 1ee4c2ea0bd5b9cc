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
)

// GormActivityLogRepository is a GORM implementation of ActivityLogRepository.
// Rows are never updated or deleted.
type GormActivityLogRepository struct {
	db *gorm.DB
}

// NewActivityLogRepository creates a new ActivityLogRepository
func NewActivityLogRepository(db *gorm.DB) ActivityLogRepository {
	return &GormActivityLogRepository{db: db}
}

func (r *GormActivityLogRepository) WithTx(tx *gorm.DB) ActivityLogRepository {
	return NewActivityLogRepository(tx)
}

func (r *GormActivityLogRepository) Append(ctx context.Context, entry *models.ActivityLog) error {
	entry.ID = uuid.New()
	entry.CreatedAt = time.Now().UTC()
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *GormActivityLogRepository) List(ctx context.Context, caller tenancy.Caller, params utils.PaginationParams) ([]models.ActivityLog, int64, error) {
	query, err := tenancy.ScopeToTenant(r.db.WithContext(ctx).Model(&models.ActivityLog{}), caller)
	if err != nil {
		return nil, 0, err
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entries []models.ActivityLog
	if err := query.Scopes(database.OrderBy("created_at DESC"), database.Paginate(params)).Find(&entries).Error; err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}
