package models

import (
	"time"

	"github.com/google/uuid"
)

// ActivityLog is append-only. It has no BaseEntity and therefore no
// soft-delete flag; rows are filtered by tenant only.
type ActivityLog struct {
	ID         uuid.UUID `gorm:"type:char(36);primaryKey" json:"id"`
	TenantID   uuid.UUID `gorm:"type:char(36);not null;index" json:"tenant_id"`
	UserID     uuid.UUID `gorm:"type:char(36);not null" json:"user_id"`
	Action     string    `gorm:"type:varchar(50);not null" json:"action"`
	EntityType string    `gorm:"type:varchar(50);not null" json:"entity_type"`
	EntityID   uuid.UUID `gorm:"type:char(36);not null" json:"entity_id"`
	OldValues  *string   `gorm:"type:text" json:"old_values,omitempty"`
	NewValues  *string   `gorm:"type:text" json:"new_values,omitempty"`
	CreatedAt  time.Time `gorm:"not null;autoCreateTime:false;index" json:"created_at"`
}
