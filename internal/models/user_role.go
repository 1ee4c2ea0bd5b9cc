package models

import (
	"time"

	"github.com/google/uuid"
)

type UserRole struct {
	UserID     uuid.UUID `gorm:"type:char(36);primaryKey" json:"user_id"`
	RoleID     uuid.UUID `gorm:"type:char(36);primaryKey;index" json:"role_id"`
	AssignedAt time.Time `gorm:"not null" json:"assigned_at"`
}
