package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	BaseEntity
	TenantID              uuid.UUID  `gorm:"type:char(36);not null;index" json:"tenant_id"`
	Email                 string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash          string     `gorm:"type:varchar(255);not null" json:"-"`
	FirstName             string     `gorm:"type:varchar(100)" json:"first_name"`
	LastName              string     `gorm:"type:varchar(100)" json:"last_name"`
	IsActive              bool       `gorm:"not null" json:"is_active"`
	LastLoginAt           *time.Time `json:"last_login_at,omitempty"`
	RefreshTokenHash      *string    `gorm:"type:varchar(64);index" json:"-"`
	RefreshTokenExpiresAt *time.Time `json:"-"`
}

func (u *User) OwningTenant() *uuid.UUID           { return ownerOf(u.TenantID) }
func (u *User) SetOwningTenant(tenantID uuid.UUID) { u.TenantID = tenantID }
