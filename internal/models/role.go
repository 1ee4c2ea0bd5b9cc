package models

import (
	"github.com/google/uuid"
)

// Role is a system role when TenantID is nil, a tenant role otherwise.
type Role struct {
	BaseEntity
	TenantID    *uuid.UUID `gorm:"type:char(36);index" json:"tenant_id"`
	Name        string     `gorm:"type:varchar(100);not null" json:"name"`
	Description string     `gorm:"type:varchar(500)" json:"description"`
}

func (r *Role) IsSystem() bool { return r.TenantID == nil }

func (r *Role) OwningTenant() *uuid.UUID { return r.TenantID }

func (r *Role) SetOwningTenant(tenantID uuid.UUID) {
	id := tenantID
	r.TenantID = &id
}

type RolePermission struct {
	RoleID       uuid.UUID `gorm:"type:char(36);primaryKey" json:"role_id"`
	PermissionID uuid.UUID `gorm:"type:char(36);primaryKey" json:"permission_id"`
}
