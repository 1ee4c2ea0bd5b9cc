package models

import "github.com/google/uuid"

type Project struct {
	BaseEntity
	TenantID    uuid.UUID `gorm:"type:char(36);not null;index" json:"tenant_id"`
	Name        string    `gorm:"type:varchar(200);not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
}

func (p *Project) OwningTenant() *uuid.UUID           { return ownerOf(p.TenantID) }
func (p *Project) SetOwningTenant(tenantID uuid.UUID) { p.TenantID = tenantID }
