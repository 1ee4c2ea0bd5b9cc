package models

import (
	"time"

	"github.com/google/uuid"
)

// BaseEntity carries identity, audit attribution, the soft-delete tombstone
// and the optimistic concurrency token. Its fields are written by
// tenancy.Store only; client-supplied values are overwritten.
type BaseEntity struct {
	ID        uuid.UUID  `gorm:"type:char(36);primaryKey" json:"id"`
	CreatedAt time.Time  `gorm:"not null;autoCreateTime:false" json:"created_at"`
	CreatedBy *uuid.UUID `gorm:"type:char(36)" json:"created_by,omitempty"`
	UpdatedAt *time.Time `gorm:"autoUpdateTime:false" json:"updated_at,omitempty"`
	UpdatedBy *uuid.UUID `gorm:"type:char(36)" json:"updated_by,omitempty"`
	IsDeleted bool       `gorm:"not null;default:false;index" json:"-"`
	DeletedAt *time.Time `json:"-"`
	DeletedBy *uuid.UUID `gorm:"type:char(36)" json:"-"`
	Version   int64      `gorm:"not null" json:"version"`
}

func (b *BaseEntity) Audit() *BaseEntity { return b }

// Audited is implemented by every entity embedding BaseEntity.
type Audited interface {
	Audit() *BaseEntity
}

// TenantOwned is implemented by entities that belong to a tenant. A nil
// owner means the row is shared by every tenant (system roles).
type TenantOwned interface {
	OwningTenant() *uuid.UUID
	SetOwningTenant(tenantID uuid.UUID)
}

func ownerOf(id uuid.UUID) *uuid.UUID {
	if id == uuid.Nil {
		return nil
	}
	return &id
}
