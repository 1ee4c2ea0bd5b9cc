package models

import (
	"time"

	"github.com/google/uuid"
)

type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "TODO"
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	TaskStatusDone       TaskStatus = "DONE"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusDone:
		return true
	}
	return false
}

type Task struct {
	BaseEntity
	TenantID    uuid.UUID  `gorm:"type:char(36);not null;index" json:"tenant_id"`
	ProjectID   uuid.UUID  `gorm:"type:char(36);not null;index" json:"project_id"`
	Title       string     `gorm:"type:varchar(200);not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	Status      TaskStatus `gorm:"type:varchar(20);not null" json:"status"`
	DueDate     *time.Time `json:"due_date"`
}

func (t *Task) OwningTenant() *uuid.UUID           { return ownerOf(t.TenantID) }
func (t *Task) SetOwningTenant(tenantID uuid.UUID) { t.TenantID = tenantID }
