package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/yukikurage/enterprise-core-api/internal/models"
	"github.com/yukikurage/enterprise-core-api/internal/services"
)

// PermissionDTO represents a catalog entry in API responses
type PermissionDTO struct {
	ID          uuid.UUID `json:"id"`
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
}

// RoleSummaryDTO represents a role without its permissions
type RoleSummaryDTO struct {
	ID          uuid.UUID  `json:"id"`
	TenantID    *uuid.UUID `json:"tenant_id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	IsSystem    bool       `json:"is_system"`
	Version     int64      `json:"version"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

// RoleDTO represents a role with the permissions it grants
type RoleDTO struct {
	RoleSummaryDTO
	Permissions []PermissionDTO `json:"permissions"`
}

// CreateRoleRequest creates a tenant role
type CreateRoleRequest struct {
	Name          string      `json:"name" binding:"required"`
	Description   string      `json:"description"`
	PermissionIDs []uuid.UUID `json:"permission_ids"`
}

// UpdateRoleRequest renames a tenant role
type UpdateRoleRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Version     *int64 `json:"version"`
}

// AssignPermissionsRequest replaces a role's permission set. An empty list
// clears it.
type AssignPermissionsRequest struct {
	PermissionIDs []uuid.UUID `json:"permission_ids" binding:"required"`
	Version       *int64      `json:"version"`
}

func ToPermissionDTO(p models.Permission) PermissionDTO {
	return PermissionDTO{
		ID:          p.ID,
		Code:        p.Code,
		Name:        p.Name,
		Description: p.Description,
	}
}

func ToPermissionDTOs(perms []models.Permission) []PermissionDTO {
	out := make([]PermissionDTO, len(perms))
	for i, p := range perms {
		out[i] = ToPermissionDTO(p)
	}
	return out
}

func ToRoleSummaryDTO(r models.Role) RoleSummaryDTO {
	return RoleSummaryDTO{
		ID:          r.ID,
		TenantID:    r.TenantID,
		Name:        r.Name,
		Description: r.Description,
		IsSystem:    r.IsSystem(),
		Version:     r.Version,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func ToRoleDTO(d services.RoleDetails) RoleDTO {
	return RoleDTO{
		RoleSummaryDTO: ToRoleSummaryDTO(d.Role),
		Permissions:    ToPermissionDTOs(d.Permissions),
	}
}

func ToRoleDTOs(details []services.RoleDetails) []RoleDTO {
	out := make([]RoleDTO, len(details))
	for i, d := range details {
		out[i] = ToRoleDTO(d)
	}
	return out
}
