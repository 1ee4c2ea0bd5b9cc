package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/yukikurage/enterprise-core-api/internal/models"
	"github.com/yukikurage/enterprise-core-api/internal/services"
	"github.com/yukikurage/enterprise-core-api/internal/utils"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID          uuid.UUID  `json:"id"`
	TenantID    uuid.UUID  `json:"tenant_id"`
	Email       string     `json:"email"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	IsActive    bool       `json:"is_active"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	Version     int64      `json:"version"`
	CreatedAt   time.Time  `json:"created_at"`
}

// UserDetailDTO is a user together with the roles it holds
type UserDetailDTO struct {
	UserDTO
	Roles []RoleSummaryDTO `json:"roles"`
}

// UserListResponse represents a paginated list of users
type UserListResponse struct {
	Users      []UserDTO                `json:"users"`
	Pagination utils.PaginationResponse `json:"pagination"`
}

// CreateUserRequest adds a user to the caller's tenant
type CreateUserRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// UpdateUserRequest changes a user's profile or active flag
type UpdateUserRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	IsActive  *bool   `json:"is_active"`
	Version   *int64  `json:"version"`
}

// AssignRolesRequest replaces a user's role set. An empty list clears it.
type AssignRolesRequest struct {
	RoleIDs []uuid.UUID `json:"role_ids" binding:"required"`
}

func ToUserDTO(u models.User) UserDTO {
	return UserDTO{
		ID:          u.ID,
		TenantID:    u.TenantID,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		IsActive:    u.IsActive,
		LastLoginAt: u.LastLoginAt,
		Version:     u.Version,
		CreatedAt:   u.CreatedAt,
	}
}

func ToUserDetailDTO(d *services.UserDetails) UserDetailDTO {
	roles := make([]RoleSummaryDTO, len(d.Roles))
	for i, r := range d.Roles {
		roles[i] = ToRoleSummaryDTO(r)
	}
	return UserDetailDTO{UserDTO: ToUserDTO(d.User), Roles: roles}
}

func ToUserListResponse(users []models.User, params utils.PaginationParams, total int64) UserListResponse {
	out := make([]UserDTO, len(users))
	for i, u := range users {
		out[i] = ToUserDTO(u)
	}
	return UserListResponse{Users: out, Pagination: params.Response(total)}
}
