package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/yukikurage/enterprise-core-api/internal/models"
	"github.com/yukikurage/enterprise-core-api/internal/tenancy"
	"github.com/yukikurage/enterprise-core-api/internal/utils"
	"gorm.io/gorm"
)

// Every repository reads and writes audited entities through tenancy.Store,
// so tenant scoping and soft-delete apply to all of them. WithTx rebinds a
// repository to an open transaction.

// TenantRepository defines the interface for tenant data access
type TenantRepository interface {
	Create(ctx context.Context, caller tenancy.Caller, tenant *models.Tenant) error

	// FindByID returns the tenant only to the system caller or its own members
	FindByID(ctx context.Context, caller tenancy.Caller, id uuid.UUID) (*models.Tenant, error)

	SlugExists(ctx context.Context, slug string) (bool, error)

	WithTx(tx *gorm.DB) TenantRepository
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	Create(ctx context.Context, caller tenancy.Caller, user *models.User) error
	FindByID(ctx context.Context, caller tenancy.Caller, id uuid.UUID) (*models.User, error)

	// FindByEmail bypasses tenant scoping. Only credential issuance may call it.
	FindByEmail(ctx context.Context, email string) (*models.User, error)

	// FindByRefreshTokenHash bypasses tenant scoping. Only credential issuance may call it.
	FindByRefreshTokenHash(ctx context.Context, hash string) (*models.User, error)

	// EmailTaken reports whether any row, deleted or not, uses email
	EmailTaken(ctx context.Context, email string) (bool, error)

	List(ctx context.Context, caller tenancy.Caller, params utils.PaginationParams) ([]models.User, int64, error)
	Update(ctx context.Context, caller tenancy.Caller, user *models.User) error
	Delete(ctx context.Context, caller tenancy.Caller, id uuid.UUID) error

	// ReplaceRoles overwrites the user's role set
	ReplaceRoles(ctx context.Context, userID uuid.UUID, roleIDs []uuid.UUID) error
	RoleIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)

	WithTx(tx *gorm.DB) UserRepository
}

// RoleRepository defines the interface for role data access
type RoleRepository interface {
	Create(ctx context.Context, caller tenancy.Caller, role *models.Role) error

	// FindByID sees system roles and the caller's tenant roles
	FindByID(ctx context.Context, caller tenancy.Caller, id uuid.UUID) (*models.Role, error)

	// FindByIDs returns the visible roles among ids
	FindByIDs(ctx context.Context, caller tenancy.Caller, ids []uuid.UUID) ([]models.Role, error)

	FindSystemRole(ctx context.Context, name string) (*models.Role, error)

	// TenantNameTaken reports whether another live tenant role in the
	// caller's tenant is called name
	TenantNameTaken(ctx context.Context, caller tenancy.Caller, name string, exclude uuid.UUID) (bool, error)

	// List returns system roles first, then the caller's tenant roles by name
	List(ctx context.Context, caller tenancy.Caller) ([]models.Role, error)

	Update(ctx context.Context, caller tenancy.Caller, role *models.Role) error
	Delete(ctx context.Context, caller tenancy.Caller, id uuid.UUID) error

	// CountHolders counts live users holding the role
	CountHolders(ctx context.Context, roleID uuid.UUID) (int64, error)

	// ReplacePermissions overwrites the role's permission set
	ReplacePermissions(ctx context.Context, roleID uuid.UUID, permissionIDs []uuid.UUID) error

	// Permissions returns the live permissions granted to each role
	Permissions(ctx context.Context, roleIDs []uuid.UUID) (map[uuid.UUID][]models.Permission, error)

	WithTx(tx *gorm.DB) RoleRepository
}

// PermissionRepository defines the interface for catalog data access
type PermissionRepository interface {
	Create(ctx context.Context, permission *models.Permission) error

	// List returns the catalog ordered by code
	List(ctx context.Context) ([]models.Permission, error)

	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Permission, error)

	// CodesForUser returns the distinct codes granted by every live role the
	// user holds, sorted
	CodesForUser(ctx context.Context, userID uuid.UUID) ([]string, error)

	WithTx(tx *gorm.DB) PermissionRepository
}

// ProjectRepository defines the interface for project data access
type ProjectRepository interface {
	Create(ctx context.Context, caller tenancy.Caller, project *models.Project) error
	FindByID(ctx context.Context, caller tenancy.Caller, id uuid.UUID) (*models.Project, error)
	List(ctx context.Context, caller tenancy.Caller, params utils.PaginationParams) ([]models.Project, int64, error)
	Update(ctx context.Context, caller tenancy.Caller, project *models.Project) error
	Delete(ctx context.Context, caller tenancy.Caller, id uuid.UUID) error
	WithTx(tx *gorm.DB) ProjectRepository
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	Create(ctx context.Context, caller tenancy.Caller, task *models.Task) error
	FindByID(ctx context.Context, caller tenancy.Caller, id uuid.UUID) (*models.Task, error)

	// ListByProject lists tasks of one project, newest first
	ListByProject(ctx context.Context, caller tenancy.Caller, projectID uuid.UUID, filter TaskFilter, params utils.PaginationParams) ([]models.Task, int64, error)

	Update(ctx context.Context, caller tenancy.Caller, task *models.Task) error
	Delete(ctx context.Context, caller tenancy.Caller, id uuid.UUID) error

	// DeleteByProject tombstones every task of the project
	DeleteByProject(ctx context.Context, caller tenancy.Caller, projectID uuid.UUID) error

	WithTx(tx *gorm.DB) TaskRepository
}

// TaskFilter holds filtering options for listing tasks
type TaskFilter struct {
	Status *models.TaskStatus
}

// ActivityLogRepository defines the interface for the append-only audit trail
type ActivityLogRepository interface {
	Append(ctx context.Context, entry *models.ActivityLog) error
	List(ctx context.Context, caller tenancy.Caller, params utils.PaginationParams) ([]models.ActivityLog, int64, error)
	WithTx(tx *gorm.DB) ActivityLogRepository
}
