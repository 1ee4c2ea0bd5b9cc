package services

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/yukikurage/enterprise-core-api/internal/constants"
	"github.com/yukikurage/enterprise-core-api/internal/models"
	"github.com/yukikurage/enterprise-core-api/internal/repository"
	"github.com/yukikurage/enterprise-core-api/internal/tenancy"
	"gorm.io/gorm"
)

const entityRole = "Role"

// RoleService handles role management for the caller's tenant.
type RoleService struct {
	db    *gorm.DB
	roles repository.RoleRepository
	perms repository.PermissionRepository
	logs  repository.ActivityLogRepository
}

// NewRoleService creates a new RoleService.
func NewRoleService(db *gorm.DB, roles repository.RoleRepository, perms repository.PermissionRepository, logs repository.ActivityLogRepository) *RoleService {
	return &RoleService{db: db, roles: roles, perms: perms, logs: logs}
}

// RoleDetails is a role together with the permissions it grants.
type RoleDetails struct {
	Role        models.Role
	Permissions []models.Permission
}

// CreateRoleInput carries the fields of a new tenant role.
type CreateRoleInput struct {
	Name          string
	Description   string
	PermissionIDs []uuid.UUID
}

// UpdateRoleInput carries the new name and description. Version, when set,
// must match the stored row.
type UpdateRoleInput struct {
	Name        string
	Description string
	Version     *int64
}

type roleSnapshot struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func snapshotRole(r *models.Role) roleSnapshot {
	return roleSnapshot{Name: r.Name, Description: r.Description}
}

func validateRoleFields(name, description string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: name is required", ErrValidation)
	}
	if utf8.RuneCountInString(name) > constants.MaxRoleNameLength {
		return "", fmt.Errorf("%w: name must be at most %d characters", ErrValidation, constants.MaxRoleNameLength)
	}
	if utf8.RuneCountInString(description) > constants.MaxRoleDescriptionLength {
		return "", fmt.Errorf("%w: description must be at most %d characters", ErrValidation, constants.MaxRoleDescriptionLength)
	}
	return name, nil
}

func validateIDs(ids []uuid.UUID, field string) error {
	if ids == nil {
		return fmt.Errorf("%w: %s is required", ErrValidation, field)
	}
	for _, id := range ids {
		if id == uuid.Nil {
			return fmt.Errorf("%w: %s must not contain empty ids", ErrValidation, field)
		}
	}
	return nil
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}

// CreateRole creates a tenant role, optionally granting permissions.
func (s *RoleService) CreateRole(ctx context.Context, caller tenancy.Caller, input CreateRoleInput) (*RoleDetails, error) {
	if !caller.HasTenant() {
		return nil, tenancy.ErrNoTenantContext
	}
	name, err := validateRoleFields(input.Name, input.Description)
	if err != nil {
		return nil, err
	}
	if input.PermissionIDs != nil {
		if err := validateIDs(input.PermissionIDs, "permission_ids"); err != nil {
			return nil, err
		}
	}

	var details *RoleDetails
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		roles := s.roles.WithTx(tx)

		taken, err := roles.TenantNameTaken(ctx, caller, name, uuid.Nil)
		if err != nil {
			return fmt.Errorf("failed to check role name: %w", err)
		}
		if taken {
			return ErrNameConflict
		}

		role := &models.Role{Name: name, Description: strings.TrimSpace(input.Description)}
		if err := roles.Create(ctx, caller, role); err != nil {
			return err
		}

		var granted []models.Permission
		if len(input.PermissionIDs) > 0 {
			if granted, err = s.grant(ctx, tx, role.ID, input.PermissionIDs); err != nil {
				return err
			}
		}

		if err := recordActivity(ctx, s.logs.WithTx(tx), caller, ActionCreated, entityRole, role.ID, nil, snapshotRole(role)); err != nil {
			return err
		}
		details = &RoleDetails{Role: *role, Permissions: nonNilPermissions(granted)}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return details, nil
}

// GetRole returns a visible role with its permissions.
func (s *RoleService) GetRole(ctx context.Context, caller tenancy.Caller, id uuid.UUID) (*RoleDetails, error) {
	role, err := s.roles.FindByID(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	grants, err := s.roles.Permissions(ctx, []uuid.UUID{role.ID})
	if err != nil {
		return nil, fmt.Errorf("failed to load role permissions: %w", err)
	}
	return &RoleDetails{Role: *role, Permissions: nonNilPermissions(grants[role.ID])}, nil
}

// ListRoles returns system roles first, then the caller's tenant roles by name.
func (s *RoleService) ListRoles(ctx context.Context, caller tenancy.Caller) ([]RoleDetails, error) {
	roles, err := s.roles.List(ctx, caller)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, len(roles))
	for i := range roles {
		ids[i] = roles[i].ID
	}
	grants, err := s.roles.Permissions(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load role permissions: %w", err)
	}

	out := make([]RoleDetails, len(roles))
	for i, r := range roles {
		out[i] = RoleDetails{Role: r, Permissions: nonNilPermissions(grants[r.ID])}
	}
	return out, nil
}

// UpdateRole renames or re-describes a tenant role.
func (s *RoleService) UpdateRole(ctx context.Context, caller tenancy.Caller, id uuid.UUID, input UpdateRoleInput) (*models.Role, error) {
	name, err := validateRoleFields(input.Name, input.Description)
	if err != nil {
		return nil, err
	}

	var updated *models.Role
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		roles := s.roles.WithTx(tx)

		role, err := s.mutableRole(ctx, roles, caller, id)
		if err != nil {
			return err
		}
		if input.Version != nil && *input.Version != role.Version {
			return tenancy.ErrConcurrencyConflict
		}

		taken, err := roles.TenantNameTaken(ctx, caller, name, role.ID)
		if err != nil {
			return fmt.Errorf("failed to check role name: %w", err)
		}
		if taken {
			return ErrNameConflict
		}

		before := snapshotRole(role)
		role.Name = name
		role.Description = strings.TrimSpace(input.Description)
		if err := roles.Update(ctx, caller, role); err != nil {
			return err
		}
		if err := recordActivity(ctx, s.logs.WithTx(tx), caller, ActionUpdated, entityRole, role.ID, before, snapshotRole(role)); err != nil {
			return err
		}
		updated = role
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteRole soft-deletes a tenant role that no live user holds.
func (s *RoleService) DeleteRole(ctx context.Context, caller tenancy.Caller, id uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		roles := s.roles.WithTx(tx)

		role, err := s.mutableRole(ctx, roles, caller, id)
		if err != nil {
			return err
		}
		holders, err := roles.CountHolders(ctx, role.ID)
		if err != nil {
			return fmt.Errorf("failed to count role holders: %w", err)
		}
		if holders > 0 {
			return ErrRoleInUse
		}

		if err := roles.Delete(ctx, caller, role.ID); err != nil {
			return err
		}
		return recordActivity(ctx, s.logs.WithTx(tx), caller, ActionDeleted, entityRole, role.ID, snapshotRole(role), nil)
	})
}

// AssignPermissions replaces the role's permission set. An unknown id aborts
// the whole call and leaves the previous set untouched. A non-nil version
// must match the stored one.
func (s *RoleService) AssignPermissions(ctx context.Context, caller tenancy.Caller, id uuid.UUID, permissionIDs []uuid.UUID, version *int64) (*RoleDetails, error) {
	if err := validateIDs(permissionIDs, "permission_ids"); err != nil {
		return nil, err
	}

	var details *RoleDetails
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		roles := s.roles.WithTx(tx)

		role, err := s.mutableRole(ctx, roles, caller, id)
		if err != nil {
			return err
		}
		if version != nil && *version != role.Version {
			return tenancy.ErrConcurrencyConflict
		}
		before, err := roles.Permissions(ctx, []uuid.UUID{role.ID})
		if err != nil {
			return fmt.Errorf("failed to load role permissions: %w", err)
		}

		granted, err := s.grant(ctx, tx, role.ID, permissionIDs)
		if err != nil {
			return err
		}
		if err := roles.Update(ctx, caller, role); err != nil {
			return err
		}

		if err := recordActivity(ctx, s.logs.WithTx(tx), caller, ActionPermissionsChanged, entityRole, role.ID,
			permissionCodes(before[role.ID]), permissionCodes(granted)); err != nil {
			return err
		}
		details = &RoleDetails{Role: *role, Permissions: nonNilPermissions(granted)}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return details, nil
}

// mutableRole loads a role the caller may change. System roles are refused
// before any other check.
func (s *RoleService) mutableRole(ctx context.Context, roles repository.RoleRepository, caller tenancy.Caller, id uuid.UUID) (*models.Role, error) {
	if !caller.HasTenant() {
		return nil, tenancy.ErrNoTenantContext
	}
	role, err := roles.FindByID(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if role.IsSystem() {
		return nil, ErrCannotModifySystemRole
	}
	return role, nil
}

func (s *RoleService) grant(ctx context.Context, tx *gorm.DB, roleID uuid.UUID, permissionIDs []uuid.UUID) ([]models.Permission, error) {
	ids := uniqueIDs(permissionIDs)
	found, err := s.perms.WithTx(tx).FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load permissions: %w", err)
	}
	if len(found) != len(ids) {
		return nil, ErrPermissionNotFound
	}
	if err := s.roles.WithTx(tx).ReplacePermissions(ctx, roleID, ids); err != nil {
		return nil, fmt.Errorf("failed to replace role permissions: %w", err)
	}
	return found, nil
}

func permissionCodes(perms []models.Permission) []string {
	codes := make([]string, len(perms))
	for i, p := range perms {
		codes[i] = p.Code
	}
	return codes
}

func nonNilPermissions(perms []models.Permission) []models.Permission {
	if perms == nil {
		return []models.Permission{}
	}
	return perms
}
