package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/yukikurage/enterprise-core-api/internal/models"
	"github.com/yukikurage/enterprise-core-api/internal/repository"
	"github.com/yukikurage/enterprise-core-api/internal/tenancy"
	"github.com/yukikurage/enterprise-core-api/internal/utils"
	"gorm.io/gorm"
)

const entityUser = "User"

// UserService manages the users of the caller's tenant.
type UserService struct {
	db    *gorm.DB
	users repository.UserRepository
	roles repository.RoleRepository
	logs  repository.ActivityLogRepository
}

// NewUserService creates a new UserService.
func NewUserService(db *gorm.DB, users repository.UserRepository, roles repository.RoleRepository, logs repository.ActivityLogRepository) *UserService {
	return &UserService{db: db, users: users, roles: roles, logs: logs}
}

// UserDetails is a user together with the roles it holds.
type UserDetails struct {
	User  models.User
	Roles []models.Role
}

// CreateUserInput describes a user added to the caller's tenant.
type CreateUserInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// UpdateUserInput changes profile fields and the active flag. Nil fields are
// left alone.
type UpdateUserInput struct {
	FirstName *string
	LastName  *string
	IsActive  *bool
	Version   *int64
}

type userSnapshot struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	IsActive  bool   `json:"is_active"`
}

func snapshotUser(u *models.User) userSnapshot {
	return userSnapshot{Email: u.Email, FirstName: u.FirstName, LastName: u.LastName, IsActive: u.IsActive}
}

// CreateUser adds an active user with no roles to the caller's tenant. Emails
// are unique across all tenants.
func (s *UserService) CreateUser(ctx context.Context, caller tenancy.Caller, input CreateUserInput) (*models.User, error) {
	if !caller.HasTenant() {
		return nil, tenancy.ErrNoTenantContext
	}
	email := normalizeEmail(input.Email)
	if err := validateCredentials(email, input.Password); err != nil {
		return nil, err
	}
	hashedPassword, err := hashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	var created *models.User
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users := s.users.WithTx(tx)

		taken, err := users.EmailTaken(ctx, email)
		if err != nil {
			return fmt.Errorf("failed to check email: %w", err)
		}
		if taken {
			return ErrEmailTaken
		}

		user := &models.User{
			Email:        email,
			PasswordHash: hashedPassword,
			FirstName:    strings.TrimSpace(input.FirstName),
			LastName:     strings.TrimSpace(input.LastName),
			IsActive:     true,
		}
		if err := users.Create(ctx, caller, user); err != nil {
			return err
		}
		if err := recordActivity(ctx, s.logs.WithTx(tx), caller, ActionCreated, entityUser, user.ID, nil, snapshotUser(user)); err != nil {
			return err
		}
		created = user
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// UpdateUser changes a user of the caller's tenant. A deactivated user can no
// longer log in or refresh.
func (s *UserService) UpdateUser(ctx context.Context, caller tenancy.Caller, id uuid.UUID, input UpdateUserInput) (*models.User, error) {
	if input.IsActive != nil && !*input.IsActive && caller.UserID == id {
		return nil, ErrCannotDeactivateSelf
	}

	var updated *models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users := s.users.WithTx(tx)

		user, err := users.FindByID(ctx, caller, id)
		if err != nil {
			return err
		}
		if input.Version != nil && *input.Version != user.Version {
			return tenancy.ErrConcurrencyConflict
		}

		before := snapshotUser(user)
		if input.FirstName != nil {
			user.FirstName = strings.TrimSpace(*input.FirstName)
		}
		if input.LastName != nil {
			user.LastName = strings.TrimSpace(*input.LastName)
		}
		if input.IsActive != nil {
			user.IsActive = *input.IsActive
		}
		if err := users.Update(ctx, caller, user); err != nil {
			return err
		}
		if err := recordActivity(ctx, s.logs.WithTx(tx), caller, ActionUpdated, entityUser, user.ID, before, snapshotUser(user)); err != nil {
			return err
		}
		updated = user
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *UserService) ListUsers(ctx context.Context, caller tenancy.Caller, params utils.PaginationParams) ([]models.User, int64, error) {
	users, total, err := s.users.List(ctx, caller, params)
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (s *UserService) GetUser(ctx context.Context, caller tenancy.Caller, id uuid.UUID) (*UserDetails, error) {
	user, err := s.users.FindByID(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	roles, err := s.heldRoles(ctx, s.users, s.roles, caller, user.ID)
	if err != nil {
		return nil, err
	}
	return &UserDetails{User: *user, Roles: roles}, nil
}

// AssignRoles replaces the user's role set. Every id must name a role the
// caller can see; otherwise nothing changes.
func (s *UserService) AssignRoles(ctx context.Context, caller tenancy.Caller, id uuid.UUID, roleIDs []uuid.UUID) (*UserDetails, error) {
	if err := validateIDs(roleIDs, "role_ids"); err != nil {
		return nil, err
	}

	var details *UserDetails
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users := s.users.WithTx(tx)
		roles := s.roles.WithTx(tx)

		user, err := users.FindByID(ctx, caller, id)
		if err != nil {
			return err
		}
		before, err := users.RoleIDs(ctx, user.ID)
		if err != nil {
			return fmt.Errorf("failed to load user roles: %w", err)
		}

		ids := uniqueIDs(roleIDs)
		found, err := roles.FindByIDs(ctx, caller, ids)
		if err != nil {
			return fmt.Errorf("failed to load roles: %w", err)
		}
		if len(found) != len(ids) {
			return ErrRoleNotFound
		}

		if err := users.ReplaceRoles(ctx, user.ID, ids); err != nil {
			return fmt.Errorf("failed to replace user roles: %w", err)
		}
		if err := recordActivity(ctx, s.logs.WithTx(tx), caller, ActionRolesChanged, entityUser, user.ID, before, ids); err != nil {
			return err
		}

		held, err := s.heldRoles(ctx, users, roles, caller, user.ID)
		if err != nil {
			return err
		}
		details = &UserDetails{User: *user, Roles: held}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return details, nil
}

// DeleteUser soft-deletes a user of the caller's tenant. Role links are kept
// but no longer count toward role usage.
func (s *UserService) DeleteUser(ctx context.Context, caller tenancy.Caller, id uuid.UUID) error {
	if caller.UserID == id {
		return ErrCannotDeleteSelf
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users := s.users.WithTx(tx)

		user, err := users.FindByID(ctx, caller, id)
		if err != nil {
			return err
		}
		if err := users.Delete(ctx, caller, user.ID); err != nil {
			return err
		}
		return recordActivity(ctx, s.logs.WithTx(tx), caller, ActionDeleted, entityUser, user.ID,
			map[string]string{"email": user.Email}, nil)
	})
}

func (s *UserService) heldRoles(ctx context.Context, users repository.UserRepository, roles repository.RoleRepository, caller tenancy.Caller, userID uuid.UUID) ([]models.Role, error) {
	ids, err := users.RoleIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user roles: %w", err)
	}
	held, err := roles.FindByIDs(ctx, caller, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load roles: %w", err)
	}
	return held, nil
}
