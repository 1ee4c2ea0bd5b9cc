package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/yukikurage/enterprise-core-api/internal/auth"
	"github.com/yukikurage/enterprise-core-api/internal/constants"
	"github.com/yukikurage/enterprise-core-api/internal/models"
	"github.com/yukikurage/enterprise-core-api/internal/repository"
	"github.com/yukikurage/enterprise-core-api/internal/tenancy"
	"github.com/yukikurage/enterprise-core-api/internal/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const maxSlugAttempts = 5

// AuthService issues credentials: registration, login and refresh rotation.
// It is the only caller of the repository lookups that bypass tenant scoping.
type AuthService struct {
	db       *gorm.DB
	tenants  repository.TenantRepository
	users    repository.UserRepository
	roles    repository.RoleRepository
	resolver *PermissionResolver
	codec    *auth.Codec
	now      func() time.Time
}

// NewAuthService creates a new AuthService.
func NewAuthService(db *gorm.DB, tenants repository.TenantRepository, users repository.UserRepository, roles repository.RoleRepository, resolver *PermissionResolver, codec *auth.Codec) *AuthService {
	return &AuthService{
		db:       db,
		tenants:  tenants,
		users:    users,
		roles:    roles,
		resolver: resolver,
		codec:    codec,
		now:      time.Now,
	}
}

// RegisterInput represents the information needed to open a new tenant.
type RegisterInput struct {
	TenantName string
	Email      string
	Password   string
	FirstName  string
	LastName   string
}

// LoginInput holds the credentials for authentication.
type LoginInput struct {
	Email    string
	Password string
}

// AuthResult is what a successful issuance returns to the client.
type AuthResult struct {
	User        models.User
	Tenant      *models.Tenant
	Permissions []string
	Credential  *auth.Credential
}

// Register creates a tenant with its first user, who receives the Admin
// system role, and signs that user in.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	tenantName := strings.TrimSpace(input.TenantName)
	email := normalizeEmail(input.Email)
	if tenantName == "" {
		return nil, fmt.Errorf("%w: tenant name is required", ErrValidation)
	}
	if utf8.RuneCountInString(tenantName) > constants.MaxTenantNameLength {
		return nil, fmt.Errorf("%w: tenant name must be at most %d characters", ErrValidation, constants.MaxTenantNameLength)
	}
	if err := validateCredentials(email, input.Password); err != nil {
		return nil, err
	}

	hashedPassword, err := hashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	var result *AuthResult
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tenants := s.tenants.WithTx(tx)
		users := s.users.WithTx(tx)

		taken, err := users.EmailTaken(ctx, email)
		if err != nil {
			return fmt.Errorf("failed to check email: %w", err)
		}
		if taken {
			return ErrEmailTaken
		}

		slug, err := s.uniqueSlug(ctx, tenants, tenantName)
		if err != nil {
			return err
		}
		tenant := &models.Tenant{Name: tenantName, Slug: slug, SubscriptionPlan: models.PlanFree}
		if err := tenants.Create(ctx, tenancy.SystemCaller(), tenant); err != nil {
			return fmt.Errorf("failed to create tenant: %w", err)
		}

		user := &models.User{
			Email:        email,
			PasswordHash: hashedPassword,
			FirstName:    strings.TrimSpace(input.FirstName),
			LastName:     strings.TrimSpace(input.LastName),
			IsActive:     true,
		}
		if err := users.Create(ctx, tenancy.ForUser(uuid.Nil, tenant.ID), user); err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}

		admin, err := s.roles.WithTx(tx).FindSystemRole(ctx, constants.SystemRoleAdmin)
		if err != nil {
			if errors.Is(err, tenancy.ErrNotFound) {
				return fmt.Errorf("system role %s is missing; seed the catalog first", constants.SystemRoleAdmin)
			}
			return fmt.Errorf("failed to find admin role: %w", err)
		}
		if err := users.ReplaceRoles(ctx, user.ID, []uuid.UUID{admin.ID}); err != nil {
			return fmt.Errorf("failed to assign admin role: %w", err)
		}

		result, err = s.issue(ctx, tx, user, false)
		if err != nil {
			return err
		}
		result.Tenant = tenant
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Login verifies credentials and issues a fresh credential. Every failure
// returns ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(input.Email))
	if err != nil {
		if errors.Is(err, tenancy.ErrNotFound) {
			bcrypt.CompareHashAndPassword(dummyPasswordHash(), []byte(input.Password))
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	passwordErr := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password))
	if passwordErr != nil || !user.IsActive {
		return nil, ErrInvalidCredentials
	}

	var result *AuthResult
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result, err = s.issue(ctx, tx, user, true)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Refresh rotates a refresh token. The presented token stops working as soon
// as this call succeeds. Unknown, expired and already-used tokens all yield
// auth.ErrInvalidToken.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	if refreshToken == "" {
		return nil, auth.ErrInvalidToken
	}
	user, err := s.users.FindByRefreshTokenHash(ctx, auth.HashRefreshToken(refreshToken))
	if err != nil {
		if errors.Is(err, tenancy.ErrNotFound) {
			return nil, auth.ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to find refresh token: %w", err)
	}
	if !user.IsActive || s.codec.RefreshExpired(user.RefreshTokenExpiresAt) {
		return nil, auth.ErrInvalidToken
	}

	var result *AuthResult
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result, err = s.issue(ctx, tx, user, false)
		return err
	})
	if errors.Is(err, tenancy.ErrConcurrencyConflict) || errors.Is(err, tenancy.ErrNotFound) {
		return nil, auth.ErrInvalidToken
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Logout invalidates the caller's refresh token. Access tokens already issued
// stay valid until they expire.
func (s *AuthService) Logout(ctx context.Context, caller tenancy.Caller) error {
	user, err := s.users.FindByID(ctx, caller, caller.UserID)
	if err != nil {
		return err
	}
	user.RefreshTokenHash = nil
	user.RefreshTokenExpiresAt = nil
	if err := s.users.Update(ctx, caller, user); err != nil {
		return fmt.Errorf("failed to clear refresh token: %w", err)
	}
	return nil
}

// Me returns the caller's user and tenant with the permissions carried by the
// presented credential.
func (s *AuthService) Me(ctx context.Context, caller tenancy.Caller) (*AuthResult, error) {
	user, err := s.users.FindByID(ctx, caller, caller.UserID)
	if err != nil {
		return nil, err
	}
	tenant, err := s.tenants.FindByID(ctx, caller, caller.TenantID)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: *user, Tenant: tenant, Permissions: caller.Permissions}, nil
}

// issue resolves the user's current permissions, signs a credential and
// stores the new refresh hash through a versioned update.
func (s *AuthService) issue(ctx context.Context, tx *gorm.DB, user *models.User, login bool) (*AuthResult, error) {
	perms, err := s.resolver.WithTx(tx).EffectivePermissions(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	cred, err := s.codec.Issue(auth.Subject{UserID: user.ID, TenantID: user.TenantID, Email: user.Email}, perms)
	if err != nil {
		return nil, fmt.Errorf("failed to issue credential: %w", err)
	}

	hash := cred.RefreshTokenHash
	expiresAt := cred.RefreshTokenExpiresAt.UTC()
	user.RefreshTokenHash = &hash
	user.RefreshTokenExpiresAt = &expiresAt
	if login {
		now := s.now().UTC()
		user.LastLoginAt = &now
	}
	if err := s.users.WithTx(tx).Update(ctx, tenancy.ForUser(user.ID, user.TenantID), user); err != nil {
		return nil, err
	}
	return &AuthResult{User: *user, Permissions: perms, Credential: cred}, nil
}

func (s *AuthService) uniqueSlug(ctx context.Context, tenants repository.TenantRepository, name string) (string, error) {
	for i := 0; i < maxSlugAttempts; i++ {
		slug, err := utils.GenerateTenantSlug(name)
		if err != nil {
			return "", err
		}
		exists, err := tenants.SlugExists(ctx, slug)
		if err != nil {
			return "", fmt.Errorf("failed to check slug: %w", err)
		}
		if !exists {
			return slug, nil
		}
	}
	return "", errors.New("failed to generate a unique tenant slug")
}
