package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/enterprise-core-api/internal/auth"
	"github.com/yukikurage/enterprise-core-api/internal/tenancy"
	"github.com/yukikurage/enterprise-core-api/internal/utils"
)

func TestAssignRolesRejectsUnknownOrForeignRoles(t *testing.T) {
	env := setupServiceTestEnv(t)
	ctx := context.Background()
	tenantA, _ := env.register(t, "Tenant A", "admin@a.example")
	tenantB, _ := env.register(t, "Tenant B", "admin@b.example")

	mine, err := env.roles.CreateRole(ctx, tenantA, CreateRoleInput{Name: "Mine"})
	require.NoError(t, err)
	foreign, err := env.roles.CreateRole(ctx, tenantB, CreateRoleInput{Name: "Foreign"})
	require.NoError(t, err)

	u := env.addUser(t, tenantA, "u@a.example")
	_, err = env.users.AssignRoles(ctx, tenantA, u.ID, []uuid.UUID{mine.Role.ID})
	require.NoError(t, err)

	_, err = env.users.AssignRoles(ctx, tenantA, u.ID, []uuid.UUID{mine.Role.ID, foreign.Role.ID})
	require.ErrorIs(t, err, ErrRoleNotFound)
	_, err = env.users.AssignRoles(ctx, tenantA, u.ID, []uuid.UUID{uuid.New()})
	require.ErrorIs(t, err, ErrRoleNotFound)

	details, err := env.users.GetUser(ctx, tenantA, u.ID)
	require.NoError(t, err)
	require.Len(t, details.Roles, 1)
	require.Equal(t, mine.Role.ID, details.Roles[0].ID)
}

func TestAssignRolesAcceptsSystemRoles(t *testing.T) {
	env := setupServiceTestEnv(t)
	ctx := context.Background()
	admin, _ := env.register(t, "Tenant A", "admin@a.example")

	roles, err := env.roles.ListRoles(ctx, admin)
	require.NoError(t, err)
	u := env.addUser(t, admin, "u@a.example")

	details, err := env.users.AssignRoles(ctx, admin, u.ID, []uuid.UUID{roles[0].Role.ID, roles[0].Role.ID})
	require.NoError(t, err)
	require.Len(t, details.Roles, 1)
	require.True(t, details.Roles[0].IsSystem())
}

func TestUsersAreInvisibleAcrossTenants(t *testing.T) {
	env := setupServiceTestEnv(t)
	ctx := context.Background()
	tenantA, _ := env.register(t, "Tenant A", "admin@a.example")
	tenantB, _ := env.register(t, "Tenant B", "admin@b.example")
	u := env.addUser(t, tenantA, "u@a.example")

	_, err := env.users.GetUser(ctx, tenantB, u.ID)
	require.ErrorIs(t, err, tenancy.ErrNotFound)
	_, err = env.users.AssignRoles(ctx, tenantB, u.ID, []uuid.UUID{})
	require.ErrorIs(t, err, tenancy.ErrNotFound)
	require.ErrorIs(t, env.users.DeleteUser(ctx, tenantB, u.ID), tenancy.ErrNotFound)

	users, total, err := env.users.ListUsers(ctx, tenantB, utils.NewPaginationParams(1, 20))
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Len(t, users, 1)
	require.Equal(t, "admin@b.example", users[0].Email)
}

func TestDeleteUser(t *testing.T) {
	env := setupServiceTestEnv(t)
	ctx := context.Background()
	admin, _ := env.register(t, "Tenant A", "admin@a.example")
	u := env.addUser(t, admin, "u@a.example")

	require.ErrorIs(t, env.users.DeleteUser(ctx, admin, admin.UserID), ErrValidation)

	require.NoError(t, env.users.DeleteUser(ctx, admin, u.ID))
	_, err := env.users.GetUser(ctx, admin, u.ID)
	require.ErrorIs(t, err, tenancy.ErrNotFound)

	_, err = env.auth.Login(ctx, LoginInput{Email: "u@a.example", Password: testPassword})
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestCreateUser(t *testing.T) {
	env := setupServiceTestEnv(t)
	ctx := context.Background()
	admin, _ := env.register(t, "Tenant A", "admin@a.example")

	user, err := env.users.CreateUser(ctx, admin, CreateUserInput{
		Email:     " New.User@A.example ",
		Password:  testPassword,
		FirstName: " New ",
		LastName:  "User",
	})
	require.NoError(t, err)
	require.Equal(t, admin.TenantID, user.TenantID)
	require.Equal(t, "new.user@a.example", user.Email)
	require.Equal(t, "New", user.FirstName)
	require.True(t, user.IsActive)
	require.NotEqual(t, testPassword, user.PasswordHash)
	require.Equal(t, admin.UserID, *user.CreatedBy)

	details, err := env.users.GetUser(ctx, admin, user.ID)
	require.NoError(t, err)
	require.Empty(t, details.Roles)

	entries, _, err := env.activity.ListActivity(ctx, admin, utils.NewPaginationParams(1, 50))
	require.NoError(t, err)
	var created bool
	for _, e := range entries {
		if e.Action == ActionCreated && e.EntityType == entityUser && e.EntityID == user.ID {
			created = true
			require.Nil(t, e.OldValues)
			require.NotNil(t, e.NewValues)
		}
	}
	require.True(t, created)

	result, err := env.auth.Login(ctx, LoginInput{Email: "new.user@a.example", Password: testPassword})
	require.NoError(t, err)
	require.Equal(t, admin.TenantID, result.User.TenantID)
}

func TestCreateUserRejectsTakenEmailAcrossTenants(t *testing.T) {
	env := setupServiceTestEnv(t)
	ctx := context.Background()
	tenantA, _ := env.register(t, "Tenant A", "admin@a.example")
	tenantB, _ := env.register(t, "Tenant B", "admin@b.example")

	_, err := env.users.CreateUser(ctx, tenantB, CreateUserInput{Email: "ADMIN@a.example", Password: testPassword})
	require.ErrorIs(t, err, ErrEmailTaken)

	_, err = env.users.CreateUser(ctx, tenantA, CreateUserInput{Email: "shared@example.com", Password: testPassword})
	require.NoError(t, err)
	_, err = env.users.CreateUser(ctx, tenantB, CreateUserInput{Email: "shared@example.com", Password: testPassword})
	require.ErrorIs(t, err, ErrEmailTaken)

	_, total, err := env.users.ListUsers(ctx, tenantB, utils.NewPaginationParams(1, 20))
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
}

func TestCreateUserValidation(t *testing.T) {
	env := setupServiceTestEnv(t)
	ctx := context.Background()
	admin, _ := env.register(t, "Tenant A", "admin@a.example")

	cases := []struct {
		name  string
		input CreateUserInput
	}{
		{"bad email", CreateUserInput{Email: "not-an-email", Password: testPassword}},
		{"two at signs", CreateUserInput{Email: "a@b@example.com", Password: testPassword}},
		{"short password", CreateUserInput{Email: "u@a.example", Password: "short"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.users.CreateUser(ctx, admin, tc.input)
			require.ErrorIs(t, err, ErrValidation)
		})
	}

	_, err := env.users.CreateUser(ctx, tenancy.Caller{}, CreateUserInput{Email: "u@a.example", Password: testPassword})
	require.ErrorIs(t, err, tenancy.ErrNoTenantContext)
}

func TestUpdateUserDeactivationEndsSessions(t *testing.T) {
	env := setupServiceTestEnv(t)
	ctx := context.Background()
	admin, _ := env.register(t, "Tenant A", "admin@a.example")

	user, err := env.users.CreateUser(ctx, admin, CreateUserInput{Email: "u@a.example", Password: testPassword})
	require.NoError(t, err)
	session, err := env.auth.Login(ctx, LoginInput{Email: "u@a.example", Password: testPassword})
	require.NoError(t, err)

	renamed := "Renamed"
	inactive := false
	updated, err := env.users.UpdateUser(ctx, admin, user.ID, UpdateUserInput{FirstName: &renamed, IsActive: &inactive})
	require.NoError(t, err)
	require.Equal(t, "Renamed", updated.FirstName)
	require.False(t, updated.IsActive)
	require.Equal(t, admin.UserID, *updated.UpdatedBy)

	_, err = env.auth.Login(ctx, LoginInput{Email: "u@a.example", Password: testPassword})
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = env.auth.Refresh(ctx, session.Credential.RefreshToken)
	require.ErrorIs(t, err, auth.ErrInvalidToken)

	active := true
	_, err = env.users.UpdateUser(ctx, admin, user.ID, UpdateUserInput{IsActive: &active})
	require.NoError(t, err)
	_, err = env.auth.Login(ctx, LoginInput{Email: "u@a.example", Password: testPassword})
	require.NoError(t, err)
}

func TestUpdateUserRules(t *testing.T) {
	env := setupServiceTestEnv(t)
	ctx := context.Background()
	tenantA, _ := env.register(t, "Tenant A", "admin@a.example")
	tenantB, _ := env.register(t, "Tenant B", "admin@b.example")
	u := env.addUser(t, tenantA, "u@a.example")

	inactive := false
	_, err := env.users.UpdateUser(ctx, tenantA, tenantA.UserID, UpdateUserInput{IsActive: &inactive})
	require.ErrorIs(t, err, ErrValidation)

	name := "Mallory"
	_, err = env.users.UpdateUser(ctx, tenantB, u.ID, UpdateUserInput{FirstName: &name})
	require.ErrorIs(t, err, tenancy.ErrNotFound)

	seen := u.Version
	_, err = env.users.UpdateUser(ctx, tenantA, u.ID, UpdateUserInput{FirstName: &name, Version: &seen})
	require.NoError(t, err)
	_, err = env.users.UpdateUser(ctx, tenantA, u.ID, UpdateUserInput{FirstName: &name, Version: &seen})
	require.ErrorIs(t, err, tenancy.ErrConcurrencyConflict)

	details, err := env.users.GetUser(ctx, tenantA, u.ID)
	require.NoError(t, err)
	require.Equal(t, seen+1, details.User.Version)
}
