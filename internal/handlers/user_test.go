package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/yukikurage/enterprise-core-api/internal/dto"
	apierrors "github.com/yukikurage/enterprise-core-api/internal/errors"
)

func TestUserHandler_CreateUser(t *testing.T) {
	env := setupAPITestEnv(t, nil)
	owner := env.register(t, "Acme", "owner@acme.example")
	env.register(t, "Globex", "owner@globex.example")

	w := env.do(t, http.MethodPost, "/api/users", owner.AccessToken, map[string]string{
		"email":      "member@acme.example",
		"password":   testPassword,
		"first_name": "Mem",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[dto.UserDTO](t, w)
	require.Equal(t, owner.User.TenantID, created.TenantID)
	require.Equal(t, "member@acme.example", created.Email)
	require.True(t, created.IsActive)

	w = env.do(t, http.MethodPost, "/api/users", owner.AccessToken, map[string]string{
		"email":    "owner@globex.example",
		"password": testPassword,
	})
	requireError(t, w, http.StatusConflict, apierrors.ErrCodeEmailTaken)

	w = env.do(t, http.MethodPost, "/api/users", owner.AccessToken, map[string]string{
		"email":    "not-an-email",
		"password": testPassword,
	})
	requireError(t, w, http.StatusBadRequest, apierrors.ErrCodeInvalidInput)

	member := env.login(t, "member@acme.example")
	require.Equal(t, created.ID, member.User.ID)
	require.Empty(t, member.Permissions)

	w = env.do(t, http.MethodPost, "/api/users", member.AccessToken, map[string]string{
		"email":    "second@acme.example",
		"password": testPassword,
	})
	requireError(t, w, http.StatusForbidden, apierrors.ErrCodeForbidden)
}

func TestUserHandler_UpdateUser(t *testing.T) {
	env := setupAPITestEnv(t, nil)
	owner := env.register(t, "Acme", "owner@acme.example")
	other := env.register(t, "Globex", "owner@globex.example")
	memberID := env.addUser(t, owner.User.TenantID, "member@acme.example")
	member := env.login(t, "member@acme.example")
	path := "/api/users/" + memberID.String()

	w := env.do(t, http.MethodPut, path, other.AccessToken, map[string]interface{}{"first_name": "Mallory"})
	requireError(t, w, http.StatusNotFound, apierrors.ErrCodeNotFound)

	w = env.do(t, http.MethodPut, path, owner.AccessToken, map[string]interface{}{
		"first_name": "Renamed",
		"is_active":  false,
		"version":    member.User.Version,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode[dto.UserDTO](t, w)
	require.Equal(t, "Renamed", updated.FirstName)
	require.False(t, updated.IsActive)
	require.Greater(t, updated.Version, member.User.Version)

	w = env.do(t, http.MethodPut, path, owner.AccessToken, map[string]interface{}{
		"is_active": true,
		"version":   member.User.Version,
	})
	requireError(t, w, http.StatusConflict, apierrors.ErrCodeConcurrencyConflict)

	w = env.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "member@acme.example",
		"password": testPassword,
	})
	requireError(t, w, http.StatusUnauthorized, apierrors.ErrCodeInvalidCredentials)

	w = env.do(t, http.MethodPost, "/api/auth/refresh", "", map[string]string{"refresh_token": member.RefreshToken})
	require.Equal(t, http.StatusUnauthorized, w.Code, w.Body.String())

	w = env.do(t, http.MethodPut, "/api/users/"+owner.User.ID.String(), owner.AccessToken, map[string]interface{}{"is_active": false})
	requireError(t, w, http.StatusBadRequest, apierrors.ErrCodeInvalidInput)
}
