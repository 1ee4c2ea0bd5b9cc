package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/yukikurage/enterprise-core-api/internal/models"
	"github.com/yukikurage/enterprise-core-api/internal/services"
)

// TenantDTO represents a tenant in API responses
type TenantDTO struct {
	ID               uuid.UUID               `json:"id"`
	Name             string                  `json:"name"`
	Slug             string                  `json:"slug"`
	SubscriptionPlan models.SubscriptionPlan `json:"subscription_plan"`
}

// AuthResponse is returned by register, login and refresh
type AuthResponse struct {
	AccessToken           string    `json:"access_token"`
	TokenType             string    `json:"token_type"`
	ExpiresAt             time.Time `json:"expires_at"`
	RefreshToken          string    `json:"refresh_token"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at"`
	User                  UserDTO   `json:"user"`
	Permissions           []string  `json:"permissions"`
}

// MeResponse describes the authenticated caller
type MeResponse struct {
	User        UserDTO    `json:"user"`
	Tenant      *TenantDTO `json:"tenant,omitempty"`
	Permissions []string   `json:"permissions"`
}

func ToTenantDTO(t models.Tenant) TenantDTO {
	return TenantDTO{
		ID:               t.ID,
		Name:             t.Name,
		Slug:             t.Slug,
		SubscriptionPlan: t.SubscriptionPlan,
	}
}

// ToAuthResponse converts an issuance result. It must only be called with a
// result that carries a credential.
func ToAuthResponse(r *services.AuthResult) AuthResponse {
	return AuthResponse{
		AccessToken:           r.Credential.AccessToken,
		TokenType:             "Bearer",
		ExpiresAt:             r.Credential.AccessTokenExpiresAt,
		RefreshToken:          r.Credential.RefreshToken,
		RefreshTokenExpiresAt: r.Credential.RefreshTokenExpiresAt,
		User:                  ToUserDTO(r.User),
		Permissions:           nonNilStrings(r.Permissions),
	}
}

func ToMeResponse(r *services.AuthResult) MeResponse {
	resp := MeResponse{
		User:        ToUserDTO(r.User),
		Permissions: nonNilStrings(r.Permissions),
	}
	if r.Tenant != nil {
		tenant := ToTenantDTO(*r.Tenant)
		resp.Tenant = &tenant
	}
	return resp
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
