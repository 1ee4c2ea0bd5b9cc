package tenancy

import (
	"github.com/google/uuid"
)

// Caller is the identity a request acts as. It is resolved once per request
// from the verified credential and passed explicitly to every scoped
// persistence call.
type Caller struct {
	UserID      uuid.UUID
	TenantID    uuid.UUID
	Email       string
	Permissions []string

	system bool
}

// SystemCaller bypasses the tenant filter. It is reserved for credential
// issuance lookups and catalog seeding. The soft-delete filter still applies.
func SystemCaller() Caller {
	return Caller{system: true}
}

// Anonymous returns a caller with no identity and no tenant context.
func Anonymous() Caller {
	return Caller{}
}

// ForUser returns a caller acting as the given user inside its tenant.
func ForUser(userID, tenantID uuid.UUID) Caller {
	return Caller{UserID: userID, TenantID: tenantID}
}

func (c Caller) IsSystem() bool { return c.system }

func (c Caller) IsAuthenticated() bool { return c.UserID != uuid.Nil }

func (c Caller) HasTenant() bool { return c.TenantID != uuid.Nil }

// HasPermission reports whether code is one of the caller's permission
// claims. Matching is exact; there are no wildcards.
func (c Caller) HasPermission(code string) bool {
	for _, p := range c.Permissions {
		if p == code {
			return true
		}
	}
	return false
}

func (c Caller) actor() *uuid.UUID {
	if c.UserID == uuid.Nil {
		return nil
	}
	id := c.UserID
	return &id
}
