package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/yukikurage/enterprise-core-api/internal/repository"
	"gorm.io/gorm"
)

// PermissionResolver flattens a user's roles into permission codes. It never
// caches: every credential issuance sees current assignments.
type PermissionResolver struct {
	perms repository.PermissionRepository
}

func NewPermissionResolver(perms repository.PermissionRepository) *PermissionResolver {
	return &PermissionResolver{perms: perms}
}

func (r *PermissionResolver) WithTx(tx *gorm.DB) *PermissionResolver {
	return &PermissionResolver{perms: r.perms.WithTx(tx)}
}

// EffectivePermissions returns the sorted union of codes over every role the
// user holds. A user without roles gets an empty slice.
func (r *PermissionResolver) EffectivePermissions(ctx context.Context, userID uuid.UUID) ([]string, error) {
	codes, err := r.perms.CodesForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve permissions: %w", err)
	}
	return codes, nil
}
