package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/yukikurage/enterprise-core-api/internal/models"
	"github.com/yukikurage/enterprise-core-api/internal/repository"
	"github.com/yukikurage/enterprise-core-api/internal/tenancy"
	"github.com/yukikurage/enterprise-core-api/internal/utils"
)

// Activity actions
const (
	ActionCreated            = "Created"
	ActionUpdated            = "Updated"
	ActionDeleted            = "Deleted"
	ActionPermissionsChanged = "PermissionsChanged"
	ActionRolesChanged       = "RolesChanged"
)

// ActivityService exposes the tenant's audit trail.
type ActivityService struct {
	logs repository.ActivityLogRepository
}

func NewActivityService(logs repository.ActivityLogRepository) *ActivityService {
	return &ActivityService{logs: logs}
}

func (s *ActivityService) ListActivity(ctx context.Context, caller tenancy.Caller, params utils.PaginationParams) ([]models.ActivityLog, int64, error) {
	entries, total, err := s.logs.List(ctx, caller, params)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list activity: %w", err)
	}
	return entries, total, nil
}

// recordActivity appends one entry attributed to caller. oldValues and
// newValues are stored as JSON when non-nil.
func recordActivity(ctx context.Context, logs repository.ActivityLogRepository, caller tenancy.Caller, action, entityType string, entityID uuid.UUID, oldValues, newValues interface{}) error {
	entry := &models.ActivityLog{
		TenantID:   caller.TenantID,
		UserID:     caller.UserID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
	}
	var err error
	if entry.OldValues, err = encodeValues(oldValues); err != nil {
		return err
	}
	if entry.NewValues, err = encodeValues(newValues); err != nil {
		return err
	}
	if err := logs.Append(ctx, entry); err != nil {
		return fmt.Errorf("failed to record activity: %w", err)
	}
	return nil
}

func encodeValues(v interface{}) (*string, error) {
	if v == nil {
		return nil, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode activity values: %w", err)
	}
	s := string(raw)
	return &s, nil
}
