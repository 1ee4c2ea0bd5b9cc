package dto

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/yukikurage/enterprise-core-api/internal/models"
	"github.com/yukikurage/enterprise-core-api/internal/utils"
)

// ActivityDTO represents one audit entry in API responses
type ActivityDTO struct {
	ID         uuid.UUID       `json:"id"`
	UserID     uuid.UUID       `json:"user_id"`
	Action     string          `json:"action"`
	EntityType string          `json:"entity_type"`
	EntityID   uuid.UUID       `json:"entity_id"`
	OldValues  json.RawMessage `json:"old_values,omitempty"`
	NewValues  json.RawMessage `json:"new_values,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// ActivityListResponse represents a paginated list of audit entries
type ActivityListResponse struct {
	Activity   []ActivityDTO            `json:"activity"`
	Pagination utils.PaginationResponse `json:"pagination"`
}

func ToActivityDTO(a models.ActivityLog) ActivityDTO {
	return ActivityDTO{
		ID:         a.ID,
		UserID:     a.UserID,
		Action:     a.Action,
		EntityType: a.EntityType,
		EntityID:   a.EntityID,
		OldValues:  rawJSON(a.OldValues),
		NewValues:  rawJSON(a.NewValues),
		CreatedAt:  a.CreatedAt,
	}
}

func ToActivityListResponse(entries []models.ActivityLog, params utils.PaginationParams, total int64) ActivityListResponse {
	out := make([]ActivityDTO, len(entries))
	for i, e := range entries {
		out[i] = ToActivityDTO(e)
	}
	return ActivityListResponse{Activity: out, Pagination: params.Response(total)}
}

func rawJSON(s *string) json.RawMessage {
	if s == nil {
		return nil
	}
	return json.RawMessage(*s)
}
