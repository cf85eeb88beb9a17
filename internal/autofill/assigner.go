package autofill

import (
	"context"

	"github.com/mbarroso/escala-engine/internal/domain"
)

// AssignmentRequest asks the external auto-fill service to staff one newly
// created schedule.
type AssignmentRequest struct {
	ScheduleID       string
	AreaIDs          []string
	RoleRequirements []domain.RoleRequirement
	MusicTemplateID  *string
}

// Assigner is the outbound port to the volunteer auto-fill service. A failed
// assignment is local to the schedule it was requested for; callers must not
// escalate it to the whole batch.
type Assigner interface {
	Assign(ctx context.Context, req AssignmentRequest) error
}
