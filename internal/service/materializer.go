package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mbarroso/escala-engine/internal/autofill"
	"github.com/mbarroso/escala-engine/internal/domain"
	"github.com/mbarroso/escala-engine/internal/repository"
	"go.uber.org/zap"
)

// ScheduleMaterializer creates exactly one schedule for one date of a batch.
// Every failure is returned, never raised, so the worker's per-date loop can
// keep going.
type ScheduleMaterializer struct {
	schedules repository.ScheduleRepository
	assigner  autofill.Assigner
	logger    *zap.Logger
}

func NewScheduleMaterializer(
	schedules repository.ScheduleRepository,
	assigner autofill.Assigner,
	logger *zap.Logger,
) (*ScheduleMaterializer, error) {
	if schedules == nil {
		return nil, fmt.Errorf("schedule repository is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &ScheduleMaterializer{
		schedules: schedules,
		assigner:  assigner,
		logger:    logger,
	}, nil
}

// Materialize builds the schedule for the given date and sequence number,
// persists it, and runs auto-fill when the request asks for it. An auto-fill
// failure fails this single item: the just-created schedule is removed so
// the batch only accounts for fully materialized ones.
func (m *ScheduleMaterializer) Materialize(
	ctx context.Context,
	req domain.BulkScheduleRequest,
	date time.Time,
	sequence int,
	batchID string,
	userID string,
	churchID string,
) (*domain.Schedule, error) {
	startsAt, err := domain.CombineDateTime(date, req.StartTime)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid start time %q", domain.ErrValidation, req.StartTime)
	}
	endsAt, err := domain.CombineDateTime(date, req.EndTime)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid end time %q", domain.ErrValidation, req.EndTime)
	}
	// An end time at or before the start time means the shift runs past
	// midnight.
	if !endsAt.After(startsAt) {
		endsAt = endsAt.AddDate(0, 0, 1)
	}

	schedule := &domain.Schedule{
		ID:              uuid.NewString(),
		Name:            fmt.Sprintf("%s #%d", req.NameBase, sequence),
		Description:     req.Description,
		Local:           req.Local,
		StartsAt:        startsAt,
		EndsAt:          endsAt,
		ScheduleType:    req.ScheduleType,
		Status:          domain.ScheduleStatusDraft,
		MusicTemplateID: req.MusicTemplateID,
		CreatedBy:       userID,
		ChurchID:        churchID,
	}

	if err := m.schedules.CreateForBatch(ctx, schedule, batchID, sequence); err != nil {
		return nil, fmt.Errorf("failed to create schedule #%d: %w", sequence, err)
	}

	if req.AutoFill && m.assigner != nil {
		assignErr := m.assigner.Assign(ctx, autofill.AssignmentRequest{
			ScheduleID:       schedule.ID,
			AreaIDs:          req.AreaIDs,
			RoleRequirements: req.RoleRequirements,
			MusicTemplateID:  req.MusicTemplateID,
		})
		if assignErr != nil {
			if delErr := m.schedules.Delete(ctx, schedule.ID); delErr != nil {
				m.logger.Warn("failed to remove schedule after auto-fill failure",
					zap.String("scheduleId", schedule.ID),
					zap.String("batchId", batchID),
					zap.Error(delErr),
				)
			}
			return nil, fmt.Errorf("auto-fill failed for schedule #%d: %w", sequence, assignErr)
		}
	}

	return schedule, nil
}
