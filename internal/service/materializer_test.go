package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mbarroso/escala-engine/internal/autofill"
	"github.com/mbarroso/escala-engine/internal/domain"
)

func TestScheduleMaterializerMaterializeSuccess(t *testing.T) {
	t.Parallel()

	var persisted *domain.Schedule
	var persistedBatch string
	var persistedSequence int

	schedules := &fakeScheduleRepo{
		createForBatchFn: func(_ context.Context, s *domain.Schedule, batchID string, sequence int) error {
			persisted = s
			persistedBatch = batchID
			persistedSequence = sequence
			return nil
		},
	}

	m, err := NewScheduleMaterializer(schedules, nil, nil)
	if err != nil {
		t.Fatalf("NewScheduleMaterializer() error = %v", err)
	}

	date := time.Date(2026, time.September, 13, 0, 0, 0, 0, time.UTC)
	schedule, err := m.Materialize(context.Background(), validBulkRequest(), date, 2, "batch-1", "user-1", "church-1")
	if err != nil {
		t.Fatalf("Materialize() unexpected error: %v", err)
	}

	if schedule.Name != "Culto de Domingo #2" {
		t.Errorf("schedule.Name = %q, want %q", schedule.Name, "Culto de Domingo #2")
	}
	if schedule.Status != domain.ScheduleStatusDraft {
		t.Errorf("schedule.Status = %s, want DRAFT", schedule.Status)
	}
	wantStart := time.Date(2026, time.September, 13, 18, 0, 0, 0, time.UTC)
	wantEnd := time.Date(2026, time.September, 13, 20, 0, 0, 0, time.UTC)
	if !schedule.StartsAt.Equal(wantStart) {
		t.Errorf("schedule.StartsAt = %v, want %v", schedule.StartsAt, wantStart)
	}
	if !schedule.EndsAt.Equal(wantEnd) {
		t.Errorf("schedule.EndsAt = %v, want %v", schedule.EndsAt, wantEnd)
	}
	if schedule.CreatedBy != "user-1" || schedule.ChurchID != "church-1" {
		t.Errorf("schedule ownership = (%q, %q), want (user-1, church-1)", schedule.CreatedBy, schedule.ChurchID)
	}
	if persisted == nil || persistedBatch != "batch-1" || persistedSequence != 2 {
		t.Errorf("persisted (%v, %q, %d), want schedule in batch-1 at sequence 2", persisted, persistedBatch, persistedSequence)
	}
}

func TestScheduleMaterializerOvernightShift(t *testing.T) {
	t.Parallel()

	m, err := NewScheduleMaterializer(&fakeScheduleRepo{}, nil, nil)
	if err != nil {
		t.Fatalf("NewScheduleMaterializer() error = %v", err)
	}

	req := validBulkRequest()
	req.StartTime = "22:00"
	req.EndTime = "01:00"

	date := time.Date(2026, time.September, 13, 0, 0, 0, 0, time.UTC)
	schedule, err := m.Materialize(context.Background(), req, date, 1, "batch-1", "user-1", "church-1")
	if err != nil {
		t.Fatalf("Materialize() unexpected error: %v", err)
	}

	wantEnd := time.Date(2026, time.September, 14, 1, 0, 0, 0, time.UTC)
	if !schedule.EndsAt.Equal(wantEnd) {
		t.Errorf("schedule.EndsAt = %v, want %v (next day)", schedule.EndsAt, wantEnd)
	}
}

func TestScheduleMaterializerStorageFailure(t *testing.T) {
	t.Parallel()

	schedules := &fakeScheduleRepo{
		createForBatchFn: func(_ context.Context, _ *domain.Schedule, _ string, _ int) error {
			return errors.New("connection reset")
		},
	}
	assigner := &fakeAssigner{
		assignFn: func(_ context.Context, _ autofill.AssignmentRequest) error {
			t.Error("auto-fill must not run when the schedule was not created")
			return nil
		},
	}

	m, err := NewScheduleMaterializer(schedules, assigner, nil)
	if err != nil {
		t.Fatalf("NewScheduleMaterializer() error = %v", err)
	}

	req := validBulkRequest()
	req.AutoFill = true

	date := time.Date(2026, time.September, 13, 0, 0, 0, 0, time.UTC)
	if _, err := m.Materialize(context.Background(), req, date, 1, "batch-1", "user-1", "church-1"); err == nil {
		t.Fatal("Materialize() expected error when storage fails")
	}
}

func TestScheduleMaterializerAutoFillFailureRemovesSchedule(t *testing.T) {
	t.Parallel()

	deleted := ""
	schedules := &fakeScheduleRepo{
		deleteFn: func(_ context.Context, id string) error {
			deleted = id
			return nil
		},
	}

	var assignedSchedule string
	assigner := &fakeAssigner{
		assignFn: func(_ context.Context, req autofill.AssignmentRequest) error {
			assignedSchedule = req.ScheduleID
			return &autofill.AssignerError{StatusCode: 422, Message: "no eligible volunteers"}
		},
	}

	m, err := NewScheduleMaterializer(schedules, assigner, nil)
	if err != nil {
		t.Fatalf("NewScheduleMaterializer() error = %v", err)
	}

	req := validBulkRequest()
	req.AutoFill = true

	date := time.Date(2026, time.September, 13, 0, 0, 0, 0, time.UTC)
	_, err = m.Materialize(context.Background(), req, date, 1, "batch-1", "user-1", "church-1")
	if err == nil {
		t.Fatal("Materialize() expected error when auto-fill fails")
	}

	var assignerErr *autofill.AssignerError
	if !errors.As(err, &assignerErr) {
		t.Errorf("error %v does not wrap the assigner failure", err)
	}
	if deleted == "" {
		t.Fatal("schedule must be removed after an auto-fill failure")
	}
	if deleted != assignedSchedule {
		t.Errorf("removed schedule %q, want the one sent to auto-fill %q", deleted, assignedSchedule)
	}
}

func TestScheduleMaterializerAutoFillDisabled(t *testing.T) {
	t.Parallel()

	assigner := &fakeAssigner{
		assignFn: func(_ context.Context, _ autofill.AssignmentRequest) error {
			t.Error("auto-fill must not run when the request does not ask for it")
			return nil
		},
	}

	m, err := NewScheduleMaterializer(&fakeScheduleRepo{}, assigner, nil)
	if err != nil {
		t.Fatalf("NewScheduleMaterializer() error = %v", err)
	}

	date := time.Date(2026, time.September, 13, 0, 0, 0, 0, time.UTC)
	if _, err := m.Materialize(context.Background(), validBulkRequest(), date, 1, "batch-1", "user-1", "church-1"); err != nil {
		t.Fatalf("Materialize() unexpected error: %v", err)
	}
}

func TestScheduleMaterializerInvalidTime(t *testing.T) {
	t.Parallel()

	created := false
	schedules := &fakeScheduleRepo{
		createForBatchFn: func(_ context.Context, _ *domain.Schedule, _ string, _ int) error {
			created = true
			return nil
		},
	}

	m, err := NewScheduleMaterializer(schedules, nil, nil)
	if err != nil {
		t.Fatalf("NewScheduleMaterializer() error = %v", err)
	}

	req := validBulkRequest()
	req.StartTime = "25:99"

	date := time.Date(2026, time.September, 13, 0, 0, 0, 0, time.UTC)
	_, err = m.Materialize(context.Background(), req, date, 1, "batch-1", "user-1", "church-1")
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("Materialize() error = %v, want ErrValidation", err)
	}
	if created {
		t.Error("schedule must not be created for an invalid time")
	}
}
