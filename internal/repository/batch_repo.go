package repository

import (
	"context"
	"errors"
	"time"

	"github.com/mbarroso/escala-engine/internal/domain"
	"gorm.io/gorm"
)

// BatchFinalization carries the single terminal write for a batch. Counts
// are accumulated in the worker and written here once, never incrementally.
type BatchFinalization struct {
	Status           domain.BatchStatus
	CreatedSchedules int
	FailedSchedules  int
	EndDate          time.Time
	ErrorMessage     *string
}

type BatchRepository interface {
	Create(ctx context.Context, b *domain.BatchRecord) error
	GetByID(ctx context.Context, id string) (*domain.BatchRecord, error)
	ListByUser(ctx context.Context, userID string) ([]domain.BatchRecord, error)
	// MarkProcessing transitions a non-terminal batch to PROCESSING and
	// reports whether the transition took effect. A false result means the
	// batch reached a terminal state in the meantime.
	MarkProcessing(ctx context.Context, id string) (bool, error)
	Finalize(ctx context.Context, id string, result BatchFinalization) error
	// MarkFailed is the best-effort failure path; it never touches a batch
	// that is already terminal.
	MarkFailed(ctx context.Context, id string, message string) error
}

type GormBatchRepo struct {
	db *gorm.DB
}

func NewGormBatchRepo(db *gorm.DB) *GormBatchRepo {
	return &GormBatchRepo{db: db}
}

func (r *GormBatchRepo) Create(ctx context.Context, b *domain.BatchRecord) error {
	model := batchModelFromDomain(b)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return err
	}
	if b != nil {
		scheduleIDs := b.ScheduleIDs
		*b = *batchModelToDomain(model)
		b.ScheduleIDs = scheduleIDs
	}
	return nil
}

func (r *GormBatchRepo) GetByID(ctx context.Context, id string) (*domain.BatchRecord, error) {
	var model BatchModel
	err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	batch := batchModelToDomain(&model)

	var scheduleIDs []string
	err = r.db.WithContext(ctx).
		Model(&BatchScheduleModel{}).
		Where("batch_id = ?", id).
		Order("sequence ASC").
		Pluck("schedule_id", &scheduleIDs).Error
	if err != nil {
		return nil, err
	}
	batch.ScheduleIDs = scheduleIDs

	return batch, nil
}

func (r *GormBatchRepo) ListByUser(ctx context.Context, userID string) ([]domain.BatchRecord, error) {
	var models []BatchModel
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	batches := make([]domain.BatchRecord, 0, len(models))
	for i := range models {
		batches = append(batches, *batchModelToDomain(&models[i]))
	}

	return batches, nil
}

func (r *GormBatchRepo) MarkProcessing(ctx context.Context, id string) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&BatchModel{}).
		Where("id = ? AND status IN ?", id, []domain.BatchStatus{
			domain.BatchStatusPending,
			domain.BatchStatusProcessing,
		}).
		Update("status", domain.BatchStatusProcessing)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *GormBatchRepo) Finalize(ctx context.Context, id string, fin BatchFinalization) error {
	result := r.db.WithContext(ctx).
		Model(&BatchModel{}).
		Where("id = ? AND status NOT IN ?", id, []domain.BatchStatus{
			domain.BatchStatusCompleted,
			domain.BatchStatusFailed,
		}).
		Updates(map[string]any{
			"status":            fin.Status,
			"created_schedules": fin.CreatedSchedules,
			"failed_schedules":  fin.FailedSchedules,
			"end_date":          fin.EndDate,
			"error_message":     fin.ErrorMessage,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrConflict
	}
	return nil
}

func (r *GormBatchRepo) MarkFailed(ctx context.Context, id string, message string) error {
	return r.db.WithContext(ctx).
		Model(&BatchModel{}).
		Where("id = ? AND status NOT IN ?", id, []domain.BatchStatus{
			domain.BatchStatusCompleted,
			domain.BatchStatusFailed,
		}).
		Updates(map[string]any{
			"status":        domain.BatchStatusFailed,
			"error_message": message,
		}).Error
}
