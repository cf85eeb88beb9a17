package repository

import (
	"context"

	"github.com/mbarroso/escala-engine/internal/domain"
	"gorm.io/gorm"
)

type ScheduleRepository interface {
	// CreateForBatch inserts the schedule together with its batch
	// association in one transaction, so a batch never references a
	// half-created schedule.
	CreateForBatch(ctx context.Context, s *domain.Schedule, batchID string, sequence int) error
	Delete(ctx context.Context, id string) error
	ListByBatch(ctx context.Context, batchID string) ([]domain.Schedule, error)
	// DeleteByBatch removes every schedule a batch generated so far. Used
	// when a retried attempt finds leftovers from a prior crashed run.
	DeleteByBatch(ctx context.Context, batchID string) (int64, error)
}

type GormScheduleRepo struct {
	db *gorm.DB
}

func NewGormScheduleRepo(db *gorm.DB) *GormScheduleRepo {
	return &GormScheduleRepo{db: db}
}

func (r *GormScheduleRepo) CreateForBatch(ctx context.Context, s *domain.Schedule, batchID string, sequence int) error {
	model := scheduleModelFromDomain(s)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(model).Error; err != nil {
			return err
		}
		return tx.Create(&BatchScheduleModel{
			BatchID:    batchID,
			ScheduleID: model.ID,
			Sequence:   sequence,
		}).Error
	})
	if err != nil {
		return err
	}

	if s != nil {
		*s = *scheduleModelToDomain(model)
	}
	return nil
}

func (r *GormScheduleRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("schedule_id = ?", id).Delete(&BatchScheduleModel{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&ScheduleModel{}).Error
	})
}

func (r *GormScheduleRepo) ListByBatch(ctx context.Context, batchID string) ([]domain.Schedule, error) {
	var models []ScheduleModel
	err := r.db.WithContext(ctx).
		Joins("JOIN batch_schedules ON batch_schedules.schedule_id = schedules.id").
		Where("batch_schedules.batch_id = ?", batchID).
		Order("batch_schedules.sequence ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	schedules := make([]domain.Schedule, 0, len(models))
	for i := range models {
		schedules = append(schedules, *scheduleModelToDomain(&models[i]))
	}

	return schedules, nil
}

func (r *GormScheduleRepo) DeleteByBatch(ctx context.Context, batchID string) (int64, error) {
	var removed int64

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var scheduleIDs []string
		err := tx.Model(&BatchScheduleModel{}).
			Where("batch_id = ?", batchID).
			Pluck("schedule_id", &scheduleIDs).Error
		if err != nil {
			return err
		}
		if len(scheduleIDs) == 0 {
			return nil
		}

		if err := tx.Where("batch_id = ?", batchID).Delete(&BatchScheduleModel{}).Error; err != nil {
			return err
		}

		result := tx.Where("id IN ?", scheduleIDs).Delete(&ScheduleModel{})
		if result.Error != nil {
			return result.Error
		}
		removed = result.RowsAffected
		return nil
	})
	if err != nil {
		return 0, err
	}

	return removed, nil
}
