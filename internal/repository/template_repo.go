package repository

import (
	"context"
	"errors"

	"github.com/mbarroso/escala-engine/internal/domain"
	"gorm.io/gorm"
)

type TemplateRepository interface {
	// GetByIDForUser loads a template owned by the given user, including its
	// role requirements ordered by position. A template that exists but is
	// owned by someone else is reported as not found.
	GetByIDForUser(ctx context.Context, id string, userID string) (*domain.ScheduleTemplate, error)
}

type GormTemplateRepo struct {
	db *gorm.DB
}

func NewGormTemplateRepo(db *gorm.DB) *GormTemplateRepo {
	return &GormTemplateRepo{db: db}
}

func (r *GormTemplateRepo) GetByIDForUser(ctx context.Context, id string, userID string) (*domain.ScheduleTemplate, error) {
	var model ScheduleTemplateModel
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var roles []TemplateRoleModel
	err = r.db.WithContext(ctx).
		Where("template_id = ?", id).
		Order("position ASC").
		Find(&roles).Error
	if err != nil {
		return nil, err
	}

	return templateModelToDomain(&model, roles), nil
}
