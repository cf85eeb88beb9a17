package repository

import (
	"context"

	"gorm.io/gorm"
)

// AreaMembershipRepository answers which areas a user currently belongs to.
// Callers must look this up fresh at decision time; memberships change
// between request submission and asynchronous execution.
type AreaMembershipRepository interface {
	UserAreas(ctx context.Context, userID string) ([]string, error)
}

type GormAreaMembershipRepo struct {
	db *gorm.DB
}

func NewGormAreaMembershipRepo(db *gorm.DB) *GormAreaMembershipRepo {
	return &GormAreaMembershipRepo{db: db}
}

func (r *GormAreaMembershipRepo) UserAreas(ctx context.Context, userID string) ([]string, error) {
	var areaIDs []string
	err := r.db.WithContext(ctx).
		Model(&UserAreaModel{}).
		Where("user_id = ?", userID).
		Pluck("area_id", &areaIDs).Error
	if err != nil {
		return nil, err
	}
	return areaIDs, nil
}
