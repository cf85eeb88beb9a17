package repository

import (
	"time"

	"github.com/mbarroso/escala-engine/internal/domain"
)

// BatchModel is the persistence model for the batches table.
type BatchModel struct {
	ID               string             `gorm:"type:uuid;primaryKey"`
	Name             string             `gorm:"type:varchar(255);not null"`
	TotalSchedules   int                `gorm:"not null"`
	CreatedSchedules int                `gorm:"not null;default:0"`
	FailedSchedules  int                `gorm:"not null;default:0"`
	Recurrence       domain.Recurrence  `gorm:"type:varchar(10);not null"`
	StartDate        time.Time          `gorm:"type:date;not null"`
	EndDate          *time.Time         `gorm:"type:date"`
	Status           domain.BatchStatus `gorm:"type:varchar(20);not null"`
	ErrorMessage     *string            `gorm:"type:text"`
	TemplateID       *string            `gorm:"type:uuid"`
	UserID           string             `gorm:"type:uuid;not null"`
	ChurchID         string             `gorm:"type:uuid;not null"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (BatchModel) TableName() string {
	return "batches"
}

// BatchScheduleModel links a batch to one schedule it generated.
// Rows are append-only.
type BatchScheduleModel struct {
	BatchID    string `gorm:"type:uuid;primaryKey"`
	ScheduleID string `gorm:"type:uuid;primaryKey"`
	Sequence   int    `gorm:"not null"`
	CreatedAt  time.Time
}

func (BatchScheduleModel) TableName() string {
	return "batch_schedules"
}

// ScheduleModel is the persistence model for the schedules table.
type ScheduleModel struct {
	ID              string                `gorm:"type:uuid;primaryKey"`
	Name            string                `gorm:"type:varchar(255);not null"`
	Description     string                `gorm:"type:text"`
	Local           string                `gorm:"type:varchar(255)"`
	StartsAt        time.Time             `gorm:"type:timestamptz;not null"`
	EndsAt          time.Time             `gorm:"type:timestamptz;not null"`
	ScheduleType    domain.ScheduleType   `gorm:"type:varchar(20);not null"`
	Status          domain.ScheduleStatus `gorm:"type:varchar(20);not null"`
	MusicTemplateID *string               `gorm:"type:uuid"`
	CreatedBy       string                `gorm:"type:uuid;not null"`
	ChurchID        string                `gorm:"type:uuid;not null"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (ScheduleModel) TableName() string {
	return "schedules"
}

// ScheduleTemplateModel is the persistence model for schedule_templates.
type ScheduleTemplateModel struct {
	ID              string              `gorm:"type:uuid;primaryKey"`
	Name            string              `gorm:"type:varchar(255);not null"`
	ScheduleType    domain.ScheduleType `gorm:"type:varchar(20);not null"`
	MusicTemplateID *string             `gorm:"type:uuid"`
	UserID          string              `gorm:"type:uuid;not null"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (ScheduleTemplateModel) TableName() string {
	return "schedule_templates"
}

// TemplateRoleModel is the persistence model for template_roles.
type TemplateRoleModel struct {
	ID         string `gorm:"type:uuid;primaryKey"`
	TemplateID string `gorm:"type:uuid;not null"`
	AreaID     string `gorm:"type:uuid;not null"`
	RoleID     string `gorm:"type:uuid;not null"`
	Headcount  int    `gorm:"not null"`
	Position   int    `gorm:"not null;default:0"`
	CreatedAt  time.Time
}

func (TemplateRoleModel) TableName() string {
	return "template_roles"
}

// UserAreaModel is the persistence model for user_areas, the source of truth
// for area membership checks.
type UserAreaModel struct {
	UserID    string `gorm:"type:uuid;primaryKey"`
	AreaID    string `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time
}

func (UserAreaModel) TableName() string {
	return "user_areas"
}

func batchModelFromDomain(b *domain.BatchRecord) *BatchModel {
	if b == nil {
		return nil
	}

	return &BatchModel{
		ID:               b.ID,
		Name:             b.Name,
		TotalSchedules:   b.TotalSchedules,
		CreatedSchedules: b.CreatedSchedules,
		FailedSchedules:  b.FailedSchedules,
		Recurrence:       b.Recurrence,
		StartDate:        b.StartDate,
		EndDate:          b.EndDate,
		Status:           b.Status,
		ErrorMessage:     b.ErrorMessage,
		TemplateID:       b.TemplateID,
		UserID:           b.UserID,
		ChurchID:         b.ChurchID,
		CreatedAt:        b.CreatedAt,
		UpdatedAt:        b.UpdatedAt,
	}
}

func batchModelToDomain(m *BatchModel) *domain.BatchRecord {
	if m == nil {
		return nil
	}

	return &domain.BatchRecord{
		ID:               m.ID,
		Name:             m.Name,
		TotalSchedules:   m.TotalSchedules,
		CreatedSchedules: m.CreatedSchedules,
		FailedSchedules:  m.FailedSchedules,
		Recurrence:       m.Recurrence,
		StartDate:        m.StartDate,
		EndDate:          m.EndDate,
		Status:           m.Status,
		ErrorMessage:     m.ErrorMessage,
		TemplateID:       m.TemplateID,
		UserID:           m.UserID,
		ChurchID:         m.ChurchID,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

func scheduleModelFromDomain(s *domain.Schedule) *ScheduleModel {
	if s == nil {
		return nil
	}

	return &ScheduleModel{
		ID:              s.ID,
		Name:            s.Name,
		Description:     s.Description,
		Local:           s.Local,
		StartsAt:        s.StartsAt,
		EndsAt:          s.EndsAt,
		ScheduleType:    s.ScheduleType,
		Status:          s.Status,
		MusicTemplateID: s.MusicTemplateID,
		CreatedBy:       s.CreatedBy,
		ChurchID:        s.ChurchID,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}
}

func scheduleModelToDomain(m *ScheduleModel) *domain.Schedule {
	if m == nil {
		return nil
	}

	return &domain.Schedule{
		ID:              m.ID,
		Name:            m.Name,
		Description:     m.Description,
		Local:           m.Local,
		StartsAt:        m.StartsAt,
		EndsAt:          m.EndsAt,
		ScheduleType:    m.ScheduleType,
		Status:          m.Status,
		MusicTemplateID: m.MusicTemplateID,
		CreatedBy:       m.CreatedBy,
		ChurchID:        m.ChurchID,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

func templateModelToDomain(m *ScheduleTemplateModel, roles []TemplateRoleModel) *domain.ScheduleTemplate {
	if m == nil {
		return nil
	}

	tpl := &domain.ScheduleTemplate{
		ID:              m.ID,
		Name:            m.Name,
		ScheduleType:    m.ScheduleType,
		MusicTemplateID: m.MusicTemplateID,
		UserID:          m.UserID,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}

	tpl.Roles = make([]domain.TemplateRoleRequirement, 0, len(roles))
	for _, role := range roles {
		tpl.Roles = append(tpl.Roles, domain.TemplateRoleRequirement{
			ID:         role.ID,
			TemplateID: role.TemplateID,
			AreaID:     role.AreaID,
			RoleID:     role.RoleID,
			Headcount:  role.Headcount,
			Position:   role.Position,
		})
	}

	return tpl
}
