package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"github.com/mbarroso/escala-engine/internal/repository"
	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, []*gormigrate.Migration{
		{
			ID: "000001_create_batches",
			Migrate: func(tx *gorm.DB) error {
				if err := tx.AutoMigrate(&repository.BatchModel{}); err != nil {
					return err
				}
				indexes := []string{
					`CREATE INDEX IF NOT EXISTS idx_batches_user_created ON batches (user_id, created_at DESC)`,
					`CREATE INDEX IF NOT EXISTS idx_batches_status ON batches (status) WHERE status IN ('PENDING', 'PROCESSING')`,
				}
				for _, sql := range indexes {
					if err := tx.Exec(sql).Error; err != nil {
						return err
					}
				}
				return nil
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable(&repository.BatchModel{})
			},
		},
		{
			ID: "000002_create_schedules",
			Migrate: func(tx *gorm.DB) error {
				if err := tx.AutoMigrate(&repository.ScheduleModel{}); err != nil {
					return err
				}
				indexes := []string{
					`CREATE INDEX IF NOT EXISTS idx_schedules_church_starts ON schedules (church_id, starts_at)`,
					`CREATE INDEX IF NOT EXISTS idx_schedules_created_by ON schedules (created_by)`,
				}
				for _, sql := range indexes {
					if err := tx.Exec(sql).Error; err != nil {
						return err
					}
				}
				return nil
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable(&repository.ScheduleModel{})
			},
		},
		{
			ID: "000003_create_batch_schedules",
			Migrate: func(tx *gorm.DB) error {
				if err := tx.AutoMigrate(&repository.BatchScheduleModel{}); err != nil {
					return err
				}
				return tx.Exec(
					`CREATE INDEX IF NOT EXISTS idx_batch_schedules_schedule_id ON batch_schedules (schedule_id)`,
				).Error
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable(&repository.BatchScheduleModel{})
			},
		},
		{
			ID: "000004_create_schedule_templates",
			Migrate: func(tx *gorm.DB) error {
				if err := tx.AutoMigrate(&repository.ScheduleTemplateModel{}); err != nil {
					return err
				}
				if err := tx.AutoMigrate(&repository.TemplateRoleModel{}); err != nil {
					return err
				}
				indexes := []string{
					`CREATE INDEX IF NOT EXISTS idx_schedule_templates_user_id ON schedule_templates (user_id)`,
					`CREATE INDEX IF NOT EXISTS idx_template_roles_template_position ON template_roles (template_id, position)`,
				}
				for _, sql := range indexes {
					if err := tx.Exec(sql).Error; err != nil {
						return err
					}
				}
				return nil
			},
			Rollback: func(tx *gorm.DB) error {
				if err := tx.Migrator().DropTable(&repository.TemplateRoleModel{}); err != nil {
					return err
				}
				return tx.Migrator().DropTable(&repository.ScheduleTemplateModel{})
			},
		},
		{
			ID: "000005_create_user_areas",
			Migrate: func(tx *gorm.DB) error {
				if err := tx.AutoMigrate(&repository.UserAreaModel{}); err != nil {
					return err
				}
				return tx.Exec(
					`CREATE INDEX IF NOT EXISTS idx_user_areas_user_id ON user_areas (user_id)`,
				).Error
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable(&repository.UserAreaModel{})
			},
		},
	})

	return m.Migrate()
}
