package db

import (
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/vigil-dev/vigil/internal/models"
)

func Connect(dsn string) (*gorm.DB, error) {
	// TranslateError maps unique violations to gorm.ErrDuplicatedKey, which
	// the alert insert path depends on.
	return gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
}

func Migrate(database *gorm.DB) error {
	tables := []interface{}{
		&models.User{},
		&models.MonitoringConfig{},
		&models.MonitoringResult{},
		&models.Alert{},
		&models.NotificationLog{},
		&models.AlertRecipient{},
	}

	migrator := database.Migrator()

	for _, table := range tables {
		if !migrator.HasTable(table) {
			if err := database.AutoMigrate(table); err != nil {
				return err
			}
		}
	}

	// At most one ACTIVE alert per config. The insert path relies on this
	// index to close the check-then-insert race between concurrent checks.
	return database.Exec(
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_alerts_one_active_per_config
		 ON alerts (config_id)
		 WHERE status = 'ACTIVE' AND deleted_at IS NULL`,
	).Error
}
