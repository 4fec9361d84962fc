package database

import (
	"github.com/chachabrian/homefix-backend/internal/models"
	"gorm.io/gorm"
)

func RunMigrations(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Booking{},
		&models.ServiceItem{},
		&models.NotificationPreference{},
	)
	if err != nil {
		return err
	}

	if db.Dialector.Name() != "postgres" {
		return nil
	}

	// Status and assignment invariants enforced at the storage layer as well.
	constraints := []string{
		`ALTER TABLE bookings DROP CONSTRAINT IF EXISTS bookings_status_check`,
		`ALTER TABLE bookings ADD CONSTRAINT bookings_status_check CHECK (status IN ('pending','confirmed','in_progress','completed','cancelled'))`,
		`ALTER TABLE bookings DROP CONSTRAINT IF EXISTS bookings_worker_check`,
		`ALTER TABLE bookings ADD CONSTRAINT bookings_worker_check CHECK ((worker_id IS NOT NULL) = (status IN ('confirmed','in_progress','completed')))`,
		`ALTER TABLE bookings DROP CONSTRAINT IF EXISTS bookings_rating_check`,
		`ALTER TABLE bookings ADD CONSTRAINT bookings_rating_check CHECK (rating IS NULL OR (rating BETWEEN 1 AND 5 AND status = 'completed'))`,
	}
	for _, stmt := range constraints {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}
