package database

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/gearshare/rental-service/internal/models"
)

func NewPostgresDB(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if err := db.AutoMigrate(&models.Vehicle{}, &models.Booking{}); err != nil {
		return nil, fmt.Errorf("auto-migrate: %w", err)
	}

	if err := EnsureBookingConstraints(db); err != nil {
		return nil, err
	}

	return db, nil
}

// EnsureBookingConstraints installs the storage-level backstop for the
// no-overlap invariant: a gist exclusion constraint over
// (vehicle_id, daterange) restricted to pending/confirmed rows. The vehicle
// row lock serializes well-behaved writers; this constraint aborts any
// conflicting insert that reaches the table anyway.
func EnsureBookingConstraints(db *gorm.DB) error {
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS btree_gist`).Error; err != nil {
		return fmt.Errorf("create btree_gist extension: %w", err)
	}

	err := db.Exec(`
		DO $$ BEGIN
			IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'bookings_no_overlap') THEN
				ALTER TABLE bookings ADD CONSTRAINT bookings_no_overlap
					EXCLUDE USING gist (
						vehicle_id WITH =,
						daterange(start_date, end_date, '[]') WITH &&
					)
					WHERE (status IN ('pending', 'confirmed'));
			END IF;
		END $$;
	`).Error
	if err != nil {
		return fmt.Errorf("create bookings_no_overlap constraint: %w", err)
	}

	return nil
}
