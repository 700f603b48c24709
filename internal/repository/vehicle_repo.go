package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/gearshare/rental-service/internal/models"
)

type VehicleRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Vehicle, error)
	FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.Vehicle, error)
	Upsert(ctx context.Context, vehicle *models.Vehicle) error
}

type vehicleRepository struct {
	db *gorm.DB
}

func NewVehicleRepository(db *gorm.DB) VehicleRepository {
	return &vehicleRepository{db: db}
}

func (r *vehicleRepository) FindByID(ctx context.Context, id uint) (*models.Vehicle, error) {
	var vehicle models.Vehicle
	if err := r.db.WithContext(ctx).First(&vehicle, id).Error; err != nil {
		return nil, err
	}
	return &vehicle, nil
}

// FindByIDForUpdate acquires a row-level lock on the vehicle within the given
// transaction. All booking creation for a vehicle funnels through this lock.
func (r *vehicleRepository) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.Vehicle, error) {
	var vehicle models.Vehicle
	if err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&vehicle, id).Error; err != nil {
		return nil, err
	}
	return &vehicle, nil
}

// Upsert inserts or refreshes a vehicle record synced from the listing
// service (same ID upstream and local).
func (r *vehicleRepository) Upsert(ctx context.Context, vehicle *models.Vehicle) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"owner_id", "make", "model", "daily_rate", "approved", "updated_at"}),
	}).Create(vehicle).Error
}
