package consumer

import (
	"context"
	"encoding/json"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/gearshare/rental-service/internal/models"
	"github.com/gearshare/rental-service/internal/repository"
)

// VehicleConsumer keeps the local vehicle read model in sync with the
// listing service. Vehicle CRUD itself lives upstream; the reservation core
// only needs owner_id and the approved flag to be current.
type VehicleConsumer struct {
	vehicles repository.VehicleRepository
	log      *zap.Logger
}

func NewVehicleConsumer(vehicles repository.VehicleRepository, log *zap.Logger) *VehicleConsumer {
	return &VehicleConsumer{vehicles: vehicles, log: log}
}

// Start listens for messages and upserts vehicles into the local store.
func (vc *VehicleConsumer) Start(msgs <-chan amqp.Delivery) {
	go func() {
		for msg := range msgs {
			vc.handleMessage(msg)
		}
		vc.log.Info("vehicle consumer channel closed, stopping")
	}()
}

func (vc *VehicleConsumer) handleMessage(msg amqp.Delivery) {
	var vehicle models.Vehicle
	if err := json.Unmarshal(msg.Body, &vehicle); err != nil {
		vc.log.Warn("failed to unmarshal vehicle message", zap.Error(err))
		msg.Nack(false, false)
		return
	}

	if err := vc.vehicles.Upsert(context.Background(), &vehicle); err != nil {
		vc.log.Error("failed to upsert vehicle", zap.Uint("vehicle_id", vehicle.ID), zap.Error(err))
		msg.Nack(false, true) // requeue
		return
	}

	vc.log.Info("synced vehicle",
		zap.Uint("vehicle_id", vehicle.ID),
		zap.String("owner_id", vehicle.OwnerID),
		zap.Bool("approved", vehicle.Approved))
	msg.Ack(false)
}
