// Package events publishes booking lifecycle events over RabbitMQ for the
// notification service and other downstream consumers. Publishing is
// best-effort: a failed publish is logged and dropped, never surfaced to the
// booking flow.
package events

import (
	"time"

	"go.uber.org/zap"

	"github.com/gearshare/rental-service/internal/models"
	"github.com/gearshare/rental-service/pkg/rabbitmq"
)

type BookingEvent struct {
	BookingID   uint                 `json:"booking_id"`
	VehicleID   uint                 `json:"vehicle_id"`
	RenterID    string               `json:"renter_id"`
	Status      models.BookingStatus `json:"status"`
	Previous    models.BookingStatus `json:"previous_status,omitempty"`
	StartDate   time.Time            `json:"start_date"`
	EndDate     time.Time            `json:"end_date"`
	TotalAmount float64              `json:"total_amount"`
	OccurredAt  time.Time            `json:"occurred_at"`
}

type Publisher struct {
	mq  *rabbitmq.Publisher
	log *zap.Logger
}

func NewPublisher(mq *rabbitmq.Publisher, log *zap.Logger) *Publisher {
	return &Publisher{mq: mq, log: log}
}

func (p *Publisher) BookingCreated(booking *models.Booking) {
	p.publish("booking.created", booking, "")
}

func (p *Publisher) BookingStatusChanged(booking *models.Booking, previous models.BookingStatus) {
	p.publish("booking."+string(booking.Status), booking, previous)
}

func (p *Publisher) publish(routingKey string, booking *models.Booking, previous models.BookingStatus) {
	event := BookingEvent{
		BookingID:   booking.ID,
		VehicleID:   booking.VehicleID,
		RenterID:    booking.RenterID,
		Status:      booking.Status,
		Previous:    previous,
		StartDate:   booking.StartDate,
		EndDate:     booking.EndDate,
		TotalAmount: booking.TotalAmount,
		OccurredAt:  time.Now().UTC(),
	}
	if err := p.mq.Publish(routingKey, event); err != nil {
		p.log.Warn("failed to publish booking event",
			zap.String("routing_key", routingKey),
			zap.Uint("booking_id", booking.ID),
			zap.Error(err))
		return
	}
	p.log.Debug("published booking event",
		zap.String("routing_key", routingKey),
		zap.Uint("booking_id", booking.ID))
}
