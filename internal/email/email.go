package email

import (
	"context"

	"github.com/avelichko/ridepool/internal/kafka"
	"go.uber.org/zap"
)

// Sender delivers ride notifications. Delivery is a log line for now;
// the worker only cares about the Send contract.
type Sender struct {
	log *zap.Logger
}

func NewSender(log *zap.Logger) *Sender {
	return &Sender{log: log}
}

func (s *Sender) Send(ctx context.Context, event kafka.RideEvent) error {
	s.log.Info("notify",
		zap.String("type", event.Type),
		zap.String("ride_id", event.RideID),
		zap.String("booking_id", event.BookingID),
		zap.String("passenger_id", event.PassengerID),
		zap.String("route", event.Origin+" -> "+event.Destination),
	)
	return nil
}
