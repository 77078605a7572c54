package domain

import "time"

type BookingStatus string

const (
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

type Booking struct {
	ID          string
	RideID      string
	PassengerID string
	Status      BookingStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// BookingDetail joins a booking with the snapshot of its ride taken
// in the same query.
type BookingDetail struct {
	Booking Booking
	Ride    Ride
}
