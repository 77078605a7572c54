package domain

import "time"

type RideStatus string

const (
	RideStatusScheduled RideStatus = "scheduled"
	RideStatusCompleted RideStatus = "completed"
	RideStatusCancelled RideStatus = "cancelled"
)

type Ride struct {
	ID             string
	DriverID       string
	VehicleID      string
	Origin         string
	Destination    string
	DepartureTime  time.Time
	ArrivalTime    *time.Time
	SeatsTotal     int
	SeatsAvailable int
	PriceCents     int64
	Status         RideStatus
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// RideFilter narrows Search results. Zero-value fields are ignored.
type RideFilter struct {
	Origin      string
	Destination string
	Date        *time.Time
}
