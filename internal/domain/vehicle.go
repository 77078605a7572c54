package domain

import "time"

type Vehicle struct {
	ID           string
	OwnerID      string
	Make         string
	Model        string
	Color        string
	LicensePlate string
	SeatsTotal   int
	Year         int
	Notes        string
	CreatedAt    time.Time
}
