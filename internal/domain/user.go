package domain

import "time"

type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Phone        string
	Role         string
	CreatedAt    time.Time
}

// Principal is the authenticated caller, resolved once per request at
// the transport boundary. The services only ever see this value and
// never read identity from ambient state.
type Principal struct {
	UserID string
	Role   string
}
