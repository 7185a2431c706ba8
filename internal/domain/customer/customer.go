// Package customer derives the deduplicated customer registry from the
// reservation ledger. There is no stored customer row: every read folds the
// full ledger into aggregates keyed by a cascading identity key.
package customer

import "time"

// Status classifies a derived customer's lifecycle.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
	StatusVIP      Status = "vip"
)

// Classification thresholds. VIP takes precedence over inactive.
const (
	// VIPSpendThresholdCents marks a customer VIP once non-cancelled spend
	// reaches it.
	VIPSpendThresholdCents int64 = 300_000

	// VIPBookingThreshold marks a customer VIP once non-cancelled bookings
	// reach it.
	VIPBookingThreshold = 5

	// InactivityWindowDays is how long after the last activity a non-VIP
	// customer is considered inactive.
	InactivityWindowDays = 180
)

// Customer is a derived aggregate identity, recomputed in full from the
// ledger on every read. It has no independent lifecycle.
type Customer struct {
	Key             string    `json:"key"`
	FirstName       string    `json:"first_name"`
	LastName        string    `json:"last_name"`
	Email           string    `json:"email,omitempty"`
	Phone           string    `json:"phone,omitempty"`
	Street          string    `json:"street,omitempty"`
	City            string    `json:"city,omitempty"`
	Country         string    `json:"country,omitempty"`
	TotalBookings   int       `json:"total_bookings"`
	TotalSpentCents int64     `json:"total_spent_cents"`
	JoinedAt        time.Time `json:"joined_at"`
	LastActivity    time.Time `json:"last_activity"`
	Status          Status    `json:"status"`
}
