// Package events defines the topics and payloads the service produces and
// consumes, plus the payment-event consumer.
package events

import (
	"time"

	"github.com/google/uuid"
)

// Topics.
const (
	TopicReservationEvents = "reservation.events"
	TopicPaymentEvents     = "payment.events"
)

// Event types.
const (
	ReservationRequested = "reservation.requested"
	ReservationConfirmed = "reservation.confirmed"
	ReservationCancelled = "reservation.cancelled"
	ReservationCompleted = "reservation.completed"
	PaymentCaptured      = "payment.captured"
)

// ReservationRequestedEvent is published after a pending reservation is
// persisted. Downstream collaborators (confirmation email, payment capture)
// consume it; the service's contract ends at the persisted row.
type ReservationRequestedEvent struct {
	ReservationID uuid.UUID  `json:"reservation_id"`
	SuiteID       uuid.UUID  `json:"suite_id"`
	CheckIn       string     `json:"check_in"`
	CheckOut      string     `json:"check_out"`
	Guests        int        `json:"guests"`
	GuestEmail    string     `json:"guest_email"`
	TotalCents    int64      `json:"total_cents"`
	Currency      string     `json:"currency"`
	CreatedBy     *uuid.UUID `json:"created_by,omitempty"`
	OccurredAt    time.Time  `json:"occurred_at"`
}

// ReservationStatusChangedEvent is published after a successful status
// transition, under the type matching the new status.
type ReservationStatusChangedEvent struct {
	ReservationID uuid.UUID `json:"reservation_id"`
	SuiteID       uuid.UUID `json:"suite_id"`
	Status        string    `json:"status"`
	GuestEmail    string    `json:"guest_email"`
	Reason        string    `json:"reason,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// PaymentCapturedEvent arrives from the payment collaborator once a capture
// for a pending reservation succeeds.
type PaymentCapturedEvent struct {
	PaymentID     uuid.UUID `json:"payment_id"`
	ReservationID uuid.UUID `json:"reservation_id"`
	AmountCents   int64     `json:"amount_cents"`
	Currency      string    `json:"currency"`
	OccurredAt    time.Time `json:"occurred_at"`
}
