package reservation

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/harborview-stays/service-reservations/internal/platform/apperrors"
)

// GuestContact is the free-text contact info captured with a reservation.
// Validated, never normalized.
type GuestContact struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
}

// BillingAddress is the billing address captured with a reservation.
// Postal code is optional.
type BillingAddress struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code,omitempty"`
	Country    string `json:"country"`
}

// Reservation is the aggregate root for the booking domain and the sole
// source of truth: there is no separate customer table, and cancellation is a
// status, never a deletion.
type Reservation struct {
	id       uuid.UUID
	suiteID  uuid.UUID
	checkIn  time.Time
	checkOut time.Time
	contact  GuestContact
	guests   int
	address  BillingAddress

	totalCents int64
	currency   string

	status       Status
	cancelReason string
	cancelledAt  *time.Time
	notes        string

	// createdBy is nil for reservations created through the public flow.
	createdBy *uuid.UUID
	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// NewReservation creates a pending reservation, enforcing the creation-time
// invariants. The total amount is captured here and not recomputed later.
func NewReservation(
	suiteID uuid.UUID,
	checkIn, checkOut time.Time,
	contact GuestContact,
	guests int,
	address BillingAddress,
	totalCents int64,
	currency string,
	createdBy *uuid.UUID,
	notes string,
) (*Reservation, error) {
	if suiteID == uuid.Nil {
		return nil, apperrors.NewValidationError(apperrors.CodeInvalidFields, "suite is required")
	}
	if err := ValidateSearch(checkIn, checkOut, guests, time.Now()); err != nil {
		return nil, err
	}
	if fieldErrs := GuestInfoErrors(contact.FullName, contact.Email, contact.Phone); len(fieldErrs) > 0 {
		return nil, apperrors.NewFieldValidationError(fieldErrs)
	}
	if fieldErrs := BillingAddressErrors(address.Street, address.City, address.State, address.Country); len(fieldErrs) > 0 {
		return nil, apperrors.NewFieldValidationError(fieldErrs)
	}
	if totalCents < 0 {
		return nil, apperrors.NewValidationError(apperrors.CodeInvalidFields, "total amount cannot be negative")
	}

	now := time.Now().UTC()
	return &Reservation{
		id:         uuid.New(),
		suiteID:    suiteID,
		checkIn:    checkIn,
		checkOut:   checkOut,
		contact:    contact,
		guests:     guests,
		address:    address,
		totalCents: totalCents,
		currency:   currency,
		status:     StatusPending,
		createdBy:  createdBy,
		notes:      notes,
		version:    1,
		createdAt:  now,
		updatedAt:  now,
	}, nil
}

// Reconstruct rebuilds a Reservation from persistence data (no validation).
func Reconstruct(
	id uuid.UUID,
	suiteID uuid.UUID,
	checkIn, checkOut time.Time,
	contact GuestContact,
	guests int,
	address BillingAddress,
	totalCents int64,
	currency string,
	status Status,
	cancelReason string,
	cancelledAt *time.Time,
	notes string,
	createdBy *uuid.UUID,
	version int64,
	createdAt, updatedAt time.Time,
) *Reservation {
	return &Reservation{
		id:           id,
		suiteID:      suiteID,
		checkIn:      checkIn,
		checkOut:     checkOut,
		contact:      contact,
		guests:       guests,
		address:      address,
		totalCents:   totalCents,
		currency:     currency,
		status:       status,
		cancelReason: cancelReason,
		cancelledAt:  cancelledAt,
		notes:        notes,
		createdBy:    createdBy,
		version:      version,
		createdAt:    createdAt,
		updatedAt:    updatedAt,
	}
}

// --- Getters ---

// ID returns the reservation's unique identifier.
func (r *Reservation) ID() uuid.UUID { return r.id }

// SuiteID returns the id of the booked suite.
func (r *Reservation) SuiteID() uuid.UUID { return r.suiteID }

// CheckIn returns the check-in date.
func (r *Reservation) CheckIn() time.Time { return r.checkIn }

// CheckOut returns the check-out date (exclusive).
func (r *Reservation) CheckOut() time.Time { return r.checkOut }

// Contact returns the guest contact info.
func (r *Reservation) Contact() GuestContact { return r.contact }

// Guests returns the guest count.
func (r *Reservation) Guests() int { return r.guests }

// Address returns the billing address.
func (r *Reservation) Address() BillingAddress { return r.address }

// TotalCents returns the total amount in cents, captured at creation.
func (r *Reservation) TotalCents() int64 { return r.totalCents }

// Currency returns the currency code.
func (r *Reservation) Currency() string { return r.currency }

// Status returns the current lifecycle status.
func (r *Reservation) Status() Status { return r.status }

// CancelReason returns the cancellation reason, if cancelled.
func (r *Reservation) CancelReason() string { return r.cancelReason }

// CancelledAt returns the cancellation time, or nil.
func (r *Reservation) CancelledAt() *time.Time { return r.cancelledAt }

// Notes returns free-form operator notes.
func (r *Reservation) Notes() string { return r.notes }

// CreatedBy returns the creator's staff id, or nil for public reservations.
func (r *Reservation) CreatedBy() *uuid.UUID { return r.createdBy }

// Version returns the entity version for optimistic locking.
func (r *Reservation) Version() int64 { return r.version }

// CreatedAt returns the creation timestamp.
func (r *Reservation) CreatedAt() time.Time { return r.createdAt }

// UpdatedAt returns the last-update timestamp.
func (r *Reservation) UpdatedAt() time.Time { return r.updatedAt }

// --- Behavior ---

// Confirm transitions the reservation from pending to confirmed.
func (r *Reservation) Confirm() error {
	if !r.status.CanTransitionTo(StatusConfirmed) {
		return invalidTransition(r.status, StatusConfirmed)
	}
	r.status = StatusConfirmed
	r.updatedAt = time.Now().UTC()
	return nil
}

// Complete transitions the reservation from confirmed to completed.
func (r *Reservation) Complete() error {
	if !r.status.CanTransitionTo(StatusCompleted) {
		return invalidTransition(r.status, StatusCompleted)
	}
	r.status = StatusCompleted
	r.updatedAt = time.Now().UTC()
	return nil
}

// Cancel transitions the reservation to cancelled with a reason.
func (r *Reservation) Cancel(reason string) error {
	if !r.status.CanTransitionTo(StatusCancelled) {
		return invalidTransition(r.status, StatusCancelled)
	}
	now := time.Now().UTC()
	r.status = StatusCancelled
	r.cancelReason = reason
	r.cancelledAt = &now
	r.updatedAt = now
	return nil
}

// TransitionTo dispatches to the behavior method for the target status.
func (r *Reservation) TransitionTo(target Status, cancelReason string) error {
	switch target {
	case StatusConfirmed:
		return r.Confirm()
	case StatusCompleted:
		return r.Complete()
	case StatusCancelled:
		return r.Cancel(cancelReason)
	default:
		return invalidTransition(r.status, target)
	}
}

// ApplyStay changes the suite and stay interval with the freshly recomputed
// total. Only permitted before a terminal state.
func (r *Reservation) ApplyStay(suiteID uuid.UUID, checkIn, checkOut time.Time, totalCents int64) error {
	if err := r.ensureEditable(); err != nil {
		return err
	}
	r.suiteID = suiteID
	r.checkIn = checkIn
	r.checkOut = checkOut
	r.totalCents = totalCents
	r.updatedAt = time.Now().UTC()
	return nil
}

// ApplyGuestInfo updates guest contact and count. Only permitted before a
// terminal state.
func (r *Reservation) ApplyGuestInfo(contact GuestContact, guests int) error {
	if err := r.ensureEditable(); err != nil {
		return err
	}
	r.contact = contact
	r.guests = guests
	r.updatedAt = time.Now().UTC()
	return nil
}

// ApplyBillingAddress updates the billing address. Only permitted before a
// terminal state.
func (r *Reservation) ApplyBillingAddress(address BillingAddress) error {
	if err := r.ensureEditable(); err != nil {
		return err
	}
	r.address = address
	r.updatedAt = time.Now().UTC()
	return nil
}

// SetNotes replaces the operator notes.
func (r *Reservation) SetNotes(notes string) {
	r.notes = notes
	r.updatedAt = time.Now().UTC()
}

// IncrementVersion bumps the version for optimistic locking.
func (r *Reservation) IncrementVersion() {
	r.version++
	r.updatedAt = time.Now().UTC()
}

func (r *Reservation) ensureEditable() error {
	if r.status.IsTerminal() {
		return apperrors.NewValidationError(apperrors.CodeTerminalReservation,
			fmt.Sprintf("reservation is %s and can no longer be edited", r.status))
	}
	return nil
}

func invalidTransition(from, to Status) error {
	return apperrors.NewValidationError(apperrors.CodeInvalidTransition,
		fmt.Sprintf("cannot transition reservation from %s to %s", from, to))
}
