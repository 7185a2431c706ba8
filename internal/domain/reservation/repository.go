package reservation

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository defines the persistence contract for reservation aggregates.
// The store is the final arbiter for overlap conflicts: the application-level
// availability check is a pre-flight optimization, and a concurrent insert
// that violates the storage exclusion constraint surfaces as a ConflictError.
type Repository interface {
	// FindByID retrieves a reservation by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Reservation, error)

	// ListBySuite retrieves all reservations for a suite, excluding the given
	// statuses. Used by the availability pre-check with the non-blocking
	// statuses excluded.
	ListBySuite(ctx context.Context, suiteID uuid.UUID, excludeStatuses ...Status) ([]*Reservation, error)

	// ListAll streams the entire ledger, every status included. Feeds the
	// customer derivation fold.
	ListAll(ctx context.Context) ([]*Reservation, error)

	// ListPaged retrieves reservations newest-first with pagination (back office).
	ListPaged(ctx context.Context, page, limit int) ([]*Reservation, int64, error)

	// ListByCreator retrieves reservations created by a staff member with
	// pagination.
	ListByCreator(ctx context.Context, creatorID uuid.UUID, page, limit int) ([]*Reservation, int64, error)

	// ListCreatedBetween retrieves reservations created within [from, to),
	// newest-first. Used by reporting.
	ListCreatedBetween(ctx context.Context, from, to time.Time) ([]*Reservation, error)

	// CountByStatus returns reservation counts grouped by status.
	CountByStatus(ctx context.Context) (map[string]int64, error)

	// SumRevenueCents returns the summed total of all non-cancelled
	// reservations, optionally bounded by creation time ([from, to), zero
	// values meaning unbounded).
	SumRevenueCents(ctx context.Context, from, to time.Time) (int64, error)

	// Insert persists a new reservation.
	Insert(ctx context.Context, r *Reservation) error

	// Update persists changes to an existing reservation with optimistic
	// locking.
	Update(ctx context.Context, r *Reservation) error

	// UpdateStatus writes only the status column. Used by internal triggers
	// whose transition was already validated against the aggregate.
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error
}
