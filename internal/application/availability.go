package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/harborview-stays/service-reservations/internal/domain/reservation"
	"github.com/harborview-stays/service-reservations/internal/domain/suite"
	"github.com/harborview-stays/service-reservations/internal/platform/apperrors"
)

// AvailabilityChecker decides whether a suite is free for a stay. It is an
// advisory, read-then-check pass: under concurrent creates the storage-level
// exclusion constraint remains the authoritative arbiter, and a loss there
// surfaces as a ConflictError from the repository.
type AvailabilityChecker struct {
	reservations reservation.Repository
	suites       suite.Repository
}

// NewAvailabilityChecker creates an AvailabilityChecker.
func NewAvailabilityChecker(reservations reservation.Repository, suites suite.Repository) *AvailabilityChecker {
	return &AvailabilityChecker{reservations: reservations, suites: suites}
}

// Check validates the requested stay against the suite's capacity and the
// blocking reservations on its ledger. excludeID skips a reservation's own
// row so edits do not conflict with themselves; pass uuid.Nil for creates.
// Returns the suite so callers can price the stay without a second lookup.
func (a *AvailabilityChecker) Check(
	ctx context.Context,
	suiteID uuid.UUID,
	checkIn, checkOut time.Time,
	guests int,
	excludeID uuid.UUID,
) (*suite.Suite, error) {
	st, err := a.suites.FindByID(ctx, suiteID)
	if err != nil {
		return nil, err
	}
	if !st.Active() {
		return nil, apperrors.NewUnavailableError("suite is not open for booking")
	}
	if guests > st.Capacity() {
		return nil, apperrors.NewValidationError(apperrors.CodeGuestCountExceeded,
			fmt.Sprintf("suite %s sleeps at most %d guests", st.Name(), st.Capacity()))
	}

	// Cancelled and completed stays never block availability.
	blocking, err := a.reservations.ListBySuite(ctx, suiteID,
		reservation.StatusCancelled, reservation.StatusCompleted)
	if err != nil {
		return nil, err
	}

	for _, r := range blocking {
		if r.ID() == excludeID {
			continue
		}
		if reservation.RangesOverlap(checkIn, checkOut, r.CheckIn(), r.CheckOut()) {
			return nil, apperrors.NewUnavailableError(
				fmt.Sprintf("suite is already booked between %s and %s",
					reservation.FormatStayDate(r.CheckIn()),
					reservation.FormatStayDate(r.CheckOut())))
		}
	}

	return st, nil
}

// IsAvailable is the pre-flight form used by the public availability
// endpoint: conflicts and capacity misses report false instead of an error.
// It may tolerate slightly stale reads.
func (a *AvailabilityChecker) IsAvailable(
	ctx context.Context,
	suiteID uuid.UUID,
	checkIn, checkOut time.Time,
	guests int,
) (bool, error) {
	_, err := a.Check(ctx, suiteID, checkIn, checkOut, guests, uuid.Nil)
	if err == nil {
		return true, nil
	}

	var unavailableErr *apperrors.UnavailableError
	var validationErr *apperrors.ValidationError
	if errors.As(err, &unavailableErr) || errors.As(err, &validationErr) {
		return false, nil
	}
	return false, err
}
