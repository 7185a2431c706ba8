// Package suite holds the bookable-unit aggregate: a suite with a fixed
// nightly rate and maximum guest capacity.
package suite

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/harborview-stays/service-reservations/internal/platform/apperrors"
)

// Suite is a bookable unit.
type Suite struct {
	id               uuid.UUID
	name             string
	description      string
	nightlyRateCents int64
	capacity         int
	active           bool
	createdAt        time.Time
	updatedAt        time.Time
}

// NewSuite creates an active suite after validating its fields.
func NewSuite(name, description string, nightlyRateCents int64, capacity int) (*Suite, error) {
	fields := make(map[string]string)
	if len(strings.TrimSpace(name)) < 2 {
		fields["name"] = "name must be at least 2 characters"
	}
	if nightlyRateCents < 0 {
		fields["nightly_rate_cents"] = "nightly rate cannot be negative"
	}
	if capacity < 1 {
		fields["capacity"] = "capacity must be at least 1"
	}
	if len(fields) > 0 {
		return nil, apperrors.NewFieldValidationError(fields)
	}

	now := time.Now().UTC()
	return &Suite{
		id:               uuid.New(),
		name:             strings.TrimSpace(name),
		description:      description,
		nightlyRateCents: nightlyRateCents,
		capacity:         capacity,
		active:           true,
		createdAt:        now,
		updatedAt:        now,
	}, nil
}

// Reconstruct rebuilds a Suite from persistence data (no validation).
func Reconstruct(
	id uuid.UUID,
	name, description string,
	nightlyRateCents int64,
	capacity int,
	active bool,
	createdAt, updatedAt time.Time,
) *Suite {
	return &Suite{
		id:               id,
		name:             name,
		description:      description,
		nightlyRateCents: nightlyRateCents,
		capacity:         capacity,
		active:           active,
		createdAt:        createdAt,
		updatedAt:        updatedAt,
	}
}

// ID returns the suite's unique identifier.
func (s *Suite) ID() uuid.UUID { return s.id }

// Name returns the suite name.
func (s *Suite) Name() string { return s.name }

// Description returns the suite description.
func (s *Suite) Description() string { return s.description }

// NightlyRateCents returns the fixed nightly rate in cents.
func (s *Suite) NightlyRateCents() int64 { return s.nightlyRateCents }

// Capacity returns the maximum guest count.
func (s *Suite) Capacity() int { return s.capacity }

// Active returns whether the suite is open for booking.
func (s *Suite) Active() bool { return s.active }

// CreatedAt returns the creation timestamp.
func (s *Suite) CreatedAt() time.Time { return s.createdAt }

// UpdatedAt returns the last-update timestamp.
func (s *Suite) UpdatedAt() time.Time { return s.updatedAt }

// UpdateDetails replaces the suite's editable fields after validation.
func (s *Suite) UpdateDetails(name, description string, nightlyRateCents int64, capacity int) error {
	fields := make(map[string]string)
	if len(strings.TrimSpace(name)) < 2 {
		fields["name"] = "name must be at least 2 characters"
	}
	if nightlyRateCents < 0 {
		fields["nightly_rate_cents"] = "nightly rate cannot be negative"
	}
	if capacity < 1 {
		fields["capacity"] = "capacity must be at least 1"
	}
	if len(fields) > 0 {
		return apperrors.NewFieldValidationError(fields)
	}

	s.name = strings.TrimSpace(name)
	s.description = description
	s.nightlyRateCents = nightlyRateCents
	s.capacity = capacity
	s.updatedAt = time.Now().UTC()
	return nil
}

// Deactivate closes the suite for new bookings without touching history.
func (s *Suite) Deactivate() {
	s.active = false
	s.updatedAt = time.Now().UTC()
}

// Activate reopens the suite for booking.
func (s *Suite) Activate() {
	s.active = true
	s.updatedAt = time.Now().UTC()
}
