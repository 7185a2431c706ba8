package suite

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the persistence contract for suites.
type Repository interface {
	// FindByID retrieves a suite by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Suite, error)

	// ListActive retrieves all suites open for booking, ordered by name.
	ListActive(ctx context.Context) ([]*Suite, error)

	// ListAll retrieves every suite including deactivated ones (back office).
	ListAll(ctx context.Context) ([]*Suite, error)

	// Save persists a new suite.
	Save(ctx context.Context, s *Suite) error

	// Update persists changes to an existing suite.
	Update(ctx context.Context, s *Suite) error

	// Delete removes a suite permanently. Fails if reservations reference it.
	Delete(ctx context.Context, id uuid.UUID) error
}
