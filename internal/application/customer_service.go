package application

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/harborview-stays/service-reservations/internal/domain/access"
	"github.com/harborview-stays/service-reservations/internal/domain/customer"
	"github.com/harborview-stays/service-reservations/internal/domain/reservation"
)

// CustomerService exposes the derived customer registry. There is no
// customers table: the registry is recomputed from the reservation ledger on
// every call, so it can never drift from the bookings.
type CustomerService struct {
	reservations reservation.Repository
	logger       *zap.Logger
}

// NewCustomerService creates a CustomerService.
func NewCustomerService(reservations reservation.Repository, logger *zap.Logger) *CustomerService {
	return &CustomerService{reservations: reservations, logger: logger}
}

// List derives the customer registry from the full reservation ledger.
func (s *CustomerService) List(ctx context.Context, actor access.Actor) ([]customer.Customer, error) {
	if err := access.Authorize(actor, access.PermViewCustomers, nil); err != nil {
		return nil, err
	}

	ledger, err := s.reservations.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	customers := customer.Derive(ledger, time.Now())
	s.logger.Debug("customer registry derived",
		zap.Int("reservations", len(ledger)),
		zap.Int("customers", len(customers)),
	)
	return customers, nil
}
