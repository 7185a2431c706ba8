package application

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/harborview-stays/service-reservations/internal/domain/access"
	"github.com/harborview-stays/service-reservations/internal/domain/suite"
)

// CreateSuiteRequest holds the data needed to register a suite.
type CreateSuiteRequest struct {
	Name             string `json:"name" binding:"required"`
	Description      string `json:"description"`
	NightlyRateCents int64  `json:"nightly_rate_cents" binding:"required"`
	Capacity         int    `json:"capacity" binding:"required"`
}

// UpdateSuiteRequest carries optional suite edits.
type UpdateSuiteRequest struct {
	Name             *string `json:"name"`
	Description      *string `json:"description"`
	NightlyRateCents *int64  `json:"nightly_rate_cents"`
	Capacity         *int    `json:"capacity"`
	Active           *bool   `json:"active"`
}

// SuiteDTO is the response representation of a suite.
type SuiteDTO struct {
	ID               uuid.UUID `json:"id"`
	Name             string    `json:"name"`
	Description      string    `json:"description,omitempty"`
	NightlyRateCents int64     `json:"nightly_rate_cents"`
	Capacity         int       `json:"capacity"`
	Active           bool      `json:"active"`
}

// SuiteService manages the suite catalog.
type SuiteService struct {
	repo   suite.Repository
	logger *zap.Logger
}

// NewSuiteService creates a SuiteService.
func NewSuiteService(repo suite.Repository, logger *zap.Logger) *SuiteService {
	return &SuiteService{repo: repo, logger: logger}
}

// Create registers a new suite.
func (s *SuiteService) Create(ctx context.Context, actor access.Actor, req CreateSuiteRequest) (*SuiteDTO, error) {
	if err := access.Authorize(actor, access.PermManageSuites, nil); err != nil {
		return nil, err
	}

	st, err := suite.NewSuite(req.Name, req.Description, req.NightlyRateCents, req.Capacity)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, st); err != nil {
		return nil, err
	}

	s.logger.Info("suite created",
		zap.String("suite_id", st.ID().String()),
		zap.String("name", st.Name()),
	)
	dto := toSuiteDTO(st)
	return &dto, nil
}

// Get returns a single suite. Public, used by the search flow.
func (s *SuiteService) Get(ctx context.Context, id uuid.UUID) (*SuiteDTO, error) {
	st, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := toSuiteDTO(st)
	return &dto, nil
}

// ListActive returns bookable suites. Public, used by the search flow.
func (s *SuiteService) ListActive(ctx context.Context) ([]SuiteDTO, error) {
	suites, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	return toSuiteDTOs(suites), nil
}

// ListAll returns every suite, including deactivated ones (back office).
func (s *SuiteService) ListAll(ctx context.Context, actor access.Actor) ([]SuiteDTO, error) {
	if err := access.Authorize(actor, access.PermManageSuites, nil); err != nil {
		return nil, err
	}
	suites, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return toSuiteDTOs(suites), nil
}

// Update edits a suite's details or toggles its availability for new
// bookings. Existing reservations keep the total captured at creation.
func (s *SuiteService) Update(ctx context.Context, actor access.Actor, id uuid.UUID, req UpdateSuiteRequest) (*SuiteDTO, error) {
	if err := access.Authorize(actor, access.PermManageSuites, nil); err != nil {
		return nil, err
	}

	st, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	name := st.Name()
	if req.Name != nil {
		name = *req.Name
	}
	description := st.Description()
	if req.Description != nil {
		description = *req.Description
	}
	rate := st.NightlyRateCents()
	if req.NightlyRateCents != nil {
		rate = *req.NightlyRateCents
	}
	capacity := st.Capacity()
	if req.Capacity != nil {
		capacity = *req.Capacity
	}
	if err := st.UpdateDetails(name, description, rate, capacity); err != nil {
		return nil, err
	}
	if req.Active != nil {
		if *req.Active {
			st.Activate()
		} else {
			st.Deactivate()
		}
	}

	if err := s.repo.Update(ctx, st); err != nil {
		return nil, err
	}
	dto := toSuiteDTO(st)
	return &dto, nil
}

// Delete removes a suite from the catalog. Restricted to the admin tier.
func (s *SuiteService) Delete(ctx context.Context, actor access.Actor, id uuid.UUID) error {
	if err := access.Authorize(actor, access.PermDeleteSuite, nil); err != nil {
		return err
	}
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func toSuiteDTO(st *suite.Suite) SuiteDTO {
	return SuiteDTO{
		ID:               st.ID(),
		Name:             st.Name(),
		Description:      st.Description(),
		NightlyRateCents: st.NightlyRateCents(),
		Capacity:         st.Capacity(),
		Active:           st.Active(),
	}
}

func toSuiteDTOs(suites []*suite.Suite) []SuiteDTO {
	dtos := make([]SuiteDTO, len(suites))
	for i, st := range suites {
		dtos[i] = toSuiteDTO(st)
	}
	return dtos
}
