package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/harborview-stays/service-reservations/internal/domain/suite"
	"github.com/harborview-stays/service-reservations/internal/platform/apperrors"
)

const pgUniqueViolation = "23505"

// SuiteModel is the GORM model for the suites table.
type SuiteModel struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name             string    `gorm:"uniqueIndex;not null;size:120"`
	Description      string    `gorm:"size:1000"`
	NightlyRateCents int64     `gorm:"not null"`
	Capacity         int       `gorm:"not null"`
	Active           bool      `gorm:"not null;default:true"`
	CreatedAt        time.Time `gorm:"not null"`
	UpdatedAt        time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (SuiteModel) TableName() string {
	return "suites"
}

// GormSuiteRepository is the GORM-based implementation of suite.Repository.
type GormSuiteRepository struct {
	db *gorm.DB
}

// NewGormSuiteRepository creates a new GormSuiteRepository.
func NewGormSuiteRepository(db *gorm.DB) *GormSuiteRepository {
	return &GormSuiteRepository{db: db}
}

// FindByID retrieves a suite by its unique identifier.
func (r *GormSuiteRepository) FindByID(ctx context.Context, id uuid.UUID) (*suite.Suite, error) {
	var model SuiteModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("Suite", id.String())
		}
		return nil, fmt.Errorf("failed to find suite by ID: %w", err)
	}
	return toDomainSuite(&model), nil
}

// ListActive retrieves all suites open for booking, ordered by name.
func (r *GormSuiteRepository) ListActive(ctx context.Context) ([]*suite.Suite, error) {
	var models []SuiteModel
	if err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("name ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list active suites: %w", err)
	}
	return toDomainSuites(models), nil
}

// ListAll retrieves every suite including deactivated ones.
func (r *GormSuiteRepository) ListAll(ctx context.Context) ([]*suite.Suite, error) {
	var models []SuiteModel
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list suites: %w", err)
	}
	return toDomainSuites(models), nil
}

// Save persists a new suite.
func (r *GormSuiteRepository) Save(ctx context.Context, s *suite.Suite) error {
	if err := r.db.WithContext(ctx).Create(toSuiteModel(s)).Error; err != nil {
		if isUniqueViolation(err) {
			return apperrors.NewConflictError(fmt.Sprintf("suite %q already exists", s.Name()))
		}
		return fmt.Errorf("failed to save suite: %w", err)
	}
	return nil
}

// Update persists changes to an existing suite.
func (r *GormSuiteRepository) Update(ctx context.Context, s *suite.Suite) error {
	model := toSuiteModel(s)
	result := r.db.WithContext(ctx).
		Model(&SuiteModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]interface{}{
			"name":               model.Name,
			"description":        model.Description,
			"nightly_rate_cents": model.NightlyRateCents,
			"capacity":           model.Capacity,
			"active":             model.Active,
			"updated_at":         model.UpdatedAt,
		})
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return apperrors.NewConflictError(fmt.Sprintf("suite %q already exists", s.Name()))
		}
		return fmt.Errorf("failed to update suite: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NewNotFoundError("Suite", model.ID.String())
	}
	return nil
}

// Delete removes a suite permanently. A foreign key violation from referenced
// reservations surfaces as a conflict.
func (r *GormSuiteRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&SuiteModel{}, "id = ?", id)
	if result.Error != nil {
		var pgErr *pgconn.PgError
		if errors.As(result.Error, &pgErr) && pgErr.Code == "23503" {
			return apperrors.NewConflictError("suite has reservations and cannot be deleted")
		}
		return fmt.Errorf("failed to delete suite: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NewNotFoundError("Suite", id.String())
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

func toSuiteModel(s *suite.Suite) *SuiteModel {
	return &SuiteModel{
		ID:               s.ID(),
		Name:             s.Name(),
		Description:      s.Description(),
		NightlyRateCents: s.NightlyRateCents(),
		Capacity:         s.Capacity(),
		Active:           s.Active(),
		CreatedAt:        s.CreatedAt(),
		UpdatedAt:        s.UpdatedAt(),
	}
}

func toDomainSuite(model *SuiteModel) *suite.Suite {
	return suite.Reconstruct(
		model.ID,
		model.Name,
		model.Description,
		model.NightlyRateCents,
		model.Capacity,
		model.Active,
		model.CreatedAt,
		model.UpdatedAt,
	)
}

func toDomainSuites(models []SuiteModel) []*suite.Suite {
	suites := make([]*suite.Suite, len(models))
	for i, m := range models {
		suites[i] = toDomainSuite(&m)
	}
	return suites
}
