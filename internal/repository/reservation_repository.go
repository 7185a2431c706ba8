// Package repository provides the GORM-backed persistence layer.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/harborview-stays/service-reservations/internal/domain/reservation"
	"github.com/harborview-stays/service-reservations/internal/platform/apperrors"
)

// Postgres error codes surfaced by the reservations table constraints.
const (
	pgExclusionViolation = "23P01"
	overlapConstraint    = "reservations_no_overlap"
)

// ReservationModel is the GORM model for the reservations table. The overlap
// exclusion constraint on (suite_id, daterange(check_in, check_out)) is the
// final arbiter under concurrency; application checks are advisory.
type ReservationModel struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey"`
	SuiteID        uuid.UUID       `gorm:"type:uuid;index;not null"`
	CheckIn        time.Time       `gorm:"type:date;not null"`
	CheckOut       time.Time       `gorm:"type:date;not null"`
	Guests         int             `gorm:"not null"`
	GuestContact   json.RawMessage `gorm:"type:jsonb;not null"`
	BillingAddress json.RawMessage `gorm:"type:jsonb;not null"`
	TotalCents     int64           `gorm:"not null"`
	Currency       string          `gorm:"not null;size:3;default:'USD'"`
	Status         string          `gorm:"not null;size:20;index"`
	CancelReason   string          `gorm:"size:500"`
	CancelledAt    *time.Time      `gorm:""`
	Notes          string          `gorm:"size:1000"`
	CreatedBy      *uuid.UUID      `gorm:"type:uuid;index"`
	Version        int64           `gorm:"not null;default:1"`
	CreatedAt      time.Time       `gorm:"not null"`
	UpdatedAt      time.Time       `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (ReservationModel) TableName() string {
	return "reservations"
}

// GormReservationRepository is the GORM-based implementation of
// reservation.Repository.
type GormReservationRepository struct {
	db *gorm.DB
}

// NewGormReservationRepository creates a new GormReservationRepository.
func NewGormReservationRepository(db *gorm.DB) *GormReservationRepository {
	return &GormReservationRepository{db: db}
}

// FindByID retrieves a reservation by its unique identifier.
func (r *GormReservationRepository) FindByID(ctx context.Context, id uuid.UUID) (*reservation.Reservation, error) {
	var model ReservationModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("Reservation", id.String())
		}
		return nil, fmt.Errorf("failed to find reservation by ID: %w", err)
	}
	return toDomainReservation(&model)
}

// ListBySuite retrieves all reservations for a suite, excluding the given
// statuses.
func (r *GormReservationRepository) ListBySuite(ctx context.Context, suiteID uuid.UUID, excludeStatuses ...reservation.Status) ([]*reservation.Reservation, error) {
	query := r.db.WithContext(ctx).Where("suite_id = ?", suiteID)
	if len(excludeStatuses) > 0 {
		statuses := make([]string, len(excludeStatuses))
		for i, st := range excludeStatuses {
			statuses[i] = string(st)
		}
		query = query.Where("status NOT IN ?", statuses)
	}

	var models []ReservationModel
	if err := query.Order("check_in ASC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list suite reservations: %w", err)
	}
	return toDomainReservations(models)
}

// ListAll streams the entire ledger, every status included.
func (r *GormReservationRepository) ListAll(ctx context.Context) ([]*reservation.Reservation, error) {
	var models []ReservationModel
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list reservations: %w", err)
	}
	return toDomainReservations(models)
}

// ListPaged retrieves reservations newest-first with pagination.
func (r *GormReservationRepository) ListPaged(ctx context.Context, page, limit int) ([]*reservation.Reservation, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&ReservationModel{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count reservations: %w", err)
	}

	var models []ReservationModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list reservations: %w", err)
	}

	reservations, err := toDomainReservations(models)
	if err != nil {
		return nil, 0, err
	}
	return reservations, total, nil
}

// ListByCreator retrieves reservations created by a staff member with
// pagination.
func (r *GormReservationRepository) ListByCreator(ctx context.Context, creatorID uuid.UUID, page, limit int) ([]*reservation.Reservation, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&ReservationModel{}).Where("created_by = ?", creatorID).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count creator reservations: %w", err)
	}

	var models []ReservationModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Where("created_by = ?", creatorID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list creator reservations: %w", err)
	}

	reservations, err := toDomainReservations(models)
	if err != nil {
		return nil, 0, err
	}
	return reservations, total, nil
}

// ListCreatedBetween retrieves reservations created within [from, to),
// newest-first.
func (r *GormReservationRepository) ListCreatedBetween(ctx context.Context, from, to time.Time) ([]*reservation.Reservation, error) {
	var models []ReservationModel
	if err := r.db.WithContext(ctx).
		Where("created_at >= ? AND created_at < ?", from, to).
		Order("created_at DESC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list reservations by period: %w", err)
	}
	return toDomainReservations(models)
}

// CountByStatus returns reservation counts grouped by status.
func (r *GormReservationRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	type statusCount struct {
		Status string
		Count  int64
	}
	var results []statusCount
	if err := r.db.WithContext(ctx).Model(&ReservationModel{}).
		Select("status, count(*) as count").
		Group("status").
		Find(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to count by status: %w", err)
	}

	counts := make(map[string]int64)
	for _, sc := range results {
		counts[sc.Status] = sc.Count
	}
	return counts, nil
}

// SumRevenueCents returns the summed total of all non-cancelled reservations,
// optionally bounded by creation time.
func (r *GormReservationRepository) SumRevenueCents(ctx context.Context, from, to time.Time) (int64, error) {
	query := r.db.WithContext(ctx).Model(&ReservationModel{}).
		Where("status <> ?", string(reservation.StatusCancelled))
	if !from.IsZero() {
		query = query.Where("created_at >= ?", from)
	}
	if !to.IsZero() {
		query = query.Where("created_at < ?", to)
	}

	var sum *int64
	if err := query.Select("SUM(total_cents)").Scan(&sum).Error; err != nil {
		return 0, fmt.Errorf("failed to sum revenue: %w", err)
	}
	if sum == nil {
		return 0, nil
	}
	return *sum, nil
}

// Insert persists a new reservation. An exclusion constraint violation means
// a concurrent insert won the same dates and maps to a ConflictError.
func (r *GormReservationRepository) Insert(ctx context.Context, res *reservation.Reservation) error {
	model, err := toReservationModel(res)
	if err != nil {
		return fmt.Errorf("failed to convert reservation to model: %w", err)
	}

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if isOverlapViolation(err) {
			return apperrors.NewConflictError("suite was booked for these dates by a concurrent request")
		}
		return fmt.Errorf("failed to insert reservation: %w", err)
	}
	return nil
}

// Update persists changes to an existing reservation with optimistic locking.
func (r *GormReservationRepository) Update(ctx context.Context, res *reservation.Reservation) error {
	model, err := toReservationModel(res)
	if err != nil {
		return fmt.Errorf("failed to convert reservation to model: %w", err)
	}

	// Only update if the version matches (current version - 1 since
	// IncrementVersion was called).
	expectedVersion := res.Version() - 1
	result := r.db.WithContext(ctx).
		Model(&ReservationModel{}).
		Where("id = ? AND version = ?", model.ID, expectedVersion).
		Updates(map[string]interface{}{
			"suite_id":        model.SuiteID,
			"check_in":        model.CheckIn,
			"check_out":       model.CheckOut,
			"guests":          model.Guests,
			"guest_contact":   model.GuestContact,
			"billing_address": model.BillingAddress,
			"total_cents":     model.TotalCents,
			"currency":        model.Currency,
			"status":          model.Status,
			"cancel_reason":   model.CancelReason,
			"cancelled_at":    model.CancelledAt,
			"notes":           model.Notes,
			"version":         model.Version,
			"updated_at":      model.UpdatedAt,
		})

	if result.Error != nil {
		if isOverlapViolation(result.Error) {
			return apperrors.NewConflictError("suite was booked for these dates by a concurrent request")
		}
		return fmt.Errorf("failed to update reservation: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NewConflictError("reservation was modified by another transaction")
	}
	return nil
}

// UpdateStatus writes only the status column.
func (r *GormReservationRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status reservation.Status) error {
	updates := map[string]interface{}{
		"status":     string(status),
		"updated_at": time.Now().UTC(),
		"version":    gorm.Expr("version + 1"),
	}
	result := r.db.WithContext(ctx).
		Model(&ReservationModel{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update reservation status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NewNotFoundError("Reservation", id.String())
	}
	return nil
}

func isOverlapViolation(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == pgExclusionViolation && pgErr.ConstraintName == overlapConstraint
}

// --- Conversion Helpers ---

func toReservationModel(res *reservation.Reservation) (*ReservationModel, error) {
	contactJSON, err := json.Marshal(res.Contact())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal guest contact: %w", err)
	}
	addressJSON, err := json.Marshal(res.Address())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal billing address: %w", err)
	}

	return &ReservationModel{
		ID:             res.ID(),
		SuiteID:        res.SuiteID(),
		CheckIn:        res.CheckIn(),
		CheckOut:       res.CheckOut(),
		Guests:         res.Guests(),
		GuestContact:   contactJSON,
		BillingAddress: addressJSON,
		TotalCents:     res.TotalCents(),
		Currency:       res.Currency(),
		Status:         string(res.Status()),
		CancelReason:   res.CancelReason(),
		CancelledAt:    res.CancelledAt(),
		Notes:          res.Notes(),
		CreatedBy:      res.CreatedBy(),
		Version:        res.Version(),
		CreatedAt:      res.CreatedAt(),
		UpdatedAt:      res.UpdatedAt(),
	}, nil
}

func toDomainReservation(model *ReservationModel) (*reservation.Reservation, error) {
	var contact reservation.GuestContact
	if err := json.Unmarshal(model.GuestContact, &contact); err != nil {
		return nil, fmt.Errorf("failed to unmarshal guest contact: %w", err)
	}
	var address reservation.BillingAddress
	if err := json.Unmarshal(model.BillingAddress, &address); err != nil {
		return nil, fmt.Errorf("failed to unmarshal billing address: %w", err)
	}

	return reservation.Reconstruct(
		model.ID,
		model.SuiteID,
		model.CheckIn.UTC(),
		model.CheckOut.UTC(),
		contact,
		model.Guests,
		address,
		model.TotalCents,
		model.Currency,
		reservation.Status(model.Status),
		model.CancelReason,
		model.CancelledAt,
		model.Notes,
		model.CreatedBy,
		model.Version,
		model.CreatedAt,
		model.UpdatedAt,
	), nil
}

func toDomainReservations(models []ReservationModel) ([]*reservation.Reservation, error) {
	reservations := make([]*reservation.Reservation, len(models))
	for i, m := range models {
		res, err := toDomainReservation(&m)
		if err != nil {
			return nil, err
		}
		reservations[i] = res
	}
	return reservations, nil
}
