// Package application orchestrates the reservation use cases over the domain
// packages, the repositories and the event producer.
package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/harborview-stays/service-reservations/internal/domain/access"
	"github.com/harborview-stays/service-reservations/internal/domain/reservation"
	"github.com/harborview-stays/service-reservations/internal/domain/suite"
	"github.com/harborview-stays/service-reservations/internal/events"
	"github.com/harborview-stays/service-reservations/internal/platform/apperrors"
	"github.com/harborview-stays/service-reservations/internal/platform/kafka"
)

const (
	eventSource = "service-reservations"
	currency    = "USD"
)

// EventPublisher is the producer seam for downstream triggers. Satisfied by
// the kafka producer; publish failures are logged, never rolled back.
type EventPublisher interface {
	PublishEvent(ctx context.Context, topic string, event kafka.CloudEvent) error
}

// PaginatedResult wraps a page of items with paging metadata.
type PaginatedResult[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
}

// CreateReservationRequest holds the data needed to create a reservation.
// Dates are ISO calendar dates; check-out is exclusive.
type CreateReservationRequest struct {
	SuiteID        uuid.UUID                  `json:"suite_id" binding:"required"`
	CheckIn        string                     `json:"check_in" binding:"required"`
	CheckOut       string                     `json:"check_out" binding:"required"`
	Guests         int                        `json:"guests" binding:"required"`
	GuestName      string                     `json:"guest_name" binding:"required"`
	GuestEmail     string                     `json:"guest_email" binding:"required"`
	GuestPhone     string                     `json:"guest_phone" binding:"required"`
	BillingAddress reservation.BillingAddress `json:"billing_address" binding:"required"`
	Notes          string                     `json:"notes"`
}

// UpdateReservationRequest carries the optional fields an operator may edit
// before a reservation reaches a terminal state.
type UpdateReservationRequest struct {
	SuiteID        *uuid.UUID                  `json:"suite_id"`
	CheckIn        *string                     `json:"check_in"`
	CheckOut       *string                     `json:"check_out"`
	Guests         *int                        `json:"guests"`
	GuestName      *string                     `json:"guest_name"`
	GuestEmail     *string                     `json:"guest_email"`
	GuestPhone     *string                     `json:"guest_phone"`
	BillingAddress *reservation.BillingAddress `json:"billing_address"`
	Notes          *string                     `json:"notes"`
}

// ReservationDTO is the response representation of a reservation.
type ReservationDTO struct {
	ID             uuid.UUID                  `json:"id"`
	SuiteID        uuid.UUID                  `json:"suite_id"`
	CheckIn        string                     `json:"check_in"`
	CheckOut       string                     `json:"check_out"`
	Nights         int                        `json:"nights"`
	Guests         int                        `json:"guests"`
	GuestName      string                     `json:"guest_name"`
	GuestEmail     string                     `json:"guest_email"`
	GuestPhone     string                     `json:"guest_phone"`
	BillingAddress reservation.BillingAddress `json:"billing_address"`
	TotalCents     int64                      `json:"total_cents"`
	Currency       string                     `json:"currency"`
	Status         string                     `json:"status"`
	CancelReason   string                     `json:"cancel_reason,omitempty"`
	CancelledAt    *time.Time                 `json:"cancelled_at,omitempty"`
	Notes          string                     `json:"notes,omitempty"`
	CreatedBy      *uuid.UUID                 `json:"created_by,omitempty"`
	Version        int64                      `json:"version"`
	CreatedAt      time.Time                  `json:"created_at"`
	UpdatedAt      time.Time                  `json:"updated_at"`
}

// ReservationService is the application service orchestrating the booking
// lifecycle: create, edit, status transitions and queries. Authorization is
// re-evaluated here on every call; a client-computed "can approve" flag is
// never trusted.
type ReservationService struct {
	repo         reservation.Repository
	suites       suite.Repository
	availability *AvailabilityChecker
	producer     EventPublisher
	logger       *zap.Logger
}

// NewReservationService creates a ReservationService.
func NewReservationService(
	repo reservation.Repository,
	suites suite.Repository,
	availability *AvailabilityChecker,
	producer EventPublisher,
	logger *zap.Logger,
) *ReservationService {
	return &ReservationService{
		repo:         repo,
		suites:       suites,
		availability: availability,
		producer:     producer,
		logger:       logger,
	}
}

// Create validates and persists a new pending reservation. The total is
// nightly rate times nights, captured at creation time. actor is nil for the
// public flow, in which case the reservation has no creator. Email and
// payment capture are downstream consumers of the published event, not part
// of this operation.
func (s *ReservationService) Create(ctx context.Context, actor *access.Actor, req CreateReservationRequest) (*ReservationDTO, error) {
	if actor != nil {
		if err := access.Authorize(*actor, access.PermCreateReservation, nil); err != nil {
			return nil, err
		}
	}

	checkIn, checkOut, err := parseStayRange(req.CheckIn, req.CheckOut)
	if err != nil {
		return nil, err
	}
	if err := reservation.ValidateSearch(checkIn, checkOut, req.Guests, time.Now()); err != nil {
		return nil, err
	}

	fieldErrs := reservation.GuestInfoErrors(req.GuestName, req.GuestEmail, req.GuestPhone)
	for k, v := range reservation.BillingAddressErrors(
		req.BillingAddress.Street, req.BillingAddress.City,
		req.BillingAddress.State, req.BillingAddress.Country) {
		fieldErrs[k] = v
	}
	if len(fieldErrs) > 0 {
		return nil, apperrors.NewFieldValidationError(fieldErrs)
	}

	st, err := s.availability.Check(ctx, req.SuiteID, checkIn, checkOut, req.Guests, uuid.Nil)
	if err != nil {
		return nil, err
	}

	nights := reservation.Nights(checkIn, checkOut)
	totalCents := st.NightlyRateCents() * int64(nights)

	var createdBy *uuid.UUID
	if actor != nil {
		id := actor.ID
		createdBy = &id
	}

	res, err := reservation.NewReservation(
		req.SuiteID,
		checkIn, checkOut,
		reservation.GuestContact{
			FullName: req.GuestName,
			Email:    req.GuestEmail,
			Phone:    req.GuestPhone,
		},
		req.Guests,
		req.BillingAddress,
		totalCents,
		currency,
		createdBy,
		req.Notes,
	)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Insert(ctx, res); err != nil {
		return nil, err
	}

	s.publishRequested(ctx, res)

	dto := toReservationDTO(res)
	return &dto, nil
}

// UpdateDetails edits a reservation before it reaches a terminal state. When
// the dates or suite change, the overlap check is re-run excluding the
// reservation's own row, and the total is recomputed from the target suite's
// rate.
func (s *ReservationService) UpdateDetails(ctx context.Context, actor access.Actor, id uuid.UUID, req UpdateReservationRequest) (*ReservationDTO, error) {
	res, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := access.Authorize(actor, access.PermEditReservation, res); err != nil {
		return nil, err
	}
	if res.Status().IsTerminal() {
		return nil, apperrors.NewValidationError(apperrors.CodeTerminalReservation,
			fmt.Sprintf("reservation is %s and can no longer be edited", res.Status()))
	}

	suiteID := res.SuiteID()
	if req.SuiteID != nil {
		suiteID = *req.SuiteID
	}
	checkIn := res.CheckIn()
	if req.CheckIn != nil {
		if checkIn, err = reservation.ParseStayDate(*req.CheckIn); err != nil {
			return nil, apperrors.NewValidationError(apperrors.CodeInvalidDateRange,
				"check-in date is not a valid calendar date")
		}
	}
	checkOut := res.CheckOut()
	if req.CheckOut != nil {
		if checkOut, err = reservation.ParseStayDate(*req.CheckOut); err != nil {
			return nil, apperrors.NewValidationError(apperrors.CodeInvalidDateRange,
				"check-out date is not a valid calendar date")
		}
	}
	guests := res.Guests()
	if req.Guests != nil {
		guests = *req.Guests
	}

	stayChanged := suiteID != res.SuiteID() ||
		!checkIn.Equal(res.CheckIn()) || !checkOut.Equal(res.CheckOut())

	if stayChanged && !checkOut.After(checkIn) {
		return nil, apperrors.NewValidationError(apperrors.CodeInvertedRange,
			"check-out date must be after check-in date")
	}
	if guests < 1 {
		return nil, apperrors.NewValidationError(apperrors.CodeInvalidGuestCount,
			"at least one guest is required")
	}

	if stayChanged || guests != res.Guests() {
		// Self-overlap must not count: the check excludes this reservation.
		st, err := s.availability.Check(ctx, suiteID, checkIn, checkOut, guests, res.ID())
		if err != nil {
			return nil, err
		}
		if stayChanged {
			totalCents := st.NightlyRateCents() * int64(reservation.Nights(checkIn, checkOut))
			if err := res.ApplyStay(suiteID, checkIn, checkOut, totalCents); err != nil {
				return nil, err
			}
		}
	}

	contact := res.Contact()
	if req.GuestName != nil {
		contact.FullName = *req.GuestName
	}
	if req.GuestEmail != nil {
		contact.Email = *req.GuestEmail
	}
	if req.GuestPhone != nil {
		contact.Phone = *req.GuestPhone
	}
	if fieldErrs := reservation.GuestInfoErrors(contact.FullName, contact.Email, contact.Phone); len(fieldErrs) > 0 {
		return nil, apperrors.NewFieldValidationError(fieldErrs)
	}
	if err := res.ApplyGuestInfo(contact, guests); err != nil {
		return nil, err
	}

	if req.BillingAddress != nil {
		addr := *req.BillingAddress
		if fieldErrs := reservation.BillingAddressErrors(addr.Street, addr.City, addr.State, addr.Country); len(fieldErrs) > 0 {
			return nil, apperrors.NewFieldValidationError(fieldErrs)
		}
		if err := res.ApplyBillingAddress(addr); err != nil {
			return nil, err
		}
	}
	if req.Notes != nil {
		res.SetNotes(*req.Notes)
	}

	res.IncrementVersion()
	if err := s.repo.Update(ctx, res); err != nil {
		return nil, err
	}

	dto := toReservationDTO(res)
	return &dto, nil
}

// TransitionStatus moves a reservation through its state machine. Approval
// requires edit rights and either a blanket-approval role or authorship of
// the reservation; cancellation requires the stricter cancel tier.
func (s *ReservationService) TransitionStatus(ctx context.Context, actor access.Actor, id uuid.UUID, next reservation.Status, reason string) (*ReservationDTO, error) {
	res, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var perm access.Permission
	switch next {
	case reservation.StatusConfirmed:
		perm = access.PermApproveReservation
	case reservation.StatusCancelled:
		perm = access.PermCancelReservation
	case reservation.StatusCompleted:
		perm = access.PermCompleteReservation
	default:
		return nil, apperrors.NewValidationError(apperrors.CodeInvalidTransition,
			fmt.Sprintf("unknown target status: %s", next))
	}
	if err := access.Authorize(actor, perm, res); err != nil {
		return nil, err
	}

	if err := res.TransitionTo(next, reason); err != nil {
		return nil, err
	}

	res.IncrementVersion()
	if err := s.repo.Update(ctx, res); err != nil {
		return nil, err
	}

	s.publishStatusChanged(ctx, res, reason)

	dto := toReservationDTO(res)
	return &dto, nil
}

// ConfirmOnPaymentCaptured confirms a pending reservation in response to a
// payment capture event. The transition is validated against the aggregate;
// internal trigger, no actor involved.
func (s *ReservationService) ConfirmOnPaymentCaptured(ctx context.Context, reservationID, paymentID uuid.UUID) error {
	res, err := s.repo.FindByID(ctx, reservationID)
	if err != nil {
		return err
	}

	if res.Status() == reservation.StatusConfirmed {
		// Duplicate capture event; nothing to do.
		return nil
	}
	if err := res.Confirm(); err != nil {
		return err
	}

	if err := s.repo.UpdateStatus(ctx, reservationID, reservation.StatusConfirmed); err != nil {
		return err
	}

	s.logger.Info("reservation confirmed on payment capture",
		zap.String("reservation_id", reservationID.String()),
		zap.String("payment_id", paymentID.String()),
	)
	s.publishStatusChanged(ctx, res, "")
	return nil
}

// GetReservation retrieves a single reservation for an operator.
func (s *ReservationService) GetReservation(ctx context.Context, actor access.Actor, id uuid.UUID) (*ReservationDTO, error) {
	if err := access.Authorize(actor, access.PermViewReservations, nil); err != nil {
		return nil, err
	}
	res, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := toReservationDTO(res)
	return &dto, nil
}

// ListReservations returns the paginated ledger, newest first (back office).
func (s *ReservationService) ListReservations(ctx context.Context, actor access.Actor, page, limit int) (*PaginatedResult[ReservationDTO], error) {
	if err := access.Authorize(actor, access.PermViewReservations, nil); err != nil {
		return nil, err
	}
	items, total, err := s.repo.ListPaged(ctx, page, limit)
	if err != nil {
		return nil, err
	}
	return paginate(items, total, page, limit), nil
}

// ListMyReservations returns the reservations the actor created.
func (s *ReservationService) ListMyReservations(ctx context.Context, actor access.Actor, page, limit int) (*PaginatedResult[ReservationDTO], error) {
	items, total, err := s.repo.ListByCreator(ctx, actor.ID, page, limit)
	if err != nil {
		return nil, err
	}
	return paginate(items, total, page, limit), nil
}

// ListBySuite returns every reservation for a suite (back office).
func (s *ReservationService) ListBySuite(ctx context.Context, actor access.Actor, suiteID uuid.UUID) ([]ReservationDTO, error) {
	if err := access.Authorize(actor, access.PermViewReservations, nil); err != nil {
		return nil, err
	}
	items, err := s.repo.ListBySuite(ctx, suiteID)
	if err != nil {
		return nil, err
	}
	dtos := make([]ReservationDTO, len(items))
	for i, r := range items {
		dtos[i] = toReservationDTO(r)
	}
	return dtos, nil
}

// ListCreatedBetween returns reservations created within [from, to),
// newest-first (back-office reporting export).
func (s *ReservationService) ListCreatedBetween(ctx context.Context, actor access.Actor, from, to time.Time) ([]ReservationDTO, error) {
	if err := access.Authorize(actor, access.PermViewReservations, nil); err != nil {
		return nil, err
	}
	items, err := s.repo.ListCreatedBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}
	dtos := make([]ReservationDTO, len(items))
	for i, r := range items {
		dtos[i] = toReservationDTO(r)
	}
	return dtos, nil
}

// StatsDTO holds back-office aggregates over the ledger.
type StatsDTO struct {
	TotalReservations int64            `json:"total_reservations"`
	ByStatus          map[string]int64 `json:"by_status"`
	RevenueCents      int64            `json:"revenue_cents"`
	Currency          string           `json:"currency"`
}

// GetStats returns status counts and revenue, optionally bounded by creation
// time. Revenue excludes cancelled reservations.
func (s *ReservationService) GetStats(ctx context.Context, actor access.Actor, from, to time.Time) (*StatsDTO, error) {
	if err := access.Authorize(actor, access.PermViewRevenue, nil); err != nil {
		return nil, err
	}

	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	revenue, err := s.repo.SumRevenueCents(ctx, from, to)
	if err != nil {
		return nil, err
	}

	var total int64
	for _, c := range counts {
		total += c
	}
	return &StatsDTO{
		TotalReservations: total,
		ByStatus:          counts,
		RevenueCents:      revenue,
		Currency:          currency,
	}, nil
}

// --- Helpers ---

func parseStayRange(checkIn, checkOut string) (time.Time, time.Time, error) {
	in, err := reservation.ParseStayDate(checkIn)
	if err != nil {
		return time.Time{}, time.Time{}, apperrors.NewValidationError(
			apperrors.CodeInvalidDateRange, "check-in date is not a valid calendar date")
	}
	out, err := reservation.ParseStayDate(checkOut)
	if err != nil {
		return time.Time{}, time.Time{}, apperrors.NewValidationError(
			apperrors.CodeInvalidDateRange, "check-out date is not a valid calendar date")
	}
	return in, out, nil
}

func paginate(items []*reservation.Reservation, total int64, page, limit int) *PaginatedResult[ReservationDTO] {
	dtos := make([]ReservationDTO, len(items))
	for i, r := range items {
		dtos[i] = toReservationDTO(r)
	}
	return &PaginatedResult[ReservationDTO]{Items: dtos, Total: total, Page: page, Limit: limit}
}

func toReservationDTO(r *reservation.Reservation) ReservationDTO {
	return ReservationDTO{
		ID:             r.ID(),
		SuiteID:        r.SuiteID(),
		CheckIn:        reservation.FormatStayDate(r.CheckIn()),
		CheckOut:       reservation.FormatStayDate(r.CheckOut()),
		Nights:         reservation.Nights(r.CheckIn(), r.CheckOut()),
		Guests:         r.Guests(),
		GuestName:      r.Contact().FullName,
		GuestEmail:     r.Contact().Email,
		GuestPhone:     r.Contact().Phone,
		BillingAddress: r.Address(),
		TotalCents:     r.TotalCents(),
		Currency:       r.Currency(),
		Status:         string(r.Status()),
		CancelReason:   r.CancelReason(),
		CancelledAt:    r.CancelledAt(),
		Notes:          r.Notes(),
		CreatedBy:      r.CreatedBy(),
		Version:        r.Version(),
		CreatedAt:      r.CreatedAt(),
		UpdatedAt:      r.UpdatedAt(),
	}
}

func (s *ReservationService) publishRequested(ctx context.Context, r *reservation.Reservation) {
	evt := events.ReservationRequestedEvent{
		ReservationID: r.ID(),
		SuiteID:       r.SuiteID(),
		CheckIn:       reservation.FormatStayDate(r.CheckIn()),
		CheckOut:      reservation.FormatStayDate(r.CheckOut()),
		Guests:        r.Guests(),
		GuestEmail:    r.Contact().Email,
		TotalCents:    r.TotalCents(),
		Currency:      r.Currency(),
		CreatedBy:     r.CreatedBy(),
		OccurredAt:    time.Now().UTC(),
	}
	s.publishEvent(ctx, events.TopicReservationEvents, events.ReservationRequested, evt)
}

func (s *ReservationService) publishStatusChanged(ctx context.Context, r *reservation.Reservation, reason string) {
	var eventType string
	switch r.Status() {
	case reservation.StatusConfirmed:
		eventType = events.ReservationConfirmed
	case reservation.StatusCancelled:
		eventType = events.ReservationCancelled
	case reservation.StatusCompleted:
		eventType = events.ReservationCompleted
	default:
		return
	}

	evt := events.ReservationStatusChangedEvent{
		ReservationID: r.ID(),
		SuiteID:       r.SuiteID(),
		Status:        string(r.Status()),
		GuestEmail:    r.Contact().Email,
		Reason:        reason,
		OccurredAt:    time.Now().UTC(),
	}
	s.publishEvent(ctx, events.TopicReservationEvents, eventType, evt)
}

func (s *ReservationService) publishEvent(ctx context.Context, topic, eventType string, data interface{}) {
	cloudEvent, err := kafka.NewCloudEvent(eventSource, eventType, data)
	if err != nil {
		s.logger.Error("failed to create cloud event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return
	}
	if err := s.producer.PublishEvent(ctx, topic, cloudEvent); err != nil {
		s.logger.Error("failed to publish event",
			zap.String("topic", topic),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
	}
}
