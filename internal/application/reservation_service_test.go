package application

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/harborview-stays/service-reservations/internal/domain/access"
	"github.com/harborview-stays/service-reservations/internal/domain/reservation"
	"github.com/harborview-stays/service-reservations/internal/domain/suite"
	"github.com/harborview-stays/service-reservations/internal/events"
	"github.com/harborview-stays/service-reservations/internal/platform/apperrors"
	"github.com/harborview-stays/service-reservations/internal/platform/kafka"
)

var _ events.ReservationConfirmer = (*ReservationService)(nil)

// --- Mocks ---

type mockReservationRepo struct {
	mock.Mock
}

func (m *mockReservationRepo) FindByID(ctx context.Context, id uuid.UUID) (*reservation.Reservation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reservation.Reservation), args.Error(1)
}

func (m *mockReservationRepo) ListBySuite(ctx context.Context, suiteID uuid.UUID, excludeStatuses ...reservation.Status) ([]*reservation.Reservation, error) {
	args := m.Called(ctx, suiteID, excludeStatuses)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*reservation.Reservation), args.Error(1)
}

func (m *mockReservationRepo) ListAll(ctx context.Context) ([]*reservation.Reservation, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*reservation.Reservation), args.Error(1)
}

func (m *mockReservationRepo) ListPaged(ctx context.Context, page, limit int) ([]*reservation.Reservation, int64, error) {
	args := m.Called(ctx, page, limit)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*reservation.Reservation), args.Get(1).(int64), args.Error(2)
}

func (m *mockReservationRepo) ListByCreator(ctx context.Context, creatorID uuid.UUID, page, limit int) ([]*reservation.Reservation, int64, error) {
	args := m.Called(ctx, creatorID, page, limit)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*reservation.Reservation), args.Get(1).(int64), args.Error(2)
}

func (m *mockReservationRepo) ListCreatedBetween(ctx context.Context, from, to time.Time) ([]*reservation.Reservation, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*reservation.Reservation), args.Error(1)
}

func (m *mockReservationRepo) CountByStatus(ctx context.Context) (map[string]int64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int64), args.Error(1)
}

func (m *mockReservationRepo) SumRevenueCents(ctx context.Context, from, to time.Time) (int64, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockReservationRepo) Insert(ctx context.Context, r *reservation.Reservation) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *mockReservationRepo) Update(ctx context.Context, r *reservation.Reservation) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *mockReservationRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status reservation.Status) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

type mockSuiteRepo struct {
	mock.Mock
}

func (m *mockSuiteRepo) FindByID(ctx context.Context, id uuid.UUID) (*suite.Suite, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*suite.Suite), args.Error(1)
}

func (m *mockSuiteRepo) ListActive(ctx context.Context) ([]*suite.Suite, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*suite.Suite), args.Error(1)
}

func (m *mockSuiteRepo) ListAll(ctx context.Context) ([]*suite.Suite, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*suite.Suite), args.Error(1)
}

func (m *mockSuiteRepo) Save(ctx context.Context, s *suite.Suite) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *mockSuiteRepo) Update(ctx context.Context, s *suite.Suite) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *mockSuiteRepo) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishEvent(ctx context.Context, topic string, event kafka.CloudEvent) error {
	args := m.Called(ctx, topic, event)
	return args.Error(0)
}

// --- Helpers ---

type serviceFixture struct {
	repo      *mockReservationRepo
	suites    *mockSuiteRepo
	publisher *mockPublisher
	service   *ReservationService
}

func newFixture() *serviceFixture {
	repo := new(mockReservationRepo)
	suites := new(mockSuiteRepo)
	publisher := new(mockPublisher)
	availability := NewAvailabilityChecker(repo, suites)
	svc := NewReservationService(repo, suites, availability, publisher, zap.NewNop())
	return &serviceFixture{repo: repo, suites: suites, publisher: publisher, service: svc}
}

func futureStay(daysAhead, nights int) (string, string) {
	checkIn := reservation.StartOfToday(time.Now()).AddDate(0, 0, daysAhead)
	checkOut := checkIn.AddDate(0, 0, nights)
	return reservation.FormatStayDate(checkIn), reservation.FormatStayDate(checkOut)
}

func activeSuite(id uuid.UUID, rateCents int64, capacity int) *suite.Suite {
	now := time.Now().UTC()
	return suite.Reconstruct(id, "Harbor View King", "", rateCents, capacity, true, now, now)
}

func validCreateRequest(suiteID uuid.UUID) CreateReservationRequest {
	checkIn, checkOut := futureStay(10, 3)
	return CreateReservationRequest{
		SuiteID:    suiteID,
		CheckIn:    checkIn,
		CheckOut:   checkOut,
		Guests:     2,
		GuestName:  "Ana Silva",
		GuestEmail: "ana@example.com",
		GuestPhone: "+1 555 123 4567",
		BillingAddress: reservation.BillingAddress{
			Street:  "100 Harbor Way",
			City:    "Portland",
			State:   "OR",
			Country: "US",
		},
	}
}

func existingStay(suiteID uuid.UUID, daysAhead, nights int, status reservation.Status) *reservation.Reservation {
	checkIn := reservation.StartOfToday(time.Now()).AddDate(0, 0, daysAhead)
	now := time.Now().UTC()
	return reservation.Reconstruct(
		uuid.New(), suiteID,
		checkIn, checkIn.AddDate(0, 0, nights),
		reservation.GuestContact{FullName: "Prior Guest", Email: "prior@example.com", Phone: "5550001111"},
		2,
		reservation.BillingAddress{Street: "1 Main St", City: "Portland", State: "OR", Country: "US"},
		45000, "USD",
		status,
		"", nil, "", nil, 1, now, now,
	)
}

// --- Create ---

func TestCreate_Success(t *testing.T) {
	f := newFixture()
	suiteID := uuid.New()

	f.suites.On("FindByID", mock.Anything, suiteID).Return(activeSuite(suiteID, 15000, 4), nil)
	f.repo.On("ListBySuite", mock.Anything, suiteID, mock.Anything).Return([]*reservation.Reservation{}, nil)
	f.repo.On("Insert", mock.Anything, mock.AnythingOfType("*reservation.Reservation")).Return(nil)
	f.publisher.On("PublishEvent", mock.Anything, "reservation.events", mock.Anything).Return(nil)

	dto, err := f.service.Create(context.Background(), nil, validCreateRequest(suiteID))
	require.NoError(t, err)

	assert.Equal(t, "pending", dto.Status)
	assert.Equal(t, 3, dto.Nights)
	assert.Equal(t, int64(45000), dto.TotalCents, "3 nights at 15000 cents")
	assert.Equal(t, "USD", dto.Currency)
	assert.Nil(t, dto.CreatedBy, "public flow has no creator")
	f.repo.AssertExpectations(t)
	f.publisher.AssertExpectations(t)
}

func TestCreate_OverlapRejected(t *testing.T) {
	f := newFixture()
	suiteID := uuid.New()

	f.suites.On("FindByID", mock.Anything, suiteID).Return(activeSuite(suiteID, 15000, 4), nil)
	// A pending stay covering days 11..14 overlaps the request's 10..13.
	f.repo.On("ListBySuite", mock.Anything, suiteID, mock.Anything).
		Return([]*reservation.Reservation{existingStay(suiteID, 11, 3, reservation.StatusPending)}, nil)

	_, err := f.service.Create(context.Background(), nil, validCreateRequest(suiteID))
	var unavailable *apperrors.UnavailableError
	require.ErrorAs(t, err, &unavailable)
	f.repo.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
}

func TestCreate_BackToBackAllowed(t *testing.T) {
	f := newFixture()
	suiteID := uuid.New()

	f.suites.On("FindByID", mock.Anything, suiteID).Return(activeSuite(suiteID, 15000, 4), nil)
	// Prior stay checks out on day 10, exactly when the request checks in.
	f.repo.On("ListBySuite", mock.Anything, suiteID, mock.Anything).
		Return([]*reservation.Reservation{existingStay(suiteID, 7, 3, reservation.StatusConfirmed)}, nil)
	f.repo.On("Insert", mock.Anything, mock.Anything).Return(nil)
	f.publisher.On("PublishEvent", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	dto, err := f.service.Create(context.Background(), nil, validCreateRequest(suiteID))
	require.NoError(t, err)
	assert.Equal(t, "pending", dto.Status)
}

func TestCreate_CapacityExceeded(t *testing.T) {
	f := newFixture()
	suiteID := uuid.New()

	f.suites.On("FindByID", mock.Anything, suiteID).Return(activeSuite(suiteID, 15000, 2), nil)

	req := validCreateRequest(suiteID)
	req.Guests = 3
	_, err := f.service.Create(context.Background(), nil, req)

	var vErr *apperrors.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, apperrors.CodeGuestCountExceeded, vErr.Code)
}

func TestCreate_InactiveSuiteUnavailable(t *testing.T) {
	f := newFixture()
	suiteID := uuid.New()
	now := time.Now().UTC()
	inactive := suite.Reconstruct(suiteID, "Mothballed", "", 15000, 4, false, now, now)

	f.suites.On("FindByID", mock.Anything, suiteID).Return(inactive, nil)

	_, err := f.service.Create(context.Background(), nil, validCreateRequest(suiteID))
	var unavailable *apperrors.UnavailableError
	require.ErrorAs(t, err, &unavailable)
}

func TestCreate_FieldErrorsCollected(t *testing.T) {
	f := newFixture()
	req := validCreateRequest(uuid.New())
	req.GuestEmail = "broken"
	req.BillingAddress.City = ""

	_, err := f.service.Create(context.Background(), nil, req)
	var vErr *apperrors.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Fields, "email")
	assert.Contains(t, vErr.Fields, "city")
	f.suites.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}

func TestCreate_ReadOnlyActorDenied(t *testing.T) {
	f := newFixture()
	actor := &access.Actor{ID: uuid.New(), Role: access.RoleReadOnly}

	_, err := f.service.Create(context.Background(), actor, validCreateRequest(uuid.New()))
	var authErr *apperrors.AuthorizationError
	require.ErrorAs(t, err, &authErr)
}

func TestCreate_ConflictFromStorePassedThrough(t *testing.T) {
	f := newFixture()
	suiteID := uuid.New()

	f.suites.On("FindByID", mock.Anything, suiteID).Return(activeSuite(suiteID, 15000, 4), nil)
	f.repo.On("ListBySuite", mock.Anything, suiteID, mock.Anything).Return([]*reservation.Reservation{}, nil)
	f.repo.On("Insert", mock.Anything, mock.Anything).
		Return(apperrors.NewConflictError("suite was booked for these dates by a concurrent request"))

	_, err := f.service.Create(context.Background(), nil, validCreateRequest(suiteID))
	var conflict *apperrors.ConflictError
	require.ErrorAs(t, err, &conflict)
	f.publisher.AssertNotCalled(t, "PublishEvent", mock.Anything, mock.Anything, mock.Anything)
}

// --- Transitions ---

func TestTransitionStatus_CompletedCannotConfirm(t *testing.T) {
	f := newFixture()
	res := existingStay(uuid.New(), 10, 3, reservation.StatusCompleted)
	actor := access.Actor{ID: uuid.New(), Role: access.RoleAdmin}

	f.repo.On("FindByID", mock.Anything, res.ID()).Return(res, nil)

	_, err := f.service.TransitionStatus(context.Background(), actor, res.ID(), reservation.StatusConfirmed, "")
	var vErr *apperrors.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, apperrors.CodeInvalidTransition, vErr.Code)
	f.repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestTransitionStatus_EditorCannotConfirmOthersReservation(t *testing.T) {
	f := newFixture()
	res := existingStay(uuid.New(), 10, 3, reservation.StatusPending)
	actor := access.Actor{ID: uuid.New(), Role: access.RoleEditor}

	f.repo.On("FindByID", mock.Anything, res.ID()).Return(res, nil)

	_, err := f.service.TransitionStatus(context.Background(), actor, res.ID(), reservation.StatusConfirmed, "")
	var authErr *apperrors.AuthorizationError
	require.ErrorAs(t, err, &authErr)
	f.repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestTransitionStatus_SalesRepCannotCancel(t *testing.T) {
	f := newFixture()
	repID := uuid.New()
	res := existingStay(uuid.New(), 10, 3, reservation.StatusPending)
	actor := access.Actor{ID: repID, Role: access.RoleSalesRep}

	f.repo.On("FindByID", mock.Anything, res.ID()).Return(res, nil)

	_, err := f.service.TransitionStatus(context.Background(), actor, res.ID(), reservation.StatusCancelled, "no show")
	var authErr *apperrors.AuthorizationError
	require.ErrorAs(t, err, &authErr)
}

func TestTransitionStatus_CancelPublishesWithReason(t *testing.T) {
	f := newFixture()
	res := existingStay(uuid.New(), 10, 3, reservation.StatusPending)
	actor := access.Actor{ID: uuid.New(), Role: access.RoleEditor}

	f.repo.On("FindByID", mock.Anything, res.ID()).Return(res, nil)
	f.repo.On("Update", mock.Anything, res).Return(nil)
	f.publisher.On("PublishEvent", mock.Anything, "reservation.events", mock.Anything).Return(nil)

	dto, err := f.service.TransitionStatus(context.Background(), actor, res.ID(), reservation.StatusCancelled, "guest request")
	require.NoError(t, err)
	assert.Equal(t, "cancelled", dto.Status)
	assert.Equal(t, "guest request", dto.CancelReason)
	f.publisher.AssertExpectations(t)
}

func TestConfirmOnPaymentCaptured(t *testing.T) {
	t.Run("confirms a pending reservation", func(t *testing.T) {
		f := newFixture()
		res := existingStay(uuid.New(), 10, 3, reservation.StatusPending)

		f.repo.On("FindByID", mock.Anything, res.ID()).Return(res, nil)
		f.repo.On("UpdateStatus", mock.Anything, res.ID(), reservation.StatusConfirmed).Return(nil)
		f.publisher.On("PublishEvent", mock.Anything, "reservation.events", mock.Anything).Return(nil)

		err := f.service.ConfirmOnPaymentCaptured(context.Background(), res.ID(), uuid.New())
		require.NoError(t, err)
		f.repo.AssertExpectations(t)
	})

	t.Run("duplicate capture is a no-op", func(t *testing.T) {
		f := newFixture()
		res := existingStay(uuid.New(), 10, 3, reservation.StatusConfirmed)

		f.repo.On("FindByID", mock.Anything, res.ID()).Return(res, nil)

		err := f.service.ConfirmOnPaymentCaptured(context.Background(), res.ID(), uuid.New())
		require.NoError(t, err)
		f.repo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("cancelled reservation rejects capture", func(t *testing.T) {
		f := newFixture()
		res := existingStay(uuid.New(), 10, 3, reservation.StatusCancelled)

		f.repo.On("FindByID", mock.Anything, res.ID()).Return(res, nil)

		err := f.service.ConfirmOnPaymentCaptured(context.Background(), res.ID(), uuid.New())
		var vErr *apperrors.ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, apperrors.CodeInvalidTransition, vErr.Code)
	})
}

// --- Updates ---

func TestUpdateDetails_ExcludesOwnReservationFromOverlap(t *testing.T) {
	f := newFixture()
	suiteID := uuid.New()
	creatorID := uuid.New()
	now := time.Now().UTC()
	checkIn := reservation.StartOfToday(time.Now()).AddDate(0, 0, 10)
	res := reservation.Reconstruct(
		uuid.New(), suiteID,
		checkIn, checkIn.AddDate(0, 0, 3),
		reservation.GuestContact{FullName: "Ana Silva", Email: "ana@example.com", Phone: "5551234567"},
		2,
		reservation.BillingAddress{Street: "100 Harbor Way", City: "Portland", State: "OR", Country: "US"},
		45000, "USD",
		reservation.StatusPending,
		"", nil, "", &creatorID, 1, now, now,
	)
	actor := access.Actor{ID: creatorID, Role: access.RoleEditor}

	f.repo.On("FindByID", mock.Anything, res.ID()).Return(res, nil)
	f.suites.On("FindByID", mock.Anything, suiteID).Return(activeSuite(suiteID, 20000, 4), nil)
	// The only booked stay for the suite is this reservation itself; the
	// checker must skip it rather than flag a self-overlap.
	f.repo.On("ListBySuite", mock.Anything, suiteID, mock.Anything).
		Return([]*reservation.Reservation{res}, nil)
	f.repo.On("Update", mock.Anything, res).Return(nil)

	newOut := reservation.FormatStayDate(checkIn.AddDate(0, 0, 4))
	dto, err := f.service.UpdateDetails(context.Background(), actor, res.ID(), UpdateReservationRequest{
		CheckOut: &newOut,
	})
	require.NoError(t, err)
	assert.Equal(t, 4, dto.Nights)
	assert.Equal(t, int64(80000), dto.TotalCents, "total recomputed from the suite's rate")
	assert.Equal(t, int64(2), dto.Version)
}

func TestUpdateDetails_TerminalRejected(t *testing.T) {
	f := newFixture()
	res := existingStay(uuid.New(), 10, 3, reservation.StatusCompleted)
	actor := access.Actor{ID: uuid.New(), Role: access.RoleAdmin}

	f.repo.On("FindByID", mock.Anything, res.ID()).Return(res, nil)

	notes := "late checkout"
	_, err := f.service.UpdateDetails(context.Background(), actor, res.ID(), UpdateReservationRequest{Notes: &notes})
	var vErr *apperrors.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, apperrors.CodeTerminalReservation, vErr.Code)
}

func TestUpdateDetails_SalesRepOwnershipEnforced(t *testing.T) {
	f := newFixture()
	res := existingStay(uuid.New(), 10, 3, reservation.StatusPending) // created anonymously
	actor := access.Actor{ID: uuid.New(), Role: access.RoleSalesRep}

	f.repo.On("FindByID", mock.Anything, res.ID()).Return(res, nil)

	notes := "upsell attempt"
	_, err := f.service.UpdateDetails(context.Background(), actor, res.ID(), UpdateReservationRequest{Notes: &notes})
	var authErr *apperrors.AuthorizationError
	require.ErrorAs(t, err, &authErr)
}

// --- Queries ---

func TestGetStats(t *testing.T) {
	f := newFixture()
	actor := access.Actor{ID: uuid.New(), Role: access.RoleAdmin}

	f.repo.On("CountByStatus", mock.Anything).Return(map[string]int64{
		"pending": 2, "confirmed": 3, "cancelled": 1,
	}, nil)
	f.repo.On("SumRevenueCents", mock.Anything, time.Time{}, time.Time{}).Return(int64(250000), nil)

	stats, err := f.service.GetStats(context.Background(), actor, time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, int64(6), stats.TotalReservations)
	assert.Equal(t, int64(250000), stats.RevenueCents)
	assert.Equal(t, "USD", stats.Currency)
}

func TestGetStats_EditorDenied(t *testing.T) {
	f := newFixture()
	actor := access.Actor{ID: uuid.New(), Role: access.RoleEditor}

	_, err := f.service.GetStats(context.Background(), actor, time.Time{}, time.Time{})
	var authErr *apperrors.AuthorizationError
	require.ErrorAs(t, err, &authErr)
	f.repo.AssertNotCalled(t, "CountByStatus", mock.Anything)
}
