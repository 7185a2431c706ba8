// Package handler wires the HTTP surface onto the application services.
package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/harborview-stays/service-reservations/internal/application"
	"github.com/harborview-stays/service-reservations/internal/domain/reservation"
	"github.com/harborview-stays/service-reservations/internal/platform/auth"
	"github.com/harborview-stays/service-reservations/internal/platform/middleware"
	"github.com/harborview-stays/service-reservations/internal/platform/response"
)

// ReservationHandler handles HTTP requests for the reservation lifecycle.
type ReservationHandler struct {
	service      *application.ReservationService
	availability *application.AvailabilityChecker
}

// NewReservationHandler creates a new ReservationHandler.
func NewReservationHandler(service *application.ReservationService, availability *application.AvailabilityChecker) *ReservationHandler {
	return &ReservationHandler{service: service, availability: availability}
}

// RegisterRoutes registers reservation routes. Creation and the availability
// probe are public; a guest booking a stay carries no token and the actor is
// absent. Everything else requires a staff token.
func (h *ReservationHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	public := r.Group("/api/v1")
	public.Use(middleware.OptionalAuthMiddleware(jwtManager))
	{
		public.POST("/reservations", h.CreateReservation)
		public.GET("/availability", h.CheckAvailability)
	}

	staff := r.Group("/api/v1/reservations")
	staff.Use(middleware.AuthMiddleware(jwtManager))
	{
		staff.GET("", h.ListReservations)
		staff.GET("/mine", h.ListMyReservations)
		staff.GET("/:id", h.GetReservation)
		staff.PATCH("/:id", h.UpdateReservation)
		staff.POST("/:id/confirm", h.ConfirmReservation)
		staff.POST("/:id/cancel", h.CancelReservation)
		staff.POST("/:id/complete", h.CompleteReservation)
	}
}

// CreateReservation handles POST /api/v1/reservations.
func (h *ReservationHandler) CreateReservation(c *gin.Context) {
	var req application.CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	actor := middleware.ActorPtr(c)
	result, err := h.service.Create(c.Request.Context(), actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// CheckAvailability handles GET /api/v1/availability. Query parameters:
// suite_id, check_in, check_out, guests.
func (h *ReservationHandler) CheckAvailability(c *gin.Context) {
	suiteID, err := uuid.Parse(c.Query("suite_id"))
	if err != nil {
		response.BadRequest(c, "suite_id must be a valid UUID")
		return
	}
	checkIn, err := reservation.ParseStayDate(c.Query("check_in"))
	if err != nil {
		response.BadRequest(c, "check_in must be a calendar date (YYYY-MM-DD)")
		return
	}
	checkOut, err := reservation.ParseStayDate(c.Query("check_out"))
	if err != nil {
		response.BadRequest(c, "check_out must be a calendar date (YYYY-MM-DD)")
		return
	}
	guests, err := strconv.Atoi(c.DefaultQuery("guests", "1"))
	if err != nil {
		response.BadRequest(c, "guests must be a number")
		return
	}

	if err := reservation.ValidateSearch(checkIn, checkOut, guests, time.Now()); err != nil {
		response.Error(c, err)
		return
	}

	available, err := h.availability.IsAvailable(c.Request.Context(), suiteID, checkIn, checkOut, guests)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{
		"suite_id":  suiteID,
		"check_in":  reservation.FormatStayDate(checkIn),
		"check_out": reservation.FormatStayDate(checkOut),
		"guests":    guests,
		"available": available,
	})
}

// ListReservations handles GET /api/v1/reservations.
func (h *ReservationHandler) ListReservations(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	page, limit := parsePagination(c)
	result, err := h.service.ListReservations(c.Request.Context(), actor, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, result.Items, result.Total, result.Page, result.Limit)
}

// ListMyReservations handles GET /api/v1/reservations/mine.
func (h *ReservationHandler) ListMyReservations(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	page, limit := parsePagination(c)
	result, err := h.service.ListMyReservations(c.Request.Context(), actor, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, result.Items, result.Total, result.Page, result.Limit)
}

// GetReservation handles GET /api/v1/reservations/:id.
func (h *ReservationHandler) GetReservation(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid reservation ID")
		return
	}

	result, err := h.service.GetReservation(c.Request.Context(), actor, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// UpdateReservation handles PATCH /api/v1/reservations/:id.
func (h *ReservationHandler) UpdateReservation(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid reservation ID")
		return
	}

	var req application.UpdateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.UpdateDetails(c.Request.Context(), actor, id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// ConfirmReservation handles POST /api/v1/reservations/:id/confirm.
func (h *ReservationHandler) ConfirmReservation(c *gin.Context) {
	h.transition(c, reservation.StatusConfirmed, false)
}

// CancelReservation handles POST /api/v1/reservations/:id/cancel.
func (h *ReservationHandler) CancelReservation(c *gin.Context) {
	h.transition(c, reservation.StatusCancelled, true)
}

// CompleteReservation handles POST /api/v1/reservations/:id/complete.
func (h *ReservationHandler) CompleteReservation(c *gin.Context) {
	h.transition(c, reservation.StatusCompleted, false)
}

func (h *ReservationHandler) transition(c *gin.Context, target reservation.Status, withReason bool) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid reservation ID")
		return
	}

	var reason string
	if withReason {
		var req struct {
			Reason string `json:"reason"`
		}
		// Body is optional for cancellation.
		_ = c.ShouldBindJSON(&req)
		reason = req.Reason
	}

	result, err := h.service.TransitionStatus(c.Request.Context(), actor, id, target, reason)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

func parsePagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}
