package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/harborview-stays/service-reservations/internal/application"
	"github.com/harborview-stays/service-reservations/internal/domain/reservation"
	"github.com/harborview-stays/service-reservations/internal/platform/auth"
	"github.com/harborview-stays/service-reservations/internal/platform/middleware"
	"github.com/harborview-stays/service-reservations/internal/platform/response"
)

// AdminHandler handles back-office reporting requests. Role checks live in
// the access policy, evaluated by the services on every call.
type AdminHandler struct {
	reservations *application.ReservationService
	suites       *application.SuiteService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(reservations *application.ReservationService, suites *application.SuiteService) *AdminHandler {
	return &AdminHandler{reservations: reservations, suites: suites}
}

// RegisterRoutes registers admin routes.
func (h *AdminHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	admin := r.Group("/api/v1/admin")
	admin.Use(middleware.AuthMiddleware(jwtManager))
	{
		admin.GET("/reservations", h.ListReservations)
		admin.GET("/reservations/export", h.ExportReservations)
		admin.GET("/suites", h.ListSuites)
		admin.GET("/suites/:id/reservations", h.ListSuiteReservations)
		admin.GET("/stats", h.Stats)
	}
}

// ListReservations handles GET /api/v1/admin/reservations.
func (h *AdminHandler) ListReservations(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	page, limit := parsePagination(c)
	result, err := h.reservations.ListReservations(c.Request.Context(), actor, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, result.Items, result.Total, result.Page, result.Limit)
}

// ExportReservations handles GET /api/v1/admin/reservations/export. Requires
// from and to query parameters bounding the creation period (to exclusive).
func (h *AdminHandler) ExportReservations(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	from, err := reservation.ParseStayDate(c.Query("from"))
	if err != nil {
		response.BadRequest(c, "from must be a calendar date (YYYY-MM-DD)")
		return
	}
	to, err := reservation.ParseStayDate(c.Query("to"))
	if err != nil {
		response.BadRequest(c, "to must be a calendar date (YYYY-MM-DD)")
		return
	}

	reservations, err := h.reservations.ListCreatedBetween(c.Request.Context(), actor, from, to)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, reservations)
}

// ListSuiteReservations handles GET /api/v1/admin/suites/:id/reservations.
// Every status is included, not just blocking ones.
func (h *AdminHandler) ListSuiteReservations(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	suiteID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid suite ID")
		return
	}

	reservations, err := h.reservations.ListBySuite(c.Request.Context(), actor, suiteID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, reservations)
}

// ListSuites handles GET /api/v1/admin/suites. Includes deactivated suites.
func (h *AdminHandler) ListSuites(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	suites, err := h.suites.ListAll(c.Request.Context(), actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, suites)
}

// Stats handles GET /api/v1/admin/stats. Optional from/to query parameters
// bound the reporting period by creation date (half-open, to exclusive).
func (h *AdminHandler) Stats(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var from, to time.Time
	var err error
	if v := c.Query("from"); v != "" {
		if from, err = reservation.ParseStayDate(v); err != nil {
			response.BadRequest(c, "from must be a calendar date (YYYY-MM-DD)")
			return
		}
	}
	if v := c.Query("to"); v != "" {
		if to, err = reservation.ParseStayDate(v); err != nil {
			response.BadRequest(c, "to must be a calendar date (YYYY-MM-DD)")
			return
		}
	}

	stats, err := h.reservations.GetStats(c.Request.Context(), actor, from, to)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, stats)
}
