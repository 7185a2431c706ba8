package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/harborview-stays/service-reservations/internal/application"
	"github.com/harborview-stays/service-reservations/internal/platform/auth"
	"github.com/harborview-stays/service-reservations/internal/platform/middleware"
	"github.com/harborview-stays/service-reservations/internal/platform/response"
)

// SuiteHandler handles HTTP requests for the suite catalog.
type SuiteHandler struct {
	service *application.SuiteService
}

// NewSuiteHandler creates a new SuiteHandler.
func NewSuiteHandler(service *application.SuiteService) *SuiteHandler {
	return &SuiteHandler{service: service}
}

// RegisterRoutes registers suite routes. Browsing the catalog is public;
// management requires a staff token.
func (h *SuiteHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	public := r.Group("/api/v1/suites")
	{
		public.GET("", h.ListSuites)
		public.GET("/:id", h.GetSuite)
	}

	staff := r.Group("/api/v1/suites")
	staff.Use(middleware.AuthMiddleware(jwtManager))
	{
		staff.POST("", h.CreateSuite)
		staff.PATCH("/:id", h.UpdateSuite)
		staff.DELETE("/:id", h.DeleteSuite)
	}
}

// ListSuites handles GET /api/v1/suites. Returns active suites only.
func (h *SuiteHandler) ListSuites(c *gin.Context) {
	suites, err := h.service.ListActive(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, suites)
}

// GetSuite handles GET /api/v1/suites/:id.
func (h *SuiteHandler) GetSuite(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid suite ID")
		return
	}
	st, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, st)
}

// CreateSuite handles POST /api/v1/suites.
func (h *SuiteHandler) CreateSuite(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req application.CreateSuiteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	st, err := h.service.Create(c.Request.Context(), actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, st)
}

// UpdateSuite handles PATCH /api/v1/suites/:id.
func (h *SuiteHandler) UpdateSuite(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid suite ID")
		return
	}

	var req application.UpdateSuiteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	st, err := h.service.Update(c.Request.Context(), actor, id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, st)
}

// DeleteSuite handles DELETE /api/v1/suites/:id.
func (h *SuiteHandler) DeleteSuite(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid suite ID")
		return
	}

	if err := h.service.Delete(c.Request.Context(), actor, id); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
