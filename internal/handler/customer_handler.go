package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/harborview-stays/service-reservations/internal/application"
	"github.com/harborview-stays/service-reservations/internal/platform/auth"
	"github.com/harborview-stays/service-reservations/internal/platform/middleware"
	"github.com/harborview-stays/service-reservations/internal/platform/response"
)

// CustomerHandler handles HTTP requests for the derived customer registry.
type CustomerHandler struct {
	service *application.CustomerService
}

// NewCustomerHandler creates a new CustomerHandler.
func NewCustomerHandler(service *application.CustomerService) *CustomerHandler {
	return &CustomerHandler{service: service}
}

// RegisterRoutes registers customer routes.
func (h *CustomerHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	customers := r.Group("/api/v1/customers")
	customers.Use(middleware.AuthMiddleware(jwtManager))
	{
		customers.GET("", h.ListCustomers)
	}
}

// ListCustomers handles GET /api/v1/customers. The registry is derived from
// the reservation ledger at request time.
func (h *CustomerHandler) ListCustomers(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	customers, err := h.service.List(c.Request.Context(), actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, customers)
}
