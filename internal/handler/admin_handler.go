package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/shareit-platform/service-booking/internal/application"
	"github.com/shareit-platform/service-booking/pkg/auth"
	"github.com/shareit-platform/service-booking/pkg/middleware"
	"github.com/shareit-platform/service-booking/pkg/response"
)

// AdminBookingHandler serves the admin reporting endpoints. Every route requires the admin role.
type AdminBookingHandler struct {
	service *application.BookingService
}

// NewAdminBookingHandler creates a new AdminBookingHandler.
func NewAdminBookingHandler(service *application.BookingService) *AdminBookingHandler {
	return &AdminBookingHandler{service: service}
}

// RegisterRoutes mounts the admin routes under /api/v1/admin.
func (h *AdminBookingHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	admin := r.Group("/api/v1/admin",
		middleware.AuthMiddleware(jwtManager),
		middleware.RequireRole(auth.RoleAdmin),
	)
	admin.GET("/bookings", h.ListBookings)
	admin.GET("/stats/bookings", h.BookingStats)
}

// ListBookings handles GET /api/v1/admin/bookings?page=&limit=.
func (h *AdminBookingHandler) ListBookings(c *gin.Context) {
	page, limit := parsePagination(c)
	result, err := h.service.ListAllBookings(c.Request.Context(), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, result)
}

// BookingStats handles GET /api/v1/admin/stats/bookings.
func (h *AdminBookingHandler) BookingStats(c *gin.Context) {
	stats, err := h.service.GetBookingStats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, stats)
}
