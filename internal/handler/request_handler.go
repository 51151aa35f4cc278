package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/shareit-platform/service-booking/internal/application"
	"github.com/shareit-platform/service-booking/pkg/auth"
	"github.com/shareit-platform/service-booking/pkg/middleware"
	"github.com/shareit-platform/service-booking/pkg/response"
)

// ItemRequestHandler handles HTTP requests for item requests.
type ItemRequestHandler struct {
	requests *application.ItemRequestService
}

// NewItemRequestHandler creates a new ItemRequestHandler.
func NewItemRequestHandler(requests *application.ItemRequestService) *ItemRequestHandler {
	return &ItemRequestHandler{requests: requests}
}

// RegisterRoutes registers item request routes.
func (h *ItemRequestHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	requests := r.Group("/api/v1/requests")
	requests.Use(middleware.AuthMiddleware(jwtManager))
	{
		requests.POST("", h.CreateRequest)
		requests.GET("", h.ListOwnRequests)
		requests.GET("/all", h.ListAllRequests)
		requests.GET("/:id", h.GetRequest)
	}
}

// CreateRequest handles POST /api/v1/requests.
func (h *ItemRequestHandler) CreateRequest(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req application.CreateItemRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.requests.CreateRequest(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// ListOwnRequests handles GET /api/v1/requests.
func (h *ItemRequestHandler) ListOwnRequests(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	result, err := h.requests.ListOwnRequests(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// ListAllRequests handles GET /api/v1/requests/all?from=0&size=20.
func (h *ItemRequestHandler) ListAllRequests(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	from, err := strconv.Atoi(c.DefaultQuery("from", "0"))
	if err != nil {
		response.BadRequest(c, "invalid from")
		return
	}
	size, err := strconv.Atoi(c.DefaultQuery("size", "20"))
	if err != nil {
		response.BadRequest(c, "invalid size")
		return
	}

	result, err := h.requests.ListAllRequests(c.Request.Context(), userID, from, size)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// GetRequest handles GET /api/v1/requests/:id.
func (h *ItemRequestHandler) GetRequest(c *gin.Context) {
	requestID, ok := pathID(c, "request")
	if !ok {
		return
	}
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	result, err := h.requests.GetRequest(c.Request.Context(), userID, requestID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}
