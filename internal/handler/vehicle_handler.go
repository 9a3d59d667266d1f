package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/hadfi53/rakb-sub004/internal/application"
	"github.com/hadfi53/rakb-sub004/internal/auth"
	"github.com/hadfi53/rakb-sub004/internal/middleware"
	"github.com/hadfi53/rakb-sub004/internal/response"
)

// VehicleHandler handles HTTP requests for vehicle listings.
type VehicleHandler struct {
	service *application.VehicleService
}

// NewVehicleHandler creates a new VehicleHandler.
func NewVehicleHandler(service *application.VehicleService) *VehicleHandler {
	return &VehicleHandler{service: service}
}

// RegisterRoutes registers all vehicle routes on the given router group.
func (h *VehicleHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)

	vehicles := r.Group("/api/v1/vehicles")
	{
		vehicles.GET("", h.ListVehicles)
		vehicles.GET("/:id", h.GetVehicle)

		vehicles.POST("", authMW, h.CreateVehicle)
		vehicles.PUT("/:id", authMW, h.UpdateVehicle)
		vehicles.POST("/:id/archive", authMW, h.ArchiveVehicle)
		vehicles.GET("/mine", authMW, h.GetMyVehicles)
	}
}

// ListVehicles handles GET /api/v1/vehicles.
func (h *VehicleHandler) ListVehicles(c *gin.Context) {
	page, limit := parsePagination(c)

	result, err := h.service.ListVehicles(c.Request.Context(), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, result.Items, result.Total, result.Page, result.Limit)
}

// GetVehicle handles GET /api/v1/vehicles/:id.
func (h *VehicleHandler) GetVehicle(c *gin.Context) {
	vehicleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid vehicle ID")
		return
	}

	result, err := h.service.GetVehicle(c.Request.Context(), vehicleID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// CreateVehicle handles POST /api/v1/vehicles.
func (h *VehicleHandler) CreateVehicle(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	var req application.CreateVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.CreateVehicle(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// UpdateVehicle handles PUT /api/v1/vehicles/:id.
func (h *VehicleHandler) UpdateVehicle(c *gin.Context) {
	vehicleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid vehicle ID")
		return
	}

	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	var req application.UpdateVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.UpdateVehicle(c.Request.Context(), vehicleID, userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// ArchiveVehicle handles POST /api/v1/vehicles/:id/archive.
func (h *VehicleHandler) ArchiveVehicle(c *gin.Context) {
	vehicleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid vehicle ID")
		return
	}

	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	if err := h.service.ArchiveVehicle(c.Request.Context(), vehicleID, userID); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"archived": true})
}

// GetMyVehicles handles GET /api/v1/vehicles/mine.
func (h *VehicleHandler) GetMyVehicles(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	result, err := h.service.GetOwnerVehicles(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}
