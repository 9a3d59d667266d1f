package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/hadfi53/rakb-sub004/internal/application"
	"github.com/hadfi53/rakb-sub004/internal/auth"
	"github.com/hadfi53/rakb-sub004/internal/middleware"
	"github.com/hadfi53/rakb-sub004/internal/response"
)

// InspectionHandler handles HTTP requests for check-in/check-out records.
type InspectionHandler struct {
	service *application.InspectionService
}

// NewInspectionHandler creates a new InspectionHandler.
func NewInspectionHandler(service *application.InspectionService) *InspectionHandler {
	return &InspectionHandler{service: service}
}

// RegisterRoutes registers all inspection routes on the given router group.
func (h *InspectionHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)

	inspections := r.Group("/api/v1/bookings/:id")
	inspections.Use(authMW)
	{
		inspections.POST("/check-in", h.CheckIn)
		inspections.POST("/check-out", h.CheckOut)
		inspections.GET("/inspections", h.ListRecords)
		inspections.GET("/report", h.GetReport)
	}
}

// CheckIn handles POST /api/v1/bookings/:id/check-in. Photo contents are
// base64 in the JSON body.
func (h *InspectionHandler) CheckIn(c *gin.Context) {
	h.submit(c, h.service.CheckIn)
}

// CheckOut handles POST /api/v1/bookings/:id/check-out.
func (h *InspectionHandler) CheckOut(c *gin.Context) {
	h.submit(c, h.service.CheckOut)
}

type submitFunc func(ctx context.Context, bookingID, actorID uuid.UUID, req application.SubmitInspectionRequest) (*application.RecordDTO, error)

func (h *InspectionHandler) submit(c *gin.Context, fn submitFunc) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	var req application.SubmitInspectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := fn(c.Request.Context(), bookingID, userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// ListRecords handles GET /api/v1/bookings/:id/inspections.
func (h *InspectionHandler) ListRecords(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	result, err := h.service.GetRecords(c.Request.Context(), bookingID, userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// GetReport handles GET /api/v1/bookings/:id/report. It returns the
// check-in/check-out delta; a zero report when either record is missing.
func (h *InspectionHandler) GetReport(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	result, err := h.service.Compare(c.Request.Context(), bookingID, userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}
