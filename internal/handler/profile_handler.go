package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hadfi53/rakb-sub004/internal/application"
	"github.com/hadfi53/rakb-sub004/internal/auth"
	"github.com/hadfi53/rakb-sub004/internal/middleware"
	"github.com/hadfi53/rakb-sub004/internal/response"
)

// 5 MiB cap on avatar uploads.
const maxAvatarBytes = 5 << 20

// ProfileHandler handles HTTP requests for user profiles.
type ProfileHandler struct {
	service *application.ProfileService
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(service *application.ProfileService) *ProfileHandler {
	return &ProfileHandler{service: service}
}

// RegisterRoutes registers all profile routes on the given router group.
func (h *ProfileHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)

	profile := r.Group("/api/v1/profile")
	profile.Use(authMW)
	{
		profile.GET("", h.GetProfile)
		profile.PUT("", h.UpdateProfile)
		profile.POST("/avatar", h.UploadAvatar)
	}
}

// GetProfile handles GET /api/v1/profile.
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	result, err := h.service.GetProfile(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// UpdateProfile handles PUT /api/v1/profile.
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	var req application.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.UpdateProfile(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// UploadAvatar handles POST /api/v1/profile/avatar as a multipart upload.
func (h *ProfileHandler) UploadAvatar(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	file, header, err := c.Request.FormFile("avatar")
	if err != nil {
		response.BadRequest(c, "avatar file is required")
		return
	}
	defer func() { _ = file.Close() }()

	if header.Size > maxAvatarBytes {
		response.BadRequest(c, "avatar exceeds the 5 MiB limit")
		return
	}

	content, err := io.ReadAll(io.LimitReader(file, maxAvatarBytes))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read avatar"})
		return
	}

	result, err := h.service.UploadAvatar(c.Request.Context(), userID, content)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}
