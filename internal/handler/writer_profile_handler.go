package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/model"
	"backend/internal/service"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type WriterProfileHandler struct {
	profileService service.WriterProfileService
}

func NewWriterProfileHandler(profileService service.WriterProfileService) *WriterProfileHandler {
	return &WriterProfileHandler{profileService: profileService}
}

func (h *WriterProfileHandler) RegisterRoutes(router *gin.RouterGroup) {
	profiles := router.Group("/api/users/:id/writer-profile")
	{
		profiles.GET("", middleware.RequireAuth(), h.GetProfile)
		profiles.PUT("", middleware.RequireAuth(), h.UpsertProfile)
		profiles.DELETE("", middleware.RequireAuth(), h.DeleteProfile)
	}
}

// GetProfile returns a user's writer profile
// @Summary      Get writer profile
// @Tags         writer-profiles
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  string  true  "User ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/users/{id}/writer-profile [get]
func (h *WriterProfileHandler) GetProfile(c *gin.Context) {
	profile, err := h.profileService.GetProfile(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, profile))
}

// UpsertProfile creates or replaces a user's writer profile. Users edit their
// own profile; admins can edit anyone's.
// @Summary      Upsert writer profile
// @Tags         writer-profiles
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path  string                               true  "User ID"
// @Param        payload  body  service.UpsertWriterProfileRequest   true  "Profile payload"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/users/{id}/writer-profile [put]
func (h *WriterProfileHandler) UpsertProfile(c *gin.Context) {
	userID := c.Param("id")
	if userID != middleware.CallerID(c) && c.GetString("userRole") != model.RoleAdmin {
		c.JSON(http.StatusForbidden, response.Error(http.StatusForbidden, "You can only edit your own writer profile"))
		return
	}

	var req service.UpsertWriterProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	profile, err := h.profileService.UpsertProfile(c.Request.Context(), userID, req)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, profile))
}

// DeleteProfile removes a user's writer profile
// @Summary      Delete writer profile
// @Tags         writer-profiles
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  string  true  "User ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/users/{id}/writer-profile [delete]
func (h *WriterProfileHandler) DeleteProfile(c *gin.Context) {
	userID := c.Param("id")
	if userID != middleware.CallerID(c) && c.GetString("userRole") != model.RoleAdmin {
		c.JSON(http.StatusForbidden, response.Error(http.StatusForbidden, "You can only delete your own writer profile"))
		return
	}

	if err := h.profileService.DeleteProfile(c.Request.Context(), userID); err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Writer profile deleted"}))
}
