package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/amiyamandal-dev/inkwell/internal/api/middleware"
	"github.com/amiyamandal-dev/inkwell/internal/domain"
	"github.com/amiyamandal-dev/inkwell/internal/service"
	"github.com/amiyamandal-dev/inkwell/pkg/logger"
	"github.com/amiyamandal-dev/inkwell/pkg/response"
)

// ProfileHandler serves public profiles and the follow graph
type ProfileHandler struct {
	profileService *service.ProfileService
	logger         *logger.Logger
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(profileService *service.ProfileService, logger *logger.Logger) *ProfileHandler {
	return &ProfileHandler{
		profileService: profileService,
		logger:         logger.WithComponent("profile-handler"),
	}
}

// Get returns a user's public profile
func (h *ProfileHandler) Get(c *gin.Context) {
	profile, err := h.profileService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.Success(c, profile)
}

// Update edits the caller's profile fields
func (h *ProfileHandler) Update(c *gin.Context) {
	var req domain.UpdateProfileRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.profileService.Update(c.Request.Context(), middleware.GetActor(c), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.Success(c, user)
}

// UpdateAvatar replaces the caller's avatar with the uploaded image
func (h *ProfileHandler) UpdateAvatar(c *gin.Context) {
	header, err := c.FormFile("avatar")
	if err != nil {
		response.BadRequest(c, "Avatar file is required")
		return
	}
	file, err := header.Open()
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	defer file.Close()

	user, err := h.profileService.UpdateAvatar(c.Request.Context(), middleware.GetActor(c), header.Filename, header.Size, file)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.Success(c, user)
}

// ToggleFollow follows or unfollows a user
func (h *ProfileHandler) ToggleFollow(c *gin.Context) {
	result, err := h.profileService.ToggleFollow(c.Request.Context(), middleware.GetActor(c), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.Success(c, result)
}

// Followers lists who follows a user
func (h *ProfileHandler) Followers(c *gin.Context) {
	pagination, ok := paginate(c)
	if !ok {
		return
	}

	users, total, err := h.profileService.Followers(c.Request.Context(), c.Param("id"), pagination.Page, pagination.Limit)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.Paginated(c, "followers", users, pagination.Page, pagination.Limit, total)
}

// Following lists who a user follows
func (h *ProfileHandler) Following(c *gin.Context) {
	pagination, ok := paginate(c)
	if !ok {
		return
	}

	users, total, err := h.profileService.Following(c.Request.Context(), c.Param("id"), pagination.Page, pagination.Limit)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.Paginated(c, "following", users, pagination.Page, pagination.Limit, total)
}
