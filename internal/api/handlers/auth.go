package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/amiyamandal-dev/inkwell/internal/api/middleware"
	"github.com/amiyamandal-dev/inkwell/internal/domain"
	"github.com/amiyamandal-dev/inkwell/internal/service"
	"github.com/amiyamandal-dev/inkwell/pkg/logger"
	"github.com/amiyamandal-dev/inkwell/pkg/response"
)

// AuthHandler handles email verification and account requests
type AuthHandler struct {
	userService         *service.UserService
	verificationService *service.VerificationService
	logger              *logger.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(userService *service.UserService, verificationService *service.VerificationService, logger *logger.Logger) *AuthHandler {
	return &AuthHandler{
		userService:         userService,
		verificationService: verificationService,
		logger:              logger.WithComponent("auth-handler"),
	}
}

// SendCode mails a verification code
func (h *AuthHandler) SendCode(c *gin.Context) {
	var req domain.SendCodeRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.verificationService.SendCode(c.Request.Context(), req.Email); err != nil {
		respondError(c, h.logger, err)
		return
	}

	response.SuccessWithMessage(c, "Verification code sent", nil)
}

// VerifyEmail confirms a verification code
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	var req domain.VerifyEmailRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.verificationService.Verify(c.Request.Context(), req.Email, req.Code); err != nil {
		respondError(c, h.logger, err)
		return
	}

	response.SuccessWithMessage(c, "Email verified", nil)
}

// Register handles user registration
func (h *AuthHandler) Register(c *gin.Context) {
	var req domain.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := h.userService.Register(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	response.Created(c, resp)
}

// Login handles user login
func (h *AuthHandler) Login(c *gin.Context) {
	var req domain.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := h.userService.Login(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	response.Success(c, resp)
}

// RefreshToken handles token refresh
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refreshToken" binding:"required"`
	}
	if !bindJSON(c, &req) {
		return
	}

	tokens, err := h.userService.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	response.Success(c, tokens)
}

// GetMe returns the current user
func (h *AuthHandler) GetMe(c *gin.Context) {
	user, err := h.userService.GetUser(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	response.Success(c, user)
}

// UpdateMe changes username or email
func (h *AuthHandler) UpdateMe(c *gin.Context) {
	var req domain.UpdateAccountRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.userService.UpdateAccount(c.Request.Context(), middleware.GetUserID(c), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	response.Success(c, user)
}

// ChangePassword replaces the caller's password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req domain.ChangePasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.userService.ChangePassword(c.Request.Context(), middleware.GetUserID(c), &req); err != nil {
		respondError(c, h.logger, err)
		return
	}

	response.SuccessWithMessage(c, "Password changed", nil)
}

// Delete removes an account
func (h *AuthHandler) Delete(c *gin.Context) {
	if err := h.userService.Delete(c.Request.Context(), middleware.GetActor(c), c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}

	response.SuccessWithMessage(c, "User deleted", nil)
}
