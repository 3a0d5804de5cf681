package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/amiyamandal-dev/inkwell/internal/api/middleware"
	"github.com/amiyamandal-dev/inkwell/internal/domain"
	"github.com/amiyamandal-dev/inkwell/internal/service"
	"github.com/amiyamandal-dev/inkwell/pkg/logger"
	"github.com/amiyamandal-dev/inkwell/pkg/response"
)

// AdminHandler serves the moderation endpoints
type AdminHandler struct {
	adminService *service.AdminService
	logger       *logger.Logger
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(adminService *service.AdminService, logger *logger.Logger) *AdminHandler {
	return &AdminHandler{
		adminService: adminService,
		logger:       logger.WithComponent("admin-handler"),
	}
}

type userStatusRequest struct {
	IsActive *bool `json:"isActive" binding:"required"`
}

type userRoleRequest struct {
	UserID string `json:"userId" binding:"required"`
}

type articleStatusRequest struct {
	IsPublished *bool `json:"isPublished" binding:"required"`
}

// Dashboard returns the headline counters
func (h *AdminHandler) Dashboard(c *gin.Context) {
	dashboard, err := h.adminService.Dashboard(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.Success(c, dashboard)
}

// ListUsers pages through every account
func (h *AdminHandler) ListUsers(c *gin.Context) {
	pagination, ok := paginate(c)
	if !ok {
		return
	}

	users, total, err := h.adminService.ListUsers(c.Request.Context(), pagination.Page, pagination.Limit)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.Paginated(c, "users", users, pagination.Page, pagination.Limit, total)
}

// GetUser returns one account
func (h *AdminHandler) GetUser(c *gin.Context) {
	user, err := h.adminService.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.Success(c, user)
}

// DeleteUser removes an account
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	if err := h.adminService.DeleteUser(c.Request.Context(), middleware.GetActor(c), c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.SuccessWithMessage(c, "User deleted", nil)
}

// SetUserStatus activates or deactivates an account
func (h *AdminHandler) SetUserStatus(c *gin.Context) {
	var req userStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.adminService.SetUserStatus(c.Request.Context(), middleware.GetActor(c), c.Param("userId"), *req.IsActive)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.Success(c, user)
}

// MakeAdmin grants admin rights
func (h *AdminHandler) MakeAdmin(c *gin.Context) {
	h.setRole(c, domain.RoleAdmin)
}

// RemoveAdmin revokes admin rights
func (h *AdminHandler) RemoveAdmin(c *gin.Context) {
	h.setRole(c, domain.RoleUser)
}

func (h *AdminHandler) setRole(c *gin.Context, role domain.Role) {
	var req userRoleRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.adminService.SetRole(c.Request.Context(), middleware.GetActor(c), req.UserID, role)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.Success(c, user)
}

// ListArticles pages through every article, drafts included
func (h *AdminHandler) ListArticles(c *gin.Context) {
	pagination, ok := paginate(c)
	if !ok {
		return
	}
	search := NewQueryParamParser(c).String("search", "")

	articles, total, err := h.adminService.ListArticles(c.Request.Context(), middleware.GetActor(c), search, pagination.Page, pagination.Limit)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.Paginated(c, "articles", articles, pagination.Page, pagination.Limit, total)
}

// SetArticleStatus publishes or withdraws an article
func (h *AdminHandler) SetArticleStatus(c *gin.Context) {
	var req articleStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	article, err := h.adminService.SetArticleStatus(c.Request.Context(), middleware.GetActor(c), c.Param("id"), *req.IsPublished)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.Success(c, article)
}

// System returns totals plus the last week
func (h *AdminHandler) System(c *gin.Context) {
	stats, err := h.adminService.SystemStats(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.Success(c, stats)
}

// ListComments pages through every comment, deleted ones included
func (h *AdminHandler) ListComments(c *gin.Context) {
	pagination, ok := paginate(c)
	if !ok {
		return
	}

	comments, total, err := h.adminService.ListComments(c.Request.Context(), pagination.Page, pagination.Limit)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.Paginated(c, "comments", comments, pagination.Page, pagination.Limit, total)
}

// DeleteComment hides any comment
func (h *AdminHandler) DeleteComment(c *gin.Context) {
	if err := h.adminService.DeleteComment(c.Request.Context(), middleware.GetActor(c), c.Param("commentId")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.SuccessWithMessage(c, "Comment deleted", nil)
}

// RestoreComment brings back a deleted comment
func (h *AdminHandler) RestoreComment(c *gin.Context) {
	if err := h.adminService.RestoreComment(c.Request.Context(), middleware.GetActor(c), c.Param("commentId")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.SuccessWithMessage(c, "Comment restored", nil)
}
