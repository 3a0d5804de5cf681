package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/amiyamandal-dev/inkwell/internal/api/middleware"
	"github.com/amiyamandal-dev/inkwell/internal/domain"
	"github.com/amiyamandal-dev/inkwell/internal/service"
	"github.com/amiyamandal-dev/inkwell/pkg/logger"
	"github.com/amiyamandal-dev/inkwell/pkg/response"
)

// CommentHandler serves comment threads
type CommentHandler struct {
	commentService *service.CommentService
	logger         *logger.Logger
}

// NewCommentHandler creates a new comment handler
func NewCommentHandler(commentService *service.CommentService, logger *logger.Logger) *CommentHandler {
	return &CommentHandler{
		commentService: commentService,
		logger:         logger.WithComponent("comment-handler"),
	}
}

// Create posts a comment or a reply
func (h *CommentHandler) Create(c *gin.Context) {
	var req domain.CreateCommentRequest
	if !bindJSON(c, &req) {
		return
	}

	comment, err := h.commentService.Create(c.Request.Context(), middleware.GetActor(c), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.Created(c, comment)
}

// ListByArticle returns the top-level comments of an article
func (h *CommentHandler) ListByArticle(c *gin.Context) {
	pagination, ok := paginate(c)
	if !ok {
		return
	}

	comments, total, err := h.commentService.ListByArticle(c.Request.Context(), c.Param("articleId"), pagination.Page, pagination.Limit)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.Paginated(c, "comments", comments, pagination.Page, pagination.Limit, total)
}

// ListReplies returns the replies to a comment
func (h *CommentHandler) ListReplies(c *gin.Context) {
	pagination, ok := paginate(c)
	if !ok {
		return
	}

	replies, total, err := h.commentService.ListReplies(c.Request.Context(), c.Param("commentId"), pagination.Page, pagination.Limit)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.Paginated(c, "replies", replies, pagination.Page, pagination.Limit, total)
}

// Delete soft-deletes the caller's comment
func (h *CommentHandler) Delete(c *gin.Context) {
	if err := h.commentService.Delete(c.Request.Context(), middleware.GetActor(c), c.Param("commentId")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.SuccessWithMessage(c, "Comment deleted", nil)
}
