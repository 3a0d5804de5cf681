package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/amiyamandal-dev/inkwell/internal/api/middleware"
	"github.com/amiyamandal-dev/inkwell/internal/service"
	"github.com/amiyamandal-dev/inkwell/pkg/logger"
	"github.com/amiyamandal-dev/inkwell/pkg/response"
)

// LikeHandler toggles likes on articles and comments
type LikeHandler struct {
	likeService *service.LikeService
	logger      *logger.Logger
}

// NewLikeHandler creates a new like handler
func NewLikeHandler(likeService *service.LikeService, logger *logger.Logger) *LikeHandler {
	return &LikeHandler{
		likeService: likeService,
		logger:      logger.WithComponent("like-handler"),
	}
}

// ToggleArticle likes or unlikes an article
func (h *LikeHandler) ToggleArticle(c *gin.Context) {
	result, err := h.likeService.ToggleArticle(c.Request.Context(), middleware.GetActor(c), c.Param("articleId"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.Success(c, result)
}

// ArticleStatus reports whether the caller likes an article
func (h *LikeHandler) ArticleStatus(c *gin.Context) {
	result, err := h.likeService.ArticleStatus(c.Request.Context(), middleware.GetActor(c), c.Param("articleId"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.Success(c, result)
}

// ToggleComment likes or unlikes a comment
func (h *LikeHandler) ToggleComment(c *gin.Context) {
	result, err := h.likeService.ToggleComment(c.Request.Context(), middleware.GetActor(c), c.Param("commentId"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.Success(c, result)
}
