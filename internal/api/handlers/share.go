package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/amiyamandal-dev/inkwell/internal/service"
	"github.com/amiyamandal-dev/inkwell/pkg/logger"
	"github.com/amiyamandal-dev/inkwell/pkg/response"
)

// ShareHandler serves shared article views and share metadata
type ShareHandler struct {
	shareService *service.ShareService
	logger       *logger.Logger
}

// NewShareHandler creates a new share handler
func NewShareHandler(shareService *service.ShareService, logger *logger.Logger) *ShareHandler {
	return &ShareHandler{
		shareService: shareService,
		logger:       logger.WithComponent("share-handler"),
	}
}

// View returns a published article and counts the view
func (h *ShareHandler) View(c *gin.Context) {
	article, err := h.shareService.View(c.Request.Context(), c.Param("articleId"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.Success(c, article)
}

// Link returns the public share link of an article
func (h *ShareHandler) Link(c *gin.Context) {
	link, err := h.shareService.Link(c.Request.Context(), c.Param("articleId"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.Success(c, gin.H{"shareLink": link})
}

// Data returns what a client needs to render a share card
func (h *ShareHandler) Data(c *gin.Context) {
	data, err := h.shareService.Data(c.Request.Context(), c.Param("articleId"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.Success(c, data)
}
