package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/amiyamandal-dev/inkwell/internal/service"
	"github.com/amiyamandal-dev/inkwell/pkg/logger"
	"github.com/amiyamandal-dev/inkwell/pkg/response"
)

// StatisticsHandler serves counters, rankings and view tracking
type StatisticsHandler struct {
	statsService *service.StatisticsService
	logger       *logger.Logger
}

// NewStatisticsHandler creates a new statistics handler
func NewStatisticsHandler(statsService *service.StatisticsService, logger *logger.Logger) *StatisticsHandler {
	return &StatisticsHandler{
		statsService: statsService,
		logger:       logger.WithComponent("statistics-handler"),
	}
}

// Article returns the counters of one article
func (h *StatisticsHandler) Article(c *gin.Context) {
	stats, err := h.statsService.ArticleStats(c.Request.Context(), c.Param("articleId"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.Success(c, stats)
}

// User returns the activity counters of one user
func (h *StatisticsHandler) User(c *gin.Context) {
	stats, err := h.statsService.UserStats(c.Request.Context(), c.Param("userId"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.Success(c, stats)
}

// Overall returns site totals and the last week's activity
func (h *StatisticsHandler) Overall(c *gin.Context) {
	stats, err := h.statsService.Overall(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.Success(c, stats)
}

// Hot returns the most viewed articles and the most active authors
func (h *StatisticsHandler) Hot(c *gin.Context) {
	stats, err := h.statsService.Hot(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.Success(c, stats)
}

// RegisterView counts a view once per visitor window.
// The visitor defaults to the client IP.
func (h *StatisticsHandler) RegisterView(c *gin.Context) {
	visitor := c.GetHeader("X-Visitor-Id")
	if visitor == "" {
		visitor = c.ClientIP()
	}

	result, err := h.statsService.RegisterView(c.Request.Context(), c.Param("id"), visitor)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.Success(c, result)
}

// HotArticles returns recent articles ranked by views
func (h *StatisticsHandler) HotArticles(c *gin.Context) {
	parser := NewQueryParamParser(c)
	days := parser.Int("days", service.DefaultHotDays)
	limit := parser.Int("limit", service.DefaultHotLimit)
	if err := parser.Error(); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	articles, err := h.statsService.HotArticles(c.Request.Context(), days, limit)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.Success(c, articles)
}

// Overview returns total and today's views
func (h *StatisticsHandler) Overview(c *gin.Context) {
	overview, err := h.statsService.Overview(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.Success(c, overview)
}
