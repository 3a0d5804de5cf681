package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/amiyamandal-dev/inkwell/internal/service"
	"github.com/amiyamandal-dev/inkwell/pkg/logger"
	"github.com/amiyamandal-dev/inkwell/pkg/response"
)

// SearchHandler handles search-related requests
type SearchHandler struct {
	searchService *service.SearchService
	logger        *logger.Logger
}

// NewSearchHandler creates a new search handler
func NewSearchHandler(searchService *service.SearchService, logger *logger.Logger) *SearchHandler {
	return &SearchHandler{
		searchService: searchService,
		logger:        logger.WithComponent("search-handler"),
	}
}

// keyword reads the required keyword parameter
func keyword(c *gin.Context) (string, bool) {
	kw := NewQueryParamParser(c).String("keyword", "")
	if kw == "" {
		response.BadRequest(c, "Keyword is required")
		return "", false
	}
	return kw, true
}

// Articles searches published articles
func (h *SearchHandler) Articles(c *gin.Context) {
	kw, ok := keyword(c)
	if !ok {
		return
	}
	pagination, ok := paginate(c)
	if !ok {
		return
	}

	articles, total, err := h.searchService.Articles(c.Request.Context(), kw, pagination.Page, pagination.Limit)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.Paginated(c, "articles", articles, pagination.Page, pagination.Limit, total)
}

// Users searches accounts by username and email
func (h *SearchHandler) Users(c *gin.Context) {
	kw, ok := keyword(c)
	if !ok {
		return
	}
	pagination, ok := paginate(c)
	if !ok {
		return
	}

	users, total, err := h.searchService.Users(c.Request.Context(), kw, pagination.Page, pagination.Limit)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.Paginated(c, "users", users, pagination.Page, pagination.Limit, total)
}

// All returns the top articles and users for a keyword
func (h *SearchHandler) All(c *gin.Context) {
	kw, ok := keyword(c)
	if !ok {
		return
	}

	results, err := h.searchService.All(c.Request.Context(), kw)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.Success(c, results)
}

// Stats reports the size of the search index
func (h *SearchHandler) Stats(c *gin.Context) {
	stats, err := h.searchService.IndexStats()
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.Success(c, stats)
}

// Reindex rebuilds the search index from the store
func (h *SearchHandler) Reindex(c *gin.Context) {
	n, err := h.searchService.Reindex(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.SuccessWithMessage(c, "Search index rebuilt", gin.H{"documents": n})
}
