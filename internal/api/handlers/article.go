package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/amiyamandal-dev/inkwell/internal/api/middleware"
	"github.com/amiyamandal-dev/inkwell/internal/domain"
	"github.com/amiyamandal-dev/inkwell/internal/service"
	"github.com/amiyamandal-dev/inkwell/pkg/logger"
	"github.com/amiyamandal-dev/inkwell/pkg/response"
)

// ArticleHandler handles article-related requests
type ArticleHandler struct {
	articleService *service.ArticleService
	uploadService  *service.UploadService
	logger         *logger.Logger
}

// NewArticleHandler creates a new article handler
func NewArticleHandler(articleService *service.ArticleService, uploadService *service.UploadService, logger *logger.Logger) *ArticleHandler {
	return &ArticleHandler{
		articleService: articleService,
		uploadService:  uploadService,
		logger:         logger.WithComponent("article-handler"),
	}
}

// Create handles article creation
func (h *ArticleHandler) Create(c *gin.Context) {
	var req domain.CreateArticleRequest
	if !bindJSON(c, &req) {
		return
	}

	article, err := h.articleService.Create(c.Request.Context(), middleware.GetActor(c), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	response.Created(c, article)
}

// Get retrieves an article by ID
func (h *ArticleHandler) Get(c *gin.Context) {
	article, err := h.articleService.Get(c.Request.Context(), middleware.GetActor(c), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	response.Success(c, article)
}

// List retrieves articles with pagination and filtering
func (h *ArticleHandler) List(c *gin.Context) {
	parser := NewQueryParamParser(c)

	pagination := parser.Pagination(defaultPageSize)
	filter := domain.ArticleFilter{
		Keyword:  parser.String("keyword", ""),
		Category: parser.String("category", ""),
		Tag:      parser.String("tag", ""),
		Author:   parser.String("author", ""),
		Page:     pagination.Page,
		Limit:    pagination.Limit,
	}
	if parser.String("sort", "") == string(domain.SortViews) {
		filter.Sort = domain.SortViews
	}
	all := parser.Bool("all")

	if err := parser.Error(); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	articles, total, err := h.articleService.List(c.Request.Context(), middleware.GetActor(c), filter, all)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	response.Paginated(c, "articles", articles, pagination.Page, pagination.Limit, total)
}

// Update handles article updates
func (h *ArticleHandler) Update(c *gin.Context) {
	var req domain.UpdateArticleRequest
	if !bindJSON(c, &req) {
		return
	}

	article, err := h.articleService.Update(c.Request.Context(), middleware.GetActor(c), c.Param("id"), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	response.Success(c, article)
}

// Delete handles article deletion
func (h *ArticleHandler) Delete(c *gin.Context) {
	if err := h.articleService.Delete(c.Request.Context(), middleware.GetActor(c), c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}

	response.SuccessWithMessage(c, "Article deleted", nil)
}

// UploadImage stores an image for use inside article content
func (h *ArticleHandler) UploadImage(c *gin.Context) {
	file, err := storeUpload(c, h.uploadService, service.UploadArticle, "image")
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	response.Success(c, gin.H{"url": file.URL})
}
