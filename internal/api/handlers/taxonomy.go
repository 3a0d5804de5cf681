package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/amiyamandal-dev/inkwell/internal/api/middleware"
	"github.com/amiyamandal-dev/inkwell/internal/domain"
	"github.com/amiyamandal-dev/inkwell/internal/service"
	"github.com/amiyamandal-dev/inkwell/pkg/logger"
	"github.com/amiyamandal-dev/inkwell/pkg/response"
)

// CategoryHandler serves the category endpoints
type CategoryHandler struct {
	categoryService *service.CategoryService
	logger          *logger.Logger
}

// NewCategoryHandler creates a new category handler
func NewCategoryHandler(categoryService *service.CategoryService, logger *logger.Logger) *CategoryHandler {
	return &CategoryHandler{
		categoryService: categoryService,
		logger:          logger.WithComponent("category-handler"),
	}
}

// List returns every category with its article count
func (h *CategoryHandler) List(c *gin.Context) {
	categories, err := h.categoryService.List(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.Success(c, categories)
}

// Get returns a category with a page of its articles
func (h *CategoryHandler) Get(c *gin.Context) {
	pagination, ok := paginate(c)
	if !ok {
		return
	}

	detail, _, err := h.categoryService.Get(c.Request.Context(), c.Param("id"), pagination.Page, pagination.Limit)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.Success(c, detail)
}

// Create adds a category
func (h *CategoryHandler) Create(c *gin.Context) {
	var req domain.CategoryRequest
	if !bindJSON(c, &req) {
		return
	}

	category, err := h.categoryService.Create(c.Request.Context(), middleware.GetActor(c), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.Created(c, category)
}

// Update renames or redescribes a category
func (h *CategoryHandler) Update(c *gin.Context) {
	var req domain.CategoryRequest
	if !bindJSON(c, &req) {
		return
	}

	category, err := h.categoryService.Update(c.Request.Context(), middleware.GetActor(c), c.Param("id"), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.Success(c, category)
}

// Delete removes an unused category
func (h *CategoryHandler) Delete(c *gin.Context) {
	if err := h.categoryService.Delete(c.Request.Context(), middleware.GetActor(c), c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.SuccessWithMessage(c, "Category deleted", nil)
}

// TagHandler serves the tag endpoints
type TagHandler struct {
	tagService *service.TagService
	logger     *logger.Logger
}

// NewTagHandler creates a new tag handler
func NewTagHandler(tagService *service.TagService, logger *logger.Logger) *TagHandler {
	return &TagHandler{
		tagService: tagService,
		logger:     logger.WithComponent("tag-handler"),
	}
}

// List returns every tag, most used first
func (h *TagHandler) List(c *gin.Context) {
	tags, err := h.tagService.List(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.Success(c, tags)
}

// Hot returns the most used tags
func (h *TagHandler) Hot(c *gin.Context) {
	tags, err := h.tagService.Hot(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.Success(c, tags)
}

// Get returns a tag with a page of its articles
func (h *TagHandler) Get(c *gin.Context) {
	pagination, ok := paginate(c)
	if !ok {
		return
	}

	detail, _, err := h.tagService.Get(c.Request.Context(), c.Param("id"), pagination.Page, pagination.Limit)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.Success(c, detail)
}

// Create adds a tag
func (h *TagHandler) Create(c *gin.Context) {
	var req domain.TagRequest
	if !bindJSON(c, &req) {
		return
	}

	tag, err := h.tagService.Create(c.Request.Context(), middleware.GetActor(c), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.Created(c, tag)
}

// Update edits a tag
func (h *TagHandler) Update(c *gin.Context) {
	var req domain.TagRequest
	if !bindJSON(c, &req) {
		return
	}

	tag, err := h.tagService.Update(c.Request.Context(), middleware.GetActor(c), c.Param("id"), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.Success(c, tag)
}

// Delete removes an unused tag
func (h *TagHandler) Delete(c *gin.Context) {
	if err := h.tagService.Delete(c.Request.Context(), middleware.GetActor(c), c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.SuccessWithMessage(c, "Tag deleted", nil)
}
