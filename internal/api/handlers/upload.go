package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/amiyamandal-dev/inkwell/internal/domain"
	"github.com/amiyamandal-dev/inkwell/internal/service"
	"github.com/amiyamandal-dev/inkwell/pkg/logger"
	"github.com/amiyamandal-dev/inkwell/pkg/response"
)

// UploadHandler handles file uploads
type UploadHandler struct {
	uploadService *service.UploadService
	logger        *logger.Logger
}

// NewUploadHandler creates a new upload handler
func NewUploadHandler(uploadService *service.UploadService, logger *logger.Logger) *UploadHandler {
	return &UploadHandler{
		uploadService: uploadService,
		logger:        logger.WithComponent("upload-handler"),
	}
}

// storeUpload reads the multipart file under field and stores it as kind
func storeUpload(c *gin.Context, uploads *service.UploadService, kind service.UploadKind, field string) (*domain.UploadResult, error) {
	header, err := c.FormFile(field)
	if err != nil {
		return nil, domain.NewValidationError(field, "file is required")
	}

	file, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return uploads.Store(c.Request.Context(), kind, header.Filename, header.Size, file)
}

// UploadAvatar stores an avatar image
func (h *UploadHandler) UploadAvatar(c *gin.Context) {
	h.upload(c, service.UploadAvatar, "avatar")
}

// UploadArticle stores an article image
func (h *UploadHandler) UploadArticle(c *gin.Context) {
	h.upload(c, service.UploadArticle, "article")
}

func (h *UploadHandler) upload(c *gin.Context, kind service.UploadKind, field string) {
	file, err := storeUpload(c, h.uploadService, kind, field)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	response.SuccessWithMessage(c, "File uploaded", file)
}

// Delete removes an uploaded file
func (h *UploadHandler) Delete(c *gin.Context) {
	if err := h.uploadService.Delete(c.Request.Context(), c.Param("filename")); err != nil {
		respondError(c, h.logger, err)
		return
	}

	response.SuccessWithMessage(c, "File deleted", nil)
}
