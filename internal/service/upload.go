package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/amiyamandal-dev/inkwell/internal/domain"
	"github.com/amiyamandal-dev/inkwell/internal/storage"
	"github.com/amiyamandal-dev/inkwell/pkg/logger"
)

// UploadKind selects the folder an upload lands in
type UploadKind string

const (
	UploadAvatar  UploadKind = "avatars"
	UploadArticle UploadKind = "articles"
)

// sniffLen is how much of a file http.DetectContentType looks at
const sniffLen = 512

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// UploadService validates images and hands them to the configured storage
type UploadService struct {
	storage storage.Storage
	maxSize int64
	logger  *logger.Logger
}

// NewUploadService creates a new upload service
func NewUploadService(store storage.Storage, maxSize int64, logger *logger.Logger) *UploadService {
	return &UploadService{
		storage: store,
		maxSize: maxSize,
		logger:  logger.WithComponent("upload-service"),
	}
}

// Store saves an image under kind with a fresh name
func (s *UploadService) Store(ctx context.Context, kind UploadKind, name string, size int64, body io.Reader) (*domain.UploadResult, error) {
	if kind != UploadAvatar && kind != UploadArticle {
		return nil, domain.ErrInvalidInput
	}
	if size > s.maxSize {
		return nil, domain.ErrFileTooLarge
	}

	ext := strings.ToLower(filepath.Ext(name))
	if !allowedExtensions[ext] {
		return nil, domain.ErrUnsupportedFile
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(body, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	head = head[:n]

	contentType := http.DetectContentType(head)
	if !strings.HasPrefix(contentType, "image/") {
		return nil, domain.ErrUnsupportedFile
	}

	// the declared size may lie; never read past the limit
	reader := io.LimitReader(io.MultiReader(bytes.NewReader(head), body), s.maxSize+1)

	filename := uuid.NewString() + ext
	key := string(kind) + "/" + filename
	file, err := s.storage.Put(ctx, key, reader, size, contentType)
	if err != nil {
		s.logger.Error("Failed to store upload", "key", key, "error", err)
		return nil, fmt.Errorf("failed to store upload: %w", err)
	}
	if file.Size > s.maxSize {
		if err := s.storage.Delete(ctx, key); err != nil {
			s.logger.Warn("Failed to remove oversized upload", "key", key, "error", err)
		}
		return nil, domain.ErrFileTooLarge
	}

	s.logger.Info("File uploaded", "key", key, "size", file.Size, "content_type", contentType)
	return &domain.UploadResult{
		Filename:     file.Filename,
		OriginalName: filepath.Base(name),
		URL:          file.URL,
		Size:         file.Size,
		ContentType:  file.ContentType,
	}, nil
}

// Delete removes an uploaded file by name from whichever folder holds it
func (s *UploadService) Delete(ctx context.Context, filename string) error {
	if filename == "" || strings.ContainsAny(filename, `/\`) {
		return domain.ErrFileNotFound
	}
	for _, kind := range []UploadKind{UploadAvatar, UploadArticle} {
		key := string(kind) + "/" + filename
		ok, err := s.storage.Exists(ctx, key)
		if err != nil {
			return fmt.Errorf("failed to look up file: %w", err)
		}
		if !ok {
			continue
		}
		if err := s.storage.Delete(ctx, key); err != nil {
			return fmt.Errorf("failed to delete file: %w", err)
		}
		s.logger.Info("File deleted", "key", key)
		return nil
	}
	return domain.ErrFileNotFound
}
