// Package storage keeps uploaded files on local disk or in an S3 bucket.
package storage

import (
	"context"
	"io"
	"path"
	"strings"

	"github.com/amiyamandal-dev/inkwell/internal/domain"
)

// StoredFile describes a file after upload
type StoredFile struct {
	Filename    string `json:"filename"`
	Path        string `json:"path"`
	URL         string `json:"url"`
	Size        int64  `json:"size"`
	ContentType string `json:"contentType"`
}

// Storage is implemented by the local and S3 backends.
// Keys are slash-separated relative paths such as "avatars/abc.png".
type Storage interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (*StoredFile, error)
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// CleanKey rejects keys that would escape the storage root
func CleanKey(key string) (string, error) {
	cleaned := path.Clean("/" + strings.ReplaceAll(key, "\\", "/"))
	cleaned = strings.TrimPrefix(cleaned, "/")
	if cleaned == "" || cleaned == "." || strings.Contains(key, "..") {
		return "", domain.ErrFileNotFound
	}
	return cleaned, nil
}
