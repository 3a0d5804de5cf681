package repository

import (
	"context"
	"time"

	"github.com/amiyamandal-dev/inkwell/internal/domain"
)

// CommentCountFilter narrows comment counts
type CommentCountFilter struct {
	Article        string
	Author         string
	Since          time.Time
	IncludeDeleted bool
}

// CommentRepository defines the interface for comment persistence
type CommentRepository interface {
	// Create stores comment. When comment.Parent is set the parent's replyCount
	// is incremented in the same transaction; a missing parent yields ErrCommentNotFound.
	Create(ctx context.Context, comment *domain.Comment) error

	// GetByID retrieves a comment by ID, deleted or not
	GetByID(ctx context.Context, id string) (*domain.Comment, error)

	// ListTopLevel lists non-deleted comments without a parent, newest first
	ListTopLevel(ctx context.Context, articleID string, page, limit int) (*domain.CommentPage, error)

	// ListReplies lists non-deleted replies to parentID, oldest first
	ListReplies(ctx context.Context, parentID string, page, limit int) (*domain.CommentPage, error)

	// ListAll lists every comment newest first for moderation
	ListAll(ctx context.Context, page, limit int) (*domain.CommentPage, error)

	// SetDeleted flips the soft-delete flag; replyCount of the parent is left untouched
	SetDeleted(ctx context.Context, id string, deleted bool) error

	// Count counts comments matching filter
	Count(ctx context.Context, filter CommentCountFilter) (int64, error)

	// DeleteByArticle hard-deletes all comments of an article and returns their ids
	DeleteByArticle(ctx context.Context, articleID string) ([]string, error)
}
