package repository

import (
	"context"
	"time"

	"github.com/amiyamandal-dev/inkwell/internal/domain"
)

// ArticleRepository defines the interface for article persistence
type ArticleRepository interface {
	// Create creates a new article
	Create(ctx context.Context, article *domain.Article) error

	// GetByID retrieves an article by ID
	GetByID(ctx context.Context, id string) (*domain.Article, error)

	// GetByIDs retrieves the articles that exist among ids, in no particular order
	GetByIDs(ctx context.Context, ids []string) ([]*domain.Article, error)

	// Update updates an existing article
	Update(ctx context.Context, article *domain.Article) error

	// Delete deletes an article by ID
	Delete(ctx context.Context, id string) error

	// List retrieves one page of articles matching filter plus the total match count
	List(ctx context.Context, filter domain.ArticleFilter) ([]*domain.Article, int64, error)

	// Count counts articles matching filter; paging fields are ignored
	Count(ctx context.Context, filter domain.ArticleFilter) (int64, error)

	// IncrementViews adds one view unconditionally and returns the new total
	IncrementViews(ctx context.Context, id string) (int64, error)

	// RegisterVisit counts a view only when visitor has not been counted for
	// the article within window. The visit record and the counter change together.
	RegisterVisit(ctx context.Context, id, visitor string, window time.Duration, now time.Time) (*domain.ViewResult, error)

	// CountVisitsSince counts visit records touched at or after since
	CountVisitsSince(ctx context.Context, since time.Time) (int64, error)

	// TotalViews sums viewCount over all articles
	TotalViews(ctx context.Context) (int64, error)
}
