package repository

import (
	"context"

	"github.com/amiyamandal-dev/inkwell/internal/domain"
)

// CategoryRepository defines the interface for category persistence
type CategoryRepository interface {
	Create(ctx context.Context, category *domain.Category) error
	GetByID(ctx context.Context, id string) (*domain.Category, error)
	GetByName(ctx context.Context, name string) (*domain.Category, error)
	Update(ctx context.Context, category *domain.Category) error
	Delete(ctx context.Context, id string) error
	// List returns categories ordered by name
	List(ctx context.Context) ([]*domain.Category, error)
	SetArticleCount(ctx context.Context, id string, count int64) error
}

// TagRepository defines the interface for tag persistence
type TagRepository interface {
	Create(ctx context.Context, tag *domain.Tag) error
	GetByID(ctx context.Context, id string) (*domain.Tag, error)
	GetByName(ctx context.Context, name string) (*domain.Tag, error)
	Update(ctx context.Context, tag *domain.Tag) error
	Delete(ctx context.Context, id string) error
	// List returns tags ordered by name
	List(ctx context.Context) ([]*domain.Tag, error)
	// Hot returns the tags with the most articles
	Hot(ctx context.Context, limit int) ([]*domain.Tag, error)
	SetArticleCount(ctx context.Context, id string, count int64) error
}
