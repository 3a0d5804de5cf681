package search

import (
	"context"
	"time"

	"github.com/amiyamandal-dev/inkwell/internal/domain"
)

// Document is the indexed shape of an article
type Document struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Content     string    `json:"content"`
	Author      string    `json:"author"`
	Tags        []string  `json:"tags"`
	Category    string    `json:"category"`
	Published   bool      `json:"published"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Query represents a search query
type Query struct {
	Keyword       string
	Author        string
	Category      string
	Tag           string
	PublishedOnly bool
	Page          int
	Limit         int
}

// Result holds matching article ids in score order
type Result struct {
	IDs       []string
	Total     int64
	Page      int
	Limit     int
	QueryTime int64 // milliseconds
}

// Index defines the interface for search indexing
type Index interface {
	// IndexArticle adds or replaces an article
	IndexArticle(ctx context.Context, article *domain.Article) error

	// DeleteArticle removes an article from the index
	DeleteArticle(ctx context.Context, articleID string) error

	// Search searches the index
	Search(ctx context.Context, query *Query) (*Result, error)

	// Rebuild replaces the index contents with articles
	Rebuild(ctx context.Context, articles []*domain.Article) error

	// Count returns the number of documents in the index
	Count() (uint64, error)

	Close() error
}

// ArticleToDocument converts an article to a search document
func ArticleToDocument(article *domain.Article) *Document {
	return &Document{
		ID:          article.ID,
		Title:       article.Title,
		Description: article.Description,
		Content:     article.Content,
		Author:      article.Author,
		Tags:        article.Tags,
		Category:    article.Category,
		Published:   article.IsPublished,
		CreatedAt:   article.CreatedAt,
	}
}
