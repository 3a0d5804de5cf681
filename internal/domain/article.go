package domain

import (
	"math"
	"strings"
	"time"
	"unicode/utf8"
)

// WordsPerMinute is the reading speed used for ReadTime
const WordsPerMinute = 200

// DefaultCategories are seeded on first start
var DefaultCategories = []string{"技术", "生活", "随笔", "其他"}

// Article represents a blog post
type Article struct {
	ID          string    `json:"id" bson:"_id"`
	Title       string    `json:"title" bson:"title"`
	Description string    `json:"description" bson:"description"`
	Content     string    `json:"content" bson:"content"`
	ContentHTML string    `json:"contentHtml" bson:"contentHtml"`
	Category    string    `json:"category" bson:"category"`
	Tags        []string  `json:"tags" bson:"tags"`
	Author      string    `json:"author" bson:"author"`
	IsPublished bool      `json:"isPublished" bson:"isPublished"`
	ViewCount   int64     `json:"viewCount" bson:"viewCount"`
	ReadTime    int       `json:"readTime" bson:"readTime"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt" bson:"updatedAt"`
}

// Validate checks the invariants the store relies on
func (a *Article) Validate() error {
	if n := utf8.RuneCountInString(a.Title); n < 2 || n > 100 {
		return NewValidationError("title", "must be between 2 and 100 characters")
	}
	if utf8.RuneCountInString(a.Content) < 10 {
		return NewValidationError("content", "must be at least 10 characters")
	}
	if utf8.RuneCountInString(a.Description) > 200 {
		return NewValidationError("description", "must be at most 200 characters")
	}
	if a.Category == "" {
		return NewValidationError("category", "is required")
	}
	if len(a.Tags) == 0 {
		return NewValidationError("tags", "at least one tag is required")
	}
	if a.Author == "" {
		return NewValidationError("author", "is required")
	}
	return nil
}

// HasTag reports whether the article carries tag (case-insensitive)
func (a *Article) HasTag(tag string) bool {
	for _, t := range a.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// ReadTime estimates reading minutes for content, never less than one
func ReadTime(content string) int {
	words := len(strings.Fields(content))
	minutes := int(math.Ceil(float64(words) / WordsPerMinute))
	if minutes < 1 {
		return 1
	}
	return minutes
}

// NormalizeTags trims, drops empties and de-duplicates case-insensitively, keeping first spelling
func NormalizeTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		key := strings.ToLower(t)
		if t == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, t)
	}
	return out
}

// ArticleSort selects list ordering
type ArticleSort string

const (
	SortNewest ArticleSort = "newest"
	SortViews  ArticleSort = "views"
)

// ArticleFilter narrows article listings
type ArticleFilter struct {
	Keyword       string
	Category      string
	Tag           string
	Author        string
	PublishedOnly bool
	Since         time.Time
	Sort          ArticleSort
	Page          int
	Limit         int
}

// Offset returns the number of rows to skip
func (f ArticleFilter) Offset() int {
	if f.Page < 1 {
		return 0
	}
	return (f.Page - 1) * f.Limit
}

// Matches applies the filter to a single article in memory
func (f ArticleFilter) Matches(a *Article) bool {
	if f.PublishedOnly && !a.IsPublished {
		return false
	}
	if f.Category != "" && !strings.EqualFold(a.Category, f.Category) {
		return false
	}
	if f.Tag != "" && !a.HasTag(f.Tag) {
		return false
	}
	if f.Author != "" && a.Author != f.Author {
		return false
	}
	if !f.Since.IsZero() && a.CreatedAt.Before(f.Since) {
		return false
	}
	if f.Keyword != "" {
		kw := strings.ToLower(f.Keyword)
		if !strings.Contains(strings.ToLower(a.Title), kw) &&
			!strings.Contains(strings.ToLower(a.Content), kw) &&
			!a.HasTag(f.Keyword) {
			return false
		}
	}
	return true
}

// CreateArticleRequest represents a request to create an article
type CreateArticleRequest struct {
	Title       string   `json:"title" binding:"required,min=2,max=100"`
	Content     string   `json:"content" binding:"required,min=10"`
	Description string   `json:"description" binding:"max=200"`
	Category    string   `json:"category" binding:"required"`
	Tags        []string `json:"tags" binding:"required,min=1,dive,required,max=30"`
	IsPublished *bool    `json:"isPublished"`
}

// UpdateArticleRequest represents a partial article update
type UpdateArticleRequest struct {
	Title       *string  `json:"title" binding:"omitempty,min=2,max=100"`
	Content     *string  `json:"content" binding:"omitempty,min=10"`
	Description *string  `json:"description" binding:"omitempty,max=200"`
	Category    *string  `json:"category"`
	Tags        []string `json:"tags" binding:"omitempty,min=1,dive,required,max=30"`
	IsPublished *bool    `json:"isPublished"`
}

// ArticleView is an article enriched for display
type ArticleView struct {
	*Article
	Author       *UserSummary `json:"author"`
	LikeCount    int64        `json:"likeCount"`
	CommentCount int64        `json:"commentCount"`
}

// ArticleDigest is the compact shape used in profile pages and rankings
type ArticleDigest struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Tags        []string     `json:"tags,omitempty"`
	ViewCount   int64        `json:"viewCount"`
	Author      *UserSummary `json:"author,omitempty"`
	CreatedAt   time.Time    `json:"createdAt"`
}

// Digest returns the compact representation of a
func (a *Article) Digest() *ArticleDigest {
	return &ArticleDigest{
		ID:          a.ID,
		Title:       a.Title,
		Description: a.Description,
		Tags:        a.Tags,
		ViewCount:   a.ViewCount,
		CreatedAt:   a.CreatedAt,
	}
}

// Visit records the last time a visitor was counted for an article
type Visit struct {
	Article     string    `json:"article" bson:"article"`
	Visitor     string    `json:"visitor" bson:"visitor"`
	LastVisitAt time.Time `json:"lastVisitAt" bson:"lastVisitAt"`
}

// ViewResult reports the outcome of a view registration
type ViewResult struct {
	ViewCount int64 `json:"viewCount"`
	Counted   bool  `json:"counted"`
}
