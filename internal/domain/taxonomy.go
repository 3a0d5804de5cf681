package domain

import (
	"strings"
	"time"
	"unicode/utf8"
)

// DefaultTagColor is assigned to tags created without a color
const DefaultTagColor = "#1890ff"

// Category groups articles; ArticleCount is recomputed by query
type Category struct {
	ID           string    `json:"id" bson:"_id"`
	Name         string    `json:"name" bson:"name"`
	Description  string    `json:"description" bson:"description"`
	ArticleCount int64     `json:"articleCount" bson:"articleCount"`
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt" bson:"updatedAt"`
}

// Validate checks category field lengths
func (c *Category) Validate() error {
	if n := utf8.RuneCountInString(strings.TrimSpace(c.Name)); n < 1 || n > 50 {
		return NewValidationError("name", "must be between 1 and 50 characters")
	}
	if utf8.RuneCountInString(c.Description) > 200 {
		return NewValidationError("description", "must be at most 200 characters")
	}
	return nil
}

// Tag labels articles; ArticleCount is recomputed by query
type Tag struct {
	ID           string    `json:"id" bson:"_id"`
	Name         string    `json:"name" bson:"name"`
	Description  string    `json:"description" bson:"description"`
	Color        string    `json:"color" bson:"color"`
	ArticleCount int64     `json:"articleCount" bson:"articleCount"`
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt" bson:"updatedAt"`
}

// Validate checks tag field lengths
func (t *Tag) Validate() error {
	if n := utf8.RuneCountInString(strings.TrimSpace(t.Name)); n < 1 || n > 30 {
		return NewValidationError("name", "must be between 1 and 30 characters")
	}
	if utf8.RuneCountInString(t.Description) > 200 {
		return NewValidationError("description", "must be at most 200 characters")
	}
	return nil
}

// CategoryRequest is the body for creating or updating a category
type CategoryRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=50"`
	Description string `json:"description" binding:"max=200"`
}

// TagRequest is the body for creating or updating a tag
type TagRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=30"`
	Description string `json:"description" binding:"max=200"`
	Color       string `json:"color" binding:"omitempty,hexcolor"`
}

// TagDetail is a tag with a page of its newest published articles
type TagDetail struct {
	*Tag
	Articles []*ArticleDigest `json:"articles"`
}

// CategoryDetail is a category with a page of its newest published articles
type CategoryDetail struct {
	*Category
	Articles []*ArticleDigest `json:"articles"`
}
