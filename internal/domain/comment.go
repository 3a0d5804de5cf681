package domain

import (
	"strings"
	"time"
	"unicode/utf8"
)

// Comment is a remark on an article, optionally replying to a top-level comment.
// ReplyCount counts every reply ever attached, soft-deleted ones included.
type Comment struct {
	ID         string    `json:"id" bson:"_id"`
	Content    string    `json:"content" bson:"content"`
	Article    string    `json:"article" bson:"article"`
	Author     string    `json:"author" bson:"author"`
	Parent     *string   `json:"parent" bson:"parent"`
	ReplyTo    *string   `json:"replyTo" bson:"replyTo"`
	ReplyCount int64     `json:"replyCount" bson:"replyCount"`
	IsDeleted  bool      `json:"isDeleted" bson:"isDeleted"`
	CreatedAt  time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt" bson:"updatedAt"`
}

// IsTopLevel reports whether the comment has no parent
func (c *Comment) IsTopLevel() bool {
	return c.Parent == nil
}

// Validate checks content length
func (c *Comment) Validate() error {
	n := utf8.RuneCountInString(strings.TrimSpace(c.Content))
	if n < 1 || n > 1000 {
		return NewValidationError("content", "must be between 1 and 1000 characters")
	}
	if c.Article == "" {
		return NewValidationError("articleId", "is required")
	}
	return nil
}

// CreateCommentRequest is the body of POST /api/comments
type CreateCommentRequest struct {
	ArticleID string  `json:"articleId" binding:"required"`
	Content   string  `json:"content" binding:"required,min=1,max=1000"`
	ParentID  *string `json:"parentId"`
	ReplyTo   *string `json:"replyTo"`
}

// CommentView is a comment enriched with display fields
type CommentView struct {
	*Comment
	Author    *UserSummary `json:"author"`
	ReplyTo   *UserSummary `json:"replyTo,omitempty"`
	LikeCount int64        `json:"likeCount"`
}

// CommentPage is a window of comments plus the total match count
type CommentPage struct {
	Items []*Comment
	Total int64
}
