package domain

import "time"

// TargetKind identifies what a like points at
type TargetKind string

const (
	TargetArticle TargetKind = "article"
	TargetComment TargetKind = "comment"
)

// Like links a user to exactly one article or comment
type Like struct {
	ID        string    `json:"id" bson:"_id"`
	User      string    `json:"user" bson:"user"`
	Article   *string   `json:"article,omitempty" bson:"article,omitempty"`
	Comment   *string   `json:"comment,omitempty" bson:"comment,omitempty"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}

// Target returns the kind and id of the liked resource
func (l *Like) Target() (TargetKind, string) {
	if l.Article != nil {
		return TargetArticle, *l.Article
	}
	if l.Comment != nil {
		return TargetComment, *l.Comment
	}
	return "", ""
}

// NewLike builds a like for the given target
func NewLike(id, userID string, kind TargetKind, targetID string, now time.Time) *Like {
	like := &Like{ID: id, User: userID, CreatedAt: now}
	target := targetID
	switch kind {
	case TargetArticle:
		like.Article = &target
	case TargetComment:
		like.Comment = &target
	}
	return like
}

// LikeResult is returned by toggles and status checks
type LikeResult struct {
	Liked     bool  `json:"liked"`
	LikeCount int64 `json:"likeCount"`
}
