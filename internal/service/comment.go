package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/amiyamandal-dev/inkwell/internal/cache"
	"github.com/amiyamandal-dev/inkwell/internal/domain"
	"github.com/amiyamandal-dev/inkwell/internal/repository"
	"github.com/amiyamandal-dev/inkwell/pkg/logger"
)

// CommentService handles comment threads
type CommentService struct {
	comments repository.CommentRepository
	articles repository.ArticleRepository
	users    repository.UserRepository
	likes    repository.LikeRepository
	cache    cache.Cache
	oplog    *OperationLog
	logger   *logger.Logger
}

// NewCommentService creates a new comment service
func NewCommentService(store *repository.Store, c cache.Cache, oplog *OperationLog, logger *logger.Logger) *CommentService {
	return &CommentService{
		comments: store.Comments,
		articles: store.Articles,
		users:    store.Users,
		likes:    store.Likes,
		cache:    c,
		oplog:    oplog,
		logger:   logger.WithComponent("comment-service"),
	}
}

// Create posts a comment. A reply's parent must be a live top-level comment
// of the same article; the parent's replyCount moves with the insert.
func (s *CommentService) Create(ctx context.Context, actor *Actor, req *domain.CreateCommentRequest) (*domain.CommentView, error) {
	if _, err := s.articles.GetByID(ctx, req.ArticleID); err != nil {
		return nil, err
	}

	now := time.Now()
	comment := &domain.Comment{
		ID:        uuid.NewString(),
		Content:   strings.TrimSpace(req.Content),
		Article:   req.ArticleID,
		Author:    actor.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := comment.Validate(); err != nil {
		return nil, err
	}

	if req.ParentID != nil && *req.ParentID != "" {
		parent, err := s.comments.GetByID(ctx, *req.ParentID)
		if err != nil {
			return nil, err
		}
		if parent.IsDeleted {
			return nil, domain.ErrCommentNotFound
		}
		if !parent.IsTopLevel() || parent.Article != comment.Article {
			return nil, domain.ErrInvalidParent
		}
		parentID := parent.ID
		comment.Parent = &parentID
	}

	if req.ReplyTo != nil && *req.ReplyTo != "" {
		if _, err := s.users.GetByID(ctx, *req.ReplyTo); err != nil {
			return nil, err
		}
		replyTo := *req.ReplyTo
		comment.ReplyTo = &replyTo
	}

	if err := s.comments.Create(ctx, comment); err != nil {
		s.logger.Error("Failed to create comment", "article_id", comment.Article, "error", err)
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}

	invalidateStats(ctx, s.cache, s.logger)
	s.oplog.Record(OpCreate, actor.ID, "comment", comment.ID, "article_id", comment.Article)

	views, err := s.enrich(ctx, []*domain.Comment{comment})
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

// ListByArticle lists live top-level comments, newest first
func (s *CommentService) ListByArticle(ctx context.Context, articleID string, page, limit int) ([]*domain.CommentView, int64, error) {
	if _, err := s.articles.GetByID(ctx, articleID); err != nil {
		return nil, 0, err
	}
	res, err := s.comments.ListTopLevel(ctx, articleID, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list comments: %w", err)
	}
	views, err := s.enrich(ctx, res.Items)
	if err != nil {
		return nil, 0, err
	}
	return views, res.Total, nil
}

// ListReplies lists live replies to a comment, oldest first.
// An unknown parent yields an empty page.
func (s *CommentService) ListReplies(ctx context.Context, parentID string, page, limit int) ([]*domain.CommentView, int64, error) {
	res, err := s.comments.ListReplies(ctx, parentID, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list replies: %w", err)
	}
	views, err := s.enrich(ctx, res.Items)
	if err != nil {
		return nil, 0, err
	}
	return views, res.Total, nil
}

// Delete soft-deletes a comment; only its author may do so
func (s *CommentService) Delete(ctx context.Context, actor *Actor, id string) error {
	comment, err := s.comments.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if comment.IsDeleted {
		return domain.ErrCommentNotFound
	}
	if actor == nil || comment.Author != actor.ID {
		return domain.ErrUnauthorized
	}

	if err := s.comments.SetDeleted(ctx, id, true); err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}

	invalidateStats(ctx, s.cache, s.logger)
	s.oplog.Record(OpDelete, actor.ID, "comment", id)
	return nil
}

// ListAll lists every comment for moderation, deleted ones included
func (s *CommentService) ListAll(ctx context.Context, page, limit int) ([]*domain.CommentView, int64, error) {
	res, err := s.comments.ListAll(ctx, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list comments: %w", err)
	}
	views, err := s.enrich(ctx, res.Items)
	if err != nil {
		return nil, 0, err
	}
	return views, res.Total, nil
}

// Moderate sets the deleted flag of any comment
func (s *CommentService) Moderate(ctx context.Context, actor *Actor, id string, deleted bool) error {
	if _, err := s.comments.GetByID(ctx, id); err != nil {
		return err
	}
	if err := s.comments.SetDeleted(ctx, id, deleted); err != nil {
		return fmt.Errorf("failed to moderate comment: %w", err)
	}

	invalidateStats(ctx, s.cache, s.logger)
	op := OpDelete
	if !deleted {
		op = OpUpdate
	}
	s.oplog.Record(op, actor.ID, "comment", id, "deleted", deleted)
	return nil
}

// enrich attaches author and reply target summaries and like counts
func (s *CommentService) enrich(ctx context.Context, comments []*domain.Comment) ([]*domain.CommentView, error) {
	ids := make([]string, 0, len(comments)*2)
	for _, c := range comments {
		ids = append(ids, c.Author)
		if c.ReplyTo != nil {
			ids = append(ids, *c.ReplyTo)
		}
	}
	users, err := summaries(ctx, s.users, ids)
	if err != nil {
		return nil, err
	}

	views := make([]*domain.CommentView, len(comments))
	for i, c := range comments {
		v := &domain.CommentView{Comment: c, Author: users[c.Author]}
		if c.ReplyTo != nil {
			v.ReplyTo = users[*c.ReplyTo]
		}
		if v.LikeCount, err = s.likes.CountByTarget(ctx, domain.TargetComment, c.ID); err != nil {
			return nil, fmt.Errorf("failed to count likes: %w", err)
		}
		views[i] = v
	}
	return views, nil
}
