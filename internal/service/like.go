package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/amiyamandal-dev/inkwell/internal/domain"
	"github.com/amiyamandal-dev/inkwell/internal/repository"
	"github.com/amiyamandal-dev/inkwell/pkg/logger"
)

// LikeService toggles likes on articles and comments
type LikeService struct {
	likes    repository.LikeRepository
	articles repository.ArticleRepository
	comments repository.CommentRepository
	logger   *logger.Logger
}

// NewLikeService creates a new like service
func NewLikeService(store *repository.Store, logger *logger.Logger) *LikeService {
	return &LikeService{
		likes:    store.Likes,
		articles: store.Articles,
		comments: store.Comments,
		logger:   logger.WithComponent("like-service"),
	}
}

// ToggleArticle likes the article, or removes an existing like
func (s *LikeService) ToggleArticle(ctx context.Context, actor *Actor, articleID string) (*domain.LikeResult, error) {
	if _, err := s.articles.GetByID(ctx, articleID); err != nil {
		return nil, err
	}
	return s.toggle(ctx, actor, domain.TargetArticle, articleID)
}

// ToggleComment likes the comment, or removes an existing like.
// Soft-deleted comments still toggle so earlier likes can be withdrawn.
func (s *LikeService) ToggleComment(ctx context.Context, actor *Actor, commentID string) (*domain.LikeResult, error) {
	if _, err := s.comments.GetByID(ctx, commentID); err != nil {
		return nil, err
	}
	return s.toggle(ctx, actor, domain.TargetComment, commentID)
}

// ArticleStatus reports whether the actor likes the article and its like total
func (s *LikeService) ArticleStatus(ctx context.Context, actor *Actor, articleID string) (*domain.LikeResult, error) {
	if _, err := s.articles.GetByID(ctx, articleID); err != nil {
		return nil, err
	}
	liked, err := s.likes.Exists(ctx, actor.ID, domain.TargetArticle, articleID)
	if err != nil {
		return nil, fmt.Errorf("failed to check like: %w", err)
	}
	count, err := s.likes.CountByTarget(ctx, domain.TargetArticle, articleID)
	if err != nil {
		return nil, fmt.Errorf("failed to count likes: %w", err)
	}
	return &domain.LikeResult{Liked: liked, LikeCount: count}, nil
}

func (s *LikeService) toggle(ctx context.Context, actor *Actor, kind domain.TargetKind, targetID string) (*domain.LikeResult, error) {
	like := domain.NewLike(uuid.NewString(), actor.ID, kind, targetID, time.Now())
	liked, err := s.likes.Toggle(ctx, like)
	if err != nil {
		s.logger.Error("Failed to toggle like", "target", string(kind), "target_id", targetID, "error", err)
		return nil, fmt.Errorf("failed to toggle like: %w", err)
	}

	count, err := s.likes.CountByTarget(ctx, kind, targetID)
	if err != nil {
		return nil, fmt.Errorf("failed to count likes: %w", err)
	}

	s.logger.Debug("Like toggled", "user_id", actor.ID, "target", string(kind), "target_id", targetID, "liked", liked)
	return &domain.LikeResult{Liked: liked, LikeCount: count}, nil
}
