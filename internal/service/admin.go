package service

import (
	"context"
	"fmt"
	"time"

	"github.com/amiyamandal-dev/inkwell/internal/domain"
	"github.com/amiyamandal-dev/inkwell/internal/repository"
	"github.com/amiyamandal-dev/inkwell/pkg/logger"
)

// AdminService backs the admin dashboard and moderation endpoints
type AdminService struct {
	users    repository.UserRepository
	articles repository.ArticleRepository
	comments repository.CommentRepository

	userService    *UserService
	articleService *ArticleService
	commentService *CommentService
	stats          *StatisticsService

	oplog  *OperationLog
	logger *logger.Logger
}

// NewAdminService creates a new admin service
func NewAdminService(
	store *repository.Store,
	userService *UserService,
	articleService *ArticleService,
	commentService *CommentService,
	stats *StatisticsService,
	oplog *OperationLog,
	logger *logger.Logger,
) *AdminService {
	return &AdminService{
		users:          store.Users,
		articles:       store.Articles,
		comments:       store.Comments,
		userService:    userService,
		articleService: articleService,
		commentService: commentService,
		stats:          stats,
		oplog:          oplog,
		logger:         logger.WithComponent("admin-service"),
	}
}

// Dashboard counts users, published articles and comments, in total and today
func (s *AdminService) Dashboard(ctx context.Context) (*domain.Dashboard, error) {
	today := startOfDay(time.Now())
	var d domain.Dashboard
	var err error

	if d.Users.Total, err = s.users.Count(ctx, time.Time{}); err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	if d.Users.Today, err = s.users.Count(ctx, today); err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	if d.Articles.Total, err = s.articles.Count(ctx, domain.ArticleFilter{PublishedOnly: true}); err != nil {
		return nil, fmt.Errorf("failed to count articles: %w", err)
	}
	if d.Articles.Today, err = s.articles.Count(ctx, domain.ArticleFilter{PublishedOnly: true, Since: today}); err != nil {
		return nil, fmt.Errorf("failed to count articles: %w", err)
	}
	if d.Comments.Total, err = s.comments.Count(ctx, repository.CommentCountFilter{}); err != nil {
		return nil, fmt.Errorf("failed to count comments: %w", err)
	}
	if d.Comments.Today, err = s.comments.Count(ctx, repository.CommentCountFilter{Since: today}); err != nil {
		return nil, fmt.Errorf("failed to count comments: %w", err)
	}
	if d.Views.Total, err = s.articles.TotalViews(ctx); err != nil {
		return nil, fmt.Errorf("failed to sum views: %w", err)
	}
	return &d, nil
}

// ListUsers lists users newest first
func (s *AdminService) ListUsers(ctx context.Context, page, limit int) ([]*domain.User, int64, error) {
	return s.users.List(ctx, page, limit)
}

// GetUser returns one user
func (s *AdminService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	return s.users.GetByID(ctx, id)
}

// SetUserStatus activates or deactivates an account
func (s *AdminService) SetUserStatus(ctx context.Context, actor *Actor, id string, active bool) (*domain.User, error) {
	user, err := s.userService.SetActive(ctx, id, active)
	if err != nil {
		return nil, err
	}
	s.oplog.Record(OpUpdate, actor.ID, "user", id, "active", active)
	return user, nil
}

// DeleteUser removes an account
func (s *AdminService) DeleteUser(ctx context.Context, actor *Actor, id string) error {
	if err := s.userService.Delete(ctx, actor, id); err != nil {
		return err
	}
	s.stats.Invalidate(ctx)
	return nil
}

// SetRole grants or revokes admin rights; admins cannot demote themselves
func (s *AdminService) SetRole(ctx context.Context, actor *Actor, id string, role domain.Role) (*domain.User, error) {
	if actor.ID == id && role != domain.RoleAdmin {
		return nil, domain.ErrForbidden
	}
	user, err := s.userService.SetRole(ctx, id, role)
	if err != nil {
		return nil, err
	}
	s.oplog.Record(OpUpdate, actor.ID, "user", id, "role", string(role))
	return user, nil
}

// ListArticles lists every article, drafts included, optionally by title keyword
func (s *AdminService) ListArticles(ctx context.Context, actor *Actor, keyword string, page, limit int) ([]*domain.ArticleView, int64, error) {
	return s.articleService.List(ctx, actor, domain.ArticleFilter{Keyword: keyword, Page: page, Limit: limit}, true)
}

// SetArticleStatus publishes or withdraws an article
func (s *AdminService) SetArticleStatus(ctx context.Context, actor *Actor, id string, published bool) (*domain.Article, error) {
	return s.articleService.SetPublished(ctx, actor, id, published)
}

// SystemStats returns totals plus the last week
func (s *AdminService) SystemStats(ctx context.Context) (*domain.SystemStats, error) {
	overall, err := s.stats.Overall(ctx)
	if err != nil {
		return nil, err
	}
	return &domain.SystemStats{
		UserCount:    overall.Total.Users,
		ArticleCount: overall.Total.Articles,
		CommentCount: overall.Total.Comments,
		LikeCount:    overall.Total.Likes,
		RecentStats:  overall.Recent,
	}, nil
}

// ListComments lists every comment, deleted ones included
func (s *AdminService) ListComments(ctx context.Context, page, limit int) ([]*domain.CommentView, int64, error) {
	return s.commentService.ListAll(ctx, page, limit)
}

// DeleteComment soft-deletes any comment
func (s *AdminService) DeleteComment(ctx context.Context, actor *Actor, id string) error {
	return s.commentService.Moderate(ctx, actor, id, true)
}

// RestoreComment undoes a soft delete
func (s *AdminService) RestoreComment(ctx context.Context, actor *Actor, id string) error {
	return s.commentService.Moderate(ctx, actor, id, false)
}
