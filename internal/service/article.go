package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/amiyamandal-dev/inkwell/internal/cache"
	"github.com/amiyamandal-dev/inkwell/internal/domain"
	"github.com/amiyamandal-dev/inkwell/internal/markdown"
	"github.com/amiyamandal-dev/inkwell/internal/repository"
	"github.com/amiyamandal-dev/inkwell/pkg/logger"
)

// SearchIndexer defines the interface for search indexing
type SearchIndexer interface {
	IndexArticle(ctx context.Context, article *domain.Article) error
	DeleteArticle(ctx context.Context, articleID string) error
}

// ArticleService handles article-related business logic
type ArticleService struct {
	articleRepo repository.ArticleRepository
	userRepo    repository.UserRepository
	comments    repository.CommentRepository
	likes       repository.LikeRepository
	counter     *articleCounter
	renderer    *markdown.Renderer
	indexer     SearchIndexer
	cache       cache.Cache
	oplog       *OperationLog
	logger      *logger.Logger
}

// NewArticleService creates a new article service
func NewArticleService(
	store *repository.Store,
	renderer *markdown.Renderer,
	indexer SearchIndexer,
	c cache.Cache,
	oplog *OperationLog,
	logger *logger.Logger,
) *ArticleService {
	log := logger.WithComponent("article-service")
	return &ArticleService{
		articleRepo: store.Articles,
		userRepo:    store.Users,
		comments:    store.Comments,
		likes:       store.Likes,
		counter:     newArticleCounter(store, log),
		renderer:    renderer,
		indexer:     indexer,
		cache:       c,
		oplog:       oplog,
		logger:      log,
	}
}

// Create creates a new article
func (s *ArticleService) Create(ctx context.Context, actor *Actor, req *domain.CreateArticleRequest) (*domain.ArticleView, error) {
	user, err := s.userRepo.GetByID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, domain.ErrUserNotActive
	}

	now := time.Now()
	article := &domain.Article{
		ID:          uuid.NewString(),
		Title:       strings.TrimSpace(req.Title),
		Content:     req.Content,
		Description: strings.TrimSpace(req.Description),
		Category:    strings.TrimSpace(req.Category),
		Tags:        domain.NormalizeTags(req.Tags),
		Author:      user.ID,
		IsPublished: true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if req.IsPublished != nil {
		article.IsPublished = *req.IsPublished
	}

	if err := s.render(article); err != nil {
		return nil, err
	}

	if err := article.Validate(); err != nil {
		return nil, err
	}

	if err := s.articleRepo.Create(ctx, article); err != nil {
		s.logger.Error("Failed to store article", "article_id", article.ID, "error", err)
		return nil, fmt.Errorf("failed to store article: %w", err)
	}

	s.afterWrite(ctx, article, nil)

	s.logger.Info("Article created successfully", "article_id", article.ID, "author", user.Username)
	s.oplog.Record(OpCreate, actor.ID, "article", article.ID)

	return &domain.ArticleView{Article: article, Author: user.Summary()}, nil
}

// render fills the derived fields from Content
func (s *ArticleService) render(article *domain.Article) error {
	html, err := s.renderer.Render(article.Content)
	if err != nil {
		return err
	}
	article.ContentHTML = html
	if article.Description == "" {
		article.Description = s.renderer.Describe(html)
	}
	article.ReadTime = domain.ReadTime(article.Content)
	return nil
}

// afterWrite refreshes counters, the search index and cached statistics.
// before holds the previous version on update.
func (s *ArticleService) afterWrite(ctx context.Context, article, before *domain.Article) {
	categories := []string{article.Category}
	tags := append([]string{}, article.Tags...)
	if before != nil {
		categories = append(categories, before.Category)
		tags = append(tags, before.Tags...)
	}
	s.counter.recount(ctx, article.Author, categories, tags)

	if s.indexer != nil {
		if err := s.indexer.IndexArticle(ctx, article); err != nil {
			s.logger.Warn("Failed to index article", "article_id", article.ID, "error", err)
		}
	}
	invalidateStats(ctx, s.cache, s.logger)
}

// Get retrieves an article; unpublished articles are visible to the author and admins only
func (s *ArticleService) Get(ctx context.Context, viewer *Actor, id string) (*domain.ArticleView, error) {
	article, err := s.articleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !article.IsPublished && !viewer.Owns(article.Author) {
		return nil, domain.ErrArticleNotFound
	}
	return s.view(ctx, article)
}

func (s *ArticleService) view(ctx context.Context, article *domain.Article) (*domain.ArticleView, error) {
	view := &domain.ArticleView{Article: article}

	author, err := s.userRepo.GetByID(ctx, article.Author)
	switch {
	case err == nil:
		view.Author = author.Summary()
	case !errors.Is(err, domain.ErrUserNotFound):
		return nil, err
	}

	if view.LikeCount, err = s.likes.CountByTarget(ctx, domain.TargetArticle, article.ID); err != nil {
		return nil, fmt.Errorf("failed to count likes: %w", err)
	}
	view.CommentCount, err = s.comments.Count(ctx, repository.CommentCountFilter{Article: article.ID})
	if err != nil {
		return nil, fmt.Errorf("failed to count comments: %w", err)
	}
	return view, nil
}

// List lists articles. Drafts are included only when includeDrafts is set and
// the viewer is an admin or lists their own articles.
func (s *ArticleService) List(ctx context.Context, viewer *Actor, filter domain.ArticleFilter, includeDrafts bool) ([]*domain.ArticleView, int64, error) {
	filter.PublishedOnly = !includeDrafts || !(viewer.IsAdmin() || (viewer != nil && filter.Author == viewer.ID))

	articles, total, err := s.articleRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error("Failed to list articles", "error", err)
		return nil, 0, fmt.Errorf("failed to list articles: %w", err)
	}

	ids := make([]string, len(articles))
	for i, a := range articles {
		ids[i] = a.Author
	}
	authors, err := summaries(ctx, s.userRepo, ids)
	if err != nil {
		return nil, 0, err
	}

	views := make([]*domain.ArticleView, len(articles))
	for i, a := range articles {
		views[i] = &domain.ArticleView{Article: a, Author: authors[a.Author]}
		if views[i].LikeCount, err = s.likes.CountByTarget(ctx, domain.TargetArticle, a.ID); err != nil {
			return nil, 0, fmt.Errorf("failed to count likes: %w", err)
		}
		views[i].CommentCount, err = s.comments.Count(ctx, repository.CommentCountFilter{Article: a.ID})
		if err != nil {
			return nil, 0, fmt.Errorf("failed to count comments: %w", err)
		}
	}
	return views, total, nil
}

// Update applies a partial update; only the author or an admin may edit
func (s *ArticleService) Update(ctx context.Context, actor *Actor, id string, req *domain.UpdateArticleRequest) (*domain.ArticleView, error) {
	article, err := s.articleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.Owns(article.Author) {
		return nil, domain.ErrForbidden
	}

	before := *article
	rerender := false

	if req.Title != nil {
		article.Title = strings.TrimSpace(*req.Title)
	}
	if req.Content != nil && *req.Content != article.Content {
		article.Content = *req.Content
		rerender = true
	}
	if req.Description != nil {
		article.Description = strings.TrimSpace(*req.Description)
		if article.Description == "" {
			rerender = true
		}
	} else if rerender && before.Description == s.renderer.Describe(before.ContentHTML) {
		// derived descriptions follow the content
		article.Description = ""
	}
	if req.Category != nil {
		article.Category = strings.TrimSpace(*req.Category)
	}
	if req.Tags != nil {
		article.Tags = domain.NormalizeTags(req.Tags)
	}
	if req.IsPublished != nil {
		article.IsPublished = *req.IsPublished
	}

	if rerender {
		if err := s.render(article); err != nil {
			return nil, err
		}
	}

	if err := article.Validate(); err != nil {
		return nil, err
	}

	article.UpdatedAt = time.Now()
	if err := s.articleRepo.Update(ctx, article); err != nil {
		s.logger.Error("Failed to update article", "article_id", id, "error", err)
		return nil, fmt.Errorf("failed to update article: %w", err)
	}

	s.afterWrite(ctx, article, &before)

	s.logger.Info("Article updated successfully", "article_id", id)
	s.oplog.Record(OpUpdate, actor.ID, "article", id)

	return s.view(ctx, article)
}

// SetPublished publishes or withdraws an article
func (s *ArticleService) SetPublished(ctx context.Context, actor *Actor, id string, published bool) (*domain.Article, error) {
	view, err := s.Update(ctx, actor, id, &domain.UpdateArticleRequest{IsPublished: &published})
	if err != nil {
		return nil, err
	}
	return view.Article, nil
}

// Delete removes an article together with its comments and likes
func (s *ArticleService) Delete(ctx context.Context, actor *Actor, id string) error {
	article, err := s.articleRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !actor.Owns(article.Author) {
		return domain.ErrForbidden
	}

	commentIDs, err := s.comments.DeleteByArticle(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete comments: %w", err)
	}
	for _, cid := range commentIDs {
		if err := s.likes.DeleteByTarget(ctx, domain.TargetComment, cid); err != nil {
			return fmt.Errorf("failed to delete comment likes: %w", err)
		}
	}
	if err := s.likes.DeleteByTarget(ctx, domain.TargetArticle, id); err != nil {
		return fmt.Errorf("failed to delete article likes: %w", err)
	}

	if err := s.articleRepo.Delete(ctx, id); err != nil {
		s.logger.Error("Failed to delete article", "article_id", id, "error", err)
		return fmt.Errorf("failed to delete article: %w", err)
	}

	s.counter.recount(ctx, article.Author, []string{article.Category}, article.Tags)
	if s.indexer != nil {
		if err := s.indexer.DeleteArticle(ctx, id); err != nil {
			s.logger.Warn("Failed to remove article from index", "article_id", id, "error", err)
		}
	}
	invalidateStats(ctx, s.cache, s.logger)

	s.logger.Info("Article deleted successfully", "article_id", id, "comments", len(commentIDs))
	s.oplog.Record(OpDelete, actor.ID, "article", id)
	return nil
}
