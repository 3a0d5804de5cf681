package service

import (
	"context"
	"fmt"
	"time"

	"github.com/amiyamandal-dev/inkwell/internal/cache"
	"github.com/amiyamandal-dev/inkwell/internal/domain"
	"github.com/amiyamandal-dev/inkwell/internal/repository"
	"github.com/amiyamandal-dev/inkwell/pkg/logger"
)

const (
	statsCachePrefix = "stats"

	hotArticlesTTL = time.Hour
	overviewTTL    = 5 * time.Minute

	// recentWindow is the span of the "recent" block of overall statistics
	recentWindow = 7 * 24 * time.Hour

	hotRankingSize = 5

	DefaultHotDays  = 7
	DefaultHotLimit = 10
)

// invalidateStats drops every cached statistic after a write
func invalidateStats(ctx context.Context, c cache.Cache, log *logger.Logger) {
	if c == nil {
		return
	}
	if err := c.DeletePrefix(ctx, statsCachePrefix); err != nil {
		log.Warn("Failed to invalidate statistics cache", "error", err)
	}
}

// StatisticsService computes engagement counts, some of them cached
type StatisticsService struct {
	users         repository.UserRepository
	articles      repository.ArticleRepository
	comments      repository.CommentRepository
	likes         repository.LikeRepository
	cache         cache.Cache
	visitorWindow time.Duration
	logger        *logger.Logger
}

// NewStatisticsService creates a new statistics service
func NewStatisticsService(store *repository.Store, c cache.Cache, visitorWindow time.Duration, logger *logger.Logger) *StatisticsService {
	return &StatisticsService{
		users:         store.Users,
		articles:      store.Articles,
		comments:      store.Comments,
		likes:         store.Likes,
		cache:         c,
		visitorWindow: visitorWindow,
		logger:        logger.WithComponent("statistics-service"),
	}
}

// ArticleStats returns views, likes and live comments of an article
func (s *StatisticsService) ArticleStats(ctx context.Context, articleID string) (*domain.ArticleStats, error) {
	article, err := s.articles.GetByID(ctx, articleID)
	if err != nil {
		return nil, err
	}
	likes, err := s.likes.CountByTarget(ctx, domain.TargetArticle, articleID)
	if err != nil {
		return nil, fmt.Errorf("failed to count likes: %w", err)
	}
	comments, err := s.comments.Count(ctx, repository.CommentCountFilter{Article: articleID})
	if err != nil {
		return nil, fmt.Errorf("failed to count comments: %w", err)
	}
	return &domain.ArticleStats{Views: article.ViewCount, Likes: likes, Comments: comments}, nil
}

// UserStats returns what a user has written, liked and commented
func (s *StatisticsService) UserStats(ctx context.Context, userID string) (*domain.UserActivity, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	articles, err := s.articles.Count(ctx, domain.ArticleFilter{Author: userID})
	if err != nil {
		return nil, fmt.Errorf("failed to count articles: %w", err)
	}
	likes, err := s.likes.CountByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count likes: %w", err)
	}
	comments, err := s.comments.Count(ctx, repository.CommentCountFilter{Author: userID})
	if err != nil {
		return nil, fmt.Errorf("failed to count comments: %w", err)
	}
	return &domain.UserActivity{Articles: articles, Likes: likes, Comments: comments}, nil
}

// Overall returns site totals and what was created in the last week
func (s *StatisticsService) Overall(ctx context.Context) (*domain.OverallStats, error) {
	totals, err := s.totals(ctx)
	if err != nil {
		return nil, err
	}
	recent, err := s.recent(ctx, time.Now().Add(-recentWindow))
	if err != nil {
		return nil, err
	}
	return &domain.OverallStats{Total: *totals, Recent: *recent}, nil
}

func (s *StatisticsService) totals(ctx context.Context) (*domain.Totals, error) {
	var t domain.Totals
	var err error
	if t.Users, err = s.users.Count(ctx, time.Time{}); err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	if t.Articles, err = s.articles.Count(ctx, domain.ArticleFilter{}); err != nil {
		return nil, fmt.Errorf("failed to count articles: %w", err)
	}
	if t.Comments, err = s.comments.Count(ctx, repository.CommentCountFilter{}); err != nil {
		return nil, fmt.Errorf("failed to count comments: %w", err)
	}
	if t.Likes, err = s.likes.Count(ctx); err != nil {
		return nil, fmt.Errorf("failed to count likes: %w", err)
	}
	return &t, nil
}

func (s *StatisticsService) recent(ctx context.Context, since time.Time) (*domain.RecentTotals, error) {
	var r domain.RecentTotals
	var err error
	if r.NewUsers, err = s.users.Count(ctx, since); err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	if r.NewArticles, err = s.articles.Count(ctx, domain.ArticleFilter{Since: since}); err != nil {
		return nil, fmt.Errorf("failed to count articles: %w", err)
	}
	if r.NewComments, err = s.comments.Count(ctx, repository.CommentCountFilter{Since: since}); err != nil {
		return nil, fmt.Errorf("failed to count comments: %w", err)
	}
	return &r, nil
}

// Hot returns the most viewed published articles and the most productive users
func (s *StatisticsService) Hot(ctx context.Context) (*domain.HotStats, error) {
	articles, _, err := s.articles.List(ctx, domain.ArticleFilter{
		PublishedOnly: true,
		Sort:          domain.SortViews,
		Limit:         hotRankingSize,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list hot articles: %w", err)
	}
	hot, err := digests(ctx, s.users, articles)
	if err != nil {
		return nil, err
	}

	top, err := s.users.TopByArticleCount(ctx, hotRankingSize)
	if err != nil {
		return nil, fmt.Errorf("failed to rank users: %w", err)
	}
	active := make([]*domain.ActiveUser, len(top))
	for i, u := range top {
		active[i] = &domain.ActiveUser{UserSummary: u.Summary(), Stats: u.Stats}
	}

	return &domain.HotStats{HotArticles: hot, ActiveUsers: active}, nil
}

// RegisterView counts a visitor at most once per visitor window
func (s *StatisticsService) RegisterView(ctx context.Context, articleID, visitor string) (*domain.ViewResult, error) {
	res, err := s.articles.RegisterVisit(ctx, articleID, visitor, s.visitorWindow, time.Now())
	if err != nil {
		return nil, err
	}
	if res.Counted {
		// today's views changed
		if err := s.cache.Delete(ctx, statsCachePrefix, "overview"); err != nil {
			s.logger.Warn("Failed to drop cached overview", "error", err)
		}
	}
	return res, nil
}

// HotArticles lists published articles of the last days by views, cached for an hour
func (s *StatisticsService) HotArticles(ctx context.Context, days, limit int) ([]*domain.ArticleDigest, error) {
	if days <= 0 {
		days = DefaultHotDays
	}
	if limit <= 0 {
		limit = DefaultHotLimit
	}

	key := fmt.Sprintf("hot:articles:%d:%d", days, limit)
	return cache.GetOrLoad(ctx, s.cache, statsCachePrefix, key, hotArticlesTTL, func(ctx context.Context) ([]*domain.ArticleDigest, error) {
		articles, _, err := s.articles.List(ctx, domain.ArticleFilter{
			PublishedOnly: true,
			Since:         time.Now().AddDate(0, 0, -days),
			Sort:          domain.SortViews,
			Limit:         limit,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list hot articles: %w", err)
		}
		return digests(ctx, s.users, articles)
	})
}

// Overview returns total and today's views, cached for five minutes
func (s *StatisticsService) Overview(ctx context.Context) (*domain.ViewOverview, error) {
	return cache.GetOrLoad(ctx, s.cache, statsCachePrefix, "overview", overviewTTL, func(ctx context.Context) (*domain.ViewOverview, error) {
		total, err := s.articles.TotalViews(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to sum views: %w", err)
		}
		// visitor records touched today, so share-page views are not included
		today, err := s.articles.CountVisitsSince(ctx, startOfDay(time.Now()))
		if err != nil {
			return nil, fmt.Errorf("failed to count visits: %w", err)
		}
		return &domain.ViewOverview{TotalViews: total, TodayViews: today}, nil
	})
}

// Invalidate drops every cached statistic
func (s *StatisticsService) Invalidate(ctx context.Context) {
	invalidateStats(ctx, s.cache, s.logger)
}
