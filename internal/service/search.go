package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/amiyamandal-dev/inkwell/internal/domain"
	"github.com/amiyamandal-dev/inkwell/internal/repository"
	"github.com/amiyamandal-dev/inkwell/internal/search"
	"github.com/amiyamandal-dev/inkwell/pkg/logger"
)

// searchAllLimit caps each section of a combined search
const searchAllLimit = 5

// SearchResults is the combined article and user search
type SearchResults struct {
	Articles []*domain.ArticleDigest `json:"articles"`
	Users    []*domain.UserSummary   `json:"users"`
}

// SearchService handles search-related operations
type SearchService struct {
	index       search.Index
	articleRepo repository.ArticleRepository
	userRepo    repository.UserRepository
	logger      *logger.Logger
}

// NewSearchService creates a new search service
func NewSearchService(
	index search.Index,
	articleRepo repository.ArticleRepository,
	userRepo repository.UserRepository,
	logger *logger.Logger,
) *SearchService {
	return &SearchService{
		index:       index,
		articleRepo: articleRepo,
		userRepo:    userRepo,
		logger:      logger.WithComponent("search-service"),
	}
}

// Articles runs a full-text search over published articles
func (s *SearchService) Articles(ctx context.Context, keyword string, page, limit int) ([]*domain.ArticleDigest, int64, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, 0, domain.ErrInvalidInput
	}

	res, err := s.index.Search(ctx, &search.Query{
		Keyword:       keyword,
		PublishedOnly: true,
		Page:          page,
		Limit:         limit,
	})
	if err != nil {
		s.logger.Error("Search failed", "keyword", keyword, "error", err)
		return nil, 0, fmt.Errorf("failed to search articles: %w", err)
	}

	found, err := s.articleRepo.GetByIDs(ctx, res.IDs)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load articles: %w", err)
	}
	byID := make(map[string]*domain.Article, len(found))
	for _, a := range found {
		byID[a.ID] = a
	}
	// keep index order; skip hits the store no longer has or that went unpublished
	ordered := make([]*domain.Article, 0, len(res.IDs))
	for _, id := range res.IDs {
		if a, ok := byID[id]; ok && a.IsPublished {
			ordered = append(ordered, a)
		}
	}

	items, err := digests(ctx, s.userRepo, ordered)
	if err != nil {
		return nil, 0, err
	}

	s.logger.Debug("Search completed", "keyword", keyword, "results", res.Total, "query_time_ms", res.QueryTime)
	return items, res.Total, nil
}

// Users matches keyword against usernames and emails, best matches first
func (s *SearchService) Users(ctx context.Context, keyword string, page, limit int) ([]*domain.UserSummary, int64, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, 0, domain.ErrInvalidInput
	}

	all, err := s.userRepo.All(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load users: %w", err)
	}

	type ranked struct {
		user *domain.User
		rank int
	}
	var matches []ranked
	for _, u := range all {
		rank := bestRank(keyword, u.Username, u.Email)
		if rank >= 0 {
			matches = append(matches, ranked{user: u, rank: rank})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].rank != matches[j].rank {
			return matches[i].rank < matches[j].rank
		}
		return strings.ToLower(matches[i].user.Username) < strings.ToLower(matches[j].user.Username)
	})

	if page < 1 {
		page = 1
	}
	start := (page - 1) * limit
	out := make([]*domain.UserSummary, 0, limit)
	for i := start; i < len(matches) && i < start+limit; i++ {
		out = append(out, matches[i].user.Summary())
	}
	return out, int64(len(matches)), nil
}

// bestRank returns the smallest fuzzy distance of keyword to any target, or -1
func bestRank(keyword string, targets ...string) int {
	best := -1
	for _, t := range targets {
		r := fuzzy.RankMatchFold(keyword, t)
		if r >= 0 && (best < 0 || r < best) {
			best = r
		}
	}
	return best
}

// All returns the first few articles and users for keyword
func (s *SearchService) All(ctx context.Context, keyword string) (*SearchResults, error) {
	articles, _, err := s.Articles(ctx, keyword, 1, searchAllLimit)
	if err != nil {
		return nil, err
	}
	users, _, err := s.Users(ctx, keyword, 1, searchAllLimit)
	if err != nil {
		return nil, err
	}
	return &SearchResults{Articles: articles, Users: users}, nil
}

// Reindex rebuilds the search index from the article store
func (s *SearchService) Reindex(ctx context.Context) (int, error) {
	articles, _, err := s.articleRepo.List(ctx, domain.ArticleFilter{})
	if err != nil {
		return 0, fmt.Errorf("failed to list articles: %w", err)
	}
	if err := s.index.Rebuild(ctx, articles); err != nil {
		return 0, err
	}
	s.logger.Info("Search index rebuilt", "documents", len(articles))
	return len(articles), nil
}

// IndexStats returns statistics about the search index
func (s *SearchService) IndexStats() (map[string]interface{}, error) {
	count, err := s.index.Count()
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"total_documents": count}, nil
}
