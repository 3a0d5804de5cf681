package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/amiyamandal-dev/inkwell/internal/domain"
	"github.com/amiyamandal-dev/inkwell/internal/repository"
	"github.com/amiyamandal-dev/inkwell/pkg/logger"
)

// HotTagLimit is the size of the hot tag list
const HotTagLimit = 10

// articleCounter recomputes the denormalized article totals of categories,
// tags and authors from the article collection
type articleCounter struct {
	articles   repository.ArticleRepository
	users      repository.UserRepository
	categories repository.CategoryRepository
	tags       repository.TagRepository
	logger     *logger.Logger
}

func (c *articleCounter) countCategory(ctx context.Context, name string) (int64, error) {
	return c.articles.Count(ctx, domain.ArticleFilter{Category: name})
}

func (c *articleCounter) countTag(ctx context.Context, name string) (int64, error) {
	return c.articles.Count(ctx, domain.ArticleFilter{Tag: name})
}

// recount refreshes the totals touched by an article mutation; failures are
// logged and leave the previous total in place until the next mutation
func (c *articleCounter) recount(ctx context.Context, authorID string, categories, tags []string) {
	for _, name := range dedupeFold(categories) {
		cat, err := c.categories.GetByName(ctx, name)
		if err != nil {
			if !errors.Is(err, domain.ErrCategoryNotFound) {
				c.logger.Warn("Failed to load category", "name", name, "error", err)
			}
			continue
		}
		n, err := c.countCategory(ctx, cat.Name)
		if err == nil {
			err = c.categories.SetArticleCount(ctx, cat.ID, n)
		}
		if err != nil {
			c.logger.Warn("Failed to recount category", "name", name, "error", err)
		}
	}

	for _, name := range dedupeFold(tags) {
		tag, err := c.tags.GetByName(ctx, name)
		if err != nil {
			if !errors.Is(err, domain.ErrTagNotFound) {
				c.logger.Warn("Failed to load tag", "name", name, "error", err)
			}
			continue
		}
		n, err := c.countTag(ctx, tag.Name)
		if err == nil {
			err = c.tags.SetArticleCount(ctx, tag.ID, n)
		}
		if err != nil {
			c.logger.Warn("Failed to recount tag", "name", name, "error", err)
		}
	}

	if authorID != "" {
		n, err := c.articles.Count(ctx, domain.ArticleFilter{Author: authorID})
		if err == nil {
			err = c.users.SetArticleCount(ctx, authorID, n)
		}
		if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
			c.logger.Warn("Failed to recount author articles", "user_id", authorID, "error", err)
		}
	}
}

func dedupeFold(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		key := strings.ToLower(n)
		if n == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, n)
	}
	return out
}

// CategoryService manages categories
type CategoryService struct {
	categories repository.CategoryRepository
	articles   repository.ArticleRepository
	users      repository.UserRepository
	counter    *articleCounter
	oplog      *OperationLog
	logger     *logger.Logger
}

// NewCategoryService creates a new category service
func NewCategoryService(store *repository.Store, oplog *OperationLog, logger *logger.Logger) *CategoryService {
	log := logger.WithComponent("category-service")
	return &CategoryService{
		categories: store.Categories,
		articles:   store.Articles,
		users:      store.Users,
		counter:    newArticleCounter(store, log),
		oplog:      oplog,
		logger:     log,
	}
}

func newArticleCounter(store *repository.Store, log *logger.Logger) *articleCounter {
	return &articleCounter{
		articles:   store.Articles,
		users:      store.Users,
		categories: store.Categories,
		tags:       store.Tags,
		logger:     log,
	}
}

// SeedDefaults creates the default categories that do not exist yet
func (s *CategoryService) SeedDefaults(ctx context.Context) error {
	for _, name := range domain.DefaultCategories {
		_, err := s.categories.GetByName(ctx, name)
		if err == nil {
			continue
		}
		if !errors.Is(err, domain.ErrCategoryNotFound) {
			return fmt.Errorf("failed to look up category %s: %w", name, err)
		}
		now := time.Now()
		cat := &domain.Category{ID: uuid.NewString(), Name: name, CreatedAt: now, UpdatedAt: now}
		if err := s.categories.Create(ctx, cat); err != nil && !errors.Is(err, domain.ErrCategoryExists) {
			return fmt.Errorf("failed to seed category %s: %w", name, err)
		}
		s.logger.Info("Seeded category", "name", name)
	}
	return nil
}

// List returns every category ordered by name
func (s *CategoryService) List(ctx context.Context) ([]*domain.Category, error) {
	return s.categories.List(ctx)
}

// Get returns a category with a page of its newest published articles
func (s *CategoryService) Get(ctx context.Context, id string, page, limit int) (*domain.CategoryDetail, int64, error) {
	cat, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return nil, 0, err
	}

	articles, total, err := s.articles.List(ctx, domain.ArticleFilter{
		Category:      cat.Name,
		PublishedOnly: true,
		Page:          page,
		Limit:         limit,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list category articles: %w", err)
	}

	items, err := digests(ctx, s.users, articles)
	if err != nil {
		return nil, 0, err
	}
	return &domain.CategoryDetail{Category: cat, Articles: items}, total, nil
}

// Create adds a category
func (s *CategoryService) Create(ctx context.Context, actor *Actor, req *domain.CategoryRequest) (*domain.Category, error) {
	now := time.Now()
	cat := &domain.Category{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := cat.Validate(); err != nil {
		return nil, err
	}

	// articles may already use the name
	n, err := s.counter.countCategory(ctx, cat.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to count articles: %w", err)
	}
	cat.ArticleCount = n

	if err := s.categories.Create(ctx, cat); err != nil {
		return nil, err
	}

	s.oplog.Record(OpCreate, actor.ID, "category", cat.ID, "name", cat.Name)
	return cat, nil
}

// Update changes a category; renaming is refused while articles use the old name
func (s *CategoryService) Update(ctx context.Context, actor *Actor, id string, req *domain.CategoryRequest) (*domain.Category, error) {
	cat, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if name != cat.Name {
		n, err := s.counter.countCategory(ctx, cat.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to count articles: %w", err)
		}
		if n > 0 && !strings.EqualFold(name, cat.Name) {
			return nil, domain.ErrTaxonomyInUse
		}
	}

	cat.Name = name
	cat.Description = req.Description
	cat.UpdatedAt = time.Now()
	if err := cat.Validate(); err != nil {
		return nil, err
	}
	if err := s.categories.Update(ctx, cat); err != nil {
		return nil, err
	}

	s.oplog.Record(OpUpdate, actor.ID, "category", cat.ID)
	return cat, nil
}

// Delete removes a category that no article references
func (s *CategoryService) Delete(ctx context.Context, actor *Actor, id string) error {
	cat, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return err
	}

	n, err := s.counter.countCategory(ctx, cat.Name)
	if err != nil {
		return fmt.Errorf("failed to count articles: %w", err)
	}
	if n > 0 {
		if err := s.categories.SetArticleCount(ctx, cat.ID, n); err != nil {
			s.logger.Warn("Failed to store category count", "id", id, "error", err)
		}
		return fmt.Errorf("%w: %d articles", domain.ErrTaxonomyInUse, n)
	}

	if err := s.categories.Delete(ctx, id); err != nil {
		return err
	}

	s.oplog.Record(OpDelete, actor.ID, "category", id)
	return nil
}

// TagService manages tags
type TagService struct {
	tags     repository.TagRepository
	articles repository.ArticleRepository
	users    repository.UserRepository
	counter  *articleCounter
	oplog    *OperationLog
	logger   *logger.Logger
}

// NewTagService creates a new tag service
func NewTagService(store *repository.Store, oplog *OperationLog, logger *logger.Logger) *TagService {
	log := logger.WithComponent("tag-service")
	return &TagService{
		tags:     store.Tags,
		articles: store.Articles,
		users:    store.Users,
		counter:  newArticleCounter(store, log),
		oplog:    oplog,
		logger:   log,
	}
}

// List returns tags by article count, then name
func (s *TagService) List(ctx context.Context) ([]*domain.Tag, error) {
	tags, err := s.tags.List(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(tags, func(i, j int) bool {
		return tags[i].ArticleCount > tags[j].ArticleCount
	})
	return tags, nil
}

// Hot returns the most used tags
func (s *TagService) Hot(ctx context.Context) ([]*domain.Tag, error) {
	return s.tags.Hot(ctx, HotTagLimit)
}

// Get returns a tag with a page of its newest published articles
func (s *TagService) Get(ctx context.Context, id string, page, limit int) (*domain.TagDetail, int64, error) {
	tag, err := s.tags.GetByID(ctx, id)
	if err != nil {
		return nil, 0, err
	}

	articles, total, err := s.articles.List(ctx, domain.ArticleFilter{
		Tag:           tag.Name,
		PublishedOnly: true,
		Page:          page,
		Limit:         limit,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tag articles: %w", err)
	}

	items, err := digests(ctx, s.users, articles)
	if err != nil {
		return nil, 0, err
	}
	return &domain.TagDetail{Tag: tag, Articles: items}, total, nil
}

// Create adds a tag
func (s *TagService) Create(ctx context.Context, actor *Actor, req *domain.TagRequest) (*domain.Tag, error) {
	now := time.Now()
	tag := &domain.Tag{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Color:       req.Color,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if tag.Color == "" {
		tag.Color = domain.DefaultTagColor
	}
	if err := tag.Validate(); err != nil {
		return nil, err
	}

	n, err := s.counter.countTag(ctx, tag.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to count articles: %w", err)
	}
	tag.ArticleCount = n

	if err := s.tags.Create(ctx, tag); err != nil {
		return nil, err
	}

	s.oplog.Record(OpCreate, actor.ID, "tag", tag.ID, "name", tag.Name)
	return tag, nil
}

// Update changes a tag; renaming is refused while articles use the old name
func (s *TagService) Update(ctx context.Context, actor *Actor, id string, req *domain.TagRequest) (*domain.Tag, error) {
	tag, err := s.tags.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if !strings.EqualFold(name, tag.Name) {
		n, err := s.counter.countTag(ctx, tag.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to count articles: %w", err)
		}
		if n > 0 {
			return nil, domain.ErrTaxonomyInUse
		}
	}

	tag.Name = name
	tag.Description = req.Description
	if req.Color != "" {
		tag.Color = req.Color
	}
	tag.UpdatedAt = time.Now()
	if err := tag.Validate(); err != nil {
		return nil, err
	}
	if err := s.tags.Update(ctx, tag); err != nil {
		return nil, err
	}

	s.oplog.Record(OpUpdate, actor.ID, "tag", tag.ID)
	return tag, nil
}

// Delete removes a tag that no article references
func (s *TagService) Delete(ctx context.Context, actor *Actor, id string) error {
	tag, err := s.tags.GetByID(ctx, id)
	if err != nil {
		return err
	}

	n, err := s.counter.countTag(ctx, tag.Name)
	if err != nil {
		return fmt.Errorf("failed to count articles: %w", err)
	}
	if n > 0 {
		if err := s.tags.SetArticleCount(ctx, tag.ID, n); err != nil {
			s.logger.Warn("Failed to store tag count", "id", id, "error", err)
		}
		return fmt.Errorf("%w: %d articles", domain.ErrTaxonomyInUse, n)
	}

	if err := s.tags.Delete(ctx, id); err != nil {
		return err
	}

	s.oplog.Record(OpDelete, actor.ID, "tag", id)
	return nil
}
