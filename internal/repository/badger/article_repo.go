package badger

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/amiyamandal-dev/inkwell/internal/domain"
	"github.com/dgraph-io/badger/v4"
)

// minVisitRetention keeps visit records long enough for the daily overview
const minVisitRetention = 48 * time.Hour

// ArticleRepo implements ArticleRepository using BadgerDB
type ArticleRepo struct {
	db *DB
}

// NewArticleRepo creates a new BadgerDB-based article repository
func NewArticleRepo(db *DB) *ArticleRepo {
	return &ArticleRepo{db: db}
}

func articleKey(id string) string { return "article:id:" + id }

func visitPrefix(articleID string) string { return "visit:" + articleID + ":" }

func loadArticle(txn *badger.Txn, id string) (*domain.Article, error) {
	var a domain.Article
	if err := getJSON(txn, articleKey(id), &a); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, domain.ErrArticleNotFound
		}
		return nil, err
	}
	return &a, nil
}

// Create creates a new article
func (r *ArticleRepo) Create(ctx context.Context, article *domain.Article) error {
	return r.db.update(ctx, func(txn *badger.Txn) error {
		return setJSON(txn, articleKey(article.ID), article)
	})
}

// GetByID retrieves an article by ID
func (r *ArticleRepo) GetByID(ctx context.Context, id string) (*domain.Article, error) {
	var article *domain.Article
	err := r.db.view(ctx, func(txn *badger.Txn) error {
		var err error
		article, err = loadArticle(txn, id)
		return err
	})
	return article, err
}

// GetByIDs retrieves articles by IDs, skipping missing ones
func (r *ArticleRepo) GetByIDs(ctx context.Context, ids []string) ([]*domain.Article, error) {
	articles := make([]*domain.Article, 0, len(ids))
	err := r.db.view(ctx, func(txn *badger.Txn) error {
		for _, id := range ids {
			a, err := loadArticle(txn, id)
			if errors.Is(err, domain.ErrArticleNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			articles = append(articles, a)
		}
		return nil
	})
	return articles, err
}

// Update writes article back, keeping the stored view count
func (r *ArticleRepo) Update(ctx context.Context, article *domain.Article) error {
	return r.db.update(ctx, func(txn *badger.Txn) error {
		existing, err := loadArticle(txn, article.ID)
		if err != nil {
			return err
		}
		article.ViewCount = existing.ViewCount
		return setJSON(txn, articleKey(article.ID), article)
	})
}

// Delete deletes an article together with its visit records
func (r *ArticleRepo) Delete(ctx context.Context, id string) error {
	return r.db.update(ctx, func(txn *badger.Txn) error {
		if _, err := loadArticle(txn, id); err != nil {
			return err
		}
		keys := append(scanKeys(txn, visitPrefix(id)), articleKey(id))
		return deleteKeys(txn, keys)
	})
}

func (r *ArticleRepo) matching(ctx context.Context, filter domain.ArticleFilter) ([]*domain.Article, error) {
	var articles []*domain.Article
	err := r.db.view(ctx, func(txn *badger.Txn) error {
		return scanJSON(txn, "article:id:", func(a *domain.Article) error {
			if filter.Matches(a) {
				articles = append(articles, a)
			}
			return nil
		})
	})
	return articles, err
}

// List scans all articles, filters and sorts them in memory, then pages
func (r *ArticleRepo) List(ctx context.Context, filter domain.ArticleFilter) ([]*domain.Article, int64, error) {
	articles, err := r.matching(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	newestFirst(articles, func(a *domain.Article) time.Time { return a.CreatedAt }, func(a *domain.Article) string { return a.ID })
	if filter.Sort == domain.SortViews {
		sort.SliceStable(articles, func(i, j int) bool {
			return articles[i].ViewCount > articles[j].ViewCount
		})
	}

	return paginate(articles, filter.Page, filter.Limit), int64(len(articles)), nil
}

// Count counts articles matching filter
func (r *ArticleRepo) Count(ctx context.Context, filter domain.ArticleFilter) (int64, error) {
	articles, err := r.matching(ctx, filter)
	if err != nil {
		return 0, err
	}
	return int64(len(articles)), nil
}

// IncrementViews adds one view and returns the new total
func (r *ArticleRepo) IncrementViews(ctx context.Context, id string) (int64, error) {
	var views int64
	err := r.db.update(ctx, func(txn *badger.Txn) error {
		article, err := loadArticle(txn, id)
		if err != nil {
			return err
		}
		article.ViewCount++
		views = article.ViewCount
		return setJSON(txn, articleKey(id), article)
	})
	return views, err
}

// RegisterVisit counts a view once per visitor per window
func (r *ArticleRepo) RegisterVisit(ctx context.Context, id, visitor string, window time.Duration, now time.Time) (*domain.ViewResult, error) {
	var result *domain.ViewResult
	err := r.db.update(ctx, func(txn *badger.Txn) error {
		article, err := loadArticle(txn, id)
		if err != nil {
			return err
		}

		key := visitPrefix(id) + visitor
		var last domain.Visit
		err = getJSON(txn, key, &last)
		switch {
		case err == nil && now.Sub(last.LastVisitAt) < window:
			result = &domain.ViewResult{ViewCount: article.ViewCount, Counted: false}
			return nil
		case err != nil && !errors.Is(err, badger.ErrKeyNotFound):
			return err
		}

		visit := domain.Visit{Article: id, Visitor: visitor, LastVisitAt: now}
		if err := setJSONWithTTL(txn, key, visit, max(window, minVisitRetention)); err != nil {
			return err
		}
		article.ViewCount++
		if err := setJSON(txn, articleKey(id), article); err != nil {
			return err
		}
		result = &domain.ViewResult{ViewCount: article.ViewCount, Counted: true}
		return nil
	})
	return result, err
}

// CountVisitsSince counts visits recorded at or after since
func (r *ArticleRepo) CountVisitsSince(ctx context.Context, since time.Time) (int64, error) {
	var n int64
	err := r.db.view(ctx, func(txn *badger.Txn) error {
		return scanJSON(txn, "visit:", func(v *domain.Visit) error {
			if !v.LastVisitAt.Before(since) {
				n++
			}
			return nil
		})
	})
	return n, err
}

// TotalViews sums viewCount over all articles
func (r *ArticleRepo) TotalViews(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.view(ctx, func(txn *badger.Txn) error {
		return scanJSON(txn, "article:id:", func(a *domain.Article) error {
			total += a.ViewCount
			return nil
		})
	})
	return total, err
}
