package badger

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/amiyamandal-dev/inkwell/internal/domain"
	"github.com/amiyamandal-dev/inkwell/internal/repository"
	"github.com/dgraph-io/badger/v4"
)

// CommentRepo implements CommentRepository using BadgerDB.
// Comments are indexed by article and by parent so threads load without a full scan.
type CommentRepo struct {
	db *DB
}

// NewCommentRepo creates a new BadgerDB-based comment repository
func NewCommentRepo(db *DB) *CommentRepo {
	return &CommentRepo{db: db}
}

func commentKey(id string) string { return "comment:id:" + id }

func commentArticlePrefix(articleID string) string { return "comment:article:" + articleID + ":" }

func commentParentPrefix(parentID string) string { return "comment:parent:" + parentID + ":" }

func loadComment(txn *badger.Txn, id string) (*domain.Comment, error) {
	var c domain.Comment
	if err := getJSON(txn, commentKey(id), &c); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, domain.ErrCommentNotFound
		}
		return nil, err
	}
	return &c, nil
}

// loadIndexed loads the comments whose ids are stored under prefix
func loadIndexed(txn *badger.Txn, prefix string, keep func(*domain.Comment) bool) ([]*domain.Comment, error) {
	ids, err := scanValues(txn, prefix)
	if err != nil {
		return nil, err
	}
	comments := make([]*domain.Comment, 0, len(ids))
	for _, id := range ids {
		c, err := loadComment(txn, id)
		if errors.Is(err, domain.ErrCommentNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if keep(c) {
			comments = append(comments, c)
		}
	}
	return comments, nil
}

// Create stores a comment and bumps the parent's reply counter in the same transaction
func (r *CommentRepo) Create(ctx context.Context, comment *domain.Comment) error {
	return r.db.update(ctx, func(txn *badger.Txn) error {
		if comment.Parent != nil {
			parent, err := loadComment(txn, *comment.Parent)
			if err != nil {
				return err
			}
			if parent.Article != comment.Article || !parent.IsTopLevel() {
				return domain.ErrInvalidParent
			}
			parent.ReplyCount++
			if err := setJSON(txn, commentKey(parent.ID), parent); err != nil {
				return err
			}
			if err := txn.Set([]byte(commentParentPrefix(parent.ID)+comment.ID), []byte(comment.ID)); err != nil {
				return err
			}
		}

		if err := setJSON(txn, commentKey(comment.ID), comment); err != nil {
			return err
		}
		return txn.Set([]byte(commentArticlePrefix(comment.Article)+comment.ID), []byte(comment.ID))
	})
}

// GetByID retrieves a comment by ID
func (r *CommentRepo) GetByID(ctx context.Context, id string) (*domain.Comment, error) {
	var comment *domain.Comment
	err := r.db.view(ctx, func(txn *badger.Txn) error {
		var err error
		comment, err = loadComment(txn, id)
		return err
	})
	return comment, err
}

// ListTopLevel lists visible top-level comments of an article, newest first
func (r *CommentRepo) ListTopLevel(ctx context.Context, articleID string, page, limit int) (*domain.CommentPage, error) {
	var comments []*domain.Comment
	err := r.db.view(ctx, func(txn *badger.Txn) error {
		var err error
		comments, err = loadIndexed(txn, commentArticlePrefix(articleID), func(c *domain.Comment) bool {
			return c.IsTopLevel() && !c.IsDeleted
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	sortNewest(comments)
	return &domain.CommentPage{Items: paginate(comments, page, limit), Total: int64(len(comments))}, nil
}

// ListReplies lists visible replies oldest first
func (r *CommentRepo) ListReplies(ctx context.Context, parentID string, page, limit int) (*domain.CommentPage, error) {
	var comments []*domain.Comment
	err := r.db.view(ctx, func(txn *badger.Txn) error {
		var err error
		comments, err = loadIndexed(txn, commentParentPrefix(parentID), func(c *domain.Comment) bool {
			return !c.IsDeleted
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(comments, func(i, j int) bool {
		if !comments[i].CreatedAt.Equal(comments[j].CreatedAt) {
			return comments[i].CreatedAt.Before(comments[j].CreatedAt)
		}
		return comments[i].ID < comments[j].ID
	})
	return &domain.CommentPage{Items: paginate(comments, page, limit), Total: int64(len(comments))}, nil
}

// ListAll lists every comment, deleted ones included, newest first
func (r *CommentRepo) ListAll(ctx context.Context, page, limit int) (*domain.CommentPage, error) {
	var comments []*domain.Comment
	err := r.db.view(ctx, func(txn *badger.Txn) error {
		return scanJSON(txn, "comment:id:", func(c *domain.Comment) error {
			comments = append(comments, c)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sortNewest(comments)
	return &domain.CommentPage{Items: paginate(comments, page, limit), Total: int64(len(comments))}, nil
}

// SetDeleted flips the soft-delete flag
func (r *CommentRepo) SetDeleted(ctx context.Context, id string, deleted bool) error {
	return r.db.update(ctx, func(txn *badger.Txn) error {
		comment, err := loadComment(txn, id)
		if err != nil {
			return err
		}
		comment.IsDeleted = deleted
		comment.UpdatedAt = time.Now().UTC()
		return setJSON(txn, commentKey(id), comment)
	})
}

// Count counts comments matching filter
func (r *CommentRepo) Count(ctx context.Context, filter repository.CommentCountFilter) (int64, error) {
	keep := func(c *domain.Comment) bool {
		if !filter.IncludeDeleted && c.IsDeleted {
			return false
		}
		if filter.Author != "" && c.Author != filter.Author {
			return false
		}
		if !filter.Since.IsZero() && c.CreatedAt.Before(filter.Since) {
			return false
		}
		return true
	}

	var n int64
	err := r.db.view(ctx, func(txn *badger.Txn) error {
		if filter.Article != "" {
			comments, err := loadIndexed(txn, commentArticlePrefix(filter.Article), keep)
			n = int64(len(comments))
			return err
		}
		return scanJSON(txn, "comment:id:", func(c *domain.Comment) error {
			if keep(c) {
				n++
			}
			return nil
		})
	})
	return n, err
}

// DeleteByArticle removes all comments of an article with their index entries
func (r *CommentRepo) DeleteByArticle(ctx context.Context, articleID string) ([]string, error) {
	var ids []string
	err := r.db.update(ctx, func(txn *badger.Txn) error {
		comments, err := loadIndexed(txn, commentArticlePrefix(articleID), func(*domain.Comment) bool { return true })
		if err != nil {
			return err
		}

		ids = make([]string, 0, len(comments))
		var keys []string
		for _, c := range comments {
			ids = append(ids, c.ID)
			keys = append(keys, commentKey(c.ID), commentArticlePrefix(articleID)+c.ID)
			if c.Parent != nil {
				keys = append(keys, commentParentPrefix(*c.Parent)+c.ID)
			}
		}
		return deleteKeys(txn, keys)
	})
	return ids, err
}

func sortNewest(comments []*domain.Comment) {
	newestFirst(comments, func(c *domain.Comment) time.Time { return c.CreatedAt }, func(c *domain.Comment) string { return c.ID })
}
