package badger

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/amiyamandal-dev/inkwell/internal/domain"
	"github.com/dgraph-io/badger/v4"
)

// CategoryRepo implements CategoryRepository using BadgerDB
type CategoryRepo struct {
	db *DB
}

// NewCategoryRepo creates a new BadgerDB-based category repository
func NewCategoryRepo(db *DB) *CategoryRepo {
	return &CategoryRepo{db: db}
}

func categoryKey(id string) string { return "category:id:" + id }

func categoryNameKey(name string) string { return "category:name:" + strings.ToLower(name) }

func loadCategory(txn *badger.Txn, id string) (*domain.Category, error) {
	var c domain.Category
	if err := getJSON(txn, categoryKey(id), &c); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, domain.ErrCategoryNotFound
		}
		return nil, err
	}
	return &c, nil
}

// Create creates a category with a unique name
func (r *CategoryRepo) Create(ctx context.Context, category *domain.Category) error {
	return r.db.update(ctx, func(txn *badger.Txn) error {
		return putNamed(txn, categoryKey(category.ID), "", categoryNameKey(category.Name), category.ID, category, domain.ErrCategoryExists)
	})
}

// GetByID retrieves a category by ID
func (r *CategoryRepo) GetByID(ctx context.Context, id string) (*domain.Category, error) {
	var category *domain.Category
	err := r.db.view(ctx, func(txn *badger.Txn) error {
		var err error
		category, err = loadCategory(txn, id)
		return err
	})
	return category, err
}

// GetByName retrieves a category by name (case-insensitive)
func (r *CategoryRepo) GetByName(ctx context.Context, name string) (*domain.Category, error) {
	var category *domain.Category
	err := r.db.view(ctx, func(txn *badger.Txn) error {
		id, err := getString(txn, categoryNameKey(name))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return domain.ErrCategoryNotFound
			}
			return err
		}
		category, err = loadCategory(txn, id)
		return err
	})
	return category, err
}

// Update updates a category, moving its name index when renamed.
// The article counter keeps its stored value.
func (r *CategoryRepo) Update(ctx context.Context, category *domain.Category) error {
	return r.db.update(ctx, func(txn *badger.Txn) error {
		existing, err := loadCategory(txn, category.ID)
		if err != nil {
			return err
		}
		category.ArticleCount = existing.ArticleCount
		return putNamed(txn, categoryKey(category.ID), categoryNameKey(existing.Name), categoryNameKey(category.Name), category.ID, category, domain.ErrCategoryExists)
	})
}

// Delete deletes a category
func (r *CategoryRepo) Delete(ctx context.Context, id string) error {
	return r.db.update(ctx, func(txn *badger.Txn) error {
		existing, err := loadCategory(txn, id)
		if err != nil {
			return err
		}
		return deleteKeys(txn, []string{categoryKey(id), categoryNameKey(existing.Name)})
	})
}

// List returns categories ordered by name
func (r *CategoryRepo) List(ctx context.Context) ([]*domain.Category, error) {
	categories := []*domain.Category{}
	err := r.db.view(ctx, func(txn *badger.Txn) error {
		return scanJSON(txn, "category:id:", func(c *domain.Category) error {
			categories = append(categories, c)
			return nil
		})
	})
	sort.Slice(categories, func(i, j int) bool { return categories[i].Name < categories[j].Name })
	return categories, err
}

// SetArticleCount stores a recomputed article total
func (r *CategoryRepo) SetArticleCount(ctx context.Context, id string, count int64) error {
	return r.db.update(ctx, func(txn *badger.Txn) error {
		category, err := loadCategory(txn, id)
		if err != nil {
			return err
		}
		category.ArticleCount = count
		return setJSON(txn, categoryKey(id), category)
	})
}

// TagRepo implements TagRepository using BadgerDB
type TagRepo struct {
	db *DB
}

// NewTagRepo creates a new BadgerDB-based tag repository
func NewTagRepo(db *DB) *TagRepo {
	return &TagRepo{db: db}
}

func tagKey(id string) string { return "tag:id:" + id }

func tagNameKey(name string) string { return "tag:name:" + strings.ToLower(name) }

func loadTag(txn *badger.Txn, id string) (*domain.Tag, error) {
	var t domain.Tag
	if err := getJSON(txn, tagKey(id), &t); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, domain.ErrTagNotFound
		}
		return nil, err
	}
	return &t, nil
}

// Create creates a tag with a unique name
func (r *TagRepo) Create(ctx context.Context, tag *domain.Tag) error {
	return r.db.update(ctx, func(txn *badger.Txn) error {
		return putNamed(txn, tagKey(tag.ID), "", tagNameKey(tag.Name), tag.ID, tag, domain.ErrTagExists)
	})
}

// GetByID retrieves a tag by ID
func (r *TagRepo) GetByID(ctx context.Context, id string) (*domain.Tag, error) {
	var tag *domain.Tag
	err := r.db.view(ctx, func(txn *badger.Txn) error {
		var err error
		tag, err = loadTag(txn, id)
		return err
	})
	return tag, err
}

// GetByName retrieves a tag by name (case-insensitive)
func (r *TagRepo) GetByName(ctx context.Context, name string) (*domain.Tag, error) {
	var tag *domain.Tag
	err := r.db.view(ctx, func(txn *badger.Txn) error {
		id, err := getString(txn, tagNameKey(name))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return domain.ErrTagNotFound
			}
			return err
		}
		tag, err = loadTag(txn, id)
		return err
	})
	return tag, err
}

// Update updates a tag, moving its name index when renamed.
// The article counter keeps its stored value.
func (r *TagRepo) Update(ctx context.Context, tag *domain.Tag) error {
	return r.db.update(ctx, func(txn *badger.Txn) error {
		existing, err := loadTag(txn, tag.ID)
		if err != nil {
			return err
		}
		tag.ArticleCount = existing.ArticleCount
		return putNamed(txn, tagKey(tag.ID), tagNameKey(existing.Name), tagNameKey(tag.Name), tag.ID, tag, domain.ErrTagExists)
	})
}

// Delete deletes a tag
func (r *TagRepo) Delete(ctx context.Context, id string) error {
	return r.db.update(ctx, func(txn *badger.Txn) error {
		existing, err := loadTag(txn, id)
		if err != nil {
			return err
		}
		return deleteKeys(txn, []string{tagKey(id), tagNameKey(existing.Name)})
	})
}

func (r *TagRepo) all(ctx context.Context) ([]*domain.Tag, error) {
	tags := []*domain.Tag{}
	err := r.db.view(ctx, func(txn *badger.Txn) error {
		return scanJSON(txn, "tag:id:", func(t *domain.Tag) error {
			tags = append(tags, t)
			return nil
		})
	})
	return tags, err
}

// List returns tags ordered by name
func (r *TagRepo) List(ctx context.Context) ([]*domain.Tag, error) {
	tags, err := r.all(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i].Name < tags[j].Name })
	return tags, nil
}

// Hot returns the tags with the most articles; tags without articles are left out
func (r *TagRepo) Hot(ctx context.Context, limit int) ([]*domain.Tag, error) {
	tags, err := r.all(ctx)
	if err != nil {
		return nil, err
	}
	hot := tags[:0]
	for _, t := range tags {
		if t.ArticleCount > 0 {
			hot = append(hot, t)
		}
	}
	sort.SliceStable(hot, func(i, j int) bool {
		if hot[i].ArticleCount != hot[j].ArticleCount {
			return hot[i].ArticleCount > hot[j].ArticleCount
		}
		return hot[i].Name < hot[j].Name
	})
	if limit > 0 && len(hot) > limit {
		hot = hot[:limit]
	}
	return hot, nil
}

// SetArticleCount stores a recomputed article total
func (r *TagRepo) SetArticleCount(ctx context.Context, id string, count int64) error {
	return r.db.update(ctx, func(txn *badger.Txn) error {
		tag, err := loadTag(txn, id)
		if err != nil {
			return err
		}
		tag.ArticleCount = count
		return setJSON(txn, tagKey(id), tag)
	})
}

// putNamed writes a document and its unique name index. oldNameKey is empty on create.
func putNamed(txn *badger.Txn, docKey, oldNameKey, nameKey, id string, doc any, errExists error) error {
	if oldNameKey != nameKey {
		owner, err := getString(txn, nameKey)
		switch {
		case err == nil && owner != id:
			return errExists
		case err != nil && !errors.Is(err, badger.ErrKeyNotFound):
			return err
		}
		if oldNameKey != "" {
			if err := txn.Delete([]byte(oldNameKey)); err != nil {
				return err
			}
		}
		if err := txn.Set([]byte(nameKey), []byte(id)); err != nil {
			return err
		}
	}
	return setJSON(txn, docKey, doc)
}
