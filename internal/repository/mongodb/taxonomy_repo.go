package mongodb

import (
	"context"

	"github.com/amiyamandal-dev/inkwell/internal/domain"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

var byName = bson.D{{Key: "name", Value: 1}}

// namedRepo holds what categories and tags share: a unique case-insensitive name and a counter
type namedRepo[T any] struct {
	coll      *mongo.Collection
	notFound  error
	duplicate error
}

func (r namedRepo[T]) create(ctx context.Context, doc *T) error {
	_, err := r.coll.InsertOne(ctx, doc)
	if mongo.IsDuplicateKeyError(err) {
		return r.duplicate
	}
	return err
}

func (r namedRepo[T]) getByID(ctx context.Context, id string) (*T, error) {
	return findOne[T](ctx, r.coll, bson.M{"_id": id}, r.notFound)
}

func (r namedRepo[T]) getByName(ctx context.Context, name string) (*T, error) {
	return findOne[T](ctx, r.coll, bson.M{"name": name}, r.notFound, options.FindOne().SetCollation(caseInsensitive))
}

// set updates the given fields only; articleCount is owned by setArticleCount
func (r namedRepo[T]) set(ctx context.Context, id string, fields bson.M) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if mongo.IsDuplicateKeyError(err) {
		return r.duplicate
	}
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return r.notFound
	}
	return nil
}

func (r namedRepo[T]) delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return r.notFound
	}
	return nil
}

func (r namedRepo[T]) list(ctx context.Context) ([]*T, error) {
	return findAll[T](ctx, r.coll, bson.M{}, options.Find().SetSort(byName))
}

func (r namedRepo[T]) setArticleCount(ctx context.Context, id string, count int64) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"articleCount": count}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return r.notFound
	}
	return nil
}

// CategoryRepo implements CategoryRepository
type CategoryRepo struct {
	namedRepo[domain.Category]
}

// NewCategoryRepo creates a new MongoDB-based category repository
func NewCategoryRepo(db *DB) *CategoryRepo {
	return &CategoryRepo{namedRepo[domain.Category]{
		coll:      db.collection(categoriesCollection),
		notFound:  domain.ErrCategoryNotFound,
		duplicate: domain.ErrCategoryExists,
	}}
}

func (r *CategoryRepo) Create(ctx context.Context, c *domain.Category) error {
	return r.create(ctx, c)
}

func (r *CategoryRepo) GetByID(ctx context.Context, id string) (*domain.Category, error) {
	return r.getByID(ctx, id)
}

func (r *CategoryRepo) GetByName(ctx context.Context, name string) (*domain.Category, error) {
	return r.getByName(ctx, name)
}

func (r *CategoryRepo) Update(ctx context.Context, c *domain.Category) error {
	return r.set(ctx, c.ID, bson.M{"name": c.Name, "description": c.Description, "updatedAt": c.UpdatedAt})
}

func (r *CategoryRepo) Delete(ctx context.Context, id string) error {
	return r.delete(ctx, id)
}

func (r *CategoryRepo) List(ctx context.Context) ([]*domain.Category, error) {
	return r.list(ctx)
}

func (r *CategoryRepo) SetArticleCount(ctx context.Context, id string, count int64) error {
	return r.setArticleCount(ctx, id, count)
}

// TagRepo implements TagRepository
type TagRepo struct {
	namedRepo[domain.Tag]
}

// NewTagRepo creates a new MongoDB-based tag repository
func NewTagRepo(db *DB) *TagRepo {
	return &TagRepo{namedRepo[domain.Tag]{
		coll:      db.collection(tagsCollection),
		notFound:  domain.ErrTagNotFound,
		duplicate: domain.ErrTagExists,
	}}
}

func (r *TagRepo) Create(ctx context.Context, t *domain.Tag) error {
	return r.create(ctx, t)
}

func (r *TagRepo) GetByID(ctx context.Context, id string) (*domain.Tag, error) {
	return r.getByID(ctx, id)
}

func (r *TagRepo) GetByName(ctx context.Context, name string) (*domain.Tag, error) {
	return r.getByName(ctx, name)
}

func (r *TagRepo) Update(ctx context.Context, t *domain.Tag) error {
	return r.set(ctx, t.ID, bson.M{"name": t.Name, "description": t.Description, "color": t.Color, "updatedAt": t.UpdatedAt})
}

func (r *TagRepo) Delete(ctx context.Context, id string) error {
	return r.delete(ctx, id)
}

func (r *TagRepo) List(ctx context.Context) ([]*domain.Tag, error) {
	return r.list(ctx)
}

// Hot returns the tags with the most articles
func (r *TagRepo) Hot(ctx context.Context, limit int) ([]*domain.Tag, error) {
	sort := bson.D{{Key: "articleCount", Value: -1}, {Key: "name", Value: 1}}
	return findAll[domain.Tag](ctx, r.coll, bson.M{"articleCount": bson.M{"$gt": 0}},
		options.Find().SetSort(sort).SetLimit(int64(limit)))
}

func (r *TagRepo) SetArticleCount(ctx context.Context, id string, count int64) error {
	return r.setArticleCount(ctx, id, count)
}
