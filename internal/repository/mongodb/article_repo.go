package mongodb

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/amiyamandal-dev/inkwell/internal/domain"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const minVisitRetention = 48 * time.Hour

// ArticleRepo implements ArticleRepository on the articles and visits collections
type ArticleRepo struct {
	articles *mongo.Collection
	visits   *mongo.Collection
	db       *DB
}

// visitDoc is a visit plus the instant the TTL index drops it
type visitDoc struct {
	ID          string    `bson:"_id"`
	Article     string    `bson:"article"`
	Visitor     string    `bson:"visitor"`
	LastVisitAt time.Time `bson:"lastVisitAt"`
	ExpiresAt   time.Time `bson:"expiresAt"`
}

// NewArticleRepo creates a new MongoDB-based article repository
func NewArticleRepo(db *DB) *ArticleRepo {
	return &ArticleRepo{
		articles: db.collection(articlesCollection),
		visits:   db.collection(visitsCollection),
		db:       db,
	}
}

func exactFold(s string) bson.M {
	return bson.M{"$regex": "^" + regexp.QuoteMeta(s) + "$", "$options": "i"}
}

func articleFilter(f domain.ArticleFilter) bson.M {
	filter := bson.M{}
	if f.PublishedOnly {
		filter["isPublished"] = true
	}
	if f.Category != "" {
		filter["category"] = exactFold(f.Category)
	}
	if f.Tag != "" {
		filter["tags"] = exactFold(f.Tag)
	}
	if f.Author != "" {
		filter["author"] = f.Author
	}
	if !f.Since.IsZero() {
		filter["createdAt"] = bson.M{"$gte": f.Since}
	}
	if f.Keyword != "" {
		contains := bson.M{"$regex": regexp.QuoteMeta(f.Keyword), "$options": "i"}
		filter["$or"] = bson.A{
			bson.M{"title": contains},
			bson.M{"content": contains},
			bson.M{"tags": exactFold(f.Keyword)},
		}
	}
	return filter
}

// Create inserts an article
func (r *ArticleRepo) Create(ctx context.Context, article *domain.Article) error {
	_, err := r.articles.InsertOne(ctx, article)
	return err
}

// GetByID retrieves an article by ID
func (r *ArticleRepo) GetByID(ctx context.Context, id string) (*domain.Article, error) {
	return findOne[domain.Article](ctx, r.articles, bson.M{"_id": id}, domain.ErrArticleNotFound)
}

// GetByIDs retrieves the articles that exist among ids
func (r *ArticleRepo) GetByIDs(ctx context.Context, ids []string) ([]*domain.Article, error) {
	if len(ids) == 0 {
		return []*domain.Article{}, nil
	}
	return findAll[domain.Article](ctx, r.articles, bson.M{"_id": bson.M{"$in": ids}})
}

// Update $sets the editable fields of article; viewCount is only moved by $inc
func (r *ArticleRepo) Update(ctx context.Context, article *domain.Article) error {
	set := bson.M{
		"title":       article.Title,
		"description": article.Description,
		"content":     article.Content,
		"contentHtml": article.ContentHTML,
		"category":    article.Category,
		"tags":        article.Tags,
		"isPublished": article.IsPublished,
		"readTime":    article.ReadTime,
		"updatedAt":   article.UpdatedAt,
	}

	var stored domain.Article
	err := r.articles.FindOneAndUpdate(ctx,
		bson.M{"_id": article.ID},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&stored)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.ErrArticleNotFound
	}
	if err != nil {
		return err
	}
	*article = stored
	return nil
}

// Delete removes an article and its visit records
func (r *ArticleRepo) Delete(ctx context.Context, id string) error {
	return r.db.withTxn(ctx, func(ctx context.Context) error {
		res, err := r.articles.DeleteOne(ctx, bson.M{"_id": id})
		if err != nil {
			return err
		}
		if res.DeletedCount == 0 {
			return domain.ErrArticleNotFound
		}
		_, err = r.visits.DeleteMany(ctx, bson.M{"article": id})
		return err
	})
}

// List returns one page of matching articles plus the total
func (r *ArticleRepo) List(ctx context.Context, f domain.ArticleFilter) ([]*domain.Article, int64, error) {
	sort := newestFirst
	if f.Sort == domain.SortViews {
		sort = bson.D{{Key: "viewCount", Value: -1}, {Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}
	}

	filter := articleFilter(f)
	articles, err := findAll[domain.Article](ctx, r.articles, filter, pageOpts(sort, f.Page, f.Limit))
	if err != nil {
		return nil, 0, err
	}
	total, err := r.articles.CountDocuments(ctx, filter)
	return articles, total, err
}

// Count counts matching articles
func (r *ArticleRepo) Count(ctx context.Context, f domain.ArticleFilter) (int64, error) {
	return r.articles.CountDocuments(ctx, articleFilter(f))
}

// IncrementViews adds one view with $inc and returns the new total
func (r *ArticleRepo) IncrementViews(ctx context.Context, id string) (int64, error) {
	var article domain.Article
	err := r.articles.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$inc": bson.M{"viewCount": 1}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&article)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, domain.ErrArticleNotFound
	}
	if err != nil {
		return 0, err
	}
	return article.ViewCount, nil
}

// RegisterVisit counts a view once per visitor per window.
// The visit upsert only matches a stale record; a fresh one makes the
// upsert collide on _id, which means the visitor was already counted.
// No transaction here: the duplicate key error would abort it.
func (r *ArticleRepo) RegisterVisit(ctx context.Context, id, visitor string, window time.Duration, now time.Time) (*domain.ViewResult, error) {
	article, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	doc := visitDoc{
		ID:          id + ":" + visitor,
		Article:     id,
		Visitor:     visitor,
		LastVisitAt: now,
		ExpiresAt:   now.Add(max(window, minVisitRetention)),
	}
	_, err = r.visits.ReplaceOne(ctx,
		bson.M{"_id": doc.ID, "lastVisitAt": bson.M{"$lte": now.Add(-window)}},
		doc,
		options.Replace().SetUpsert(true),
	)
	if mongo.IsDuplicateKeyError(err) {
		return &domain.ViewResult{ViewCount: article.ViewCount, Counted: false}, nil
	}
	if err != nil {
		return nil, err
	}

	views, err := r.IncrementViews(ctx, id)
	if err != nil {
		return nil, err
	}
	return &domain.ViewResult{ViewCount: views, Counted: true}, nil
}

// CountVisitsSince counts visits recorded at or after since
func (r *ArticleRepo) CountVisitsSince(ctx context.Context, since time.Time) (int64, error) {
	return r.visits.CountDocuments(ctx, bson.M{"lastVisitAt": bson.M{"$gte": since}})
}

// TotalViews sums viewCount over all articles
func (r *ArticleRepo) TotalViews(ctx context.Context) (int64, error) {
	cur, err := r.articles.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$group", Value: bson.D{{Key: "_id", Value: nil}, {Key: "total", Value: bson.D{{Key: "$sum", Value: "$viewCount"}}}}}},
	})
	if err != nil {
		return 0, err
	}
	defer cur.Close(ctx)

	var row struct {
		Total int64 `bson:"total"`
	}
	if cur.Next(ctx) {
		if err := cur.Decode(&row); err != nil {
			return 0, err
		}
	}
	return row.Total, cur.Err()
}
