package mongodb

import (
	"context"
	"time"

	"github.com/amiyamandal-dev/inkwell/internal/domain"
	"github.com/amiyamandal-dev/inkwell/internal/repository"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// CommentRepo implements CommentRepository on the comments collection
type CommentRepo struct {
	comments *mongo.Collection
	db       *DB
}

// NewCommentRepo creates a new MongoDB-based comment repository
func NewCommentRepo(db *DB) *CommentRepo {
	return &CommentRepo{comments: db.collection(commentsCollection), db: db}
}

// Create inserts a comment and increments the parent's replyCount with $inc in one transaction
func (r *CommentRepo) Create(ctx context.Context, comment *domain.Comment) error {
	return r.db.withTxn(ctx, func(ctx context.Context) error {
		if comment.Parent != nil {
			parent, err := r.GetByID(ctx, *comment.Parent)
			if err != nil {
				return err
			}
			if parent.Article != comment.Article || !parent.IsTopLevel() {
				return domain.ErrInvalidParent
			}
			if _, err := r.comments.UpdateOne(ctx, bson.M{"_id": parent.ID}, bson.M{"$inc": bson.M{"replyCount": 1}}); err != nil {
				return err
			}
		}
		_, err := r.comments.InsertOne(ctx, comment)
		return err
	})
}

// GetByID retrieves a comment by ID
func (r *CommentRepo) GetByID(ctx context.Context, id string) (*domain.Comment, error) {
	return findOne[domain.Comment](ctx, r.comments, bson.M{"_id": id}, domain.ErrCommentNotFound)
}

func (r *CommentRepo) page(ctx context.Context, filter bson.M, sort bson.D, page, limit int) (*domain.CommentPage, error) {
	items, err := findAll[domain.Comment](ctx, r.comments, filter, pageOpts(sort, page, limit))
	if err != nil {
		return nil, err
	}
	total, err := r.comments.CountDocuments(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &domain.CommentPage{Items: items, Total: total}, nil
}

// ListTopLevel lists visible top-level comments, newest first
func (r *CommentRepo) ListTopLevel(ctx context.Context, articleID string, page, limit int) (*domain.CommentPage, error) {
	return r.page(ctx, bson.M{"article": articleID, "parent": nil, "isDeleted": false}, newestFirst, page, limit)
}

// ListReplies lists visible replies, oldest first
func (r *CommentRepo) ListReplies(ctx context.Context, parentID string, page, limit int) (*domain.CommentPage, error) {
	oldestFirst := bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}}
	return r.page(ctx, bson.M{"parent": parentID, "isDeleted": false}, oldestFirst, page, limit)
}

// ListAll lists every comment newest first
func (r *CommentRepo) ListAll(ctx context.Context, page, limit int) (*domain.CommentPage, error) {
	return r.page(ctx, bson.M{}, newestFirst, page, limit)
}

// SetDeleted flips the soft-delete flag
func (r *CommentRepo) SetDeleted(ctx context.Context, id string, deleted bool) error {
	res, err := r.comments.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"isDeleted": deleted,
		"updatedAt": time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrCommentNotFound
	}
	return nil
}

// Count counts comments matching filter
func (r *CommentRepo) Count(ctx context.Context, f repository.CommentCountFilter) (int64, error) {
	filter := bson.M{}
	if f.Article != "" {
		filter["article"] = f.Article
	}
	if f.Author != "" {
		filter["author"] = f.Author
	}
	if !f.Since.IsZero() {
		filter["createdAt"] = bson.M{"$gte": f.Since}
	}
	if !f.IncludeDeleted {
		filter["isDeleted"] = false
	}
	return r.comments.CountDocuments(ctx, filter)
}

// DeleteByArticle removes every comment of an article
func (r *CommentRepo) DeleteByArticle(ctx context.Context, articleID string) ([]string, error) {
	filter := bson.M{"article": articleID}
	cur, err := r.comments.Find(ctx, filter, options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, err
	}
	var rows []struct {
		ID string `bson:"_id"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	if _, err := r.comments.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}}); err != nil {
		return nil, err
	}
	return ids, nil
}
