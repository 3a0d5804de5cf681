package mongodb

import (
	"context"

	"github.com/amiyamandal-dev/inkwell/internal/domain"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// LikeRepo implements LikeRepository. The partial unique indexes on
// (user, article) and (user, comment) keep one like per user and target.
type LikeRepo struct {
	likes *mongo.Collection
}

// NewLikeRepo creates a new MongoDB-based like repository
func NewLikeRepo(db *DB) *LikeRepo {
	return &LikeRepo{likes: db.collection(likesCollection)}
}

func targetFilter(kind domain.TargetKind, targetID string) bson.M {
	return bson.M{string(kind): targetID}
}

// Toggle deletes an existing like or inserts a new one
func (r *LikeRepo) Toggle(ctx context.Context, like *domain.Like) (bool, error) {
	kind, targetID := like.Target()
	if kind == "" {
		return false, domain.ErrInvalidInput
	}

	filter := targetFilter(kind, targetID)
	filter["user"] = like.User
	res, err := r.likes.DeleteOne(ctx, filter)
	if err != nil {
		return false, err
	}
	if res.DeletedCount > 0 {
		return false, nil
	}

	_, err = r.likes.InsertOne(ctx, like)
	if mongo.IsDuplicateKeyError(err) {
		// a concurrent request stored the same like first
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Exists reports whether userID likes the target
func (r *LikeRepo) Exists(ctx context.Context, userID string, kind domain.TargetKind, targetID string) (bool, error) {
	filter := targetFilter(kind, targetID)
	filter["user"] = userID
	n, err := r.likes.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	return n > 0, err
}

// CountByTarget counts likes on a target
func (r *LikeRepo) CountByTarget(ctx context.Context, kind domain.TargetKind, targetID string) (int64, error) {
	return r.likes.CountDocuments(ctx, targetFilter(kind, targetID))
}

// CountByUser counts likes given by userID
func (r *LikeRepo) CountByUser(ctx context.Context, userID string) (int64, error) {
	return r.likes.CountDocuments(ctx, bson.M{"user": userID})
}

// Count counts every like
func (r *LikeRepo) Count(ctx context.Context) (int64, error) {
	return r.likes.CountDocuments(ctx, bson.M{})
}

// DeleteByTarget removes every like on a target
func (r *LikeRepo) DeleteByTarget(ctx context.Context, kind domain.TargetKind, targetID string) error {
	_, err := r.likes.DeleteMany(ctx, targetFilter(kind, targetID))
	return err
}
