package mongodb

import (
	"context"
	"strings"
	"time"

	"github.com/amiyamandal-dev/inkwell/internal/domain"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// VerificationRepo stores codes in a collection with a TTL index on expiresAt
type VerificationRepo struct {
	codes *mongo.Collection
}

// NewVerificationRepo creates a new MongoDB-based verification repository
func NewVerificationRepo(db *DB) *VerificationRepo {
	return &VerificationRepo{codes: db.collection(verificationsCollection)}
}

// Create stores a code
func (r *VerificationRepo) Create(ctx context.Context, v *domain.Verification) error {
	doc := *v
	doc.Email = strings.ToLower(v.Email)
	_, err := r.codes.InsertOne(ctx, &doc)
	return err
}

// Latest returns the newest unexpired code; the TTL monitor runs only once a minute
func (r *VerificationRepo) Latest(ctx context.Context, email string) (*domain.Verification, error) {
	filter := bson.M{
		"email":     strings.ToLower(email),
		"expiresAt": bson.M{"$gt": time.Now().UTC()},
	}
	return findOne[domain.Verification](ctx, r.codes, filter, domain.ErrNotFound,
		options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
}

// MarkVerified flags a code as confirmed
func (r *VerificationRepo) MarkVerified(ctx context.Context, v *domain.Verification) error {
	if v.Expired(time.Now()) {
		return domain.ErrInvalidCode
	}
	res, err := r.codes.UpdateOne(ctx, bson.M{"_id": v.ID}, bson.M{"$set": bson.M{"isVerified": true}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrInvalidCode
	}
	v.IsVerified = true
	return nil
}

// DeleteByEmail removes every code for email
func (r *VerificationRepo) DeleteByEmail(ctx context.Context, email string) error {
	_, err := r.codes.DeleteMany(ctx, bson.M{"email": strings.ToLower(email)})
	return err
}
