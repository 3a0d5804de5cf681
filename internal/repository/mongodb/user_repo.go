package mongodb

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/amiyamandal-dev/inkwell/internal/domain"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// UserRepo implements UserRepository on the users collection
type UserRepo struct {
	users *mongo.Collection
	db    *DB
}

// NewUserRepo creates a new MongoDB-based user repository
func NewUserRepo(db *DB) *UserRepo {
	return &UserRepo{users: db.collection(usersCollection), db: db}
}

// syncFollowCounts recomputes both follow counters from the list sizes
var syncFollowCounts = mongo.Pipeline{
	{{Key: "$set", Value: bson.D{
		{Key: "stats.followingCount", Value: bson.D{{Key: "$size", Value: bson.D{{Key: "$ifNull", Value: bson.A{"$following", bson.A{}}}}}}},
		{Key: "stats.followersCount", Value: bson.D{{Key: "$size", Value: bson.D{{Key: "$ifNull", Value: bson.A{"$followers", bson.A{}}}}}}},
	}}},
}

// Create inserts a user; the unique indexes reject duplicate usernames and emails
func (r *UserRepo) Create(ctx context.Context, user *domain.User) error {
	_, err := r.users.InsertOne(ctx, user)
	if mongo.IsDuplicateKeyError(err) {
		return domain.ErrUserAlreadyExists
	}
	return err
}

// GetByID retrieves a user by ID
func (r *UserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return findOne[domain.User](ctx, r.users, bson.M{"_id": id}, domain.ErrUserNotFound)
}

// GetByUsername retrieves a user by username
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return findOne[domain.User](ctx, r.users, bson.M{"username": username}, domain.ErrUserNotFound,
		options.FindOne().SetCollation(caseInsensitive))
}

// GetByEmail retrieves a user by email
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return findOne[domain.User](ctx, r.users, bson.M{"email": email}, domain.ErrUserNotFound,
		options.FindOne().SetCollation(caseInsensitive))
}

// GetByIDs retrieves the users that exist among ids
func (r *UserRepo) GetByIDs(ctx context.Context, ids []string) ([]*domain.User, error) {
	if len(ids) == 0 {
		return []*domain.User{}, nil
	}
	return findAll[domain.User](ctx, r.users, bson.M{"_id": bson.M{"$in": ids}})
}

// Update $sets the account fields of user and refreshes it from the stored document
func (r *UserRepo) Update(ctx context.Context, user *domain.User) error {
	set := bson.M{
		"username":     user.Username,
		"email":        user.Email,
		"passwordHash": user.PasswordHash,
		"avatar":       user.Avatar,
		"role":         user.Role,
		"isActive":     user.IsActive,
		"isVerified":   user.IsVerified,
		"profile":      user.Profile,
		"updatedAt":    user.UpdatedAt,
	}

	var stored domain.User
	err := r.users.FindOneAndUpdate(ctx,
		bson.M{"_id": user.ID},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&stored)
	switch {
	case mongo.IsDuplicateKeyError(err):
		return domain.ErrUserAlreadyExists
	case errors.Is(err, mongo.ErrNoDocuments):
		return domain.ErrUserNotFound
	case err != nil:
		return err
	}
	*user = stored
	return nil
}

// Delete removes a user and pulls it out of every follow list it appears in
func (r *UserRepo) Delete(ctx context.Context, id string) error {
	return r.db.withTxn(ctx, func(ctx context.Context) error {
		user, err := r.GetByID(ctx, id)
		if err != nil {
			return err
		}

		related := slices.Concat(user.Following, user.Followers)
		if len(related) > 0 {
			filter := bson.M{"_id": bson.M{"$in": related}}
			if _, err := r.users.UpdateMany(ctx, filter, bson.M{"$pull": bson.M{"following": id, "followers": id}}); err != nil {
				return err
			}
			if _, err := r.users.UpdateMany(ctx, filter, syncFollowCounts); err != nil {
				return err
			}
		}

		_, err = r.users.DeleteOne(ctx, bson.M{"_id": id})
		return err
	})
}

func (r *UserRepo) exists(ctx context.Context, filter bson.M) (bool, error) {
	n, err := r.users.CountDocuments(ctx, filter, options.Count().SetCollation(caseInsensitive).SetLimit(1))
	return n > 0, err
}

// ExistsByUsername checks if a user exists by username
func (r *UserRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, bson.M{"username": username})
}

// ExistsByEmail checks if a user exists by email
func (r *UserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, bson.M{"email": email})
}

// List returns one page of users newest first
func (r *UserRepo) List(ctx context.Context, page, limit int) ([]*domain.User, int64, error) {
	users, err := findAll[domain.User](ctx, r.users, bson.M{}, pageOpts(newestFirst, page, limit))
	if err != nil {
		return nil, 0, err
	}
	total, err := r.users.CountDocuments(ctx, bson.M{})
	return users, total, err
}

// All returns every user newest first
func (r *UserRepo) All(ctx context.Context) ([]*domain.User, error) {
	return findAll[domain.User](ctx, r.users, bson.M{}, options.Find().SetSort(newestFirst))
}

// Count counts users created at or after since
func (r *UserRepo) Count(ctx context.Context, since time.Time) (int64, error) {
	filter := bson.M{}
	if !since.IsZero() {
		filter["createdAt"] = bson.M{"$gte": since}
	}
	return r.users.CountDocuments(ctx, filter)
}

// TopByArticleCount returns the most prolific authors
func (r *UserRepo) TopByArticleCount(ctx context.Context, limit int) ([]*domain.User, error) {
	sort := bson.D{{Key: "stats.articleCount", Value: -1}, {Key: "createdAt", Value: -1}}
	return findAll[domain.User](ctx, r.users, bson.M{}, options.Find().SetSort(sort).SetLimit(int64(limit)))
}

// SetArticleCount stores a recomputed article total
func (r *UserRepo) SetArticleCount(ctx context.Context, id string, count int64) error {
	res, err := r.users.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"stats.articleCount": count}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// ToggleFollow flips the follow edge with $addToSet/$pull and recomputes both counters
func (r *UserRepo) ToggleFollow(ctx context.Context, followerID, targetID string) (*domain.FollowResult, error) {
	if followerID == targetID {
		return nil, domain.ErrSelfFollow
	}

	var result *domain.FollowResult
	err := r.db.withTxn(ctx, func(ctx context.Context) error {
		follower, err := r.GetByID(ctx, followerID)
		if err != nil {
			return err
		}
		if _, err := r.GetByID(ctx, targetID); err != nil {
			return err
		}

		following := !follower.IsFollowing(targetID)
		op := "$pull"
		if following {
			op = "$addToSet"
		}

		if _, err := r.users.UpdateOne(ctx, bson.M{"_id": followerID}, bson.M{op: bson.M{"following": targetID}}); err != nil {
			return err
		}
		if _, err := r.users.UpdateOne(ctx, bson.M{"_id": targetID}, bson.M{op: bson.M{"followers": followerID}}); err != nil {
			return err
		}
		if _, err := r.users.UpdateMany(ctx, bson.M{"_id": bson.M{"$in": bson.A{followerID, targetID}}}, syncFollowCounts); err != nil {
			return err
		}

		follower, err = r.GetByID(ctx, followerID)
		if err != nil {
			return err
		}
		target, err := r.GetByID(ctx, targetID)
		if err != nil {
			return err
		}
		result = &domain.FollowResult{
			Following:      following,
			FollowersCount: target.Stats.FollowersCount,
			FollowingCount: follower.Stats.FollowingCount,
		}
		return nil
	})
	return result, err
}
