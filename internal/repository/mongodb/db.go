package mongodb

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

const (
	usersCollection         = "users"
	articlesCollection      = "articles"
	categoriesCollection    = "categories"
	tagsCollection          = "tags"
	commentsCollection      = "comments"
	likesCollection         = "likes"
	verificationsCollection = "verifications"
	visitsCollection        = "visits"
)

// errCodeIllegalOperation is returned by standalone servers for multi-document transactions
const errCodeIllegalOperation = 20

// caseInsensitive backs the unique name indexes and the lookups that must hit them
var caseInsensitive = &options.Collation{Locale: "en", Strength: 2}

// DB is a connected MongoDB database
type DB struct {
	client *mongo.Client
	db     *mongo.Database

	noTxn atomic.Bool
}

// Connect dials uri, pings the primary and selects database
func Connect(ctx context.Context, uri, database string) (*DB, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetServerAPIOptions(options.ServerAPI(options.ServerAPIVersion1))

	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &DB{client: client, db: client.Database(database)}, nil
}

func (d *DB) collection(name string) *mongo.Collection {
	return d.db.Collection(name)
}

// HealthCheck pings the primary
func (d *DB) HealthCheck(ctx context.Context) error {
	return d.client.Ping(ctx, readpref.Primary())
}

// Close disconnects the client
func (d *DB) Close(ctx context.Context) error {
	return d.client.Disconnect(ctx)
}

// Drop removes the whole database; used by tests
func (d *DB) Drop(ctx context.Context) error {
	return d.db.Drop(ctx)
}

// EnsureIndexes creates the unique, partial and TTL indexes the repositories rely on
func (d *DB) EnsureIndexes(ctx context.Context) error {
	plan := map[string][]mongo.IndexModel{
		usersCollection: {
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true).SetCollation(caseInsensitive).SetName("uniq_username")},
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true).SetCollation(caseInsensitive).SetName("uniq_email")},
			{Keys: bson.D{{Key: "createdAt", Value: -1}}, Options: options.Index().SetName("createdAt")},
		},
		articlesCollection: {
			{Keys: bson.D{{Key: "isPublished", Value: 1}, {Key: "createdAt", Value: -1}}, Options: options.Index().SetName("published_createdAt")},
			{Keys: bson.D{{Key: "author", Value: 1}, {Key: "createdAt", Value: -1}}, Options: options.Index().SetName("author_createdAt")},
			{Keys: bson.D{{Key: "tags", Value: 1}}, Options: options.Index().SetName("tags")},
		},
		categoriesCollection: {
			{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true).SetCollation(caseInsensitive).SetName("uniq_name")},
		},
		tagsCollection: {
			{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true).SetCollation(caseInsensitive).SetName("uniq_name")},
		},
		commentsCollection: {
			{Keys: bson.D{{Key: "article", Value: 1}, {Key: "createdAt", Value: -1}}, Options: options.Index().SetName("article_createdAt")},
			{Keys: bson.D{{Key: "parent", Value: 1}, {Key: "createdAt", Value: 1}}, Options: options.Index().SetName("parent_createdAt")},
		},
		likesCollection: {
			{
				Keys: bson.D{{Key: "user", Value: 1}, {Key: "article", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("uniq_user_article").
					SetPartialFilterExpression(bson.M{"article": bson.M{"$exists": true}}),
			},
			{
				Keys: bson.D{{Key: "user", Value: 1}, {Key: "comment", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("uniq_user_comment").
					SetPartialFilterExpression(bson.M{"comment": bson.M{"$exists": true}}),
			},
		},
		verificationsCollection: {
			{Keys: bson.D{{Key: "expiresAt", Value: 1}}, Options: options.Index().SetExpireAfterSeconds(0).SetName("ttl_expiresAt")},
			{Keys: bson.D{{Key: "email", Value: 1}, {Key: "createdAt", Value: -1}}, Options: options.Index().SetName("email_createdAt")},
		},
		visitsCollection: {
			{Keys: bson.D{{Key: "expiresAt", Value: 1}}, Options: options.Index().SetExpireAfterSeconds(0).SetName("ttl_expiresAt")},
			{Keys: bson.D{{Key: "lastVisitAt", Value: 1}}, Options: options.Index().SetName("lastVisitAt")},
		},
	}

	for name, models := range plan {
		if _, err := d.collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("ensure %s indexes: %w", name, err)
		}
	}
	return nil
}

// withTxn runs fn inside a multi-document transaction. Standalone servers do not
// support transactions; there fn runs directly and relies on single-document atomic updates.
func (d *DB) withTxn(ctx context.Context, fn func(ctx context.Context) error) error {
	if d.noTxn.Load() {
		return fn(ctx)
	}

	sess, err := d.client.StartSession()
	if err != nil {
		return err
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(ctx context.Context) (any, error) {
		return nil, fn(ctx)
	})
	if isTxnUnsupported(err) {
		d.noTxn.Store(true)
		return fn(ctx)
	}
	return err
}

func isTxnUnsupported(err error) bool {
	var se mongo.ServerError
	return errors.As(err, &se) && se.HasErrorCode(errCodeIllegalOperation)
}

func findOne[T any](ctx context.Context, coll *mongo.Collection, filter any, notFound error, opts ...options.Lister[options.FindOneOptions]) (*T, error) {
	var doc T
	if err := coll.FindOne(ctx, filter, opts...).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, notFound
		}
		return nil, err
	}
	return &doc, nil
}

func findAll[T any](ctx context.Context, coll *mongo.Collection, filter any, opts ...options.Lister[options.FindOptions]) ([]*T, error) {
	cur, err := coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	docs := []*T{}
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// pageOpts sorts by sort and selects the page-th window of limit documents
func pageOpts(sort bson.D, page, limit int) *options.FindOptionsBuilder {
	opts := options.Find().SetSort(sort)
	if limit > 0 {
		if page < 1 {
			page = 1
		}
		opts.SetSkip(int64((page - 1) * limit)).SetLimit(int64(limit))
	}
	return opts
}

var newestFirst = bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}
