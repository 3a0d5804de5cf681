package badger

import (
	"context"
	"fmt"

	"github.com/amiyamandal-dev/inkwell/internal/domain"
	"github.com/dgraph-io/badger/v4"
)

// LikeRepo implements LikeRepository using BadgerDB.
// The key embeds target and user, which caps likes at one per user and target.
type LikeRepo struct {
	db *DB
}

// NewLikeRepo creates a new BadgerDB-based like repository
func NewLikeRepo(db *DB) *LikeRepo {
	return &LikeRepo{db: db}
}

func likeTargetPrefix(kind domain.TargetKind, targetID string) string {
	return fmt.Sprintf("like:%s:%s:", kind, targetID)
}

func likeKey(kind domain.TargetKind, targetID, userID string) string {
	return likeTargetPrefix(kind, targetID) + userID
}

// Toggle stores like or removes the existing one
func (r *LikeRepo) Toggle(ctx context.Context, like *domain.Like) (bool, error) {
	kind, targetID := like.Target()
	if kind == "" {
		return false, domain.ErrInvalidInput
	}
	key := likeKey(kind, targetID, like.User)

	var liked bool
	err := r.db.update(ctx, func(txn *badger.Txn) error {
		exists, err := keyExists(txn, key)
		if err != nil {
			return err
		}
		liked = !exists
		if exists {
			return txn.Delete([]byte(key))
		}
		return setJSON(txn, key, like)
	})
	return liked, err
}

// Exists reports whether userID likes the target
func (r *LikeRepo) Exists(ctx context.Context, userID string, kind domain.TargetKind, targetID string) (bool, error) {
	var exists bool
	err := r.db.view(ctx, func(txn *badger.Txn) error {
		var err error
		exists, err = keyExists(txn, likeKey(kind, targetID, userID))
		return err
	})
	return exists, err
}

// CountByTarget counts likes on a target
func (r *LikeRepo) CountByTarget(ctx context.Context, kind domain.TargetKind, targetID string) (int64, error) {
	var n int64
	err := r.db.view(ctx, func(txn *badger.Txn) error {
		n = int64(len(scanKeys(txn, likeTargetPrefix(kind, targetID))))
		return nil
	})
	return n, err
}

// CountByUser counts likes given by userID
func (r *LikeRepo) CountByUser(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := r.db.view(ctx, func(txn *badger.Txn) error {
		return scanJSON(txn, "like:", func(l *domain.Like) error {
			if l.User == userID {
				n++
			}
			return nil
		})
	})
	return n, err
}

// Count counts every like
func (r *LikeRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.view(ctx, func(txn *badger.Txn) error {
		n = int64(len(scanKeys(txn, "like:")))
		return nil
	})
	return n, err
}

// DeleteByTarget removes every like on a target
func (r *LikeRepo) DeleteByTarget(ctx context.Context, kind domain.TargetKind, targetID string) error {
	return r.db.update(ctx, func(txn *badger.Txn) error {
		return deleteKeys(txn, scanKeys(txn, likeTargetPrefix(kind, targetID)))
	})
}
