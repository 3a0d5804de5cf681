package badger

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/amiyamandal-dev/inkwell/internal/domain"
	"github.com/dgraph-io/badger/v4"
)

// UserRepo implements UserRepository using BadgerDB
type UserRepo struct {
	db *DB
}

// storageUser keeps the password hash that domain.User hides from JSON
type storageUser struct {
	domain.User
	PasswordHash string `json:"passwordHash"`
}

func toStorageUser(u *domain.User) *storageUser {
	return &storageUser{User: *u, PasswordHash: u.PasswordHash}
}

func toDomainUser(s *storageUser) *domain.User {
	u := s.User
	u.PasswordHash = s.PasswordHash
	return &u
}

func userIDKey(id string) string { return "user:id:" + id }

func usernameKey(username string) string { return "user:username:" + strings.ToLower(username) }

func emailKey(email string) string { return "user:email:" + strings.ToLower(email) }

// NewUserRepo creates a new BadgerDB-based user repository
func NewUserRepo(db *DB) *UserRepo {
	return &UserRepo{db: db}
}

func loadUser(txn *badger.Txn, id string) (*domain.User, error) {
	var s storageUser
	if err := getJSON(txn, userIDKey(id), &s); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return toDomainUser(&s), nil
}

func saveUser(txn *badger.Txn, u *domain.User) error {
	return setJSON(txn, userIDKey(u.ID), toStorageUser(u))
}

func (r *UserRepo) loadByIndex(ctx context.Context, key string) (*domain.User, error) {
	var user *domain.User
	err := r.db.view(ctx, func(txn *badger.Txn) error {
		id, err := getString(txn, key)
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return domain.ErrUserNotFound
			}
			return err
		}
		user, err = loadUser(txn, id)
		return err
	})
	return user, err
}

// Create creates a new user
func (r *UserRepo) Create(ctx context.Context, user *domain.User) error {
	return r.db.update(ctx, func(txn *badger.Txn) error {
		for _, key := range []string{usernameKey(user.Username), emailKey(user.Email)} {
			taken, err := keyExists(txn, key)
			if err != nil {
				return err
			}
			if taken {
				return domain.ErrUserAlreadyExists
			}
		}

		if err := saveUser(txn, user); err != nil {
			return err
		}
		if err := txn.Set([]byte(usernameKey(user.Username)), []byte(user.ID)); err != nil {
			return err
		}
		return txn.Set([]byte(emailKey(user.Email)), []byte(user.ID))
	})
}

// GetByID retrieves a user by ID
func (r *UserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	var user *domain.User
	err := r.db.view(ctx, func(txn *badger.Txn) error {
		var err error
		user, err = loadUser(txn, id)
		return err
	})
	return user, err
}

// GetByUsername retrieves a user by username
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.loadByIndex(ctx, usernameKey(username))
}

// GetByEmail retrieves a user by email
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.loadByIndex(ctx, emailKey(email))
}

// GetByIDs retrieves the users that exist among ids
func (r *UserRepo) GetByIDs(ctx context.Context, ids []string) ([]*domain.User, error) {
	users := make([]*domain.User, 0, len(ids))
	err := r.db.view(ctx, func(txn *badger.Txn) error {
		for _, id := range ids {
			u, err := loadUser(txn, id)
			if errors.Is(err, domain.ErrUserNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			users = append(users, u)
		}
		return nil
	})
	return users, err
}

// Update writes the account fields of user onto the stored document.
// On success user is refreshed with the stored follow lists and stats.
func (r *UserRepo) Update(ctx context.Context, user *domain.User) error {
	var stored *domain.User
	err := r.db.update(ctx, func(txn *badger.Txn) error {
		existing, err := loadUser(txn, user.ID)
		if err != nil {
			return err
		}

		reindex := []struct{ oldKey, newKey string }{
			{usernameKey(existing.Username), usernameKey(user.Username)},
			{emailKey(existing.Email), emailKey(user.Email)},
		}
		for _, ix := range reindex {
			if ix.oldKey == ix.newKey {
				continue
			}
			taken, err := keyExists(txn, ix.newKey)
			if err != nil {
				return err
			}
			if taken {
				return domain.ErrUserAlreadyExists
			}
			if err := txn.Delete([]byte(ix.oldKey)); err != nil {
				return err
			}
			if err := txn.Set([]byte(ix.newKey), []byte(user.ID)); err != nil {
				return err
			}
		}

		existing.SetAccountFields(user)
		stored = existing
		return saveUser(txn, existing)
	})
	if err != nil {
		return err
	}
	*user = *stored
	return nil
}

// Delete deletes a user and removes it from the follow lists of everyone it touched
func (r *UserRepo) Delete(ctx context.Context, id string) error {
	return r.db.update(ctx, func(txn *badger.Txn) error {
		user, err := loadUser(txn, id)
		if err != nil {
			return err
		}

		for _, otherID := range union(user.Following, user.Followers) {
			other, err := loadUser(txn, otherID)
			if errors.Is(err, domain.ErrUserNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			other.Following = slices.DeleteFunc(other.Following, func(s string) bool { return s == id })
			other.Followers = slices.DeleteFunc(other.Followers, func(s string) bool { return s == id })
			syncFollowCounts(other)
			if err := saveUser(txn, other); err != nil {
				return err
			}
		}

		return deleteKeys(txn, []string{userIDKey(id), usernameKey(user.Username), emailKey(user.Email)})
	})
}

// ExistsByUsername checks if a user exists by username
func (r *UserRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := r.db.view(ctx, func(txn *badger.Txn) error {
		var err error
		exists, err = keyExists(txn, usernameKey(username))
		return err
	})
	return exists, err
}

// ExistsByEmail checks if a user exists by email
func (r *UserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.view(ctx, func(txn *badger.Txn) error {
		var err error
		exists, err = keyExists(txn, emailKey(email))
		return err
	})
	return exists, err
}

// All returns every user newest first
func (r *UserRepo) All(ctx context.Context) ([]*domain.User, error) {
	var users []*domain.User
	err := r.db.view(ctx, func(txn *badger.Txn) error {
		return scanJSON(txn, "user:id:", func(s *storageUser) error {
			users = append(users, toDomainUser(s))
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	newestFirst(users, func(u *domain.User) time.Time { return u.CreatedAt }, func(u *domain.User) string { return u.ID })
	return users, nil
}

// List returns one page of users newest first
func (r *UserRepo) List(ctx context.Context, page, limit int) ([]*domain.User, int64, error) {
	users, err := r.All(ctx)
	if err != nil {
		return nil, 0, err
	}
	return paginate(users, page, limit), int64(len(users)), nil
}

// Count counts users created at or after since
func (r *UserRepo) Count(ctx context.Context, since time.Time) (int64, error) {
	var n int64
	err := r.db.view(ctx, func(txn *badger.Txn) error {
		return scanJSON(txn, "user:id:", func(s *storageUser) error {
			if since.IsZero() || !s.CreatedAt.Before(since) {
				n++
			}
			return nil
		})
	})
	return n, err
}

// TopByArticleCount returns the most prolific authors
func (r *UserRepo) TopByArticleCount(ctx context.Context, limit int) ([]*domain.User, error) {
	users, err := r.All(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(users, func(i, j int) bool {
		return users[i].Stats.ArticleCount > users[j].Stats.ArticleCount
	})
	if limit > 0 && len(users) > limit {
		users = users[:limit]
	}
	return users, nil
}

// SetArticleCount stores a recomputed article total
func (r *UserRepo) SetArticleCount(ctx context.Context, id string, count int64) error {
	return r.db.update(ctx, func(txn *badger.Txn) error {
		user, err := loadUser(txn, id)
		if err != nil {
			return err
		}
		user.Stats.ArticleCount = count
		return saveUser(txn, user)
	})
}

// ToggleFollow follows targetID when followerID does not follow it yet, otherwise unfollows
func (r *UserRepo) ToggleFollow(ctx context.Context, followerID, targetID string) (*domain.FollowResult, error) {
	if followerID == targetID {
		return nil, domain.ErrSelfFollow
	}

	var result *domain.FollowResult
	err := r.db.update(ctx, func(txn *badger.Txn) error {
		follower, err := loadUser(txn, followerID)
		if err != nil {
			return err
		}
		target, err := loadUser(txn, targetID)
		if err != nil {
			return err
		}

		following := !follower.IsFollowing(targetID)
		if following {
			follower.Following = append(follower.Following, targetID)
			if !slices.Contains(target.Followers, followerID) {
				target.Followers = append(target.Followers, followerID)
			}
		} else {
			follower.Following = slices.DeleteFunc(follower.Following, func(s string) bool { return s == targetID })
			target.Followers = slices.DeleteFunc(target.Followers, func(s string) bool { return s == followerID })
		}
		syncFollowCounts(follower)
		syncFollowCounts(target)

		if err := saveUser(txn, follower); err != nil {
			return err
		}
		if err := saveUser(txn, target); err != nil {
			return err
		}

		result = &domain.FollowResult{
			Following:      following,
			FollowersCount: target.Stats.FollowersCount,
			FollowingCount: follower.Stats.FollowingCount,
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("toggle follow: %w", err)
	}
	return result, nil
}

// syncFollowCounts keeps the counters equal to the list lengths
func syncFollowCounts(u *domain.User) {
	u.Stats.FollowingCount = int64(len(u.Following))
	u.Stats.FollowersCount = int64(len(u.Followers))
}

func union(a, b []string) []string {
	out := slices.Clone(a)
	for _, s := range b {
		if !slices.Contains(out, s) {
			out = append(out, s)
		}
	}
	return out
}
