package repository

import (
	"context"
	"time"

	"github.com/amiyamandal-dev/inkwell/internal/domain"
)

// UserRepository defines the interface for user persistence
type UserRepository interface {
	// Create creates a new user, failing with ErrUserAlreadyExists on a username or email clash
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// GetByUsername retrieves a user by username (case-insensitive)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)

	// GetByEmail retrieves a user by email (case-insensitive)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// GetByIDs retrieves the users that exist among ids, in no particular order
	GetByIDs(ctx context.Context, ids []string) ([]*domain.User, error)

	// Update persists user, re-pointing the username and email indexes when they changed
	Update(ctx context.Context, user *domain.User) error

	// Delete deletes a user and detaches it from every follow list
	Delete(ctx context.Context, id string) error

	// ExistsByUsername checks if a user exists by username
	ExistsByUsername(ctx context.Context, username string) (bool, error)

	// ExistsByEmail checks if a user exists by email
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// List returns users newest first
	List(ctx context.Context, page, limit int) ([]*domain.User, int64, error)

	// All returns every user; used for ranking search candidates
	All(ctx context.Context) ([]*domain.User, error)

	// Count counts users created at or after since (zero means all)
	Count(ctx context.Context, since time.Time) (int64, error)

	// TopByArticleCount returns the users with the most articles
	TopByArticleCount(ctx context.Context, limit int) ([]*domain.User, error)

	// SetArticleCount stores a recomputed article total
	SetArticleCount(ctx context.Context, id string, count int64) error

	// ToggleFollow flips whether followerID follows targetID. Both follow lists
	// and both counters change in one transaction.
	ToggleFollow(ctx context.Context, followerID, targetID string) (*domain.FollowResult, error)
}
