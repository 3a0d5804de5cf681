package repository

import (
	"context"

	"github.com/amiyamandal-dev/inkwell/internal/domain"
)

// LikeRepository defines the interface for like persistence.
// At most one like exists per (user, article) and per (user, comment).
type LikeRepository interface {
	// Toggle removes the caller's like on the target if present, otherwise stores like.
	// It reports whether a like exists afterwards.
	Toggle(ctx context.Context, like *domain.Like) (bool, error)

	// Exists reports whether userID likes the target
	Exists(ctx context.Context, userID string, kind domain.TargetKind, targetID string) (bool, error)

	// CountByTarget counts likes on a target
	CountByTarget(ctx context.Context, kind domain.TargetKind, targetID string) (int64, error)

	// CountByUser counts likes given by a user
	CountByUser(ctx context.Context, userID string) (int64, error)

	// Count counts every like
	Count(ctx context.Context) (int64, error)

	// DeleteByTarget removes every like on a target
	DeleteByTarget(ctx context.Context, kind domain.TargetKind, targetID string) error
}
