package repository

import (
	"context"

	"github.com/amiyamandal-dev/inkwell/internal/domain"
)

// VerificationRepository stores email verification codes until they expire
type VerificationRepository interface {
	// Create stores v; the store drops it once v.ExpiresAt passes
	Create(ctx context.Context, v *domain.Verification) error

	// Latest returns the newest code for email or ErrNotFound
	Latest(ctx context.Context, email string) (*domain.Verification, error)

	// MarkVerified flags a code as confirmed
	MarkVerified(ctx context.Context, v *domain.Verification) error

	// DeleteByEmail removes every code for email
	DeleteByEmail(ctx context.Context, email string) error
}
