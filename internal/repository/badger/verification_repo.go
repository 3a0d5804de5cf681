package badger

import (
	"context"
	"strings"
	"time"

	"github.com/amiyamandal-dev/inkwell/internal/domain"
	"github.com/dgraph-io/badger/v4"
)

// VerificationRepo stores email codes as TTL entries so expired codes disappear on their own
type VerificationRepo struct {
	db *DB
}

// NewVerificationRepo creates a new BadgerDB-based verification repository
func NewVerificationRepo(db *DB) *VerificationRepo {
	return &VerificationRepo{db: db}
}

func verificationPrefix(email string) string {
	return "verification:" + strings.ToLower(email) + ":"
}

func (r *VerificationRepo) put(ctx context.Context, v *domain.Verification) error {
	ttl := time.Until(v.ExpiresAt)
	if ttl <= 0 {
		return nil
	}
	return r.db.update(ctx, func(txn *badger.Txn) error {
		return setJSONWithTTL(txn, verificationPrefix(v.Email)+v.ID, storageVerification{Verification: *v, Code: v.Code}, ttl)
	})
}

// storageVerification keeps the code that domain.Verification hides from JSON
type storageVerification struct {
	domain.Verification
	Code string `json:"code"`
}

// Create stores a code until it expires
func (r *VerificationRepo) Create(ctx context.Context, v *domain.Verification) error {
	return r.put(ctx, v)
}

// Latest returns the newest live code for email
func (r *VerificationRepo) Latest(ctx context.Context, email string) (*domain.Verification, error) {
	var latest *domain.Verification
	err := r.db.view(ctx, func(txn *badger.Txn) error {
		return scanJSON(txn, verificationPrefix(email), func(s *storageVerification) error {
			if latest == nil || s.CreatedAt.After(latest.CreatedAt) {
				v := s.Verification
				v.Code = s.Code
				latest = &v
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	if latest == nil {
		return nil, domain.ErrNotFound
	}
	return latest, nil
}

// MarkVerified flags a code as confirmed, keeping its original expiry
func (r *VerificationRepo) MarkVerified(ctx context.Context, v *domain.Verification) error {
	if v.Expired(time.Now()) {
		return domain.ErrInvalidCode
	}
	v.IsVerified = true
	return r.put(ctx, v)
}

// DeleteByEmail removes every code for email
func (r *VerificationRepo) DeleteByEmail(ctx context.Context, email string) error {
	return r.db.update(ctx, func(txn *badger.Txn) error {
		return deleteKeys(txn, scanKeys(txn, verificationPrefix(email)))
	})
}
