package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/amiyamandal-dev/inkwell/internal/domain"
	"github.com/amiyamandal-dev/inkwell/internal/mailer"
	"github.com/amiyamandal-dev/inkwell/internal/repository"
	"github.com/amiyamandal-dev/inkwell/pkg/logger"
)

const codeLength = 6

// VerificationService issues and checks email verification codes
type VerificationService struct {
	verifications repository.VerificationRepository
	users         repository.UserRepository
	mailer        mailer.Mailer
	ttl           time.Duration
	logger        *logger.Logger
}

// NewVerificationService creates a new verification service
func NewVerificationService(
	verifications repository.VerificationRepository,
	users repository.UserRepository,
	m mailer.Mailer,
	ttl time.Duration,
	logger *logger.Logger,
) *VerificationService {
	return &VerificationService{
		verifications: verifications,
		users:         users,
		mailer:        m,
		ttl:           ttl,
		logger:        logger.WithComponent("verification-service"),
	}
}

// SendCode replaces any pending code for email and mails a new one
func (s *VerificationService) SendCode(ctx context.Context, email string) error {
	email = normalizeEmail(email)

	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return domain.ErrEmailAlreadyRegistered
	}

	code, err := mailer.GenerateCode(codeLength)
	if err != nil {
		return fmt.Errorf("failed to generate code: %w", err)
	}

	if err := s.verifications.DeleteByEmail(ctx, email); err != nil {
		return fmt.Errorf("failed to clear old codes: %w", err)
	}

	now := time.Now()
	v := &domain.Verification{
		ID:        uuid.NewString(),
		Email:     email,
		Code:      code,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.verifications.Create(ctx, v); err != nil {
		return fmt.Errorf("failed to store code: %w", err)
	}

	if err := s.mailer.Send(ctx, email, "Your verification code", mailer.VerificationBody(code, s.ttl)); err != nil {
		s.logger.Error("Failed to deliver verification code", "email", email, "error", err)
		return fmt.Errorf("failed to send verification mail: %w", err)
	}

	s.logger.Info("Verification code sent", "email", email)
	return nil
}

// Verify marks the newest unexpired code for email as confirmed
func (s *VerificationService) Verify(ctx context.Context, email, code string) error {
	email = normalizeEmail(email)

	v, err := s.verifications.Latest(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.ErrInvalidCode
	}
	if err != nil {
		return fmt.Errorf("failed to load code: %w", err)
	}

	if subtle.ConstantTimeCompare([]byte(v.Code), []byte(code)) != 1 || v.Expired(time.Now()) {
		return domain.ErrInvalidCode
	}

	if err := s.verifications.MarkVerified(ctx, v); err != nil {
		if errors.Is(err, domain.ErrInvalidCode) {
			return err
		}
		return fmt.Errorf("failed to mark code verified: %w", err)
	}

	s.logger.Info("Email verified", "email", email)
	return nil
}

// IsVerified reports whether email holds a confirmed, unexpired code
func (s *VerificationService) IsVerified(ctx context.Context, email string) (bool, error) {
	v, err := s.verifications.Latest(ctx, normalizeEmail(email))
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to load code: %w", err)
	}
	return v.IsVerified, nil
}

// Clear drops every code for email
func (s *VerificationService) Clear(ctx context.Context, email string) error {
	return s.verifications.DeleteByEmail(ctx, normalizeEmail(email))
}
