package domain

import (
	"errors"
	"fmt"
)

// ValidationError provides detailed validation error information
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

var (
	// Article errors
	ErrArticleNotFound = errors.New("article not found")

	// User errors
	ErrUserNotFound       = errors.New("user not found")
	ErrUserAlreadyExists  = errors.New("username or email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotActive      = errors.New("user account is not active")
	ErrWrongPassword      = errors.New("current password is incorrect")
	ErrSelfFollow         = errors.New("cannot follow yourself")

	// Verification errors
	ErrEmailAlreadyRegistered = errors.New("email is already registered")
	ErrInvalidCode            = errors.New("verification code is invalid or expired")
	ErrEmailNotVerified       = errors.New("email has not been verified")

	// Comment errors
	ErrCommentNotFound = errors.New("comment not found")
	ErrInvalidParent   = errors.New("parent comment must be a top-level comment of the same article")

	// Taxonomy errors
	ErrCategoryNotFound = errors.New("category not found")
	ErrCategoryExists   = errors.New("category already exists")
	ErrTagNotFound      = errors.New("tag not found")
	ErrTagExists        = errors.New("tag already exists")
	ErrTaxonomyInUse    = errors.New("still referenced by articles")

	// Upload errors
	ErrFileNotFound    = errors.New("file not found")
	ErrUnsupportedFile = errors.New("unsupported file type")
	ErrFileTooLarge    = errors.New("file too large")

	// Auth errors
	ErrInvalidToken = errors.New("invalid token")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// Validation errors
	ErrInvalidInput = errors.New("invalid input")

	// General errors
	ErrNotFound = errors.New("resource not found")
	ErrConflict = errors.New("resource conflict")
)

// IsValidation reports whether err carries a field-level validation failure
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
