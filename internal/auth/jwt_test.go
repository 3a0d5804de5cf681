package auth

import (
	"testing"
	"time"

	"github.com/amiyamandal-dev/inkwell/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestJWTManager_TokenPair(t *testing.T) {
	m := NewJWTManager(testSecret, time.Hour, 24*time.Hour)
	user := &domain.User{ID: "u1", Username: "ann", Email: "ann@example.com", Role: domain.RoleAdmin}

	tokens, err := m.GenerateTokenPair(user)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), tokens.ExpiresAt, 5*time.Second)

	claims, err := m.ValidateToken(tokens.AccessToken, AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, domain.RoleAdmin, claims.Role)

	_, err = m.ValidateToken(tokens.AccessToken, RefreshToken)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)

	claims, err = m.ValidateToken(tokens.RefreshToken, RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "ann", claims.Username)
}

func TestJWTManager_Rejects(t *testing.T) {
	m := NewJWTManager(testSecret, -time.Minute, time.Hour)
	tokens, err := m.GenerateTokenPair(&domain.User{ID: "u1"})
	require.NoError(t, err)

	_, err = m.ValidateToken(tokens.AccessToken, AccessToken)
	assert.ErrorIs(t, err, domain.ErrInvalidToken, "expired")

	other := NewJWTManager("ffffffffffffffffffffffffffffffff", time.Hour, time.Hour)
	_, err = other.ValidateToken(tokens.RefreshToken, RefreshToken)
	assert.ErrorIs(t, err, domain.ErrInvalidToken, "wrong secret")

	_, err = m.ValidateToken("not-a-token", AccessToken)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}
