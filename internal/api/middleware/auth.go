package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/amiyamandal-dev/inkwell/internal/auth"
	"github.com/amiyamandal-dev/inkwell/internal/domain"
	"github.com/amiyamandal-dev/inkwell/internal/repository"
	"github.com/amiyamandal-dev/inkwell/internal/service"
	"github.com/amiyamandal-dev/inkwell/pkg/response"
)

const (
	userIDKey = "user_id"
	roleKey   = "role"
)

// bearerToken extracts the token of a "Bearer <token>" header
func bearerToken(c *gin.Context) (string, bool) {
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// authenticate resolves the token to an active user
func authenticate(c *gin.Context, jwtManager *auth.JWTManager, users repository.UserRepository, token string) (*domain.User, error) {
	claims, err := jwtManager.ValidateToken(token, auth.AccessToken)
	if err != nil {
		return nil, err
	}
	user, err := users.GetByID(c.Request.Context(), claims.UserID)
	if err != nil {
		return nil, domain.ErrInvalidToken
	}
	if !user.IsActive {
		return nil, domain.ErrUserNotActive
	}
	return user, nil
}

// AuthMiddleware requires a valid access token of an active account
func AuthMiddleware(jwtManager *auth.JWTManager, users repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			response.Unauthorized(c, "Missing or malformed authorization header")
			c.Abort()
			return
		}

		user, err := authenticate(c, jwtManager, users, token)
		if err != nil {
			if errors.Is(err, domain.ErrUserNotActive) {
				response.Forbidden(c, "Account is disabled")
			} else {
				response.Unauthorized(c, "Invalid or expired token")
			}
			c.Abort()
			return
		}

		c.Set(userIDKey, user.ID)
		c.Set(roleKey, user.Role)
		c.Next()
	}
}

// OptionalAuthMiddleware identifies the caller when a valid token is sent and
// lets anonymous requests through
func OptionalAuthMiddleware(jwtManager *auth.JWTManager, users repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := bearerToken(c); ok {
			if user, err := authenticate(c, jwtManager, users, token); err == nil {
				c.Set(userIDKey, user.ID)
				c.Set(roleKey, user.Role)
			}
		}
		c.Next()
	}
}

// AdminMiddleware must run after AuthMiddleware
func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !GetActor(c).IsAdmin() {
			response.Forbidden(c, "Admin access required")
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetUserID retrieves the user ID from the request context
func GetUserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}

// GetActor returns the authenticated caller, or nil for anonymous requests
func GetActor(c *gin.Context) *service.Actor {
	id := GetUserID(c)
	if id == "" {
		return nil
	}
	role, _ := c.Get(roleKey)
	r, _ := role.(domain.Role)
	return &service.Actor{ID: id, Role: r}
}
