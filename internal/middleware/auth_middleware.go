package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/tsangpocruise/booking-backend/internal/models"
	"github.com/tsangpocruise/booking-backend/pkg/jwt"
)

// UserContextKey is the key used to store the authenticated user in Gin context
const UserContextKey = "user"

// TokenValidator verifies bearer tokens
type TokenValidator interface {
	ValidateAccessToken(token string) (*jwt.Claims, error)
}

// UserLoader reads accounts by id
type UserLoader interface {
	GetUserByID(id uuid.UUID) (*models.User, error)
}

func abort(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"message": message,
		"error":   message,
		"code":    code,
	})
}

// AuthMiddleware validates the bearer token and loads the user fresh on every request
func AuthMiddleware(tokens TokenValidator, users UserLoader, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := logger.WithFields(logrus.Fields{
			"path": c.Request.URL.Path,
			"ip":   c.ClientIP(),
		})

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			log.Warn("Auth failed: missing authorization header")
			abort(c, http.StatusUnauthorized, "MISSING_AUTH_HEADER", "Authorization header is required")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || strings.TrimSpace(parts[1]) == "" {
			log.Warn("Auth failed: invalid authorization format")
			abort(c, http.StatusUnauthorized, "INVALID_AUTH_FORMAT", "Invalid authorization header format. Expected: Bearer <token>")
			return
		}

		claims, err := tokens.ValidateAccessToken(strings.TrimSpace(parts[1]))
		if err != nil {
			if errors.Is(err, jwt.ErrExpired) {
				log.Info("Auth failed: token expired")
				abort(c, http.StatusUnauthorized, "TOKEN_EXPIRED", "Access token has expired. Please log in again.")
				return
			}
			log.WithError(err).Warn("Auth failed: invalid token")
			abort(c, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid access token")
			return
		}

		user, err := users.GetUserByID(claims.UserID)
		if err != nil {
			log.WithError(err).Error("Auth failed: user lookup error")
			abort(c, http.StatusUnauthorized, "AUTH_FAILED", "Authentication failed")
			return
		}
		if user == nil {
			log.WithField("user_id", claims.UserID).Warn("Auth failed: user no longer exists")
			abort(c, http.StatusUnauthorized, "USER_NOT_FOUND", "User not found")
			return
		}

		c.Set(UserContextKey, user)
		c.Next()
	}
}

// RequireRole rejects users whose current role is not one of roles
func RequireRole(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := GetUser(c)
		if !ok {
			abort(c, http.StatusUnauthorized, "MISSING_USER_CONTEXT", "User context not found")
			return
		}

		for _, role := range roles {
			if user.Role == role {
				c.Next()
				return
			}
		}

		abort(c, http.StatusForbidden, "INSUFFICIENT_PERMISSIONS", "You don't have permission to access this resource")
	}
}

// GetUser returns the authenticated user stored by AuthMiddleware
func GetUser(c *gin.Context) (*models.User, bool) {
	value, exists := c.Get(UserContextKey)
	if !exists {
		return nil, false
	}
	user, ok := value.(*models.User)
	return user, ok && user != nil
}

// MustGetUser returns the authenticated user or panics (use only after AuthMiddleware)
func MustGetUser(c *gin.Context) *models.User {
	user, ok := GetUser(c)
	if !ok {
		panic("user context not found - ensure AuthMiddleware is applied")
	}
	return user
}
