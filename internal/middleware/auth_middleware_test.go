package middleware

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsangpocruise/booking-backend/internal/models"
	"github.com/tsangpocruise/booking-backend/internal/services"
	"github.com/tsangpocruise/booking-backend/pkg/jwt"
)

const testSecret = "test-access-secret-key-123456789"

type fakeUsers struct {
	users map[uuid.UUID]*models.User
	err   error
}

func (f *fakeUsers) GetUserByID(id uuid.UUID) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.users[id], nil
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func newUser(role models.UserRole) *models.User {
	return &models.User{ID: uuid.New(), Email: "guest@example.com", FullName: "Test Guest", Role: role}
}

func issue(t *testing.T, svc *jwt.Service, user *models.User) string {
	t.Helper()
	token, err := svc.GenerateAccessToken(user.ID, user.Email, string(user.Role))
	require.NoError(t, err)
	return token
}

func get(router *gin.Engine, path, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	tokens := jwt.NewService(testSecret, time.Hour)
	user := newUser(models.RoleUser)
	users := &fakeUsers{users: map[uuid.UUID]*models.User{user.ID: user}}

	router := setupTestRouter()
	router.GET("/protected", AuthMiddleware(tokens, users, quietLogger()), func(c *gin.Context) {
		u := MustGetUser(c)
		c.JSON(http.StatusOK, gin.H{"user_id": u.ID.String()})
	})

	w := get(router, "/protected", "Bearer "+issue(t, tokens, user))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), user.ID.String())
}

func TestAuthMiddleware_Rejections(t *testing.T) {
	tokens := jwt.NewService(testSecret, time.Hour)
	user := newUser(models.RoleUser)
	known := &fakeUsers{users: map[uuid.UUID]*models.User{user.ID: user}}
	valid := issue(t, tokens, user)

	expired := issue(t, jwt.NewService(testSecret, -time.Hour), user)
	foreign := issue(t, jwt.NewService("wrong-secret-key", time.Hour), user)

	tests := []struct {
		name   string
		auth   string
		users  UserLoader
		status int
		code   string
	}{
		{"missing header", "", known, http.StatusUnauthorized, "MISSING_AUTH_HEADER"},
		{"no bearer prefix", valid, known, http.StatusUnauthorized, "INVALID_AUTH_FORMAT"},
		{"wrong scheme", "Basic " + valid, known, http.StatusUnauthorized, "INVALID_AUTH_FORMAT"},
		{"empty token", "Bearer ", known, http.StatusUnauthorized, "INVALID_AUTH_FORMAT"},
		{"expired", "Bearer " + expired, known, http.StatusUnauthorized, "TOKEN_EXPIRED"},
		{"wrong secret", "Bearer " + foreign, known, http.StatusUnauthorized, "INVALID_TOKEN"},
		{"garbage", "Bearer not.a.jwt", known, http.StatusUnauthorized, "INVALID_TOKEN"},
		{"deleted user", "Bearer " + valid, &fakeUsers{}, http.StatusUnauthorized, "USER_NOT_FOUND"},
		{"lookup error", "Bearer " + valid, &fakeUsers{err: errors.New("db down")}, http.StatusUnauthorized, "AUTH_FAILED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupTestRouter()
			router.GET("/protected", AuthMiddleware(tokens, tt.users, quietLogger()), func(c *gin.Context) {
				c.JSON(http.StatusOK, gin.H{"message": "should not reach here"})
			})

			w := get(router, "/protected", tt.auth)

			assert.Equal(t, tt.status, w.Code)
			assert.Contains(t, w.Body.String(), tt.code)
			assert.Contains(t, w.Body.String(), `"success":false`)
		})
	}
}

func TestRequireRole(t *testing.T) {
	tokens := jwt.NewService(testSecret, time.Hour)
	admin := newUser(models.RoleAdmin)
	guest := newUser(models.RoleUser)
	users := &fakeUsers{users: map[uuid.UUID]*models.User{admin.ID: admin, guest.ID: guest}}

	router := setupTestRouter()
	router.GET("/admin-only", AuthMiddleware(tokens, users, quietLogger()), RequireRole(models.RoleAdmin), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "success"})
	})
	router.GET("/no-auth", RequireRole(models.RoleAdmin), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "should not reach here"})
	})

	t.Run("admin allowed", func(t *testing.T) {
		w := get(router, "/admin-only", "Bearer "+issue(t, tokens, admin))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("user forbidden", func(t *testing.T) {
		w := get(router, "/admin-only", "Bearer "+issue(t, tokens, guest))
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Contains(t, w.Body.String(), "INSUFFICIENT_PERMISSIONS")
	})

	t.Run("role change applies to existing token", func(t *testing.T) {
		demoted := newUser(models.RoleAdmin)
		token := issue(t, tokens, demoted)
		demoted.Role = models.RoleUser
		users.users[demoted.ID] = demoted

		w := get(router, "/admin-only", "Bearer "+token)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("no user context", func(t *testing.T) {
		w := get(router, "/no-auth", "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "MISSING_USER_CONTEXT")
	})
}

func TestGetUser(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("present", func(t *testing.T) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		user := newUser(models.RoleUser)
		c.Set(UserContextKey, user)

		got, ok := GetUser(c)
		assert.True(t, ok)
		assert.Equal(t, user, got)
		assert.NotPanics(t, func() { MustGetUser(c) })
	})

	t.Run("wrong type", func(t *testing.T) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Set(UserContextKey, "wrong type")

		_, ok := GetUser(c)
		assert.False(t, ok)
	})

	t.Run("missing panics", func(t *testing.T) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		assert.Panics(t, func() { MustGetUser(c) })
	})
}

type stubLimiter struct {
	keys []string
	err  error
}

func (s *stubLimiter) Allow(key string) error {
	s.keys = append(s.keys, key)
	return s.err
}

func TestRateLimit(t *testing.T) {
	t.Run("allowed", func(t *testing.T) {
		limiter := &stubLimiter{}
		router := setupTestRouter()
		router.GET("/login", RateLimit(limiter), func(c *gin.Context) { c.Status(http.StatusOK) })

		req := httptest.NewRequest(http.MethodGet, "/login", nil)
		req.Header.Set("X-Forwarded-For", "203.0.113.9")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		require.Len(t, limiter.keys, 1)
		assert.Equal(t, "203.0.113.9:/login", limiter.keys[0])
	})

	t.Run("limited", func(t *testing.T) {
		limiter := &stubLimiter{err: &services.RateLimitError{
			Message:    "Too many requests",
			RetryAfter: time.Now().Add(30 * time.Second),
		}}
		router := setupTestRouter()
		router.GET("/login", RateLimit(limiter), func(c *gin.Context) { c.Status(http.StatusOK) })

		w := get(router, "/login", "")

		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Contains(t, w.Body.String(), "RATE_LIMIT_EXCEEDED")
		assert.NotEmpty(t, w.Header().Get("Retry-After"))
	})

	t.Run("limiter failure passes through", func(t *testing.T) {
		router := setupTestRouter()
		router.GET("/login", RateLimit(&stubLimiter{err: errors.New("boom")}), func(c *gin.Context) { c.Status(http.StatusOK) })

		assert.Equal(t, http.StatusOK, get(router, "/login", "").Code)
	})
}

func TestRequestID(t *testing.T) {
	router := setupTestRouter()
	router.Use(RequestID(), RequestLogger(quietLogger()))
	router.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(RequestIDKey))
	})

	t.Run("generated", func(t *testing.T) {
		w := get(router, "/ping", "")
		id := w.Header().Get(RequestIDHeader)
		_, err := uuid.Parse(id)
		assert.NoError(t, err)
		assert.Equal(t, id, w.Body.String())
	})

	t.Run("propagated", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set(RequestIDHeader, "abc-123")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
	})
}
