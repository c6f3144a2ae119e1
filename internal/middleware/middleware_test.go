package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/akuzmin/shortlinks/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("middleware-test-secret")

func signToken(t *testing.T, secret []byte, subject string, expiresAt time.Time) string {
	t.Helper()
	claims := &jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	require.NoError(t, err)
	return token
}

func newAuthRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middleware.RequireAuth(testSecret))
	router.GET("/test", func(c *gin.Context) {
		userID, ok := middleware.UserIDFromContext(c)
		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "no user in context"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"user_id": userID.String()})
	})
	return router
}

// TestRequireAuth_Middleware проверяет аутентификацию по JWT
func TestRequireAuth_Middleware(t *testing.T) {
	router := newAuthRouter()
	userID := uuid.New()

	// Запрос без токена должен быть отклонён
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/test", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "missing_token")

	// Запрос с мусорным токеном должен быть отклонён
	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "invalid_token")

	// Запрос с валидным токеном должен пройти и положить id в контекст
	token := signToken(t, testSecret, userID.String(), time.Now().Add(time.Hour))
	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), userID.String())
}

// TestRequireAuth_QueryParam проверяет передачу токена через query параметр
func TestRequireAuth_QueryParam(t *testing.T) {
	router := newAuthRouter()
	userID := uuid.New()

	token := signToken(t, testSecret, userID.String(), time.Now().Add(time.Hour))
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/test?token="+token, nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

// TestRequireAuth_ExpiredToken проверяет отклонение просроченного токена
func TestRequireAuth_ExpiredToken(t *testing.T) {
	router := newAuthRouter()

	token := signToken(t, testSecret, uuid.New().String(), time.Now().Add(-time.Hour))
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// TestRequireAuth_WrongSecret проверяет отклонение токена с чужой подписью
func TestRequireAuth_WrongSecret(t *testing.T) {
	router := newAuthRouter()

	token := signToken(t, []byte("other-secret"), uuid.New().String(), time.Now().Add(time.Hour))
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// TestRequireAuth_BadSubject проверяет отклонение токена с невалидным subject
func TestRequireAuth_BadSubject(t *testing.T) {
	router := newAuthRouter()

	token := signToken(t, testSecret, "not-a-uuid", time.Now().Add(time.Hour))
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
