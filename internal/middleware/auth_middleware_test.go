package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/wkim/teamshop-backend/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func setupAuthTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	m := NewAuthMiddleware(testSecret)
	router := gin.New()
	router.GET("/me", m.Authenticate(), func(c *gin.Context) {
		userID, _ := GetUserID(c)
		c.JSON(http.StatusOK, gin.H{"user_id": userID, "is_admin": IsAdmin(c)})
	})
	router.GET("/admin", m.Authenticate(), m.RequireAdmin(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return router
}

func issueToken(t *testing.T, userID uint, isAdmin bool) string {
	t.Helper()
	pair, err := util.GenerateTokenPair(userID, "test@example.com", isAdmin, testSecret, time.Hour, time.Hour)
	require.NoError(t, err)
	return pair.AccessToken
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	router := setupAuthTestRouter(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer "+issueToken(t, 42, false))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":42`)
}

func TestAuthMiddleware_MissingAndMalformedHeaders(t *testing.T) {
	router := setupAuthTestRouter(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/me", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Token abc")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "AUTH_TOKEN_INVALID")
}

func TestAuthMiddleware_ExpiredToken(t *testing.T) {
	router := setupAuthTestRouter(t)

	pair, err := util.GenerateTokenPair(1, "test@example.com", false, testSecret, -time.Minute, time.Hour)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "AUTH_TOKEN_EXPIRED")
}

func TestAuthMiddleware_TokenFromQueryParam(t *testing.T) {
	router := setupAuthTestRouter(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/me?token="+issueToken(t, 7, false), nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":7`)
}

func TestRequireAdmin(t *testing.T) {
	router := setupAuthTestRouter(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+issueToken(t, 1, false))
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "AUTHZ_ADMIN_ONLY")

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+issueToken(t, 1, true))
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
