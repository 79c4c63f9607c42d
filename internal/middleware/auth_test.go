package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func newAuthRouter(optional bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	cfg := &JWTConfig{Secret: testSecret}
	if optional {
		router.Use(NewOptionalJWTAuth(cfg))
	} else {
		router.Use(NewJWTAuth(cfg))
	}
	router.GET("/whoami", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": GetUserID(c)})
	})
	return router
}

func TestJWTAuthRoundTrip(t *testing.T) {
	router := newAuthRouter(false)

	token, err := GenerateToken(42, "alice", testSecret, 3600)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id":42}`, w.Body.String())
}

func TestJWTAuthRejectsMissingOrInvalidToken(t *testing.T) {
	router := newAuthRouter(false)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	badToken, err := GenerateToken(42, "alice", "other-secret", 3600)
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+badToken)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestOptionalJWTAuthAnonymousPassThrough(t *testing.T) {
	router := newAuthRouter(true)

	// 无 token 按匿名放行，用户 ID 为 0
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id":0}`, w.Body.String())

	token, err := GenerateToken(7, "bob", testSecret, 3600)
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.JSONEq(t, `{"user_id":7}`, w.Body.String())
}
