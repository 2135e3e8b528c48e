package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	jwtsvc "stayhub/internal/pkg/jwt"
)

func setupRouter(jwt *jwtsvc.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	protected := r.Group("/", JWTAuth(jwt))
	protected.GET("/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id": c.GetInt64("user_id"),
			"role":    c.GetString("role"),
		})
	})
	host := protected.Group("/", HostOnly())
	host.GET("/host-only", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func TestJWTAuth_ValidToken(t *testing.T) {
	jwt := jwtsvc.New("test-secret", time.Hour)
	token, err := jwt.GenerateToken(5, "guest")
	assert.NoError(t, err)

	r := setupRouter(jwt)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":5`)
	assert.Contains(t, w.Body.String(), `"role":"guest"`)
}

func TestJWTAuth_MissingHeader(t *testing.T) {
	r := setupRouter(jwtsvc.New("test-secret", time.Hour))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTAuth_MalformedHeader(t *testing.T) {
	r := setupRouter(jwtsvc.New("test-secret", time.Hour))
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Token abc")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTAuth_WrongSecret(t *testing.T) {
	other := jwtsvc.New("other-secret", time.Hour)
	token, _ := other.GenerateToken(5, "guest")

	r := setupRouter(jwtsvc.New("test-secret", time.Hour))
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTAuth_ExpiredToken(t *testing.T) {
	jwt := jwtsvc.New("test-secret", -time.Minute)
	token, _ := jwt.GenerateToken(5, "guest")

	r := setupRouter(jwt)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Token expired")
}

func TestHostOnly_GuestForbidden(t *testing.T) {
	jwt := jwtsvc.New("test-secret", time.Hour)
	guestToken, _ := jwt.GenerateToken(5, "guest")
	hostToken, _ := jwt.GenerateToken(7, "host")

	r := setupRouter(jwt)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/host-only", nil)
	req.Header.Set("Authorization", "Bearer "+guestToken)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/host-only", nil)
	req.Header.Set("Authorization", "Bearer "+hostToken)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
