package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/avelichko/ridepool/internal/auth"
	"github.com/avelichko/ridepool/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func authTestRouter(tokens *auth.Manager) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/protected", RequireAuth(tokens), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": currentPrincipal(c).UserID})
	})
	return router
}

func TestRequireAuth_MissingHeader(t *testing.T) {
	router := authTestRouter(auth.NewManager("secret", time.Hour))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/protected", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAuth_BadToken(t *testing.T) {
	router := authTestRouter(auth.NewManager("secret", time.Hour))

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAuth_ValidToken(t *testing.T) {
	tokens := auth.NewManager("secret", time.Hour)
	router := authTestRouter(tokens)

	token, err := tokens.Issue(&domain.User{ID: "user-1", Role: "student"})
	assert.NoError(t, err)

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "user-1")
}
