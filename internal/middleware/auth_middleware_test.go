package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/app/models"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/pkg/auth"
)

func newTestRouter(jwtService *auth.JWTService) *gin.Engine {
	m := NewAuthMiddleware(jwtService, nil)
	r := gin.New()
	r.GET("/me", m.JWTAuth(), func(c *gin.Context) {
		id, _ := UserIDFromContext(c)
		c.JSON(http.StatusOK, gin.H{"id": id})
	})
	return r
}

func TestJWTAuth(t *testing.T) {
	jwtService := auth.NewJWTService(auth.JWTConfig{SecretKey: "secret", AccessTokenExp: time.Minute, RefreshTokenExp: time.Hour})
	pair, err := jwtService.GenerateTokenPair(&models.User{ID: 42, Email: "a@uni.edu", Username: "a"})
	require.NoError(t, err)
	r := newTestRouter(jwtService)

	tests := []struct {
		name   string
		header string
		query  string
		want   int
	}{
		{"bearer", "Bearer " + pair.AccessToken, "", http.StatusOK},
		{"raw token", pair.AccessToken, "", http.StatusOK},
		{"query token", "", pair.AccessToken, http.StatusOK},
		{"missing", "", "", http.StatusUnauthorized},
		{"garbage", "Bearer nope", "", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			url := "/me"
			if tt.query != "" {
				url += "?token=" + tt.query
			}
			req := httptest.NewRequest(http.MethodGet, url, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
			if tt.want == http.StatusOK {
				assert.JSONEq(t, `{"id":42}`, w.Body.String())
			}
		})
	}
}

func TestJWTAuth_WrongSecret(t *testing.T) {
	issuer := auth.NewJWTService(auth.JWTConfig{SecretKey: "one", AccessTokenExp: time.Minute})
	pair, err := issuer.GenerateTokenPair(&models.User{ID: 1, Email: "a@uni.edu"})
	require.NoError(t, err)

	r := newTestRouter(auth.NewJWTService(auth.JWTConfig{SecretKey: "two", AccessTokenExp: time.Minute}))
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
