package controllers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestLastSeenPost(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name  string
		query string
		want  *int64
	}{
		{"last_seen", "?last_seen=12", ptr64(12)},
		{"older alias", "?last_seen_post=7", ptr64(7)},
		{"last_seen wins", "?last_seen=12&last_seen_post=7", ptr64(12)},
		{"invalid falls back", "?last_seen=abc&last_seen_post=7", ptr64(7)},
		{"absent", "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			ctx, _ := gin.CreateTestContext(w)
			ctx.Request = httptest.NewRequest(http.MethodGet, "/posts"+tt.query, nil)
			assert.Equal(t, tt.want, lastSeenPost(ctx))
		})
	}
}

func ptr64(v int64) *int64 { return &v }
