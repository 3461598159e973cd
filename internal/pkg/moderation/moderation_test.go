package moderation

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		var req classifyRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.NotEmpty(t, req.Inputs)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTPChecker_IsFlagged(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		flagged bool
		wantErr bool
	}{
		{"negative above threshold", 200, `[{"label":"NEGATIVE","score":0.93},{"label":"POSITIVE","score":0.07}]`, true, false},
		{"negative below threshold", 200, `[{"label":"NEGATIVE","score":0.41}]`, false, false},
		{"nested response", 200, `[[{"label":"NEGATIVE","score":0.8}]]`, true, false},
		{"positive", 200, `[{"label":"POSITIVE","score":0.99}]`, false, false},
		{"server error", 500, `{"error":"boom"}`, false, true},
		{"garbage", 200, `{"label":"x"}`, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newServer(t, tt.status, tt.body)
			checker := NewHTTPChecker(Config{Enabled: true, Endpoint: srv.URL, Token: "secret", Threshold: 0.5}, zerolog.Nop())

			flagged, err := checker.IsFlagged(context.Background(), "some post text")
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.flagged, flagged)
		})
	}
}

func TestNewChecker_DisabledIsNoop(t *testing.T) {
	checker := NewChecker(Config{Enabled: false, Endpoint: "http://example.invalid"}, zerolog.Nop())
	_, ok := checker.(Noop)
	assert.True(t, ok)

	flagged, err := checker.IsFlagged(context.Background(), "anything")
	assert.NoError(t, err)
	assert.False(t, flagged)
}

func TestHTTPChecker_BlankTextSkipsRequest(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	checker := NewHTTPChecker(Config{Enabled: true, Endpoint: srv.URL}, zerolog.Nop())
	flagged, err := checker.IsFlagged(context.Background(), "   ")
	assert.NoError(t, err)
	assert.False(t, flagged)
	assert.False(t, called)
}
