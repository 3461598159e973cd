package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	gws "github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(h *Hub, userID int64) *Client {
	return newClient(h, nil, userID, nil, zerolog.Nop())
}

func TestHub_RegisterLastWriterWins(t *testing.T) {
	h := NewHub(zerolog.Nop())
	first := testClient(h, 1)
	second := testClient(h, 1)

	h.Register(first)
	h.Register(second)

	assert.Equal(t, 1, h.Count())
	assert.True(t, first.closed(), "replaced session should be closed")
	assert.False(t, second.closed())

	h.Relay(1, Event{Type: EventNewMessage})
	assert.Len(t, second.send, 1)
	assert.Len(t, first.send, 0)
}

func TestHub_StaleUnregisterKeepsNewerClient(t *testing.T) {
	h := NewHub(zerolog.Nop())
	first := testClient(h, 7)
	second := testClient(h, 7)

	h.Register(first)
	h.Register(second)
	h.Unregister(first)

	assert.True(t, h.IsOnline(7))
	h.Relay(7, Event{Type: EventMessage, Data: map[string]int{"id": 1}})
	assert.Len(t, second.send, 1)
}

func TestHub_UnregisterIsIdempotent(t *testing.T) {
	h := NewHub(zerolog.Nop())
	c := testClient(h, 3)
	h.Register(c)

	assert.NotPanics(t, func() {
		h.Unregister(c)
		h.Unregister(c)
	})
	assert.False(t, h.IsOnline(3))
	assert.Equal(t, 0, h.Count())
}

func TestHub_RelayToOfflineUserIsSilent(t *testing.T) {
	h := NewHub(zerolog.Nop())
	assert.NotPanics(t, func() {
		h.Relay(42, Event{Type: EventMessage, Data: "hello"})
	})
}

func TestHub_RelayDropsWhenBufferFull(t *testing.T) {
	h := NewHub(zerolog.Nop())
	c := testClient(h, 5)
	h.Register(c)

	for i := 0; i < sendBufferSize+10; i++ {
		h.Relay(5, Event{Type: EventNotification, Data: i})
	}
	assert.Len(t, c.send, sendBufferSize)
}

func TestHub_RelayAfterCloseDrops(t *testing.T) {
	h := NewHub(zerolog.Nop())
	c := testClient(h, 9)
	h.Register(c)
	c.close()

	h.Relay(9, Event{Type: EventMessage})
	assert.Len(t, c.send, 0)
}

type fakePresence struct {
	mu      sync.Mutex
	online  map[int64]bool
	failing bool
}

func (f *fakePresence) SetOnline(_ context.Context, userID int64, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return errors.New("redis down")
	}
	f.online[userID] = true
	return nil
}

func (f *fakePresence) SetOffline(_ context.Context, userID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.online, userID)
	return nil
}

func TestHub_Presence(t *testing.T) {
	p := &fakePresence{online: map[int64]bool{}}
	h := NewHub(zerolog.Nop(), WithPresence(p, time.Minute))
	c := testClient(h, 11)

	h.Register(c)
	assert.True(t, p.online[11])

	h.Unregister(c)
	assert.False(t, p.online[11])
}

func TestHub_PresenceFailureDoesNotBlockRegistration(t *testing.T) {
	p := &fakePresence{online: map[int64]bool{}, failing: true}
	h := NewHub(zerolog.Nop(), WithPresence(p, time.Minute))
	h.Register(testClient(h, 12))
	assert.True(t, h.IsOnline(12))
}

type recordingFrames struct {
	mu     sync.Mutex
	frames []string
	got    chan struct{}
}

func (r *recordingFrames) HandleFrame(_ context.Context, userID int64, frame []byte) {
	r.mu.Lock()
	r.frames = append(r.frames, string(frame))
	r.mu.Unlock()
	r.got <- struct{}{}
}

func newTestServer(t *testing.T, hub *Hub, frames FrameHandler, validate TokenValidator, requireToken bool) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/ws/:userId", NewHandler(hub, validate, frames, requireToken, zerolog.Nop()).HandleConnection)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func wsURL(srv *httptest.Server, path string) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + path
}

func TestHandler_RelayAndInboundFrames(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	defer hub.Close()
	frames := &recordingFrames{got: make(chan struct{}, 1)}
	srv := newTestServer(t, hub, frames, nil, false)

	conn, _, err := gws.DefaultDialer.Dial(wsURL(srv, "/ws/21"), nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.IsOnline(21) }, time.Second, 10*time.Millisecond)

	hub.Relay(21, Event{Type: EventNewMessage, Data: map[string]int64{"sender_id": 4}})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)

	var ev struct {
		Type string           `json:"type"`
		Data map[string]int64 `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &ev))
	assert.Equal(t, EventNewMessage, ev.Type)
	assert.Equal(t, int64(4), ev.Data["sender_id"])

	require.NoError(t, conn.WriteMessage(gws.TextMessage, []byte(`{"receiver_id":4,"content":"hi","message_type":"text"}`)))
	select {
	case <-frames.got:
	case <-time.After(2 * time.Second):
		t.Fatal("frame was not delivered to handler")
	}
	assert.Contains(t, frames.frames[0], `"receiver_id":4`)
}

func TestHandler_DisconnectUnregisters(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	srv := newTestServer(t, hub, nil, nil, false)

	conn, _, err := gws.DefaultDialer.Dial(wsURL(srv, "/ws/30"), nil)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return hub.IsOnline(30) }, time.Second, 10*time.Millisecond)

	conn.Close()
	assert.Eventually(t, func() bool { return !hub.IsOnline(30) }, 2*time.Second, 10*time.Millisecond)
}

func TestHandler_TokenChecks(t *testing.T) {
	validate := func(token string) (int64, error) {
		if token == "good-for-5" {
			return 5, nil
		}
		return 0, errors.New("bad token")
	}
	hub := NewHub(zerolog.Nop())
	defer hub.Close()
	srv := newTestServer(t, hub, nil, validate, true)

	tests := []struct {
		name   string
		path   string
		status int
	}{
		{"missing token", "/ws/5", http.StatusUnauthorized},
		{"invalid token", "/ws/5?token=nope", http.StatusUnauthorized},
		{"token for another user", "/ws/6?token=good-for-5", http.StatusForbidden},
		{"bad user id", "/ws/abc?token=good-for-5", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, resp, err := gws.DefaultDialer.Dial(wsURL(srv, tt.path), nil)
			require.Error(t, err)
			require.NotNil(t, resp)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}

	conn, _, err := gws.DefaultDialer.Dial(wsURL(srv, "/ws/5?token=good-for-5"), nil)
	require.NoError(t, err)
	conn.Close()
}
