package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/pkg/metrics"
)

// Event types pushed to clients
const (
	EventMessage            = "message"
	EventNewMessage         = "new_message"
	EventConversationUpdate = "conversation_update"
	EventReadReceipt        = "read_receipt"
	EventNotification       = "notification"
	EventError              = "error"
)

// Event is the outbound envelope written to a websocket
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Presence mirrors connection state to a shared store
type Presence interface {
	SetOnline(ctx context.Context, userID int64, ttl time.Duration) error
	SetOffline(ctx context.Context, userID int64) error
}

// Hub is the live-connection registry: at most one client per user
type Hub struct {
	mu      sync.RWMutex
	clients map[int64]*Client

	presence    Presence
	presenceTTL time.Duration

	metrics *metrics.Metrics
	logger  zerolog.Logger
}

// HubOption configures a Hub
type HubOption func(*Hub)

// WithPresence mirrors registrations to p with the given key ttl
func WithPresence(p Presence, ttl time.Duration) HubOption {
	return func(h *Hub) {
		h.presence = p
		h.presenceTTL = ttl
	}
}

// NewHub creates a new Hub instance
func NewHub(logger zerolog.Logger, opts ...HubOption) *Hub {
	h := &Hub{
		clients:     make(map[int64]*Client),
		presenceTTL: pongWait * 2,
		metrics:     metrics.Get(),
		logger:      logger,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register makes client the live session for its user. A previous session
// for the same user is replaced and closed.
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	previous, had := h.clients[client.userID]
	h.clients[client.userID] = client
	h.mu.Unlock()

	if had && previous != client {
		previous.close()
		h.logger.Info().Int64("userID", client.userID).Msg("Replaced existing websocket session")
	} else {
		h.metrics.WSConnections.Inc()
	}

	h.markOnline(client.userID)
	h.logger.Info().Int64("userID", client.userID).Msg("Client registered")
}

// Unregister removes client if it is still the registered session for its
// user and closes it. Calling it more than once is safe.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	current, ok := h.clients[client.userID]
	removed := ok && current == client
	if removed {
		delete(h.clients, client.userID)
	}
	h.mu.Unlock()

	client.close()

	if !removed {
		return
	}
	h.metrics.WSConnections.Dec()
	if h.presence != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := h.presence.SetOffline(ctx, client.userID); err != nil {
			h.logger.Warn().Err(err).Int64("userID", client.userID).Msg("Failed to clear presence")
		}
	}
	h.logger.Info().Int64("userID", client.userID).Msg("Client unregistered")
}

// Relay queues event for userID's live session. Events for absent users or
// sessions with a full buffer are dropped.
func (h *Hub) Relay(userID int64, event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Error().Err(err).Str("type", event.Type).Msg("Failed to marshal websocket event")
		return
	}

	h.mu.RLock()
	client, ok := h.clients[userID]
	h.mu.RUnlock()

	if !ok {
		h.metrics.WSEventsDropped.WithLabelValues(event.Type, "offline").Inc()
		h.logger.Debug().Int64("userID", userID).Str("type", event.Type).Msg("Recipient offline, event dropped")
		return
	}

	if !client.enqueue(data) {
		h.metrics.WSEventsDropped.WithLabelValues(event.Type, "buffer_full").Inc()
		h.logger.Warn().Int64("userID", userID).Str("type", event.Type).Msg("Send buffer full, event dropped")
		return
	}
	h.metrics.WSEventsRelayed.WithLabelValues(event.Type).Inc()
}

// IsOnline reports whether userID has a registered session on this node
func (h *Hub) IsOnline(userID int64) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.clients[userID]
	return ok
}

// Count returns the number of registered sessions
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every session
func (h *Hub) Close() {
	h.mu.Lock()
	clients := make([]*Client, 0, len(h.clients))
	for id, c := range h.clients {
		clients = append(clients, c)
		delete(h.clients, id)
	}
	h.mu.Unlock()

	for _, c := range clients {
		c.close()
		h.metrics.WSConnections.Dec()
	}
}

func (h *Hub) markOnline(userID int64) {
	if h.presence == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := h.presence.SetOnline(ctx, userID, h.presenceTTL); err != nil {
		h.logger.Warn().Err(err).Int64("userID", userID).Msg("Failed to set presence")
	}
}
