package services

import (
	"context"

	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/pkg/search"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/pkg/websocket"
)

// Relayer pushes live events to connected users. *websocket.Hub implements it.
type Relayer interface {
	Relay(userID int64, event websocket.Event)
	IsOnline(userID int64) bool
}

// PresenceStore reports presence recorded by any API node
type PresenceStore interface {
	IsOnline(ctx context.Context, userID int64) (bool, error)
}

// SearchIndex is the optional full-text index. *search.Client implements it.
type SearchIndex interface {
	IndexPost(ctx context.Context, doc search.PostDocument) error
	IndexUser(ctx context.Context, doc search.UserDocument) error
	DeletePost(ctx context.Context, postID int64) error
	SearchPosts(ctx context.Context, keyword string, limit int) ([]int64, error)
	SearchUsers(ctx context.Context, keyword string, limit int) ([]int64, error)
}

// nopRelayer is used when no hub is wired, e.g. from the admin CLI
type nopRelayer struct{}

func (nopRelayer) Relay(int64, websocket.Event) {}
func (nopRelayer) IsOnline(int64) bool          { return false }
