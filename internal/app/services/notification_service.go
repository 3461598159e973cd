package services

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/app/models"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/app/models/dto"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/app/repositories"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/pkg/helpers"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/pkg/metrics"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/pkg/websocket"
)

// NotificationService persists notifications and pushes them to live sessions
type NotificationService interface {
	// Notify and NotifyMany never fail the calling operation; errors are logged
	Notify(ctx context.Context, recipientID, actorID int64, typ models.NotificationType, postID *int64)
	NotifyMany(ctx context.Context, recipientIDs []int64, actorID int64, typ models.NotificationType, postID *int64)

	List(ctx context.Context, userID int64, unreadOnly bool, page helpers.Page) (*dto.NotificationListResponse, error)
	MarkRead(ctx context.Context, id, userID int64) error
	UnreadCount(ctx context.Context, userID int64) (int64, error)
	ClearAll(ctx context.Context, userID int64) (int64, error)
}

type notificationServiceImpl struct {
	notificationRepo repositories.INotificationRepository
	userRepo         repositories.IUserRepository
	relayer          Relayer
	metrics          *metrics.Metrics
	logger           zerolog.Logger
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(
	notificationRepo repositories.INotificationRepository,
	userRepo repositories.IUserRepository,
	relayer Relayer,
	logger zerolog.Logger,
) NotificationService {
	if relayer == nil {
		relayer = nopRelayer{}
	}
	return &notificationServiceImpl{
		notificationRepo: notificationRepo,
		userRepo:         userRepo,
		relayer:          relayer,
		metrics:          metrics.Get(),
		logger:           logger,
	}
}

// Notify records a single notification; self-notifications are skipped
func (s *notificationServiceImpl) Notify(ctx context.Context, recipientID, actorID int64, typ models.NotificationType, postID *int64) {
	if recipientID == actorID {
		return
	}
	n := &models.Notification{RecipientID: recipientID, ActorID: actorID, Type: typ, PostID: postID}
	if err := s.notificationRepo.Create(ctx, n); err != nil {
		s.logger.Error().Err(err).Int64("recipientID", recipientID).Str("type", string(typ)).Msg("Failed to create notification")
		return
	}
	s.metrics.NotificationsCreated.WithLabelValues(string(typ)).Inc()
	s.push(ctx, actorID, []*models.Notification{n})
}

// NotifyMany fans a notification out to recipientIDs
func (s *notificationServiceImpl) NotifyMany(ctx context.Context, recipientIDs []int64, actorID int64, typ models.NotificationType, postID *int64) {
	batch := make([]*models.Notification, 0, len(recipientIDs))
	for _, id := range recipientIDs {
		if id == actorID {
			continue
		}
		batch = append(batch, &models.Notification{RecipientID: id, ActorID: actorID, Type: typ, PostID: postID})
	}
	if len(batch) == 0 {
		return
	}

	if err := s.notificationRepo.CreateMany(ctx, batch); err != nil {
		s.logger.Error().Err(err).Int("recipients", len(batch)).Str("type", string(typ)).Msg("Failed to fan out notifications")
		return
	}
	s.metrics.NotificationsCreated.WithLabelValues(string(typ)).Add(float64(len(batch)))
	s.push(ctx, actorID, batch)
}

// push relays stored notifications with the actor attached
func (s *notificationServiceImpl) push(ctx context.Context, actorID int64, batch []*models.Notification) {
	var actor *models.UserSummary
	if summaries, err := s.userRepo.GetSummaries(ctx, []int64{actorID}); err == nil && len(summaries) == 1 {
		actor = &summaries[0]
	}
	for _, n := range batch {
		n.Actor = actor
		s.relayer.Relay(n.RecipientID, websocket.Event{Type: websocket.EventNotification, Data: n})
	}
}

func (s *notificationServiceImpl) List(ctx context.Context, userID int64, unreadOnly bool, page helpers.Page) (*dto.NotificationListResponse, error) {
	items, err := s.notificationRepo.List(ctx, repositories.NotificationFilter{
		RecipientID: userID,
		UnreadOnly:  unreadOnly,
		Limit:       page.Limit + 1,
		Offset:      page.Offset,
	})
	if err != nil {
		return nil, err
	}

	hasMore := len(items) > page.Limit
	if hasMore {
		items = items[:page.Limit]
	}
	return &dto.NotificationListResponse{
		Notifications: items,
		Pagination:    dto.PaginationInfo{Limit: page.Limit, Offset: page.Offset, HasMore: hasMore},
	}, nil
}

func (s *notificationServiceImpl) MarkRead(ctx context.Context, id, userID int64) error {
	return s.notificationRepo.MarkRead(ctx, id, userID)
}

func (s *notificationServiceImpl) UnreadCount(ctx context.Context, userID int64) (int64, error) {
	return s.notificationRepo.UnreadCount(ctx, userID)
}

func (s *notificationServiceImpl) ClearAll(ctx context.Context, userID int64) (int64, error) {
	n, err := s.notificationRepo.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, err
	}
	s.logger.Info().Int64("userID", userID).Int64("updated", n).Msg("Notifications cleared")
	return n, nil
}
