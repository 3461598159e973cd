package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/app/models"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/pkg/apperrors"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/pkg/logger"
)

// NotificationFilter selects a page of a recipient's notifications
type NotificationFilter struct {
	RecipientID int64
	UnreadOnly  bool
	Limit       int
	Offset      int
}

// INotificationRepository stores notifications
type INotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	CreateMany(ctx context.Context, ns []*models.Notification) error
	List(ctx context.Context, filter NotificationFilter) ([]models.Notification, error)
	MarkRead(ctx context.Context, id, recipientID int64) error
	UnreadCount(ctx context.Context, recipientID int64) (int64, error)
	MarkAllRead(ctx context.Context, recipientID int64) (int64, error)
}

// NotificationRepository handles notification database operations
type NotificationRepository struct {
	db *pgxpool.Pool
}

// NewNotificationRepository creates a new NotificationRepository
func NewNotificationRepository(db *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func insertNotification(ctx context.Context, db DBTX, n *models.Notification) error {
	sql, args, err := psql.Insert("notifications").
		Columns("recipient_id", "actor_id", "type", "post_id").
		Values(n.RecipientID, n.ActorID, n.Type, n.PostID).
		Suffix("RETURNING id, is_read, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create notification query: %w", err)
	}
	return db.QueryRow(ctx, sql, args...).Scan(&n.ID, &n.IsRead, &n.CreatedAt)
}

// Create inserts one notification
func (r *NotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	if err := insertNotification(ctx, r.db, n); err != nil {
		logger.Error().Err(err).Int64("recipientID", n.RecipientID).Str("type", string(n.Type)).Msg("Error creating notification")
		return fmt.Errorf("error creating notification: %w", err)
	}
	return nil
}

// CreateMany inserts a fan-out batch atomically
func (r *NotificationRepository) CreateMany(ctx context.Context, ns []*models.Notification) error {
	if len(ns) == 0 {
		return nil
	}
	return withTx(ctx, r.db, func(tx pgx.Tx) error {
		for _, n := range ns {
			if err := insertNotification(ctx, tx, n); err != nil {
				return fmt.Errorf("error creating notification: %w", err)
			}
		}
		return nil
	})
}

// List returns notifications newest first with the actor attached
func (r *NotificationRepository) List(ctx context.Context, filter NotificationFilter) ([]models.Notification, error) {
	q := psql.Select("n.id", "n.recipient_id", "n.actor_id", "n.type", "n.post_id", "n.is_read", "n.created_at",
		"u.id", "u.username", "u.profile_picture").
		From("notifications n").
		Join("users u ON u.id = n.actor_id").
		Where(squirrel.Eq{"n.recipient_id": filter.RecipientID}).
		OrderBy("n.created_at DESC", "n.id DESC").
		Limit(uint64(filter.Limit)).
		Offset(uint64(filter.Offset))
	if filter.UnreadOnly {
		q = q.Where(squirrel.Eq{"n.is_read": false})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build notifications query: %w", err)
	}
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("recipientID", filter.RecipientID).Msg("Error listing notifications")
		return nil, fmt.Errorf("error listing notifications: %w", err)
	}
	defer rows.Close()

	out := []models.Notification{}
	for rows.Next() {
		n := models.Notification{Actor: &models.UserSummary{}}
		if err := rows.Scan(&n.ID, &n.RecipientID, &n.ActorID, &n.Type, &n.PostID, &n.IsRead, &n.CreatedAt,
			&n.Actor.ID, &n.Actor.Username, &n.Actor.ProfilePicture); err != nil {
			return nil, fmt.Errorf("error scanning notification: %w", err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// MarkRead marks one of the recipient's notifications as read
func (r *NotificationRepository) MarkRead(ctx context.Context, id, recipientID int64) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE notifications SET is_read = TRUE WHERE id = $1 AND recipient_id = $2`, id, recipientID)
	if err != nil {
		return fmt.Errorf("error marking notification read: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotificationNotFound
	}
	return nil
}

// UnreadCount counts unread notifications
func (r *NotificationRepository) UnreadCount(ctx context.Context, recipientID int64) (int64, error) {
	var n int64
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM notifications WHERE recipient_id = $1 AND is_read = FALSE`, recipientID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("error counting notifications: %w", err)
	}
	return n, nil
}

// MarkAllRead marks every unread notification read and returns how many changed
func (r *NotificationRepository) MarkAllRead(ctx context.Context, recipientID int64) (int64, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE notifications SET is_read = TRUE WHERE recipient_id = $1 AND is_read = FALSE`, recipientID)
	if err != nil {
		return 0, fmt.Errorf("error clearing notifications: %w", err)
	}
	return tag.RowsAffected(), nil
}
