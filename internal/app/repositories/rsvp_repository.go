package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/app/models"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/pkg/apperrors"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/pkg/dberrors"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/pkg/logger"
)

// IRSVPRepository stores event attendance answers
type IRSVPRepository interface {
	Upsert(ctx context.Context, eventID, userID int64, status models.RSVPStatus) (*models.EventAttendee, error)
	Delete(ctx context.Context, eventID, userID int64) error
	Get(ctx context.Context, eventID, userID int64) (*models.EventAttendee, error)
	List(ctx context.Context, eventID int64, status *models.RSVPStatus) ([]models.EventAttendee, error)
	Counts(ctx context.Context, eventID int64) (going, interested int, err error)
}

// RSVPRepository handles event_attendees database operations
type RSVPRepository struct {
	db *pgxpool.Pool
}

// NewRSVPRepository creates a new RSVPRepository
func NewRSVPRepository(db *pgxpool.Pool) *RSVPRepository {
	return &RSVPRepository{db: db}
}

// Upsert creates the caller's RSVP or changes its status
func (r *RSVPRepository) Upsert(ctx context.Context, eventID, userID int64, status models.RSVPStatus) (*models.EventAttendee, error) {
	sql, args, err := psql.Insert("event_attendees").
		Columns("event_id", "user_id", "status").
		Values(eventID, userID, status).
		Suffix("ON CONFLICT (event_id, user_id) DO UPDATE SET status = EXCLUDED.status RETURNING id, event_id, user_id, status, created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build rsvp query: %w", err)
	}

	a := &models.EventAttendee{}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&a.ID, &a.EventID, &a.UserID, &a.Status, &a.CreatedAt); err != nil {
		logger.Error().Err(err).Int64("eventID", eventID).Int64("userID", userID).Msg("Error saving rsvp")
		return nil, fmt.Errorf("error saving rsvp: %w", err)
	}
	return a, nil
}

// Delete removes the caller's RSVP
func (r *RSVPRepository) Delete(ctx context.Context, eventID, userID int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM event_attendees WHERE event_id = $1 AND user_id = $2`, eventID, userID)
	if err != nil {
		return fmt.Errorf("error deleting rsvp: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewResourceNotFoundError("RSVP not found")
	}
	return nil
}

// Get returns the caller's RSVP
func (r *RSVPRepository) Get(ctx context.Context, eventID, userID int64) (*models.EventAttendee, error) {
	a := &models.EventAttendee{}
	err := r.db.QueryRow(ctx,
		`SELECT id, event_id, user_id, status, created_at FROM event_attendees WHERE event_id = $1 AND user_id = $2`,
		eventID, userID,
	).Scan(&a.ID, &a.EventID, &a.UserID, &a.Status, &a.CreatedAt)
	if err != nil {
		if dberrors.IsNoRows(err) {
			return nil, apperrors.NewResourceNotFoundError("RSVP not found")
		}
		return nil, fmt.Errorf("error retrieving rsvp: %w", err)
	}
	return a, nil
}

// List returns attendees of an event, optionally narrowed to one status
func (r *RSVPRepository) List(ctx context.Context, eventID int64, status *models.RSVPStatus) ([]models.EventAttendee, error) {
	q := psql.Select("a.id", "a.event_id", "a.user_id", "a.status", "a.created_at", "u.id", "u.username", "u.profile_picture").
		From("event_attendees a").
		Join("users u ON u.id = a.user_id").
		Where(squirrel.Eq{"a.event_id": eventID}).
		OrderBy("a.created_at ASC")
	if status != nil {
		q = q.Where(squirrel.Eq{"a.status": *status})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build attendees query: %w", err)
	}
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing attendees: %w", err)
	}
	defer rows.Close()

	out := []models.EventAttendee{}
	for rows.Next() {
		a := models.EventAttendee{User: &models.UserSummary{}}
		if err := rows.Scan(&a.ID, &a.EventID, &a.UserID, &a.Status, &a.CreatedAt,
			&a.User.ID, &a.User.Username, &a.User.ProfilePicture); err != nil {
			return nil, fmt.Errorf("error scanning attendee: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Counts returns the number of going and interested answers
func (r *RSVPRepository) Counts(ctx context.Context, eventID int64) (int, int, error) {
	var going, interested int
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FILTER (WHERE status = 'going'),
		       COUNT(*) FILTER (WHERE status = 'interested')
		FROM event_attendees WHERE event_id = $1`, eventID,
	).Scan(&going, &interested)
	if err != nil {
		return 0, 0, fmt.Errorf("error counting rsvps: %w", err)
	}
	return going, interested, nil
}
