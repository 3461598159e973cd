package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/app/models"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/pkg/apperrors"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/pkg/dberrors"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/pkg/logger"
)

// IConnectionRepository stores the connection-request graph
type IConnectionRepository interface {
	Create(ctx context.Context, requesterID, recipientID int64) (*models.Connection, error)
	GetByID(ctx context.Context, id int64) (*models.Connection, error)
	FindActiveBetween(ctx context.Context, a, b int64) (*models.Connection, error)
	UpdateStatus(ctx context.Context, id int64, status models.ConnectionStatus) (*models.Connection, error)
	ListFriends(ctx context.Context, userID int64) ([]models.UserSummary, error)
	ListFriendIDs(ctx context.Context, userID int64) ([]int64, error)
	ListIncoming(ctx context.Context, userID int64) ([]models.Connection, error)
	ListAvailableUsers(ctx context.Context, userID int64, limit, offset int) ([]models.UserSummary, error)
}

const constraintActivePair = "uq_connections_active_pair"

var connectionColumns = []string{"c.id", "c.requester_id", "c.recipient_id", "c.status", "c.created_at", "c.updated_at"}

// ConnectionRepository handles connection database operations
type ConnectionRepository struct {
	db *pgxpool.Pool
}

// NewConnectionRepository creates a new ConnectionRepository
func NewConnectionRepository(db *pgxpool.Pool) *ConnectionRepository {
	return &ConnectionRepository{db: db}
}

func scanConnection(row pgx.Row) (*models.Connection, error) {
	c := &models.Connection{}
	if err := row.Scan(&c.ID, &c.RequesterID, &c.RecipientID, &c.Status, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return c, nil
}

// Create inserts a pending edge. A live edge for the same pair yields ErrConnectionExists.
func (r *ConnectionRepository) Create(ctx context.Context, requesterID, recipientID int64) (*models.Connection, error) {
	now := time.Now()
	sql, args, err := psql.Insert("connections").
		Columns("requester_id", "recipient_id", "status", "created_at", "updated_at").
		Values(requesterID, recipientID, models.ConnectionPending, now, now).
		Suffix("RETURNING id, requester_id, recipient_id, status, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build create connection query: %w", err)
	}

	c, err := scanConnection(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, constraintActivePair) {
			return nil, apperrors.ErrConnectionExists
		}
		logger.Error().Err(err).Int64("requesterID", requesterID).Int64("recipientID", recipientID).Msg("Error creating connection")
		return nil, fmt.Errorf("error creating connection: %w", err)
	}
	return c, nil
}

// GetByID retrieves a connection by ID
func (r *ConnectionRepository) GetByID(ctx context.Context, id int64) (*models.Connection, error) {
	sql, args, err := psql.Select(connectionColumns...).From("connections c").
		Where(squirrel.Eq{"c.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get connection query: %w", err)
	}

	c, err := scanConnection(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if dberrors.IsNoRows(err) {
			return nil, apperrors.NewResourceNotFoundError("Connection request not found")
		}
		return nil, fmt.Errorf("error retrieving connection: %w", err)
	}
	return c, nil
}

// FindActiveBetween returns the pending or accepted edge between a and b in either direction, or nil
func (r *ConnectionRepository) FindActiveBetween(ctx context.Context, a, b int64) (*models.Connection, error) {
	sql, args, err := psql.Select(connectionColumns...).From("connections c").
		Where(squirrel.Or{
			squirrel.Eq{"c.requester_id": a, "c.recipient_id": b},
			squirrel.Eq{"c.requester_id": b, "c.recipient_id": a},
		}).
		Where(squirrel.NotEq{"c.status": models.ConnectionRejected}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build find connection query: %w", err)
	}

	c, err := scanConnection(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if dberrors.IsNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("error finding connection: %w", err)
	}
	return c, nil
}

// UpdateStatus moves a pending edge to status
func (r *ConnectionRepository) UpdateStatus(ctx context.Context, id int64, status models.ConnectionStatus) (*models.Connection, error) {
	sql, args, err := psql.Update("connections").
		Set("status", status).
		Set("updated_at", time.Now()).
		Where(squirrel.Eq{"id": id, "status": models.ConnectionPending}).
		Suffix("RETURNING id, requester_id, recipient_id, status, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build update connection query: %w", err)
	}

	c, err := scanConnection(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if dberrors.IsNoRows(err) {
			return nil, apperrors.ErrConnectionNotPending
		}
		return nil, fmt.Errorf("error updating connection: %w", err)
	}
	return c, nil
}

const friendIDsQuery = `
	SELECT CASE WHEN requester_id = $1 THEN recipient_id ELSE requester_id END
	FROM connections
	WHERE (requester_id = $1 OR recipient_id = $1) AND status = 'accepted'`

// ListFriendIDs returns ids of users with an accepted edge to userID
func (r *ConnectionRepository) ListFriendIDs(ctx context.Context, userID int64) ([]int64, error) {
	rows, err := r.db.Query(ctx, friendIDsQuery, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing friend ids: %w", err)
	}
	return scanIDs(rows)
}

// ListFriends returns accepted connections of userID
func (r *ConnectionRepository) ListFriends(ctx context.Context, userID int64) ([]models.UserSummary, error) {
	rows, err := r.db.Query(ctx, `
		SELECT u.id, u.username, u.profile_picture
		FROM users u
		WHERE u.id IN (`+friendIDsQuery+`)
		ORDER BY u.username`, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing friends: %w", err)
	}
	return scanSummaries(rows)
}

// ListIncoming returns pending requests addressed to userID, newest first
func (r *ConnectionRepository) ListIncoming(ctx context.Context, userID int64) ([]models.Connection, error) {
	cols := append(append([]string{}, connectionColumns...), "u.id", "u.username", "u.profile_picture")
	sql, args, err := psql.Select(cols...).
		From("connections c").
		Join("users u ON u.id = c.requester_id").
		Where(squirrel.Eq{"c.recipient_id": userID, "c.status": models.ConnectionPending}).
		OrderBy("c.created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build incoming requests query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing incoming requests: %w", err)
	}
	defer rows.Close()

	out := []models.Connection{}
	for rows.Next() {
		var c models.Connection
		var s models.UserSummary
		if err := rows.Scan(&c.ID, &c.RequesterID, &c.RecipientID, &c.Status, &c.CreatedAt, &c.UpdatedAt,
			&s.ID, &s.Username, &s.ProfilePicture); err != nil {
			return nil, err
		}
		c.Requester = &s
		out = append(out, c)
	}
	return out, rows.Err()
}

// ListAvailableUsers returns users with no pending or accepted edge to userID
func (r *ConnectionRepository) ListAvailableUsers(ctx context.Context, userID int64, limit, offset int) ([]models.UserSummary, error) {
	rows, err := r.db.Query(ctx, `
		SELECT u.id, u.username, u.profile_picture
		FROM users u
		WHERE u.id <> $1
		  AND u.is_verified
		  AND NOT EXISTS (
		      SELECT 1 FROM connections c
		      WHERE c.status <> 'rejected'
		        AND ((c.requester_id = $1 AND c.recipient_id = u.id)
		          OR (c.recipient_id = $1 AND c.requester_id = u.id)))
		ORDER BY u.created_at DESC, u.id DESC
		LIMIT $2 OFFSET $3`, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("error listing available users: %w", err)
	}
	return scanSummaries(rows)
}
