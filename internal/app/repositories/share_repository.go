package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/app/models"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/pkg/apperrors"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/pkg/dberrors"
)

// IShareRepository stores issued share links
type IShareRepository interface {
	Create(ctx context.Context, share *models.Share) error
	GetByToken(ctx context.Context, token string) (*models.Share, error)
}

// ShareRepository handles share database operations
type ShareRepository struct {
	db *pgxpool.Pool
}

// NewShareRepository creates a new ShareRepository
func NewShareRepository(db *pgxpool.Pool) *ShareRepository {
	return &ShareRepository{db: db}
}

// Create records a share token
func (r *ShareRepository) Create(ctx context.Context, share *models.Share) error {
	sql, args, err := psql.Insert("shares").
		Columns("user_id", "post_id", "share_token").
		Values(share.UserID, share.PostID, share.ShareToken).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create share query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&share.ID, &share.CreatedAt); err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.ErrPostNotFound
		}
		return fmt.Errorf("error creating share: %w", err)
	}
	return nil
}

// GetByToken resolves a share token
func (r *ShareRepository) GetByToken(ctx context.Context, token string) (*models.Share, error) {
	s := &models.Share{}
	err := r.db.QueryRow(ctx,
		`SELECT id, user_id, post_id, share_token, created_at FROM shares WHERE share_token = $1`, token,
	).Scan(&s.ID, &s.UserID, &s.PostID, &s.ShareToken, &s.CreatedAt)
	if err != nil {
		if dberrors.IsNoRows(err) {
			return nil, apperrors.NewResourceNotFoundError("Shared post not found")
		}
		return nil, fmt.Errorf("error retrieving share: %w", err)
	}
	return s, nil
}
