package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/pkg/apperrors"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/pkg/dberrors"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/pkg/logger"
)

// ILikeRepository toggles likes and keeps the denormalized counters in step
type ILikeRepository interface {
	TogglePostLike(ctx context.Context, userID, postID int64) (liked bool, count int, err error)
	ToggleCommentLike(ctx context.Context, userID, commentID int64) (liked bool, count int, err error)
	CommentsLikedByUser(ctx context.Context, userID int64, commentIDs []int64) (map[int64]bool, error)
}

// LikeRepository handles like database operations
type LikeRepository struct {
	db *pgxpool.Pool
}

// NewLikeRepository creates a new LikeRepository
func NewLikeRepository(db *pgxpool.Pool) *LikeRepository {
	return &LikeRepository{db: db}
}

type likeTarget struct {
	table    string
	column   string
	notFound error
}

var (
	postTarget    = likeTarget{table: "posts", column: "post_id", notFound: apperrors.ErrPostNotFound}
	commentTarget = likeTarget{table: "comments", column: "comment_id", notFound: apperrors.ErrCommentNotFound}
)

// TogglePostLike likes the post, or unlikes it when a like already exists
func (r *LikeRepository) TogglePostLike(ctx context.Context, userID, postID int64) (bool, int, error) {
	return r.toggle(ctx, postTarget, userID, postID)
}

// ToggleCommentLike likes the comment, or unlikes it when a like already exists
func (r *LikeRepository) ToggleCommentLike(ctx context.Context, userID, commentID int64) (bool, int, error) {
	return r.toggle(ctx, commentTarget, userID, commentID)
}

// toggle locks the target row so concurrent toggles serialize on the counter
func (r *LikeRepository) toggle(ctx context.Context, t likeTarget, userID, targetID int64) (bool, int, error) {
	var liked bool
	var count int

	err := withTx(ctx, r.db, func(tx pgx.Tx) error {
		var err error
		liked, count, err = toggleLike(ctx, tx, t, userID, targetID)
		return err
	})
	if err != nil {
		if err != t.notFound {
			logger.Error().Err(err).Int64("userID", userID).Int64("targetID", targetID).Str("target", t.table).Msg("Error toggling like")
		}
		return false, 0, err
	}
	return liked, count, nil
}

// toggleLike runs the lock, delete-or-insert and counter update on tx.
// The counter is clamped at zero.
func toggleLike(ctx context.Context, tx DBTX, t likeTarget, userID, targetID int64) (bool, int, error) {
	var count int
	lockSQL := fmt.Sprintf("SELECT like_count FROM %s WHERE id = $1 FOR UPDATE", t.table)
	if err := tx.QueryRow(ctx, lockSQL, targetID).Scan(&count); err != nil {
		if dberrors.IsNoRows(err) {
			return false, 0, t.notFound
		}
		return false, 0, fmt.Errorf("error locking %s: %w", t.table, err)
	}

	sql, args, err := psql.Delete("likes").
		Where(fmt.Sprintf("user_id = ? AND %s = ?", t.column), userID, targetID).
		ToSql()
	if err != nil {
		return false, 0, fmt.Errorf("failed to build unlike query: %w", err)
	}
	tag, err := tx.Exec(ctx, sql, args...)
	if err != nil {
		return false, 0, fmt.Errorf("error removing like: %w", err)
	}

	liked := false
	delta := -1
	if tag.RowsAffected() == 0 {
		sql, args, err = psql.Insert("likes").Columns("user_id", t.column).Values(userID, targetID).ToSql()
		if err != nil {
			return false, 0, fmt.Errorf("failed to build like query: %w", err)
		}
		if _, err := tx.Exec(ctx, sql, args...); err != nil {
			return false, 0, fmt.Errorf("error adding like: %w", err)
		}
		delta = 1
		liked = true
	}

	updateSQL := fmt.Sprintf("UPDATE %s SET like_count = GREATEST(like_count + $1, 0) WHERE id = $2 RETURNING like_count", t.table)
	if err := tx.QueryRow(ctx, updateSQL, delta, targetID).Scan(&count); err != nil {
		return false, 0, fmt.Errorf("error updating like count: %w", err)
	}
	return liked, count, nil
}

// CommentsLikedByUser reports which of commentIDs userID has liked
func (r *LikeRepository) CommentsLikedByUser(ctx context.Context, userID int64, commentIDs []int64) (map[int64]bool, error) {
	out := make(map[int64]bool, len(commentIDs))
	if len(commentIDs) == 0 {
		return out, nil
	}

	sql, args, err := psql.Select("comment_id").From("likes").
		Where("user_id = ?", userID).
		Where("comment_id = ANY(?)", commentIDs).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build comment likes query: %w", err)
	}
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error loading comment likes: %w", err)
	}
	ids, err := scanIDs(rows)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}
