package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/app/models"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/pkg/apperrors"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/pkg/dberrors"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/pkg/logger"
)

// ICommentRepository stores comments and replies
type ICommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id int64) (*models.Comment, error)
	ListByPost(ctx context.Context, postID int64) ([]*models.Comment, error)
	Delete(ctx context.Context, id int64) error
}

var commentColumns = []string{
	"c.id", "c.post_id", "c.user_id", "c.parent_id", "c.content", "c.like_count", "c.created_at",
	"u.id", "u.username", "u.profile_picture",
}

// CommentRepository handles comment database operations
type CommentRepository struct {
	db *pgxpool.Pool
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(db *pgxpool.Pool) *CommentRepository {
	return &CommentRepository{db: db}
}

func scanComment(row pgx.Row) (*models.Comment, error) {
	c := &models.Comment{Author: &models.UserSummary{}}
	err := row.Scan(&c.ID, &c.PostID, &c.UserID, &c.ParentID, &c.Content, &c.LikeCount, &c.CreatedAt,
		&c.Author.ID, &c.Author.Username, &c.Author.ProfilePicture)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func commentSelect() squirrel.SelectBuilder {
	return psql.Select(commentColumns...).From("comments c").Join("users u ON u.id = c.user_id")
}

// Create inserts a comment or reply
func (r *CommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	sql, args, err := psql.Insert("comments").
		Columns("post_id", "user_id", "parent_id", "content").
		Values(comment.PostID, comment.UserID, comment.ParentID, comment.Content).
		Suffix("RETURNING id, like_count, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create comment query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&comment.ID, &comment.LikeCount, &comment.CreatedAt); err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.ErrPostNotFound
		}
		logger.Error().Err(err).Int64("postID", comment.PostID).Msg("Error creating comment")
		return fmt.Errorf("error creating comment: %w", err)
	}
	return nil
}

// GetByID retrieves a comment with its author
func (r *CommentRepository) GetByID(ctx context.Context, id int64) (*models.Comment, error) {
	sql, args, err := commentSelect().Where(squirrel.Eq{"c.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get comment query: %w", err)
	}

	c, err := scanComment(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if dberrors.IsNoRows(err) {
			return nil, apperrors.ErrCommentNotFound
		}
		return nil, fmt.Errorf("error retrieving comment: %w", err)
	}
	return c, nil
}

// ListByPost returns every comment of a post in chronological order
func (r *CommentRepository) ListByPost(ctx context.Context, postID int64) ([]*models.Comment, error) {
	sql, args, err := commentSelect().
		Where(squirrel.Eq{"c.post_id": postID}).
		OrderBy("c.created_at ASC", "c.id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list comments query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("postID", postID).Msg("Error listing comments")
		return nil, fmt.Errorf("error listing comments: %w", err)
	}
	defer rows.Close()

	comments := []*models.Comment{}
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning comment: %w", err)
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

// Delete removes a comment together with its replies
func (r *CommentRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting comment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrCommentNotFound
	}
	return nil
}
