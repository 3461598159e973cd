package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/app/models"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/pkg/dberrors"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/pkg/helpers"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/pkg/logger"
)

// IUniversityRepository reads university group pages
type IUniversityRepository interface {
	ListMembers(ctx context.Context, university string) ([]models.UniversityMember, error)
	PostIDsByTag(ctx context.Context, userIDs []int64, tag string) ([]int64, error)
	GetHashtag(ctx context.Context, name string) (*models.Hashtag, error)
}

// UniversityRepository handles university page queries
type UniversityRepository struct {
	db *pgxpool.Pool
}

// NewUniversityRepository creates a new UniversityRepository
func NewUniversityRepository(db *pgxpool.Pool) *UniversityRepository {
	return &UniversityRepository{db: db}
}

// ListMembers returns users whose university matches case-insensitively
func (r *UniversityRepository) ListMembers(ctx context.Context, university string) ([]models.UniversityMember, error) {
	sql, args, err := psql.Select("id", "username", "email", "department").
		From("users").
		Where(squirrel.ILike{"university_name": helpers.EscapeLike(university)}).
		OrderBy("department", "username").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build university members query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("university", university).Msg("Error querying university members")
		return nil, fmt.Errorf("error querying university members: %w", err)
	}
	defer rows.Close()

	members := []models.UniversityMember{}
	for rows.Next() {
		var m models.UniversityMember
		if err := rows.Scan(&m.ID, &m.Username, &m.Email, &m.Department); err != nil {
			return nil, fmt.Errorf("error scanning university member: %w", err)
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

// PostIDsByTag returns posts of userIDs whose content carries #tag, newest first
func (r *UniversityRepository) PostIDsByTag(ctx context.Context, userIDs []int64, tag string) ([]int64, error) {
	if len(userIDs) == 0 {
		return []int64{}, nil
	}
	sql, args, err := psql.Select("id").
		From("posts").
		Where(squirrel.Eq{"user_id": userIDs}).
		Where(squirrel.ILike{"content": "%#" + helpers.EscapeLike(tag) + "%"}).
		OrderBy("created_at DESC", "id DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build tagged posts query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying tagged posts: %w", err)
	}
	ids, err := scanIDs(rows)
	if err != nil {
		return nil, err
	}
	if ids == nil {
		ids = []int64{}
	}
	return ids, nil
}

// GetHashtag returns the usage counter of a tag, or nil when it was never used
func (r *UniversityRepository) GetHashtag(ctx context.Context, name string) (*models.Hashtag, error) {
	sql, args, err := psql.Select("id", "name", "usage_count").
		From("hashtags").
		Where(squirrel.Eq{"name": name}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build hashtag query: %w", err)
	}

	h := &models.Hashtag{}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&h.ID, &h.Name, &h.UsageCount); err != nil {
		if dberrors.IsNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("error retrieving hashtag: %w", err)
	}
	return h, nil
}

// recordUniversityHashtagsSQL counts the tags that name a member university
// and links them to the post. Tags are compared with spaces removed.
const recordUniversityHashtagsSQL = `
WITH tagged AS (
	INSERT INTO hashtags (name, usage_count)
	SELECT t, 1 FROM unnest($1::text[]) AS t
	WHERE EXISTS (
		SELECT 1 FROM users WHERE LOWER(REPLACE(university_name, ' ', '')) = t
	)
	ON CONFLICT (name) DO UPDATE SET usage_count = hashtags.usage_count + 1
	RETURNING id
)
INSERT INTO post_hashtags (post_id, hashtag_id)
SELECT $2::bigint, id FROM tagged
ON CONFLICT DO NOTHING`

func recordUniversityHashtags(ctx context.Context, tx DBTX, postID int64, tags []string) error {
	if len(tags) == 0 {
		return nil
	}
	if _, err := tx.Exec(ctx, recordUniversityHashtagsSQL, tags, postID); err != nil {
		return fmt.Errorf("error recording hashtags: %w", err)
	}
	return nil
}
