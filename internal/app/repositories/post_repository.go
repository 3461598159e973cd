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

// PostFilter narrows a feed query
type PostFilter struct {
	Limit          int
	Offset         int
	LastSeenPostID *int64
	UserID         *int64
}

// IPostRepository stores posts and their typed payloads
type IPostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id int64) (*models.Post, error)
	GetByIDs(ctx context.Context, ids []int64) ([]*models.Post, error)
	List(ctx context.Context, filter PostFilter) ([]*models.Post, error)
	ListEvents(ctx context.Context, limit, offset int) ([]*models.Post, error)
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id int64) error
	Search(ctx context.Context, keyword string, limit int) ([]*models.Post, error)

	// Viewer-specific decorations
	LikedByUser(ctx context.Context, userID int64, postIDs []int64) (map[int64]bool, error)
	CommentCounts(ctx context.Context, postIDs []int64) (map[int64]int, error)
}

var postColumns = []string{
	"p.id", "p.user_id", "p.post_type", "p.content", "p.like_count", "p.created_at", "p.updated_at",
	"u.id", "u.username", "u.profile_picture",
	"m.id", "m.media_url", "m.media_type",
	"d.id", "d.document_url", "d.document_type",
	"e.id", "e.title", "e.description", "e.event_datetime", "e.location", "e.image_url",
}

func postSelect() squirrel.SelectBuilder {
	return psql.Select(postColumns...).
		From("posts p").
		Join("users u ON u.id = p.user_id").
		LeftJoin("post_media m ON m.post_id = p.id").
		LeftJoin("post_documents d ON d.post_id = p.id").
		LeftJoin("events e ON e.post_id = p.id")
}

func scanPost(row pgx.Row) (*models.Post, error) {
	p := &models.Post{}
	author := &models.UserSummary{}

	var (
		mediaID, docID, eventID           *int64
		mediaURL, mediaType               *string
		docURL, docType                   *string
		title, description, location, img *string
		eventAt                           *time.Time
	)

	err := row.Scan(
		&p.ID, &p.UserID, &p.PostType, &p.Content, &p.LikeCount, &p.CreatedAt, &p.UpdatedAt,
		&author.ID, &author.Username, &author.ProfilePicture,
		&mediaID, &mediaURL, &mediaType,
		&docID, &docURL, &docType,
		&eventID, &title, &description, &eventAt, &location, &img,
	)
	if err != nil {
		return nil, err
	}

	p.Author = author
	if mediaID != nil {
		p.Media = &models.PostMedia{ID: *mediaID, PostID: p.ID, MediaURL: *mediaURL, MediaType: *mediaType}
	}
	if docID != nil {
		p.Document = &models.PostDocument{ID: *docID, PostID: p.ID, DocumentURL: *docURL, DocumentType: *docType}
	}
	if eventID != nil {
		p.Event = &models.Event{
			ID:            *eventID,
			PostID:        p.ID,
			UserID:        p.UserID,
			Title:         *title,
			Description:   description,
			EventDatetime: eventAt.UTC(),
			Location:      location,
			ImageURL:      img,
		}
	}
	return p, nil
}

func (r *PostRepository) queryPosts(ctx context.Context, q squirrel.SelectBuilder) ([]*models.Post, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build posts query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing posts query")
		return nil, fmt.Errorf("error querying posts: %w", err)
	}
	defer rows.Close()

	posts := []*models.Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning post: %w", err)
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// PostRepository handles post database operations
type PostRepository struct {
	db *pgxpool.Pool
}

// NewPostRepository creates a new PostRepository
func NewPostRepository(db *pgxpool.Pool) *PostRepository {
	return &PostRepository{db: db}
}

// Create inserts the post, its typed payload and its university hashtags in one transaction
func (r *PostRepository) Create(ctx context.Context, post *models.Post) error {
	return withTx(ctx, r.db, func(tx pgx.Tx) error {
		now := time.Now().UTC()
		sql, args, err := psql.Insert("posts").
			Columns("user_id", "post_type", "content", "like_count", "created_at", "updated_at").
			Values(post.UserID, post.PostType, post.Content, 0, now, now).
			Suffix("RETURNING id, created_at, updated_at").
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build create post query: %w", err)
		}
		if err := tx.QueryRow(ctx, sql, args...).Scan(&post.ID, &post.CreatedAt, &post.UpdatedAt); err != nil {
			if dberrors.IsForeignKeyViolation(err) {
				return apperrors.ErrUserNotFound
			}
			return fmt.Errorf("error creating post: %w", err)
		}
		if err := insertPayload(ctx, tx, post); err != nil {
			return err
		}
		return recordUniversityHashtags(ctx, tx, post.ID, post.Hashtags)
	})
}

func insertPayload(ctx context.Context, tx pgx.Tx, post *models.Post) error {
	var q squirrel.InsertBuilder
	var dest *int64

	switch {
	case post.Media != nil:
		post.Media.PostID = post.ID
		q = psql.Insert("post_media").Columns("post_id", "media_url", "media_type").
			Values(post.ID, post.Media.MediaURL, post.Media.MediaType)
		dest = &post.Media.ID
	case post.Document != nil:
		post.Document.PostID = post.ID
		q = psql.Insert("post_documents").Columns("post_id", "document_url", "document_type").
			Values(post.ID, post.Document.DocumentURL, post.Document.DocumentType)
		dest = &post.Document.ID
	case post.Event != nil:
		post.Event.PostID = post.ID
		post.Event.UserID = post.UserID
		q = psql.Insert("events").
			Columns("post_id", "user_id", "title", "description", "event_datetime", "location", "image_url").
			Values(post.ID, post.UserID, post.Event.Title, post.Event.Description, post.Event.EventDatetime,
				post.Event.Location, post.Event.ImageURL)
		dest = &post.Event.ID
	default:
		return nil
	}

	sql, args, err := q.Suffix("RETURNING id").ToSql()
	if err != nil {
		return fmt.Errorf("failed to build post payload query: %w", err)
	}
	if err := tx.QueryRow(ctx, sql, args...).Scan(dest); err != nil {
		return fmt.Errorf("error creating post payload: %w", err)
	}
	return nil
}

// GetByID retrieves a post with author and payload
func (r *PostRepository) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	sql, args, err := postSelect().Where(squirrel.Eq{"p.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get post query: %w", err)
	}

	p, err := scanPost(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if dberrors.IsNoRows(err) {
			return nil, apperrors.ErrPostNotFound
		}
		return nil, fmt.Errorf("error retrieving post: %w", err)
	}
	return p, nil
}

// GetByIDs retrieves posts in the order of ids; unknown ids are skipped
func (r *PostRepository) GetByIDs(ctx context.Context, ids []int64) ([]*models.Post, error) {
	if len(ids) == 0 {
		return []*models.Post{}, nil
	}
	posts, err := r.queryPosts(ctx, postSelect().Where(squirrel.Eq{"p.id": ids}))
	if err != nil {
		return nil, err
	}

	byID := make(map[int64]*models.Post, len(posts))
	for _, p := range posts {
		byID[p.ID] = p
	}
	ordered := make([]*models.Post, 0, len(posts))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			ordered = append(ordered, p)
		}
	}
	return ordered, nil
}

// List returns a newest-first page of posts
func (r *PostRepository) List(ctx context.Context, filter PostFilter) ([]*models.Post, error) {
	q := postSelect()
	if filter.LastSeenPostID != nil {
		q = q.Where("p.created_at > COALESCE((SELECT created_at FROM posts WHERE id = ?), '-infinity'::timestamptz)", *filter.LastSeenPostID)
	}
	if filter.UserID != nil {
		q = q.Where(squirrel.Eq{"p.user_id": *filter.UserID})
	}
	q = q.OrderBy("p.created_at DESC", "p.id DESC").
		Limit(uint64(filter.Limit)).
		Offset(uint64(filter.Offset))
	return r.queryPosts(ctx, q)
}

// ListEvents returns event posts, upcoming ones first in chronological order
func (r *PostRepository) ListEvents(ctx context.Context, limit, offset int) ([]*models.Post, error) {
	q := postSelect().
		Where(squirrel.Eq{"p.post_type": models.PostTypeEvent}).
		OrderBy("(e.event_datetime < NOW())", "e.event_datetime ASC").
		Limit(uint64(limit)).
		Offset(uint64(offset))
	return r.queryPosts(ctx, q)
}

// Update writes the content and payload of an existing post
func (r *PostRepository) Update(ctx context.Context, post *models.Post) error {
	return withTx(ctx, r.db, func(tx pgx.Tx) error {
		sql, args, err := psql.Update("posts").
			Set("content", post.Content).
			Set("updated_at", time.Now().UTC()).
			Where(squirrel.Eq{"id": post.ID}).
			Suffix("RETURNING updated_at").
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build update post query: %w", err)
		}
		if err := tx.QueryRow(ctx, sql, args...).Scan(&post.UpdatedAt); err != nil {
			if dberrors.IsNoRows(err) {
				return apperrors.ErrPostNotFound
			}
			return fmt.Errorf("error updating post: %w", err)
		}

		var q squirrel.UpdateBuilder
		switch {
		case post.Media != nil:
			q = psql.Update("post_media").
				Set("media_url", post.Media.MediaURL).
				Set("media_type", post.Media.MediaType).
				Where(squirrel.Eq{"post_id": post.ID})
		case post.Document != nil:
			q = psql.Update("post_documents").
				Set("document_url", post.Document.DocumentURL).
				Set("document_type", post.Document.DocumentType).
				Where(squirrel.Eq{"post_id": post.ID})
		case post.Event != nil:
			q = psql.Update("events").
				Set("title", post.Event.Title).
				Set("description", post.Event.Description).
				Set("event_datetime", post.Event.EventDatetime).
				Set("location", post.Event.Location).
				Set("image_url", post.Event.ImageURL).
				Where(squirrel.Eq{"post_id": post.ID})
		default:
			return nil
		}

		sql, args, err = q.ToSql()
		if err != nil {
			return fmt.Errorf("failed to build update payload query: %w", err)
		}
		if _, err := tx.Exec(ctx, sql, args...); err != nil {
			return fmt.Errorf("error updating post payload: %w", err)
		}
		return nil
	})
}

// Delete removes a post; payloads, reactions and notifications cascade
func (r *PostRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		logger.Error().Err(err).Int64("postID", id).Msg("Error deleting post")
		return fmt.Errorf("error deleting post: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrPostNotFound
	}
	return nil
}

// Search matches non-event posts by content or author username
func (r *PostRepository) Search(ctx context.Context, keyword string, limit int) ([]*models.Post, error) {
	pattern := "%" + keyword + "%"
	q := postSelect().
		Where(squirrel.NotEq{"p.post_type": models.PostTypeEvent}).
		Where(squirrel.Or{
			squirrel.ILike{"p.content": pattern},
			squirrel.ILike{"u.username": pattern},
		}).
		OrderBy("p.created_at DESC").
		Limit(uint64(limit))
	return r.queryPosts(ctx, q)
}

// LikedByUser reports which of postIDs userID has liked
func (r *PostRepository) LikedByUser(ctx context.Context, userID int64, postIDs []int64) (map[int64]bool, error) {
	out := make(map[int64]bool, len(postIDs))
	if len(postIDs) == 0 {
		return out, nil
	}

	sql, args, err := psql.Select("post_id").From("likes").
		Where(squirrel.Eq{"user_id": userID, "post_id": postIDs}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build liked query: %w", err)
	}
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error loading likes: %w", err)
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

// CommentCounts returns the number of comments per post
func (r *PostRepository) CommentCounts(ctx context.Context, postIDs []int64) (map[int64]int, error) {
	out := make(map[int64]int, len(postIDs))
	if len(postIDs) == 0 {
		return out, nil
	}

	sql, args, err := psql.Select("post_id", "COUNT(*)").From("comments").
		Where(squirrel.Eq{"post_id": postIDs}).GroupBy("post_id").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build comment count query: %w", err)
	}
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error counting comments: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, err
		}
		out[id] = n
	}
	return out, rows.Err()
}
