package repositories

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DBTX is satisfied by both *pgxpool.Pool and pgx.Tx
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// psql is the statement builder shared by all repositories
var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// Repositories holds all the repository instances
type Repositories struct {
	UserRepository         *UserRepository
	TokenRepository        *TokenRepository
	ConnectionRepository   *ConnectionRepository
	PostRepository         *PostRepository
	LikeRepository         *LikeRepository
	CommentRepository      *CommentRepository
	ShareRepository        *ShareRepository
	RSVPRepository         *RSVPRepository
	NotificationRepository *NotificationRepository
	ResearchRepository     *ResearchRepository
	MessageRepository      *MessageRepository
	UniversityRepository   *UniversityRepository
}

// NewRepositories initializes all repositories
func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		UserRepository:         NewUserRepository(db),
		TokenRepository:        NewTokenRepository(db),
		ConnectionRepository:   NewConnectionRepository(db),
		PostRepository:         NewPostRepository(db),
		LikeRepository:         NewLikeRepository(db),
		CommentRepository:      NewCommentRepository(db),
		ShareRepository:        NewShareRepository(db),
		RSVPRepository:         NewRSVPRepository(db),
		NotificationRepository: NewNotificationRepository(db),
		ResearchRepository:     NewResearchRepository(db),
		MessageRepository:      NewMessageRepository(db),
		UniversityRepository:   NewUniversityRepository(db),
	}
}

// withTx runs fn inside a transaction on pool
func withTx(ctx context.Context, pool *pgxpool.Pool, fn func(tx pgx.Tx) error) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func scanIDs(rows pgx.Rows) ([]int64, error) {
	defer rows.Close()
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
