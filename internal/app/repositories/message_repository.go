package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/app/models"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/pkg/dberrors"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/pkg/logger"
)

// IMessageRepository stores direct messages
type IMessageRepository interface {
	Create(ctx context.Context, m *models.Message) error
	History(ctx context.Context, me, friend int64, limit int, before *time.Time) ([]models.Message, error)
	MarkRead(ctx context.Context, readerID, friendID int64) (int64, error)
	UnreadCount(ctx context.Context, readerID, friendID int64) (int, error)
	Conversations(ctx context.Context, me int64) ([]models.Conversation, error)
	Conversation(ctx context.Context, me, other int64) (*models.Conversation, error)
}

var messageColumns = []string{"m.id", "m.sender_id", "m.receiver_id", "m.content", "m.file_url", "m.message_type", "m.is_read", `m."timestamp"`}

// MessageRepository handles message database operations
type MessageRepository struct {
	db *pgxpool.Pool
}

// NewMessageRepository creates a new MessageRepository
func NewMessageRepository(db *pgxpool.Pool) *MessageRepository {
	return &MessageRepository{db: db}
}

func messageDest(m *models.Message) []interface{} {
	return []interface{}{&m.ID, &m.SenderID, &m.ReceiverID, &m.Content, &m.FileURL, &m.MessageType, &m.IsRead, &m.Timestamp}
}

// Create persists a message
func (r *MessageRepository) Create(ctx context.Context, m *models.Message) error {
	sql, args, err := psql.Insert("messages").
		Columns("sender_id", "receiver_id", "content", "file_url", "message_type").
		Values(m.SenderID, m.ReceiverID, m.Content, m.FileURL, m.MessageType).
		Suffix(`RETURNING id, is_read, "timestamp"`).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create message query: %w", err)
	}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&m.ID, &m.IsRead, &m.Timestamp); err != nil {
		logger.Error().Err(err).Int64("senderID", m.SenderID).Int64("receiverID", m.ReceiverID).Msg("Error creating message")
		return fmt.Errorf("error creating message: %w", err)
	}
	return nil
}

func betweenPair(a, b int64) squirrel.Or {
	return squirrel.Or{
		squirrel.Eq{"m.sender_id": a, "m.receiver_id": b},
		squirrel.Eq{"m.sender_id": b, "m.receiver_id": a},
	}
}

// History returns up to limit messages of the pair older than before, oldest first
func (r *MessageRepository) History(ctx context.Context, me, friend int64, limit int, before *time.Time) ([]models.Message, error) {
	q := psql.Select(messageColumns...).From("messages m").
		Where(betweenPair(me, friend)).
		OrderBy(`m."timestamp" DESC`, "m.id DESC").
		Limit(uint64(limit))
	if before != nil {
		q = q.Where(squirrel.Lt{`m."timestamp"`: *before})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build history query: %w", err)
	}
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("userID", me).Int64("friendID", friend).Msg("Error loading chat history")
		return nil, fmt.Errorf("error loading history: %w", err)
	}
	defer rows.Close()

	out := []models.Message{}
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(messageDest(&m)...); err != nil {
			return nil, fmt.Errorf("error scanning message: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

// MarkRead marks friend→reader messages read and returns how many changed
func (r *MessageRepository) MarkRead(ctx context.Context, readerID, friendID int64) (int64, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE messages SET is_read = TRUE WHERE receiver_id = $1 AND sender_id = $2 AND is_read = FALSE`,
		readerID, friendID)
	if err != nil {
		return 0, fmt.Errorf("error marking messages read: %w", err)
	}
	return tag.RowsAffected(), nil
}

// UnreadCount counts friend→reader messages not yet read
func (r *MessageRepository) UnreadCount(ctx context.Context, readerID, friendID int64) (int, error) {
	var n int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM messages WHERE receiver_id = $1 AND sender_id = $2 AND is_read = FALSE`,
		readerID, friendID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("error counting unread messages: %w", err)
	}
	return n, nil
}

const conversationsQuery = `
SELECT c.other_id, u.username, u.profile_picture,
       c.id, c.sender_id, c.receiver_id, c.content, c.file_url, c.message_type, c.is_read, c."timestamp",
       (SELECT COUNT(*) FROM messages x WHERE x.receiver_id = $1 AND x.sender_id = c.other_id AND x.is_read = FALSE)
FROM (
    SELECT DISTINCT ON (other_id) *
    FROM (
        SELECT m.*, CASE WHEN m.sender_id = $1 THEN m.receiver_id ELSE m.sender_id END AS other_id
        FROM messages m
        WHERE m.sender_id = $1 OR m.receiver_id = $1
    ) t
    ORDER BY other_id, "timestamp" DESC, id DESC
) c
JOIN users u ON u.id = c.other_id`

func scanConversation(row pgx.Row) (*models.Conversation, error) {
	c := &models.Conversation{}
	m := &c.LastMessage
	err := row.Scan(&c.UserID, &c.Username, &c.Avatar,
		&m.ID, &m.SenderID, &m.ReceiverID, &m.Content, &m.FileURL, &m.MessageType, &m.IsRead, &m.Timestamp,
		&c.UnreadCount)
	return c, err
}

// Conversations returns one entry per counterpart, newest first
func (r *MessageRepository) Conversations(ctx context.Context, me int64) ([]models.Conversation, error) {
	rows, err := r.db.Query(ctx, conversationsQuery+` ORDER BY c."timestamp" DESC`, me)
	if err != nil {
		logger.Error().Err(err).Int64("userID", me).Msg("Error listing conversations")
		return nil, fmt.Errorf("error listing conversations: %w", err)
	}
	defer rows.Close()

	out := []models.Conversation{}
	for rows.Next() {
		c, err := scanConversation(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning conversation: %w", err)
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

// Conversation returns the summary of the conversation between me and other, or nil
func (r *MessageRepository) Conversation(ctx context.Context, me, other int64) (*models.Conversation, error) {
	c, err := scanConversation(r.db.QueryRow(ctx, conversationsQuery+` WHERE c.other_id = $2`, me, other))
	if err != nil {
		if dberrors.IsNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("error loading conversation: %w", err)
	}
	return c, nil
}
