package dto

import (
	"time"

	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/app/models"
)

// Inbound websocket actions
const (
	ChatActionSend = "send"
	ChatActionRead = "read"
)

// ChatFrame is an inbound websocket frame
type ChatFrame struct {
	Action      string             `json:"action,omitempty"`
	ReceiverID  int64              `json:"receiver_id"`
	FriendID    int64              `json:"friend_id,omitempty"`
	Content     string             `json:"content"`
	FileURL     *string            `json:"file_url,omitempty"`
	MessageType models.MessageType `json:"message_type"`
}

// MessageOut is a persisted message as pushed to clients
type MessageOut struct {
	ID          int64              `json:"id"`
	SenderID    int64              `json:"sender_id"`
	ReceiverID  int64              `json:"receiver_id"`
	Content     string             `json:"content"`
	FileURL     *string            `json:"file_url,omitempty"`
	MessageType models.MessageType `json:"message_type"`
	IsRead      bool               `json:"is_read"`
	Timestamp   time.Time          `json:"timestamp"`
}

// NewMessageOut maps a message model
func NewMessageOut(m *models.Message) MessageOut {
	return MessageOut{
		ID:          m.ID,
		SenderID:    m.SenderID,
		ReceiverID:  m.ReceiverID,
		Content:     m.Content,
		FileURL:     m.FileURL,
		MessageType: m.MessageType,
		IsRead:      m.IsRead,
		Timestamp:   m.Timestamp,
	}
}

// NewMessagePing tells the receiver that something arrived
type NewMessagePing struct {
	MessageID int64 `json:"message_id"`
	SenderID  int64 `json:"sender_id"`
}

// ConversationOut summarizes a conversation from one participant's view
type ConversationOut struct {
	UserID      int64              `json:"user_id"`
	Username    string             `json:"username"`
	Avatar      *string            `json:"avatar,omitempty"`
	LastMessage string             `json:"last_message"`
	FileURL     *string            `json:"file_url,omitempty"`
	MessageType models.MessageType `json:"message_type"`
	Timestamp   time.Time          `json:"timestamp"`
	IsSender    bool               `json:"is_sender"`
	UnreadCount int                `json:"unread_count"`
}

// NewConversationOut maps a conversation as seen by viewerID
func NewConversationOut(c *models.Conversation, viewerID int64) ConversationOut {
	return ConversationOut{
		UserID:      c.UserID,
		Username:    c.Username,
		Avatar:      c.Avatar,
		LastMessage: c.LastMessage.Content,
		FileURL:     c.LastMessage.FileURL,
		MessageType: c.LastMessage.MessageType,
		Timestamp:   c.LastMessage.Timestamp,
		IsSender:    c.LastMessage.SenderID == viewerID,
		UnreadCount: c.UnreadCount,
	}
}

// ReadReceipt tells a sender that their messages were read
type ReadReceipt struct {
	ReaderID int64     `json:"reader_id"`
	FriendID int64     `json:"friend_id"`
	ReadAt   time.Time `json:"read_at"`
	Count    int64     `json:"count"`
}

// ChatErrorEvent is relayed back to a sender whose frame was rejected
type ChatErrorEvent struct {
	Message string `json:"message"`
}

// ChatUploadResponse returns the URL of an uploaded attachment
type ChatUploadResponse struct {
	FileURL string `json:"file_url"`
}
