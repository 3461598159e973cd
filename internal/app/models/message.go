package models

import "time"

// MessageType is the declared kind of a chat message
type MessageType string

const (
	MessageTypeText  MessageType = "text"
	MessageTypeLink  MessageType = "link"
	MessageTypeImage MessageType = "image"
	MessageTypeFile  MessageType = "file"
)

// Valid reports whether t belongs to the fixed message kinds
func (t MessageType) Valid() bool {
	switch t {
	case MessageTypeText, MessageTypeLink, MessageTypeImage, MessageTypeFile:
		return true
	}
	return false
}

// Message is a directed chat entry
type Message struct {
	ID          int64       `json:"id" db:"id"`
	SenderID    int64       `json:"sender_id" db:"sender_id"`
	ReceiverID  int64       `json:"receiver_id" db:"receiver_id"`
	Content     string      `json:"content" db:"content"`
	FileURL     *string     `json:"file_url,omitempty" db:"file_url"`
	MessageType MessageType `json:"message_type" db:"message_type"`
	IsRead      bool        `json:"is_read" db:"is_read"`
	Timestamp   time.Time   `json:"timestamp" db:"timestamp"`
}

// Conversation is the latest message with a counterpart plus unread count
type Conversation struct {
	UserID      int64
	Username    string
	Avatar      *string
	LastMessage Message
	UnreadCount int
}
