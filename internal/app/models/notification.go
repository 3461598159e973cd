package models

import "time"

// NotificationType names the event that produced a notification
type NotificationType string

const (
	NotificationNewPost               NotificationType = "new_post"
	NotificationLike                  NotificationType = "like"
	NotificationComment               NotificationType = "comment"
	NotificationReply                 NotificationType = "reply"
	NotificationShare                 NotificationType = "share"
	NotificationConnectionRequest     NotificationType = "connection_request"
	NotificationConnectionAccepted    NotificationType = "connection_accepted"
	NotificationCollaborationRequest  NotificationType = "collaboration_request"
	NotificationCollaborationAccepted NotificationType = "collaboration_accepted"
	NotificationMessage               NotificationType = "message"
)

// Notification is a persisted fan-out row
type Notification struct {
	ID          int64            `json:"id" db:"id"`
	RecipientID int64            `json:"recipient_id" db:"recipient_id"`
	ActorID     int64            `json:"actor_id" db:"actor_id"`
	Type        NotificationType `json:"type" db:"type"`
	PostID      *int64           `json:"post_id,omitempty" db:"post_id"`
	IsRead      bool             `json:"is_read" db:"is_read"`
	CreatedAt   time.Time        `json:"created_at" db:"created_at"`

	Actor *UserSummary `json:"actor,omitempty"`
}
