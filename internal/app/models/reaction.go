package models

import "time"

// Like marks a user's like on a post or a comment; exactly one target is set
type Like struct {
	ID        int64     `json:"id" db:"id"`
	UserID    int64     `json:"user_id" db:"user_id"`
	PostID    *int64    `json:"post_id,omitempty" db:"post_id"`
	CommentID *int64    `json:"comment_id,omitempty" db:"comment_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Comment is a root comment or a single-level reply
type Comment struct {
	ID        int64     `json:"id" db:"id"`
	PostID    int64     `json:"post_id" db:"post_id"`
	UserID    int64     `json:"user_id" db:"user_id"`
	ParentID  *int64    `json:"parent_id,omitempty" db:"parent_id"`
	Content   string    `json:"content" db:"content"`
	LikeCount int       `json:"like_count" db:"like_count"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	Author *UserSummary `json:"author,omitempty"`
}

// IsReply reports whether the comment hangs off another comment
func (c *Comment) IsReply() bool {
	return c.ParentID != nil
}

// Share is an issued share link for a post
type Share struct {
	ID         int64     `json:"id" db:"id"`
	UserID     int64     `json:"user_id" db:"user_id"`
	PostID     int64     `json:"post_id" db:"post_id"`
	ShareToken string    `json:"share_token" db:"share_token"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// EventAttendee is an RSVP row
type EventAttendee struct {
	ID        int64      `json:"id" db:"id"`
	EventID   int64      `json:"event_id" db:"event_id"`
	UserID    int64      `json:"user_id" db:"user_id"`
	Status    RSVPStatus `json:"status" db:"status"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`

	User *UserSummary `json:"user,omitempty"`
}
