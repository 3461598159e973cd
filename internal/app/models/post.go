package models

import "time"

// Post is the polymorphic feed entry
type Post struct {
	ID        int64     `json:"id" db:"id"`
	UserID    int64     `json:"user_id" db:"user_id"`
	PostType  PostType  `json:"post_type" db:"post_type"`
	Content   *string   `json:"content,omitempty" db:"content"`
	LikeCount int       `json:"like_count" db:"like_count"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`

	Author   *UserSummary  `json:"author,omitempty"`
	Media    *PostMedia    `json:"media,omitempty"`
	Document *PostDocument `json:"document,omitempty"`
	Event    *Event        `json:"event,omitempty"`

	// Hashtags found in the content at creation, lower-cased without '#'
	Hashtags []string `json:"-"`
}

// PostMedia is the media payload of a media post
type PostMedia struct {
	ID        int64  `json:"id" db:"id"`
	PostID    int64  `json:"post_id" db:"post_id"`
	MediaURL  string `json:"media_url" db:"media_url"`
	MediaType string `json:"media_type" db:"media_type"`
}

// PostDocument is the document payload of a document post
type PostDocument struct {
	ID           int64  `json:"id" db:"id"`
	PostID       int64  `json:"post_id" db:"post_id"`
	DocumentURL  string `json:"document_url" db:"document_url"`
	DocumentType string `json:"document_type" db:"document_type"`
}

// Event is the payload of an event post; EventDatetime is stored in UTC
type Event struct {
	ID            int64     `json:"id" db:"id"`
	PostID        int64     `json:"post_id" db:"post_id"`
	UserID        int64     `json:"user_id" db:"user_id"`
	Title         string    `json:"title" db:"title"`
	Description   *string   `json:"description,omitempty" db:"description"`
	EventDatetime time.Time `json:"event_datetime" db:"event_datetime"`
	Location      *string   `json:"location,omitempty" db:"location"`
	ImageURL      *string   `json:"image_url,omitempty" db:"image_url"`
}
