package dto

import "github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/app/models"

// CreateTextPostRequest creates or updates a text post
type CreateTextPostRequest struct {
	Content string `json:"content" binding:"required,max=5000"`
}

// EventPostForm holds the multipart fields of an event post
type EventPostForm struct {
	Content      string `form:"content"`
	Title        string `form:"title" binding:"required,max=200"`
	Description  string `form:"description"`
	EventDate    string `form:"event_date" binding:"required"`
	EventTime    string `form:"event_time" binding:"required"`
	UserTimezone string `form:"user_timezone"`
	Location     string `form:"location"`
}

// UpdateEventForm holds the optional multipart fields of an event update
type UpdateEventForm struct {
	Content      *string `form:"content"`
	Title        *string `form:"title"`
	Description  *string `form:"description"`
	EventDate    string  `form:"event_date"`
	EventTime    string  `form:"event_time"`
	UserTimezone string  `form:"user_timezone"`
	Location     *string `form:"location"`
}

// PostResponse is a feed item with viewer-specific flags
type PostResponse struct {
	models.Post
	UserLiked    bool `json:"user_liked"`
	CommentCount int  `json:"comment_count"`
}

// PostListResponse is a page of posts
type PostListResponse struct {
	Posts      []PostResponse `json:"posts"`
	Pagination PaginationInfo `json:"pagination"`
}

// LikeResponse reports the state after a like toggle
type LikeResponse struct {
	Liked     bool `json:"liked"`
	LikeCount int  `json:"like_count"`
}

// CreateCommentRequest adds a comment or a reply
type CreateCommentRequest struct {
	Content  string `json:"content" binding:"required,max=2000"`
	ParentID *int64 `json:"parent_id"`
}

// CommentResponse is a comment with its direct replies
type CommentResponse struct {
	models.Comment
	TotalLikes int               `json:"total_likes"`
	UserLiked  bool              `json:"user_liked"`
	Replies    []CommentResponse `json:"replies"`
}

// ShareResponse carries an issued share link
type ShareResponse struct {
	ShareToken string `json:"share_token"`
	ShareLink  string `json:"share_link"`
}

// RSVPRequest answers an event
type RSVPRequest struct {
	Status models.RSVPStatus `json:"status" binding:"required,oneof=going interested"`
}

// RSVPCountsResponse tallies answers for an event
type RSVPCountsResponse struct {
	Going      int `json:"going"`
	Interested int `json:"interested"`
}
