package dto

import "github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/app/models"

// NotificationListResponse is a page of notifications
type NotificationListResponse struct {
	Notifications []models.Notification `json:"notifications"`
	Pagination    PaginationInfo        `json:"pagination"`
}

// ClearAllResponse reports how many notifications were marked read
type ClearAllResponse struct {
	UpdatedCount int64 `json:"updated_count"`
}
