package dto

import "github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/app/models"

// ConnectionResponse represents a connection edge
type ConnectionResponse struct {
	models.Connection
}

// FriendListResponse lists accepted connections
type FriendListResponse struct {
	Friends []models.UserSummary `json:"friends"`
}

// AvailableUsersResponse lists users the caller can still connect with
type AvailableUsersResponse struct {
	Users []models.UserSummary `json:"users"`
}
