package dto

import "github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/app/models"

// SearchResponse holds matching posts and users
type SearchResponse struct {
	Posts []PostResponse       `json:"posts"`
	Users []models.UserSummary `json:"users"`
}
