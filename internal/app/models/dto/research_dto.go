package dto

import (
	"time"

	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/app/models"
)

// UploadPaperForm holds the multipart metadata of a paper
type UploadPaperForm struct {
	Title         string `form:"title" binding:"required,max=300"`
	Author        string `form:"author" binding:"required,max=200"`
	ResearchField string `form:"research_field" binding:"required,max=200"`
}

// CreateCollaborationRequest posts a research topic
type CreateCollaborationRequest struct {
	Title         string `json:"title" binding:"required,max=300"`
	ResearchField string `json:"research_field" binding:"required,max=200"`
	Details       string `json:"details" binding:"required"`
}

// CollaborationResponse is a research topic as seen by the caller
type CollaborationResponse struct {
	models.ResearchCollaboration
	CreatorUsername         string `json:"creator_username,omitempty"`
	CanRequestCollaboration bool   `json:"can_request_collaboration"`
}

// RequestCollaborationBody asks to join a research topic
type RequestCollaborationBody struct {
	Message string `json:"message" binding:"max=2000"`
}

// CollaborationRequestResponse is a pending request on one of the caller's topics
type CollaborationRequestResponse struct {
	ID                int64                `json:"id"`
	ResearchID        int64                `json:"research_id"`
	ResearchTitle     string               `json:"research_title"`
	RequesterID       int64                `json:"requester_id"`
	RequesterUsername string               `json:"requester_username"`
	Message           string               `json:"message"`
	Status            models.RequestStatus `json:"status"`
	CreatedAt         time.Time            `json:"created_at"`
}
