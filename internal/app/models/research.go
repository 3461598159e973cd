package models

import "time"

// ResearchPaper is an uploaded paper file with metadata
type ResearchPaper struct {
	ID               int64     `json:"id" db:"id"`
	Title            string    `json:"title" db:"title"`
	Author           string    `json:"author" db:"author"`
	ResearchField    string    `json:"research_field" db:"research_field"`
	FilePath         string    `json:"file_path" db:"file_path"`
	OriginalFilename string    `json:"original_filename" db:"original_filename"`
	UploaderID       int64     `json:"uploader_id" db:"uploader_id"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
}

// ResearchCollaboration is a research topic open for collaborators
type ResearchCollaboration struct {
	ID            int64     `json:"id" db:"id"`
	Title         string    `json:"title" db:"title"`
	ResearchField string    `json:"research_field" db:"research_field"`
	Details       string    `json:"details" db:"details"`
	CreatorID     int64     `json:"creator_id" db:"creator_id"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`

	Collaborators []UserSummary `json:"collaborators,omitempty"`
}

// CollaborationRequest asks a topic creator to accept a collaborator
type CollaborationRequest struct {
	ID          int64         `json:"id" db:"id"`
	ResearchID  int64         `json:"research_id" db:"research_id"`
	RequesterID int64         `json:"requester_id" db:"requester_id"`
	Message     string        `json:"message" db:"message"`
	Status      RequestStatus `json:"status" db:"status"`
	CreatedAt   time.Time     `json:"created_at" db:"created_at"`
}
