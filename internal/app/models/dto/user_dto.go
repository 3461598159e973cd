package dto

import (
	"time"

	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/app/models"
)

// UserResponse represents a user profile
type UserResponse struct {
	ID               int64     `json:"id"`
	Username         string    `json:"username"`
	Email            string    `json:"email,omitempty"`
	ProfilePicture   *string   `json:"profile_picture,omitempty"`
	UniversityName   *string   `json:"university_name,omitempty"`
	Department       *string   `json:"department,omitempty"`
	FieldsOfInterest []string  `json:"fields_of_interest"`
	ProfileCompleted bool      `json:"profile_completed"`
	IsVerified       bool      `json:"is_verified"`
	IsOnline         bool      `json:"is_online"`
	CreatedAt        time.Time `json:"created_at"`
}

// NewUserResponse maps a user model; email is only included for the owner
func NewUserResponse(u *models.User, includeEmail bool) UserResponse {
	resp := UserResponse{
		ID:               u.ID,
		Username:         u.Username,
		ProfilePicture:   u.ProfilePicture,
		UniversityName:   u.UniversityName,
		Department:       u.Department,
		FieldsOfInterest: u.FieldsOfInterest,
		ProfileCompleted: u.ProfileCompleted,
		IsVerified:       u.IsVerified,
		CreatedAt:        u.CreatedAt,
	}
	if resp.FieldsOfInterest == nil {
		resp.FieldsOfInterest = []string{}
	}
	if includeEmail {
		resp.Email = u.Email
	}
	return resp
}

// UpdateProfileRequest completes or edits the academic profile
type UpdateProfileRequest struct {
	UniversityName   string   `json:"university_name" binding:"required,max=200"`
	Department       string   `json:"department" binding:"required,max=200"`
	FieldsOfInterest []string `json:"fields_of_interest" binding:"required,min=1,dive,required,max=100"`
}

// ProfilePictureResponse returns the stored picture URL
type ProfilePictureResponse struct {
	ProfilePicture string `json:"profile_picture"`
}
