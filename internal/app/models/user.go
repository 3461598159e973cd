package models

import (
	"time"
)

// User defines the user model based on the 'users' table
type User struct {
	ID               int64       `json:"id" db:"id" example:"1"`
	Username         string      `json:"username" db:"username" example:"jdoe"`
	Email            string      `json:"email" db:"email" example:"jdoe@uni.edu"`
	Password         string      `json:"-" db:"hashed_password"`
	IsActive         bool        `json:"is_active" db:"is_active" example:"true"`
	IsVerified       bool        `json:"is_verified" db:"is_verified" example:"true"`
	OTP              *string     `json:"-" db:"otp"`
	OTPExpiry        *time.Time  `json:"-" db:"otp_expiry"`
	OTPPurpose       *OTPPurpose `json:"-" db:"otp_purpose"`
	ProfilePicture   *string     `json:"profile_picture,omitempty" db:"profile_picture"`
	UniversityName   *string     `json:"university_name,omitempty" db:"university_name"`
	Department       *string     `json:"department,omitempty" db:"department"`
	FieldsOfInterest []string    `json:"fields_of_interest" db:"fields_of_interest"`
	ProfileCompleted bool        `json:"profile_completed" db:"profile_completed"`
	AuthProvider     string      `json:"auth_provider" db:"auth_provider" example:"local"`
	CreatedAt        time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at" db:"updated_at"`
}

// UserSummary is the author/actor block embedded in feeds and notifications
type UserSummary struct {
	ID             int64   `json:"id"`
	Username       string  `json:"username"`
	ProfilePicture *string `json:"profile_picture,omitempty"`
}

// Summary returns the compact form of the user
func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Username: u.Username, ProfilePicture: u.ProfilePicture}
}

// RefreshToken is a persisted refresh token
type RefreshToken struct {
	Token     string    `db:"token"`
	UserID    int64     `db:"user_id"`
	ExpiresAt time.Time `db:"expires_at"`
	Revoked   bool      `db:"revoked"`
	CreatedAt time.Time `db:"created_at"`
}
