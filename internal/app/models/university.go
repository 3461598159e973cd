package models

// UniversityMember is a user listed on a university page
type UniversityMember struct {
	ID         int64   `json:"-" db:"id"`
	Username   string  `json:"username" db:"username"`
	Email      string  `json:"email" db:"email"`
	Department *string `json:"-" db:"department"`
}

// Hashtag counts how often a university tag was used in text posts
type Hashtag struct {
	ID         int64  `json:"id" db:"id"`
	Name       string `json:"name" db:"name"`
	UsageCount int    `json:"usage_count" db:"usage_count"`
}
