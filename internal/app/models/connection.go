package models

import "time"

// Connection is a friendship edge between two users
type Connection struct {
	ID          int64            `json:"id" db:"id"`
	RequesterID int64            `json:"requester_id" db:"requester_id"`
	RecipientID int64            `json:"recipient_id" db:"recipient_id"`
	Status      ConnectionStatus `json:"status" db:"status"`
	CreatedAt   time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at" db:"updated_at"`

	Requester *UserSummary `json:"requester,omitempty"`
}

// Other returns the user on the other end of the edge
func (c *Connection) Other(userID int64) int64 {
	if c.RequesterID == userID {
		return c.RecipientID
	}
	return c.RequesterID
}
