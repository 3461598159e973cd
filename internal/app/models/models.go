package models

// PostType discriminates the typed sub-record attached to a post
type PostType string

const (
	PostTypeText     PostType = "text"
	PostTypeMedia    PostType = "media"
	PostTypeDocument PostType = "document"
	PostTypeEvent    PostType = "event"
)

// ConnectionStatus is the tri-state of a connection edge
type ConnectionStatus string

const (
	ConnectionPending  ConnectionStatus = "pending"
	ConnectionAccepted ConnectionStatus = "accepted"
	ConnectionRejected ConnectionStatus = "rejected"
)

// RSVPStatus is an attendee's answer to an event post
type RSVPStatus string

const (
	RSVPGoing      RSVPStatus = "going"
	RSVPInterested RSVPStatus = "interested"
)

// Valid reports whether s is a known RSVP answer
func (s RSVPStatus) Valid() bool {
	return s == RSVPGoing || s == RSVPInterested
}

// RequestStatus is the state of a collaboration request
type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestAccepted RequestStatus = "accepted"
	RequestRejected RequestStatus = "rejected"
)

// OTPPurpose distinguishes verification codes from password reset codes
type OTPPurpose string

const (
	OTPPurposeVerify OTPPurpose = "verify"
	OTPPurposeReset  OTPPurpose = "reset"
)
