package model

import "time"

// User represents a registered account.
// This is a pure domain model with no database-specific dependencies or tags.
// ProfileImage, when set, holds a root-relative storage path produced by the
// upload pipeline (e.g. /uploads/images/avatar-1700000000-123456789.jpg).
type User struct {
	ID           string    `json:"id"`
	FullName     string    `json:"full_name"`
	Email        string    `json:"email"`
	ProfileImage string    `json:"profile_image,omitempty"`
	Verified     bool      `json:"verified"`
	IsOnline     bool      `json:"is_online"`
	LastSeen     time.Time `json:"last_seen"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
