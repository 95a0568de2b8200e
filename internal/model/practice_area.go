package model

import "time"

// PracticeArea is a content record with a cover image and an ordered
// gallery. Images holds root-relative storage paths, stored as jsonb.
type PracticeArea struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Image     string    `json:"image,omitempty"`
	Images    []string  `json:"images,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
