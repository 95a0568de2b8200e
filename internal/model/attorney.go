package model

import "time"

// Attorney is a content record carrying two registered file fields.
type Attorney struct {
	ID           string    `json:"id"`
	FullName     string    `json:"full_name"`
	ProfileImage string    `json:"profile_image,omitempty"`
	BannerImage  string    `json:"banner_image,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
