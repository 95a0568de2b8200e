package repository

import (
	"context"
	"time"

	"uploadapi/internal/model"
)

// UserRepository defines data access for users using SQL queries only.
// No business logic here, strictly persistence operations.
type UserRepository interface {
	// Create inserts a new user record and returns the stored row.
	Create(ctx context.Context, u *model.User) (*model.User, error)

	// FindByID returns a user by ID.
	FindByID(ctx context.Context, id string) (*model.User, error)

	// UpdateProfileImage sets the profile image path of a user.
	UpdateProfileImage(ctx context.Context, id, path string) error

	// ListUnverifiedBefore returns users that are still unverified and were
	// created before the cutoff.
	ListUnverifiedBefore(ctx context.Context, cutoff time.Time) ([]model.User, error)

	// Delete removes a user by ID. It returns nil if the row was deleted or
	// did not exist.
	Delete(ctx context.Context, id string) error
}
