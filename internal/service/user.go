package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"uploadapi/internal/model"
	"uploadapi/internal/repository"
	"uploadapi/internal/storage"
)

var (
	ErrIDRequired       = errors.New("id is required")
	ErrEmailRequired    = errors.New("email is required")
	ErrFullNameRequired = errors.New("full name is required")
	ErrNotFound         = errors.New("user not found")
)

// UserService defines the use cases for handling user accounts and their
// stored files. File deletion here is the explicit, synchronous-intent kind;
// the scheduled orphan scan is a separate, independent mechanism.
type UserService interface {
	// Create registers a new user. The profile image path, if any, was
	// produced by the upload pipeline before this call.
	Create(ctx context.Context, u *model.User) (*model.User, error)

	// Get returns a single user by ID.
	Get(ctx context.Context, id string) (*model.User, error)

	// ReplaceProfileImage points the user at a new stored image and deletes
	// the superseded file. Deleting the old file is best-effort: a failure
	// leaves it for the orphan scan.
	ReplaceProfileImage(ctx context.Context, id, newPath string) (*model.User, error)

	// Delete removes the user's profile image file and then the record.
	Delete(ctx context.Context, id string) error
}

// userService is a concrete implementation of UserService.
type userService struct {
	users repository.UserRepository
	files storage.Store
	log   *slog.Logger
}

// NewUserService constructs a new UserService.
func NewUserService(users repository.UserRepository, files storage.Store, log *slog.Logger) UserService {
	return &userService{users: users, files: files, log: log}
}

func (s *userService) Create(ctx context.Context, u *model.User) (*model.User, error) {
	if u.FullName == "" {
		return nil, ErrFullNameRequired
	}
	if u.Email == "" {
		return nil, ErrEmailRequired
	}

	now := time.Now().UTC()
	u.ID = uuid.New().String()
	u.Verified = false
	u.CreatedAt = now
	u.UpdatedAt = now

	stored, err := s.users.Create(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return stored, nil
}

func (s *userService) Get(ctx context.Context, id string) (*model.User, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

func (s *userService) ReplaceProfileImage(ctx context.Context, id, newPath string) (*model.User, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if err := s.users.UpdateProfileImage(ctx, id, newPath); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update profile image: %w", err)
	}

	if old := u.ProfileImage; old != "" && old != newPath {
		if err := s.files.Remove(old); err != nil {
			s.log.Error("failed to delete superseded profile image", "path", old, "error", err)
		}
	}

	u.ProfileImage = newPath
	return u, nil
}

func (s *userService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrIDRequired
	}
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}

	// Delete the stored file first; if this fails the record stays and the
	// operation can be retried.
	if u.ProfileImage != "" {
		if err := s.files.Remove(u.ProfileImage); err != nil {
			return fmt.Errorf("delete profile image: %w", err)
		}
	}
	return s.users.Delete(ctx, id)
}
