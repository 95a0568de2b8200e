package service

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"testing"

	"uploadapi/internal/model"
	repoMocks "uploadapi/internal/repository/mocks"
	storeMocks "uploadapi/internal/storage/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newTestService(mRepo *repoMocks.MockUserRepository, mStore *storeMocks.MockStore) UserService {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewUserService(mRepo, mStore, log)
}

func TestUserService_Create(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		input      *model.User
		setupMocks func(mRepo *repoMocks.MockUserRepository)
		wantErr    error
	}{
		{
			name:  "happy path",
			input: &model.User{FullName: "Jane Roe", Email: "jane@example.com"},
			setupMocks: func(mRepo *repoMocks.MockUserRepository) {
				mRepo.On("Create", ctx, mock.MatchedBy(func(u *model.User) bool {
					return u.ID != "" && !u.Verified && !u.CreatedAt.IsZero()
				})).Return(&model.User{ID: "gen-id", FullName: "Jane Roe"}, nil)
			},
		},
		{
			name:       "validation - missing full name",
			input:      &model.User{Email: "jane@example.com"},
			setupMocks: func(mRepo *repoMocks.MockUserRepository) {},
			wantErr:    ErrFullNameRequired,
		},
		{
			name:       "validation - missing email",
			input:      &model.User{FullName: "Jane Roe"},
			setupMocks: func(mRepo *repoMocks.MockUserRepository) {},
			wantErr:    ErrEmailRequired,
		},
		{
			name:  "repository error",
			input: &model.User{FullName: "Jane Roe", Email: "jane@example.com"},
			setupMocks: func(mRepo *repoMocks.MockUserRepository) {
				mRepo.On("Create", ctx, mock.Anything).Return(nil, errors.New("db fail"))
			},
			wantErr: errors.New("create user: db fail"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mRepo := new(repoMocks.MockUserRepository)
			svc := newTestService(mRepo, nil)

			tt.setupMocks(mRepo)

			u, err := svc.Create(ctx, tt.input)

			if tt.wantErr != nil {
				if errors.Is(tt.wantErr, ErrFullNameRequired) || errors.Is(tt.wantErr, ErrEmailRequired) {
					assert.ErrorIs(t, err, tt.wantErr)
				} else {
					assert.Error(t, err)
					assert.Contains(t, err.Error(), tt.wantErr.Error())
				}
				assert.Nil(t, u)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, u)
			}
			mRepo.AssertExpectations(t)
		})
	}
}

func TestUserService_Get(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		id         string
		setupMocks func(mRepo *repoMocks.MockUserRepository)
		wantErr    error
	}{
		{
			name: "happy path",
			id:   "valid-id",
			setupMocks: func(mRepo *repoMocks.MockUserRepository) {
				mRepo.On("FindByID", ctx, "valid-id").Return(&model.User{ID: "valid-id"}, nil)
			},
		},
		{
			name:       "validation - empty id",
			id:         "",
			setupMocks: func(mRepo *repoMocks.MockUserRepository) {},
			wantErr:    ErrIDRequired,
		},
		{
			name: "not found - mapping sql.ErrNoRows",
			id:   "missing-id",
			setupMocks: func(mRepo *repoMocks.MockUserRepository) {
				mRepo.On("FindByID", ctx, "missing-id").Return(nil, sql.ErrNoRows)
			},
			wantErr: ErrNotFound,
		},
		{
			name: "generic repository error",
			id:   "error-id",
			setupMocks: func(mRepo *repoMocks.MockUserRepository) {
				mRepo.On("FindByID", ctx, "error-id").Return(nil, errors.New("db fail"))
			},
			wantErr: errors.New("db fail"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mRepo := new(repoMocks.MockUserRepository)
			svc := newTestService(mRepo, nil)

			tt.setupMocks(mRepo)

			u, err := svc.Get(ctx, tt.id)

			if tt.wantErr != nil {
				if errors.Is(tt.wantErr, ErrIDRequired) || errors.Is(tt.wantErr, ErrNotFound) {
					assert.ErrorIs(t, err, tt.wantErr)
				} else {
					assert.Error(t, err)
				}
				assert.Nil(t, u)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, u)
				assert.Equal(t, tt.id, u.ID)
			}
			mRepo.AssertExpectations(t)
		})
	}
}

func TestUserService_ReplaceProfileImage(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		id         string
		newPath    string
		setupMocks func(mRepo *repoMocks.MockUserRepository, mStore *storeMocks.MockStore)
		wantErr    error
	}{
		{
			name:    "replaces and deletes the old file",
			id:      "valid-id",
			newPath: "/uploads/images/new.jpg",
			setupMocks: func(mRepo *repoMocks.MockUserRepository, mStore *storeMocks.MockStore) {
				mRepo.On("FindByID", ctx, "valid-id").
					Return(&model.User{ID: "valid-id", ProfileImage: "/uploads/images/old.jpg"}, nil)
				mRepo.On("UpdateProfileImage", ctx, "valid-id", "/uploads/images/new.jpg").Return(nil)
				mStore.On("Remove", "/uploads/images/old.jpg").Return(nil)
			},
		},
		{
			name:    "no previous image skips file deletion",
			id:      "fresh-id",
			newPath: "/uploads/images/new.jpg",
			setupMocks: func(mRepo *repoMocks.MockUserRepository, mStore *storeMocks.MockStore) {
				mRepo.On("FindByID", ctx, "fresh-id").
					Return(&model.User{ID: "fresh-id"}, nil)
				mRepo.On("UpdateProfileImage", ctx, "fresh-id", "/uploads/images/new.jpg").Return(nil)
			},
		},
		{
			name:    "failed file deletion does not fail the update",
			id:      "valid-id",
			newPath: "/uploads/images/new.jpg",
			setupMocks: func(mRepo *repoMocks.MockUserRepository, mStore *storeMocks.MockStore) {
				mRepo.On("FindByID", ctx, "valid-id").
					Return(&model.User{ID: "valid-id", ProfileImage: "/uploads/images/old.jpg"}, nil)
				mRepo.On("UpdateProfileImage", ctx, "valid-id", "/uploads/images/new.jpg").Return(nil)
				mStore.On("Remove", "/uploads/images/old.jpg").Return(errors.New("disk fail"))
			},
		},
		{
			name:       "validation - empty id",
			id:         "",
			newPath:    "/uploads/images/new.jpg",
			setupMocks: func(mRepo *repoMocks.MockUserRepository, mStore *storeMocks.MockStore) {},
			wantErr:    ErrIDRequired,
		},
		{
			name:    "not found",
			id:      "missing-id",
			newPath: "/uploads/images/new.jpg",
			setupMocks: func(mRepo *repoMocks.MockUserRepository, mStore *storeMocks.MockStore) {
				mRepo.On("FindByID", ctx, "missing-id").Return(nil, sql.ErrNoRows)
			},
			wantErr: ErrNotFound,
		},
		{
			name:    "update error",
			id:      "valid-id",
			newPath: "/uploads/images/new.jpg",
			setupMocks: func(mRepo *repoMocks.MockUserRepository, mStore *storeMocks.MockStore) {
				mRepo.On("FindByID", ctx, "valid-id").
					Return(&model.User{ID: "valid-id"}, nil)
				mRepo.On("UpdateProfileImage", ctx, "valid-id", "/uploads/images/new.jpg").
					Return(errors.New("db fail"))
			},
			wantErr: errors.New("update profile image: db fail"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mRepo := new(repoMocks.MockUserRepository)
			mStore := new(storeMocks.MockStore)
			svc := newTestService(mRepo, mStore)

			tt.setupMocks(mRepo, mStore)

			u, err := svc.ReplaceProfileImage(ctx, tt.id, tt.newPath)

			if tt.wantErr != nil {
				if errors.Is(tt.wantErr, ErrIDRequired) || errors.Is(tt.wantErr, ErrNotFound) {
					assert.ErrorIs(t, err, tt.wantErr)
				} else {
					assert.Error(t, err)
					assert.Contains(t, err.Error(), tt.wantErr.Error())
				}
				assert.Nil(t, u)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.newPath, u.ProfileImage)
			}
			mRepo.AssertExpectations(t)
			mStore.AssertExpectations(t)
		})
	}
}

func TestUserService_Delete(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		id         string
		setupMocks func(mRepo *repoMocks.MockUserRepository, mStore *storeMocks.MockStore)
		wantErr    error
	}{
		{
			name: "happy path",
			id:   "valid-id",
			setupMocks: func(mRepo *repoMocks.MockUserRepository, mStore *storeMocks.MockStore) {
				mRepo.On("FindByID", ctx, "valid-id").
					Return(&model.User{ID: "valid-id", ProfileImage: "/uploads/images/p.jpg"}, nil)
				mStore.On("Remove", "/uploads/images/p.jpg").Return(nil)
				mRepo.On("Delete", ctx, "valid-id").Return(nil)
			},
		},
		{
			name: "no profile image skips file deletion",
			id:   "bare-id",
			setupMocks: func(mRepo *repoMocks.MockUserRepository, mStore *storeMocks.MockStore) {
				mRepo.On("FindByID", ctx, "bare-id").Return(&model.User{ID: "bare-id"}, nil)
				mRepo.On("Delete", ctx, "bare-id").Return(nil)
			},
		},
		{
			name:       "validation - empty id",
			id:         "",
			setupMocks: func(mRepo *repoMocks.MockUserRepository, mStore *storeMocks.MockStore) {},
			wantErr:    ErrIDRequired,
		},
		{
			name: "not found",
			id:   "missing-id",
			setupMocks: func(mRepo *repoMocks.MockUserRepository, mStore *storeMocks.MockStore) {
				mRepo.On("FindByID", ctx, "missing-id").Return(nil, sql.ErrNoRows)
			},
			wantErr: ErrNotFound,
		},
		{
			name: "file deletion error keeps the record",
			id:   "storage-fail-id",
			setupMocks: func(mRepo *repoMocks.MockUserRepository, mStore *storeMocks.MockStore) {
				mRepo.On("FindByID", ctx, "storage-fail-id").
					Return(&model.User{ID: "storage-fail-id", ProfileImage: "/uploads/images/p.jpg"}, nil)
				mStore.On("Remove", "/uploads/images/p.jpg").Return(errors.New("disk fail"))
			},
			wantErr: errors.New("delete profile image: disk fail"),
		},
		{
			name: "repository delete error",
			id:   "repo-fail-id",
			setupMocks: func(mRepo *repoMocks.MockUserRepository, mStore *storeMocks.MockStore) {
				mRepo.On("FindByID", ctx, "repo-fail-id").
					Return(&model.User{ID: "repo-fail-id", ProfileImage: "/uploads/images/p.jpg"}, nil)
				mStore.On("Remove", "/uploads/images/p.jpg").Return(nil)
				mRepo.On("Delete", ctx, "repo-fail-id").Return(errors.New("db fail"))
			},
			wantErr: errors.New("db fail"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mRepo := new(repoMocks.MockUserRepository)
			mStore := new(storeMocks.MockStore)
			svc := newTestService(mRepo, mStore)

			tt.setupMocks(mRepo, mStore)

			err := svc.Delete(ctx, tt.id)

			if tt.wantErr != nil {
				if errors.Is(tt.wantErr, ErrIDRequired) || errors.Is(tt.wantErr, ErrNotFound) {
					assert.ErrorIs(t, err, tt.wantErr)
				} else {
					assert.Error(t, err)
					assert.Contains(t, err.Error(), tt.wantErr.Error())
				}
			} else {
				assert.NoError(t, err)
			}
			mRepo.AssertExpectations(t)
			mStore.AssertExpectations(t)
		})
	}
}
