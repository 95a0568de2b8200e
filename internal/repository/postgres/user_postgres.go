package postgres

import (
	"context"
	"database/sql"
	"time"

	"uploadapi/internal/model"
	"uploadapi/internal/repository"
)

// UserPostgres is a PostgreSQL implementation of repository.UserRepository.
// It uses database/sql with parameterized queries and contains no business
// logic.
type UserPostgres struct {
	db *sql.DB
}

// NewUserPostgres creates a new UserPostgres repository.
func NewUserPostgres(db *sql.DB) *UserPostgres {
	return &UserPostgres{db: db}
}

var _ repository.UserRepository = (*UserPostgres)(nil)

const userColumns = `id, full_name, email, profile_image, verified, is_online, last_seen, created_at, updated_at`

func scanUser(row interface{ Scan(dest ...any) error }) (*model.User, error) {
	var (
		u            model.User
		profileImage sql.NullString
		lastSeen     sql.NullTime
	)
	if err := row.Scan(
		&u.ID,
		&u.FullName,
		&u.Email,
		&profileImage,
		&u.Verified,
		&u.IsOnline,
		&lastSeen,
		&u.CreatedAt,
		&u.UpdatedAt,
	); err != nil {
		return nil, err
	}
	u.ProfileImage = profileImage.String
	u.LastSeen = lastSeen.Time
	return &u, nil
}

// Create inserts a new user row and returns the stored record.
func (r *UserPostgres) Create(ctx context.Context, u *model.User) (*model.User, error) {
	const q = `
		INSERT INTO users (id, full_name, email, profile_image, verified, created_at, updated_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7)
		RETURNING ` + userColumns
	row := r.db.QueryRowContext(ctx, q,
		u.ID,
		u.FullName,
		u.Email,
		u.ProfileImage,
		u.Verified,
		u.CreatedAt,
		u.UpdatedAt,
	)
	return scanUser(row)
}

// FindByID fetches a single user by ID.
func (r *UserPostgres) FindByID(ctx context.Context, id string) (*model.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRowContext(ctx, q, id))
}

// UpdateProfileImage sets the profile image path of a user.
func (r *UserPostgres) UpdateProfileImage(ctx context.Context, id, path string) error {
	const q = `UPDATE users SET profile_image = NULLIF($2, ''), updated_at = $3 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id, path, time.Now().UTC())
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListUnverifiedBefore returns unverified users created before the cutoff.
func (r *UserPostgres) ListUnverifiedBefore(ctx context.Context, cutoff time.Time) ([]model.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE verified = FALSE AND created_at < $1`
	rows, err := r.db.QueryContext(ctx, q, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]model.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

// Delete removes a user by ID. It does not return an error if the row does
// not exist.
func (r *UserPostgres) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM users WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	_, _ = res.RowsAffected()
	return nil
}
