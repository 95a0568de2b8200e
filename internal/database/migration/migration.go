// Package migration bootstraps the schema on first run. It is intentionally
// minimal: a sentinel-table check and idempotent CREATE statements, not a
// versioned migration system.
package migration

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"
)

type migrationStep struct {
	Name string
	SQL  string
}

var steps = []migrationStep{
	{
		Name: "create_table_users",
		SQL: `CREATE TABLE IF NOT EXISTS users (
  id            UUID        PRIMARY KEY,
  full_name     TEXT        NOT NULL,
  email         TEXT        NOT NULL UNIQUE,
  profile_image TEXT,
  verified      BOOLEAN     NOT NULL DEFAULT FALSE,
  is_online     BOOLEAN     NOT NULL DEFAULT FALSE,
  last_seen     TIMESTAMPTZ,
  created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_users_verified_created_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_users_verified_created_at ON users (verified, created_at);`,
	},
	{
		Name: "create_table_attorneys",
		SQL: `CREATE TABLE IF NOT EXISTS attorneys (
  id            UUID        PRIMARY KEY,
  full_name     TEXT        NOT NULL,
  profile_image TEXT,
  banner_image  TEXT,
  created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_practice_areas",
		SQL: `CREATE TABLE IF NOT EXISTS practice_areas (
  id         UUID        PRIMARY KEY,
  name       TEXT        NOT NULL,
  image      TEXT,
  images     JSONB,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
}

// EnsureMigrated checks whether the users table exists and runs the schema
// steps if it does not.
func EnsureMigrated(ctx context.Context, db *sql.DB, log *slog.Logger) error {
	start := time.Now()

	var exists bool
	const sentinel = "SELECT to_regclass('public.users') IS NOT NULL"
	if err := db.QueryRowContext(ctx, sentinel).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		log.Info("schema already exists, skipping migration",
			"duration_ms", time.Since(start).Milliseconds())
		return nil
	}

	for _, step := range steps {
		stepStart := time.Now()
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}
		log.Info("migration step applied",
			"step", step.Name,
			"duration_ms", time.Since(stepStart).Milliseconds())
	}

	log.Info("migration finished", "duration_ms", time.Since(start).Milliseconds())
	return nil
}
