package cleanup

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"uploadapi/internal/repository"
	"uploadapi/internal/storage"
)

// UnverifiedPurger removes user accounts that never completed email
// verification, together with any profile image they uploaded.
type UnverifiedPurger struct {
	users   repository.UserRepository
	files   storage.Store
	maxAge  time.Duration
	log     *slog.Logger
	metrics *Metrics
}

// NewUnverifiedPurger constructs an UnverifiedPurger. metrics may be nil.
func NewUnverifiedPurger(users repository.UserRepository, files storage.Store, maxAge time.Duration, log *slog.Logger, metrics *Metrics) *UnverifiedPurger {
	return &UnverifiedPurger{users: users, files: files, maxAge: maxAge, log: log, metrics: metrics}
}

// Run deletes every unverified account older than the configured age and
// returns the number purged. A failure on one account is logged and the
// rest are still processed.
func (p *UnverifiedPurger) Run(ctx context.Context) (int, error) {
	cutoff := time.Now().Add(-p.maxAge)

	stale, err := p.users.ListUnverifiedBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("list unverified users: %w", err)
	}

	purged := 0
	for i := range stale {
		u := &stale[i]
		if u.ProfileImage != "" {
			if err := p.files.Remove(u.ProfileImage); err != nil {
				p.log.Error("failed to delete profile image of unverified user",
					"user_id", u.ID, "path", u.ProfileImage, "error", err)
			}
		}
		if err := p.users.Delete(ctx, u.ID); err != nil {
			p.log.Error("failed to delete unverified user", "user_id", u.ID, "error", err)
			continue
		}
		purged++
	}

	if p.metrics != nil {
		p.metrics.UnverifiedPurged.Add(float64(purged))
	}

	p.log.Info("unverified user purge finished",
		"candidates", len(stale),
		"purged", purged,
		"cutoff", cutoff.UTC().Format(time.RFC3339),
	)
	return purged, nil
}
