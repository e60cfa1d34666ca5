package impl

import (
	"context"
	"time"

	"sentinel/config"
	"sentinel/internal/domain/entity"
	"sentinel/internal/domain/repository"
	"sentinel/internal/errors"

	"github.com/google/uuid"
)

const (
	defaultLockoutThreshold = 5
	defaultLockoutDuration  = 15 * time.Minute
)

// lockoutGuard tracks consecutive failed password checks per user.
// The counter lives in storage and is only ever changed by single statements.
type lockoutGuard struct {
	threshold int
	duration  time.Duration
	now       func() time.Time
}

func newLockoutGuard(cfg *config.Config, now func() time.Time) *lockoutGuard {
	guard := &lockoutGuard{
		threshold: defaultLockoutThreshold,
		duration:  defaultLockoutDuration,
		now:       now,
	}

	if cfg != nil && cfg.Auth != nil {
		if cfg.Auth.Lockout.MaxFailedAttempts > 0 {
			guard.threshold = cfg.Auth.Lockout.MaxFailedAttempts
		}
		if cfg.Auth.Lockout.Duration > 0 {
			guard.duration = cfg.Auth.Lockout.Duration
		}
	}

	return guard
}

// IsLocked reports whether login must be rejected before the password is checked.
func (g *lockoutGuard) IsLocked(user *entity.User) bool {
	return user.IsLockedAt(g.now())
}

// RegisterFailure counts one failed password check and reports whether the
// account is locked after it.
func (g *lockoutGuard) RegisterFailure(ctx context.Context, users repository.UserRepository, userID uuid.UUID) (bool, error) {
	now := g.now()

	state, err := users.RegisterFailedLogin(ctx, userID, g.threshold, now.Add(g.duration))
	if err != nil {
		return false, errors.Wrap(err, "failed to register failed login")
	}

	return state.LockedUntil != nil && state.LockedUntil.After(now), nil
}

// Reset returns the account to the open state. Users already open are left untouched.
func (g *lockoutGuard) Reset(ctx context.Context, users repository.UserRepository, user *entity.User) error {
	if user.FailedLoginAttempts == 0 && user.LockedUntil == nil {
		return nil
	}

	if err := users.ResetLoginFailures(ctx, user.ID); err != nil {
		return errors.Wrap(err, "failed to reset login failures")
	}

	user.FailedLoginAttempts = 0
	user.LockedUntil = nil

	return nil
}
