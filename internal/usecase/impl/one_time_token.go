package impl

import (
	"context"
	"time"

	"sentinel/internal/domain/entity"
	domainerrors "sentinel/internal/domain/errors"
	"sentinel/internal/domain/repository"
	"sentinel/internal/domain/service"
	"sentinel/internal/errors"
)

const (
	defaultResetTokenTTL        = time.Hour
	defaultVerificationTokenTTL = 24 * time.Hour
)

// oneTimeTokens runs the issue and verify-and-consume protocol shared by password
// resets and email verifications. Each purpose has its own ledger and its own
// digest cache on the user record.
type oneTimeTokens struct {
	purpose   entity.TokenPurpose
	ttl       time.Duration
	generator service.OpaqueTokenGenerator
	digests   service.TokenService
	now       func() time.Time

	ledger   func(repository.RepositoryFactory) repository.OneTimeTokenRepository
	findUser func(ctx context.Context, users repository.UserRepository, tokenHash string) (*entity.User, error)
	cached   func(user *entity.User) (tokenHash **string, expires **time.Time)
}

func newPasswordResetTokens(generator service.OpaqueTokenGenerator, digests service.TokenService, ttl time.Duration, now func() time.Time) *oneTimeTokens {
	if ttl <= 0 {
		ttl = defaultResetTokenTTL
	}

	return &oneTimeTokens{
		purpose:   entity.TokenPurposePasswordReset,
		ttl:       ttl,
		generator: generator,
		digests:   digests,
		now:       now,
		ledger: func(f repository.RepositoryFactory) repository.OneTimeTokenRepository {
			return f.NewPasswordResetRepository()
		},
		findUser: func(ctx context.Context, users repository.UserRepository, tokenHash string) (*entity.User, error) {
			return users.FindByResetTokenHash(ctx, tokenHash)
		},
		cached: func(user *entity.User) (**string, **time.Time) {
			return &user.ResetTokenHash, &user.ResetTokenExpires
		},
	}
}

func newEmailVerificationTokens(generator service.OpaqueTokenGenerator, digests service.TokenService, ttl time.Duration, now func() time.Time) *oneTimeTokens {
	if ttl <= 0 {
		ttl = defaultVerificationTokenTTL
	}

	return &oneTimeTokens{
		purpose:   entity.TokenPurposeEmailVerification,
		ttl:       ttl,
		generator: generator,
		digests:   digests,
		now:       now,
		ledger: func(f repository.RepositoryFactory) repository.OneTimeTokenRepository {
			return f.NewEmailVerificationRepository()
		},
		findUser: func(ctx context.Context, users repository.UserRepository, tokenHash string) (*entity.User, error) {
			return users.FindByVerificationTokenHash(ctx, tokenHash)
		},
		cached: func(user *entity.User) (**string, **time.Time) {
			return &user.VerificationTokenHash, &user.VerificationTokenExpires
		},
	}
}

// Issue records a fresh token for the user and returns the raw value to mail out.
// A newer token replaces the digest cached on the user, so older links stop working.
func (m *oneTimeTokens) Issue(ctx context.Context, repos repository.RepositoryFactory, user *entity.User) (string, error) {
	raw, err := m.generator.Generate()
	if err != nil {
		return "", errors.Wrap(domainerrors.ErrTokenGenerationFailed, err.Error())
	}

	tokenHash := m.digests.HashToken(raw)
	expiresAt := m.now().Add(m.ttl)

	row := &entity.OneTimeToken{
		UserID:    user.ID,
		Purpose:   m.purpose,
		TokenHash: tokenHash,
		ExpiresAt: expiresAt,
	}
	if err := m.ledger(repos).Create(ctx, row); err != nil {
		return "", errors.Wrapf(err, "failed to store %s token", m.purpose)
	}

	cachedHash, cachedExpires := m.cached(user)
	*cachedHash = &tokenHash
	*cachedExpires = &expiresAt

	if err := repos.NewUserRepository().Update(ctx, user); err != nil {
		return "", errors.Wrapf(err, "failed to cache %s token on user", m.purpose)
	}

	return raw, nil
}

// Lookup resolves a raw token to its user and unused ledger row.
// Every rejection is the same invalid-or-expired error.
func (m *oneTimeTokens) Lookup(ctx context.Context, repos repository.RepositoryFactory, raw string) (*entity.User, *entity.OneTimeToken, error) {
	if raw == "" {
		return nil, nil, m.invalid("empty token")
	}

	now := m.now()
	tokenHash := m.digests.HashToken(raw)

	user, err := m.findUser(ctx, repos.NewUserRepository(), tokenHash)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, nil, m.invalid("no user holds this token")
		}

		return nil, nil, errors.Wrap(err, "failed to find user by token")
	}

	_, cachedExpires := m.cached(user)
	if *cachedExpires == nil || !(*cachedExpires).After(now) {
		return nil, nil, m.invalid("cached token expired")
	}

	row, err := m.ledger(repos).FindByHash(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, repository.ErrOneTimeTokenNotFound) {
			return nil, nil, m.invalid("ledger row not found")
		}

		return nil, nil, errors.Wrap(err, "failed to find ledger row")
	}

	if row.UserID != user.ID || row.Used || row.IsExpiredAt(now) {
		return nil, nil, m.invalid("ledger row unusable")
	}

	return user, row, nil
}

// Consume marks the ledger row used and clears the user's cached digest.
// The caller persists the user together with its own state change.
func (m *oneTimeTokens) Consume(ctx context.Context, repos repository.RepositoryFactory, user *entity.User, row *entity.OneTimeToken) error {
	if err := m.ledger(repos).MarkUsed(ctx, row.ID); err != nil {
		if errors.Is(err, repository.ErrOneTimeTokenUsed) {
			return m.invalid("token already used")
		}

		return errors.Wrapf(err, "failed to consume %s token", m.purpose)
	}

	cachedHash, cachedExpires := m.cached(user)
	*cachedHash = nil
	*cachedExpires = nil

	return nil
}

func (m *oneTimeTokens) invalid(reason string) error {
	return errors.Wrapf(domainerrors.ErrInvalidOrExpiredToken, "%s: %s", m.purpose, reason)
}
