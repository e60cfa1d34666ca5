package impl

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"sentinel/internal/domain/entity"
	"sentinel/internal/domain/repository"
	"sentinel/internal/errors"

	"github.com/google/uuid"
)

// memoryStore is an in-memory stand-in for the database. Transactions run one at a
// time and are rolled back by restoring a snapshot when the callback fails.
type memoryStore struct {
	txMu sync.Mutex
	mu   sync.Mutex

	users              map[uuid.UUID]*entity.User
	sessions           map[uuid.UUID]*entity.RefreshToken
	passwordResets     map[uuid.UUID]*entity.OneTimeToken
	emailVerifications map[uuid.UUID]*entity.OneTimeToken
	history            []*entity.LoginHistory

	failUserUpdate error
	now            func() time.Time
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		users:              make(map[uuid.UUID]*entity.User),
		sessions:           make(map[uuid.UUID]*entity.RefreshToken),
		passwordResets:     make(map[uuid.UUID]*entity.OneTimeToken),
		emailVerifications: make(map[uuid.UUID]*entity.OneTimeToken),
		now:                time.Now,
	}
}

type storeSnapshot struct {
	users              map[uuid.UUID]entity.User
	sessions           map[uuid.UUID]entity.RefreshToken
	passwordResets     map[uuid.UUID]entity.OneTimeToken
	emailVerifications map[uuid.UUID]entity.OneTimeToken
	historyLen         int
}

func (s *memoryStore) snapshot() storeSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return storeSnapshot{
		users:              copyValues(s.users),
		sessions:           copyValues(s.sessions),
		passwordResets:     copyValues(s.passwordResets),
		emailVerifications: copyValues(s.emailVerifications),
		historyLen:         len(s.history),
	}
}

func (s *memoryStore) restore(snap storeSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.users = copyPointers(snap.users)
	s.sessions = copyPointers(snap.sessions)
	s.passwordResets = copyPointers(snap.passwordResets)
	s.emailVerifications = copyPointers(snap.emailVerifications)
	s.history = s.history[:snap.historyLen]
}

func copyValues[T any](in map[uuid.UUID]*T) map[uuid.UUID]T {
	out := make(map[uuid.UUID]T, len(in))
	for k, v := range in {
		out[k] = *v
	}

	return out
}

func copyPointers[T any](in map[uuid.UUID]T) map[uuid.UUID]*T {
	out := make(map[uuid.UUID]*T, len(in))
	for k, v := range in {
		copied := v
		out[k] = &copied
	}

	return out
}

func (s *memoryStore) user(id uuid.UUID) *entity.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil
	}
	copied := *u

	return &copied
}

func (s *memoryStore) userSessions(userID uuid.UUID) []*entity.RefreshToken {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*entity.RefreshToken
	for _, t := range s.sessions {
		if t.UserID == userID {
			copied := *t
			out = append(out, &copied)
		}
	}

	return out
}

func (s *memoryStore) loginHistory(userID uuid.UUID) []entity.LoginHistory {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []entity.LoginHistory
	for _, h := range s.history {
		if h.UserID == userID {
			out = append(out, *h)
		}
	}

	return out
}

func (s *memoryStore) factory() repository.RepositoryFactory {
	return &memoryRepoFactory{store: s}
}

// memoryTxManager serialises transactions against the store.
type memoryTxManager struct {
	store *memoryStore
}

func (tm *memoryTxManager) Execute(_ context.Context, fn func(txRepoFactory repository.RepositoryFactory) error) error {
	tm.store.txMu.Lock()
	defer tm.store.txMu.Unlock()

	snap := tm.store.snapshot()
	if err := fn(tm.store.factory()); err != nil {
		tm.store.restore(snap)

		return err
	}

	return nil
}

type memoryRepoFactory struct {
	store *memoryStore
}

func (f *memoryRepoFactory) NewUserRepository() repository.UserRepository {
	return &memoryUserRepo{store: f.store}
}

func (f *memoryRepoFactory) NewRefreshTokenRepository() repository.RefreshTokenRepository {
	return &memoryRefreshTokenRepo{store: f.store}
}

func (f *memoryRepoFactory) NewPasswordResetRepository() repository.OneTimeTokenRepository {
	return &memoryOneTimeTokenRepo{store: f.store, rows: func(s *memoryStore) map[uuid.UUID]*entity.OneTimeToken { return s.passwordResets }}
}

func (f *memoryRepoFactory) NewEmailVerificationRepository() repository.OneTimeTokenRepository {
	return &memoryOneTimeTokenRepo{store: f.store, rows: func(s *memoryStore) map[uuid.UUID]*entity.OneTimeToken { return s.emailVerifications }}
}

func (f *memoryRepoFactory) NewLoginHistoryRepository() repository.LoginHistoryRepository {
	return &memoryLoginHistoryRepo{store: f.store}
}

type memoryUserRepo struct {
	store *memoryStore
}

func (r *memoryUserRepo) find(match func(*entity.User) bool) (*entity.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, u := range r.store.users {
		if match(u) {
			copied := *u

			return &copied, nil
		}
	}

	return nil, repository.ErrUserNotFound
}

func (r *memoryUserRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	return r.find(func(u *entity.User) bool { return u.ID == id })
}

func (r *memoryUserRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	return r.find(func(u *entity.User) bool { return strings.EqualFold(u.Email, email) })
}

func (r *memoryUserRepo) FindByUsername(_ context.Context, username string) (*entity.User, error) {
	return r.find(func(u *entity.User) bool { return u.Username == username })
}

func (r *memoryUserRepo) FindByResetTokenHash(_ context.Context, tokenHash string) (*entity.User, error) {
	return r.find(func(u *entity.User) bool { return u.ResetTokenHash != nil && *u.ResetTokenHash == tokenHash })
}

func (r *memoryUserRepo) FindByVerificationTokenHash(_ context.Context, tokenHash string) (*entity.User, error) {
	return r.find(func(u *entity.User) bool {
		return u.VerificationTokenHash != nil && *u.VerificationTokenHash == tokenHash
	})
}

func (r *memoryUserRepo) Create(_ context.Context, user *entity.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, u := range r.store.users {
		if strings.EqualFold(u.Email, user.Email) {
			return repository.ErrUserEmailExists
		}
		if u.Username == user.Username {
			return repository.ErrUsernameExists
		}
	}

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	user.CreatedAt = r.store.now()
	user.UpdatedAt = user.CreatedAt

	copied := *user
	r.store.users[user.ID] = &copied

	return nil
}

// Update mirrors the SQL repository: lockout columns are owned by the atomic statements.
func (r *memoryUserRepo) Update(_ context.Context, user *entity.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if r.store.failUserUpdate != nil {
		return r.store.failUserUpdate
	}

	existing, ok := r.store.users[user.ID]
	if !ok {
		return repository.ErrUserNotFound
	}

	for id, u := range r.store.users {
		if id != user.ID && strings.EqualFold(u.Email, user.Email) {
			return repository.ErrUserEmailExists
		}
	}

	copied := *user
	copied.FailedLoginAttempts = existing.FailedLoginAttempts
	copied.LockedUntil = existing.LockedUntil
	copied.UpdatedAt = r.store.now()
	r.store.users[user.ID] = &copied

	return nil
}

func (r *memoryUserRepo) RegisterFailedLogin(_ context.Context, id uuid.UUID, threshold int, lockUntil time.Time) (*repository.LoginFailureState, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	u, ok := r.store.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}

	u.FailedLoginAttempts++
	if u.FailedLoginAttempts >= threshold {
		locked := lockUntil
		u.LockedUntil = &locked
	}

	return &repository.LoginFailureState{FailedAttempts: u.FailedLoginAttempts, LockedUntil: u.LockedUntil}, nil
}

func (r *memoryUserRepo) ResetLoginFailures(_ context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	u, ok := r.store.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.FailedLoginAttempts = 0
	u.LockedUntil = nil

	return nil
}

type memoryRefreshTokenRepo struct {
	store *memoryStore
}

func (r *memoryRefreshTokenRepo) Create(_ context.Context, token *entity.RefreshToken) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, t := range r.store.sessions {
		if t.TokenHash == token.TokenHash {
			return errors.New("duplicate refresh token hash")
		}
	}

	if token.ID == uuid.Nil {
		token.ID = uuid.New()
	}
	token.CreatedAt = r.store.now()

	copied := *token
	r.store.sessions[token.ID] = &copied

	return nil
}

func (r *memoryRefreshTokenRepo) FindValidByHash(_ context.Context, tokenHash string) (*entity.RefreshToken, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, t := range r.store.sessions {
		if t.TokenHash == tokenHash && !t.IsRevoked {
			copied := *t

			return &copied, nil
		}
	}

	return nil, repository.ErrRefreshTokenNotFound
}

func (r *memoryRefreshTokenRepo) FindActiveByUserID(_ context.Context, userID uuid.UUID, now time.Time) ([]*entity.RefreshToken, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var out []*entity.RefreshToken
	for _, t := range r.store.sessions {
		if t.UserID == userID && !t.IsRevoked && t.ExpiresAt.After(now) {
			copied := *t
			out = append(out, &copied)
		}
	}

	slices.SortFunc(out, func(a, b *entity.RefreshToken) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	return out, nil
}

func (r *memoryRefreshTokenRepo) RevokeByHash(_ context.Context, tokenHash string) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	matched := false
	for _, t := range r.store.sessions {
		if t.TokenHash == tokenHash {
			t.IsRevoked = true
			matched = true
		}
	}

	return matched, nil
}

func (r *memoryRefreshTokenRepo) RevokeByID(_ context.Context, userID, id uuid.UUID) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	t, ok := r.store.sessions[id]
	if !ok || t.UserID != userID {
		return false, nil
	}
	t.IsRevoked = true

	return true, nil
}

func (r *memoryRefreshTokenRepo) RevokeAllByUserID(_ context.Context, userID uuid.UUID) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var n int64
	for _, t := range r.store.sessions {
		if t.UserID == userID && !t.IsRevoked {
			t.IsRevoked = true
			n++
		}
	}

	return n, nil
}

func (r *memoryRefreshTokenRepo) DeleteExpired(_ context.Context, before time.Time) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var n int64
	for id, t := range r.store.sessions {
		if t.ExpiresAt.Before(before) {
			delete(r.store.sessions, id)
			n++
		}
	}

	return n, nil
}

type memoryOneTimeTokenRepo struct {
	store *memoryStore
	rows  func(*memoryStore) map[uuid.UUID]*entity.OneTimeToken
}

func (r *memoryOneTimeTokenRepo) Create(_ context.Context, token *entity.OneTimeToken) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if token.ID == uuid.Nil {
		token.ID = uuid.New()
	}
	token.CreatedAt = r.store.now()

	copied := *token
	r.rows(r.store)[token.ID] = &copied

	return nil
}

func (r *memoryOneTimeTokenRepo) FindByHash(_ context.Context, tokenHash string) (*entity.OneTimeToken, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, t := range r.rows(r.store) {
		if t.TokenHash == tokenHash {
			copied := *t

			return &copied, nil
		}
	}

	return nil, repository.ErrOneTimeTokenNotFound
}

func (r *memoryOneTimeTokenRepo) MarkUsed(_ context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	t, ok := r.rows(r.store)[id]
	if !ok {
		return repository.ErrOneTimeTokenNotFound
	}
	if t.Used {
		return repository.ErrOneTimeTokenUsed
	}
	t.Used = true

	return nil
}

func (r *memoryOneTimeTokenRepo) DeleteStale(_ context.Context, before time.Time) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	rows := r.rows(r.store)
	var n int64
	for id, t := range rows {
		if (t.Used && t.CreatedAt.Before(before)) || t.ExpiresAt.Before(before) {
			delete(rows, id)
			n++
		}
	}

	return n, nil
}

type memoryLoginHistoryRepo struct {
	store *memoryStore
}

func (r *memoryLoginHistoryRepo) Append(_ context.Context, record *entity.LoginHistory) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	record.CreatedAt = r.store.now()

	copied := *record
	r.store.history = append(r.store.history, &copied)

	return nil
}
