package impl

import (
	"context"
	"io"
	"log/slog"
	"net/url"
	"sync"
	"testing"
	"time"

	"sentinel/config"
	"sentinel/internal/domain/entity"
	"sentinel/internal/infra/auth"
	"sentinel/internal/usecase"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	testFrontendURL = "https://app.example.com"
	testPassword    = "Passw0rd1"
)

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestConfig() *config.Config {
	cfg := &config.Config{
		Auth: &config.AuthConfig{
			BcryptCost:           10,
			ResetTokenTTL:        time.Hour,
			VerificationTokenTTL: 24 * time.Hour,
			Lockout: config.LockoutConfig{
				MaxFailedAttempts: 5,
				Duration:          15 * time.Minute,
			},
		},
		Housekeeping: &config.HousekeepingConfig{Retention: time.Hour},
	}
	cfg.App.FrontendURL = testFrontendURL

	return cfg
}

// testClock is a settable clock shared by the services and the token issuer.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = c.now.Add(d)
}

// mockEmailSender records deliveries through testify's mock.
type mockEmailSender struct {
	mock.Mock
}

func (m *mockEmailSender) SendVerificationEmail(ctx context.Context, to, username, verifyURL string) error {
	return m.Called(ctx, to, username, verifyURL).Error(0)
}

func (m *mockEmailSender) SendPasswordResetEmail(ctx context.Context, to, username, resetURL string) error {
	return m.Called(ctx, to, username, resetURL).Error(0)
}

func (m *mockEmailSender) SendWelcomeEmail(ctx context.Context, to, username string) error {
	return m.Called(ctx, to, username).Error(0)
}

func (m *mockEmailSender) SendPasswordChangeNotification(ctx context.Context, to, username string) error {
	return m.Called(ctx, to, username).Error(0)
}

func (m *mockEmailSender) SendEmailChangeNotification(ctx context.Context, to, username, newEmail string) error {
	return m.Called(ctx, to, username, newEmail).Error(0)
}

// lastLinkToken returns the token query parameter of the most recent link passed to method.
func (m *mockEmailSender) lastLinkToken(t *testing.T, method string) string {
	t.Helper()

	var link string
	for _, call := range m.Calls {
		if call.Method == method {
			link = call.Arguments.String(3)
		}
	}
	require.NotEmpty(t, link, "no %s call recorded", method)

	parsed, err := url.Parse(link)
	require.NoError(t, err)

	return parsed.Query().Get("token")
}

func (m *mockEmailSender) callCount(method string) int {
	n := 0
	for _, call := range m.Calls {
		if call.Method == method {
			n++
		}
	}

	return n
}

// authFixture wires the real hasher and token issuer to in-memory repositories.
type authFixture struct {
	store    *memoryStore
	clock    *testClock
	mailer   *mockEmailSender
	auth     *authService
	sessions *sessionService
	accounts *accountService
	cleanup  *housekeepingService
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	store := newMemoryStore()
	clock := newTestClock()
	store.now = clock.Now
	cfg := newTestConfig()
	logger := newDiscardLogger()
	txManager := &memoryTxManager{store: store}
	repos := store.factory()

	mailer := &mockEmailSender{}
	mailer.On("SendVerificationEmail", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	mailer.On("SendPasswordResetEmail", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	mailer.On("SendWelcomeEmail", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	mailer.On("SendPasswordChangeNotification", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	mailer.On("SendEmailChangeNotification", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()

	hasher := auth.NewBcryptHasherWithCost(cfg.Auth.BcryptCost)
	tokens := auth.NewJWTServiceWithSecret(
		[]byte("0123456789abcdef0123456789abcdef"),
		"sentinel-test",
		15*time.Minute,
		7*24*time.Hour,
		clock.Now,
	)
	opaque := auth.NewOpaqueTokenGenerator()

	authSrv := newAuthService(AuthServiceParams{
		TxManager:        txManager,
		UserRepo:         repos.NewUserRepository(),
		RefreshTokenRepo: repos.NewRefreshTokenRepository(),
		LoginHistoryRepo: repos.NewLoginHistoryRepository(),
		Hasher:           hasher,
		TokenService:     tokens,
		OpaqueTokens:     opaque,
		EmailSender:      mailer,
		Config:           cfg,
		Logger:           logger,
	})
	authSrv.now = clock.Now

	sessionSrv := NewSessionService(txManager, logger).(*sessionService)
	sessionSrv.now = clock.Now

	accountSrv := newAccountService(AccountServiceParams{
		TxManager:    txManager,
		UserRepo:     repos.NewUserRepository(),
		Hasher:       hasher,
		TokenService: tokens,
		OpaqueTokens: opaque,
		EmailSender:  mailer,
		Config:       cfg,
		Logger:       logger,
	})
	accountSrv.now = clock.Now

	cleanupSrv := NewHousekeepingService(txManager, cfg, logger).(*housekeepingService)
	cleanupSrv.now = clock.Now

	return &authFixture{
		store:    store,
		clock:    clock,
		mailer:   mailer,
		auth:     authSrv,
		sessions: sessionSrv,
		accounts: accountSrv,
		cleanup:  cleanupSrv,
	}
}

func (f *authFixture) register(t *testing.T, username, email string) *usecase.AuthOutput {
	t.Helper()

	out, err := f.auth.Register(context.Background(), &usecase.RegisterInput{
		Email:    email,
		Username: username,
		Password: testPassword,
		Client:   usecase.ClientInfo{IPAddress: "203.0.113.7", UserAgent: "test-agent"},
	})
	require.NoError(t, err)

	return out
}

// drain waits for mail work started after a response was returned.
func (f *authFixture) drain(t *testing.T) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, f.auth.background.Wait(ctx))
}

func (f *authFixture) login(email, password string) (*usecase.AuthOutput, error) {
	return f.auth.Login(context.Background(), &usecase.LoginInput{
		Email:    email,
		Password: password,
		Client:   usecase.ClientInfo{IPAddress: "203.0.113.7", UserAgent: "test-agent"},
	})
}

func (f *authFixture) setStatus(t *testing.T, user *entity.User, status entity.UserStatus) {
	t.Helper()

	stored := f.store.user(user.ID)
	require.NotNil(t, stored)
	stored.Status = status
	require.NoError(t, f.store.factory().NewUserRepository().Update(context.Background(), stored))
}
