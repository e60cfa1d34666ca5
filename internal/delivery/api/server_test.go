package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"sentinel/config"
	apimiddleware "sentinel/internal/delivery/api/middleware"
	"sentinel/internal/delivery/api/response"
	"sentinel/internal/delivery/api/router"
	"sentinel/internal/delivery/api/router/handler"
	deliverycontext "sentinel/internal/delivery/context"
	"sentinel/internal/domain/entity"
	domainerrors "sentinel/internal/domain/errors"
	"sentinel/internal/errors"
	"sentinel/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testAccessToken = "access-token"

type apiFixture struct {
	e        *echo.Echo
	auth     *mockAuthUsecase
	account  *mockAccountUsecase
	sessions *mockSessionUsecase
}

func newAPIFixture(t *testing.T, rateLimit *config.RateLimitConfig) *apiFixture {
	t.Helper()

	cfg := &config.Config{}
	cfg.HTTP.MaxRequestBodySize = "1KB"
	cfg.HTTP.RateLimit = rateLimit

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	f := &apiFixture{
		auth:     &mockAuthUsecase{},
		account:  &mockAccountUsecase{},
		sessions: &mockSessionUsecase{},
	}

	f.e = newEcho(cfg, logger, router.RouterParams{
		AuthHandler:    handler.NewAuthHandler(handler.AuthHandlerParams{AuthUC: f.auth, Logger: logger}),
		AccountHandler: handler.NewAccountHandler(handler.AccountHandlerParams{AuthUC: f.auth, AccountUC: f.account}),
		SessionHandler: handler.NewSessionHandler(f.sessions),
		AdminHandler:   handler.NewAdminHandler(f.account),
		AuthMiddleware: apimiddleware.NewAuthMiddleware(f.auth),
	})

	t.Cleanup(func() {
		f.auth.AssertExpectations(t)
		f.account.AssertExpectations(t)
		f.sessions.AssertExpectations(t)
	})

	return f
}

func (f *apiFixture) do(method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	req.Header.Set("User-Agent", "test-agent")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, req)

	return rec
}

func bearer() map[string]string {
	return map[string]string{echo.HeaderAuthorization: "Bearer " + testAccessToken}
}

// authenticateAs makes the mocked usecase resolve testAccessToken to user.
func (f *apiFixture) authenticateAs(user *entity.User) {
	f.auth.On("GetCurrentUser", mock.Anything, testAccessToken).Return(user, nil)
}

type envelope struct {
	Data  json.RawMessage     `json:"data"`
	Error *response.ErrorInfo `json:"error"`
	Meta  *response.MetaInfo  `json:"meta"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())

	return env
}

func decodeData[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &out))

	return out
}

func assertError(t *testing.T, rec *httptest.ResponseRecorder, status int, code string) *response.ErrorInfo {
	t.Helper()

	assert.Equal(t, status, rec.Code, rec.Body.String())
	env := decode(t, rec)
	require.NotNil(t, env.Error)
	assert.Equal(t, code, env.Error.Code)

	return env.Error
}

func newTestUser(role entity.Role) *entity.User {
	hash := "$2a$10$hash"

	return &entity.User{
		ID:           uuid.New(),
		Email:        "alice@example.com",
		Username:     "alice",
		PasswordHash: &hash,
		Role:         role,
		Status:       entity.UserStatusActive,
		CreatedAt:    time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestRegister_Success(t *testing.T) {
	f := newAPIFixture(t, nil)
	user := newTestUser(entity.RoleUser)

	f.auth.On("Register", mock.Anything, mock.MatchedBy(func(in *usecase.RegisterInput) bool {
		return in.Email == "alice@example.com" &&
			in.Username == "alice" &&
			in.Password == "Passw0rd1" &&
			in.Client.UserAgent == "test-agent" &&
			in.Client.IPAddress == "192.0.2.1"
	})).Return(&usecase.AuthOutput{
		AccessToken:  "jwt-access",
		RefreshToken: "jwt-refresh",
		ExpiresIn:    15 * time.Minute,
		User:         user,
	}, nil)

	rec := f.do(http.MethodPost, "/api/v1/auth/register", `{"email":"alice@example.com","username":"alice","password":"Passw0rd1"}`, nil)

	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(deliverycontext.HeaderXRequestID))
	assert.NotContains(t, rec.Body.String(), "$2a$10$hash")

	out := decodeData[handler.AuthResponse](t, rec)
	assert.Equal(t, "jwt-access", out.AccessToken)
	assert.Equal(t, "jwt-refresh", out.RefreshToken)
	assert.Equal(t, "Bearer", out.TokenType)
	assert.Equal(t, int64(900), out.ExpiresIn)
	require.NotNil(t, out.User)
	assert.Equal(t, user.ID, out.User.ID)
	assert.True(t, out.User.HasPassword)
}

func TestRegister_MissingFields(t *testing.T) {
	f := newAPIFixture(t, nil)

	rec := f.do(http.MethodPost, "/api/v1/auth/register", `{}`, nil)

	info := assertError(t, rec, http.StatusBadRequest, "VALIDATION_ERROR")
	details, _ := info.Details.(string)
	assert.Contains(t, details, "email is required")
	assert.Contains(t, details, "username is required")
	assert.Contains(t, details, "password is required")
}

func TestRegister_MalformedBody(t *testing.T) {
	f := newAPIFixture(t, nil)

	rec := f.do(http.MethodPost, "/api/v1/auth/register", `{"email":`, nil)

	assertError(t, rec, http.StatusBadRequest, "INVALID_INPUT")
}

func TestRegister_Conflict(t *testing.T) {
	f := newAPIFixture(t, nil)
	f.auth.On("Register", mock.Anything, mock.Anything).
		Return(nil, errors.Wrap(domainerrors.ErrEmailAlreadyExists, "register"))

	rec := f.do(http.MethodPost, "/api/v1/auth/register", `{"email":"alice@example.com","username":"alice","password":"Passw0rd1"}`, nil)

	info := assertError(t, rec, http.StatusConflict, "EMAIL_ALREADY_EXISTS")
	assert.Equal(t, "email is already registered", info.Message)
}

func TestLogin_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"invalid credentials", errors.Wrap(domainerrors.ErrInvalidCredentials, "user not found"), http.StatusUnauthorized, "INVALID_CREDENTIALS"},
		{"locked", domainerrors.ErrAccountLocked, http.StatusForbidden, "ACCOUNT_LOCKED"},
		{"oauth only", domainerrors.ErrPasswordLoginUnavailable, http.StatusBadRequest, "PASSWORD_LOGIN_UNAVAILABLE"},
		{"inactive", domainerrors.ErrAccountInactive, http.StatusForbidden, "ACCOUNT_INACTIVE"},
		{"storage failure", domainerrors.NewDatabaseExecuteError(errors.New("dial tcp 10.0.0.5:5432: connection refused"), "find user"), http.StatusInternalServerError, "DATABASE_ERROR"},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAPIFixture(t, nil)
			f.auth.On("Login", mock.Anything, mock.Anything).Return(nil, tt.err)

			rec := f.do(http.MethodPost, "/api/v1/auth/login", `{"email":"alice@example.com","password":"wrong"}`, nil)

			info := assertError(t, rec, tt.wantStatus, tt.wantCode)
			assert.Nil(t, info.Details)
			assert.NotContains(t, rec.Body.String(), "connection refused")
			assert.NotContains(t, rec.Body.String(), "user not found")
		})
	}
}

func TestRefreshToken(t *testing.T) {
	f := newAPIFixture(t, nil)
	f.auth.On("RefreshAccessToken", mock.Anything, &usecase.RefreshTokenInput{RefreshToken: "good"}).
		Return(&usecase.RefreshTokenOutput{AccessToken: "new-access", ExpiresIn: 15 * time.Minute}, nil)
	f.auth.On("RefreshAccessToken", mock.Anything, &usecase.RefreshTokenInput{RefreshToken: "revoked"}).
		Return(nil, domainerrors.ErrRefreshTokenRevoked)

	rec := f.do(http.MethodPost, "/api/v1/auth/refresh", `{"refresh_token":"good"}`, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	out := decodeData[handler.RefreshResponse](t, rec)
	assert.Equal(t, "new-access", out.AccessToken)
	assert.Equal(t, int64(900), out.ExpiresIn)

	rec = f.do(http.MethodPost, "/api/v1/auth/refresh", `{"refresh_token":"revoked"}`, nil)
	info := assertError(t, rec, http.StatusUnauthorized, "REFRESH_TOKEN_REVOKED")
	assert.Equal(t, "refresh token has been revoked", info.Message)
}

func TestLogout_ReportsMatch(t *testing.T) {
	f := newAPIFixture(t, nil)
	f.auth.On("Logout", mock.Anything, &usecase.LogoutInput{RefreshToken: "unknown"}).Return(false, nil)

	rec := f.do(http.MethodPost, "/api/v1/auth/logout", `{"refresh_token":"unknown"}`, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	out := decodeData[handler.LogoutResponse](t, rec)
	assert.False(t, out.Revoked)
}

func TestForgotPassword_GenericMessage(t *testing.T) {
	f := newAPIFixture(t, nil)
	f.auth.On("ForgotPassword", mock.Anything, &usecase.ForgotPasswordInput{Email: "nobody@example.com"}).
		Return(&usecase.MessageOutput{Message: usecase.MsgPasswordResetRequested}, nil)

	rec := f.do(http.MethodPost, "/api/v1/auth/forgot-password", `{"email":"nobody@example.com"}`, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	out := decodeData[response.MessageData](t, rec)
	assert.Equal(t, usecase.MsgPasswordResetRequested, out.Message)
}

func TestVerifyResetToken_UsesQueryParam(t *testing.T) {
	f := newAPIFixture(t, nil)
	f.auth.On("VerifyResetToken", mock.Anything, "abc").
		Return(&usecase.VerifyResetTokenOutput{Valid: true, Email: "alice@example.com"}, nil)
	f.auth.On("VerifyResetToken", mock.Anything, "stale").
		Return(nil, domainerrors.ErrInvalidOrExpiredToken)

	rec := f.do(http.MethodGet, "/api/v1/auth/reset-password/verify?token=abc", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	out := decodeData[handler.VerifyResetTokenResponse](t, rec)
	assert.True(t, out.Valid)

	rec = f.do(http.MethodGet, "/api/v1/auth/reset-password/verify?token=stale", "", nil)
	assertError(t, rec, http.StatusBadRequest, "INVALID_OR_EXPIRED_TOKEN")
}

func TestVerifyEmail_AlreadyVerified(t *testing.T) {
	f := newAPIFixture(t, nil)
	f.auth.On("VerifyEmail", mock.Anything, "tok").
		Return(&usecase.VerifyEmailOutput{Message: usecase.MsgEmailAlreadyVerified, AlreadyVerified: true}, nil)

	rec := f.do(http.MethodPost, "/api/v1/auth/verify-email", `{"token":"tok"}`, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	out := decodeData[handler.VerifyEmailResponse](t, rec)
	assert.True(t, out.AlreadyVerified)
}

func TestMe_RequiresBearerToken(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
	}{
		{"missing header", nil},
		{"basic scheme", map[string]string{echo.HeaderAuthorization: "Basic abc"}},
		{"empty bearer", map[string]string{echo.HeaderAuthorization: "Bearer "}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAPIFixture(t, nil)

			rec := f.do(http.MethodGet, "/api/v1/me", "", tt.headers)

			assertError(t, rec, http.StatusUnauthorized, "UNAUTHORIZED")
			f.auth.AssertNotCalled(t, "GetCurrentUser", mock.Anything, mock.Anything)
		})
	}
}

func TestMe_InvalidToken(t *testing.T) {
	f := newAPIFixture(t, nil)
	f.auth.On("GetCurrentUser", mock.Anything, testAccessToken).
		Return(nil, errors.Wrap(domainerrors.ErrUnauthorized, "token is expired"))

	rec := f.do(http.MethodGet, "/api/v1/me", "", bearer())

	assertError(t, rec, http.StatusUnauthorized, "UNAUTHORIZED")
}

func TestMe_ReturnsUser(t *testing.T) {
	f := newAPIFixture(t, nil)
	user := newTestUser(entity.RoleUser)
	f.authenticateAs(user)

	rec := f.do(http.MethodGet, "/api/v1/me", "", bearer())

	assert.Equal(t, http.StatusOK, rec.Code)
	out := decodeData[handler.UserResponse](t, rec)
	assert.Equal(t, user.ID, out.ID)
	assert.Equal(t, "alice", out.Username)
}

func TestChangePassword_PassesAuthenticatedUser(t *testing.T) {
	f := newAPIFixture(t, nil)
	user := newTestUser(entity.RoleUser)
	f.authenticateAs(user)
	f.account.On("ChangePassword", mock.Anything, &usecase.ChangePasswordInput{
		UserID:          user.ID,
		CurrentPassword: "Passw0rd1",
		NewPassword:     "N3wPassw0rd",
	}).Return(nil)

	rec := f.do(http.MethodPut, "/api/v1/me/password", `{"current_password":"Passw0rd1","new_password":"N3wPassw0rd"}`, bearer())

	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestSessions(t *testing.T) {
	f := newAPIFixture(t, nil)
	user := newTestUser(entity.RoleUser)
	f.authenticateAs(user)

	session := &entity.RefreshToken{ID: uuid.New(), UserID: user.ID, IPAddress: "192.0.2.1", UserAgent: "test-agent"}
	missing := uuid.New()
	f.sessions.On("ListSessions", mock.Anything, user.ID).Return([]*entity.RefreshToken{session}, nil)
	f.sessions.On("RevokeSession", mock.Anything, user.ID, session.ID).Return(nil)
	f.sessions.On("RevokeSession", mock.Anything, user.ID, missing).Return(domainerrors.ErrSessionNotFound)
	f.sessions.On("RevokeAllSessions", mock.Anything, user.ID).Return(int64(3), nil)

	rec := f.do(http.MethodGet, "/api/v1/me/sessions", "", bearer())
	require.Equal(t, http.StatusOK, rec.Code)
	list := decodeData[[]handler.SessionResponse](t, rec)
	require.Len(t, list, 1)
	assert.Equal(t, session.ID, list[0].ID)
	assert.NotContains(t, rec.Body.String(), "token_hash")

	rec = f.do(http.MethodDelete, "/api/v1/me/sessions/"+session.ID.String(), "", bearer())
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(http.MethodDelete, "/api/v1/me/sessions/"+missing.String(), "", bearer())
	assertError(t, rec, http.StatusNotFound, "SESSION_NOT_FOUND")

	rec = f.do(http.MethodDelete, "/api/v1/me/sessions/not-a-uuid", "", bearer())
	assertError(t, rec, http.StatusBadRequest, "VALIDATION_ERROR")

	rec = f.do(http.MethodPost, "/api/v1/me/logout-all", "", bearer())
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(3), decodeData[handler.RevokeAllResponse](t, rec).Revoked)
}

func TestAdmin_RequiresAdminRole(t *testing.T) {
	target := newTestUser(entity.RoleUser)

	t.Run("regular user", func(t *testing.T) {
		f := newAPIFixture(t, nil)
		f.authenticateAs(newTestUser(entity.RoleUser))

		rec := f.do(http.MethodGet, "/api/v1/admin/users/"+target.ID.String(), "", bearer())

		assertError(t, rec, http.StatusForbidden, "FORBIDDEN")
		f.account.AssertNotCalled(t, "GetUser", mock.Anything, mock.Anything)
	})

	t.Run("admin", func(t *testing.T) {
		f := newAPIFixture(t, nil)
		f.authenticateAs(newTestUser(entity.RoleAdmin))
		f.account.On("GetUser", mock.Anything, target.ID).Return(target, nil)

		rec := f.do(http.MethodGet, "/api/v1/admin/users/"+target.ID.String(), "", bearer())

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, target.ID, decodeData[handler.UserResponse](t, rec).ID)
	})
}

func TestRateLimiter_ThrottlesLogin(t *testing.T) {
	f := newAPIFixture(t, &config.RateLimitConfig{Enabled: true, PerMinute: 1, Burst: 2, ExpiresIn: time.Minute})
	f.auth.On("Login", mock.Anything, mock.Anything).Return(nil, domainerrors.ErrInvalidCredentials).Twice()

	body := `{"email":"alice@example.com","password":"wrong"}`
	assertError(t, f.do(http.MethodPost, "/api/v1/auth/login", body, nil), http.StatusUnauthorized, "INVALID_CREDENTIALS")
	assertError(t, f.do(http.MethodPost, "/api/v1/auth/login", body, nil), http.StatusUnauthorized, "INVALID_CREDENTIALS")
	assertError(t, f.do(http.MethodPost, "/api/v1/auth/login", body, nil), http.StatusTooManyRequests, "RATE_LIMITED")
}

func TestRateLimiter_ThrottlesPasswordReauthentication(t *testing.T) {
	f := newAPIFixture(t, &config.RateLimitConfig{Enabled: true, PerMinute: 1, Burst: 2, ExpiresIn: time.Minute})
	f.authenticateAs(newTestUser(entity.RoleUser))
	f.account.On("ChangePassword", mock.Anything, mock.Anything).Return(domainerrors.ErrInvalidCredentials).Twice()

	body := `{"current_password":"guess","new_password":"N3wPassw0rd"}`
	assertError(t, f.do(http.MethodPut, "/api/v1/me/password", body, bearer()), http.StatusUnauthorized, "INVALID_CREDENTIALS")
	assertError(t, f.do(http.MethodPut, "/api/v1/me/password", body, bearer()), http.StatusUnauthorized, "INVALID_CREDENTIALS")
	assertError(t, f.do(http.MethodPut, "/api/v1/me/password", body, bearer()), http.StatusTooManyRequests, "RATE_LIMITED")
	assertError(t, f.do(http.MethodPut, "/api/v1/me/email", `{"new_email":"new@example.com","password":"guess"}`, bearer()),
		http.StatusTooManyRequests, "RATE_LIMITED")
	f.account.AssertNumberOfCalls(t, "ChangePassword", 2)
	f.account.AssertNotCalled(t, "ChangeEmail", mock.Anything, mock.Anything)
}

func TestServer_Plumbing(t *testing.T) {
	f := newAPIFixture(t, nil)

	rec := f.do(http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(http.MethodGet, "/api/v1/unknown", "", nil)
	assertError(t, rec, http.StatusNotFound, "NOT_FOUND")

	rec = f.do(http.MethodPost, "/api/v1/auth/login", `{"email":"`+strings.Repeat("a", 2048)+`"}`, nil)
	assertError(t, rec, http.StatusRequestEntityTooLarge, "REQUEST_TOO_LARGE")

	rec = f.do(http.MethodGet, "/healthz", "", map[string]string{deliverycontext.HeaderXRequestID: "req-123"})
	assert.Equal(t, "req-123", rec.Header().Get(deliverycontext.HeaderXRequestID))
	assert.Equal(t, "req-123", decode(t, rec).Meta.RequestID)
}
