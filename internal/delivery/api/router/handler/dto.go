package handler

import (
	"time"

	"sentinel/internal/domain/entity"
	"sentinel/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const tokenTypeBearer = "Bearer"

// UserResponse is the public view of a user. Hashes and lockout state never leave the service.
type UserResponse struct {
	ID            uuid.UUID         `json:"id"`
	Email         string            `json:"email"`
	Username      string            `json:"username"`
	Role          entity.Role       `json:"role"`
	Status        entity.UserStatus `json:"status"`
	EmailVerified bool              `json:"email_verified"`
	HasPassword   bool              `json:"has_password"`
	OAuthProvider *string           `json:"oauth_provider,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
}

func newUserResponse(user *entity.User) *UserResponse {
	return &UserResponse{
		ID:            user.ID,
		Email:         user.Email,
		Username:      user.Username,
		Role:          user.Role,
		Status:        user.Status,
		EmailVerified: user.EmailVerified,
		HasPassword:   user.HasPassword(),
		OAuthProvider: user.OAuthProvider,
		CreatedAt:     user.CreatedAt,
	}
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	AccessToken  string        `json:"access_token"`
	RefreshToken string        `json:"refresh_token"`
	TokenType    string        `json:"token_type"`
	ExpiresIn    int64         `json:"expires_in"` // access token lifetime in seconds
	User         *UserResponse `json:"user"`
}

func newAuthResponse(output *usecase.AuthOutput) *AuthResponse {
	return &AuthResponse{
		AccessToken:  output.AccessToken,
		RefreshToken: output.RefreshToken,
		TokenType:    tokenTypeBearer,
		ExpiresIn:    int64(output.ExpiresIn.Seconds()),
		User:         newUserResponse(output.User),
	}
}

// RefreshResponse carries a new access token; the refresh token stays valid.
type RefreshResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// LogoutResponse reports whether a live session matched the token.
type LogoutResponse struct {
	Message string `json:"message"`
	Revoked bool   `json:"revoked"`
}

// VerifyResetTokenResponse confirms a reset token is still usable.
type VerifyResetTokenResponse struct {
	Valid bool   `json:"valid"`
	Email string `json:"email"`
}

// VerifyEmailResponse reports the outcome of an email verification.
type VerifyEmailResponse struct {
	Message         string `json:"message"`
	AlreadyVerified bool   `json:"already_verified"`
}

// SessionResponse describes one live session.
type SessionResponse struct {
	ID        uuid.UUID `json:"id"`
	IPAddress string    `json:"ip_address"`
	UserAgent string    `json:"user_agent"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

func newSessionResponses(sessions []*entity.RefreshToken) []*SessionResponse {
	out := make([]*SessionResponse, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, &SessionResponse{
			ID:        s.ID,
			IPAddress: s.IPAddress,
			UserAgent: s.UserAgent,
			CreatedAt: s.CreatedAt,
			ExpiresAt: s.ExpiresAt,
		})
	}

	return out
}

// RevokeAllResponse reports how many sessions were ended.
type RevokeAllResponse struct {
	Revoked int64 `json:"revoked"`
}

func clientInfo(c echo.Context) usecase.ClientInfo {
	return usecase.ClientInfo{
		IPAddress: c.RealIP(),
		UserAgent: c.Request().UserAgent(),
	}
}
