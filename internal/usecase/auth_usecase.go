// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"
	"time"

	"sentinel/internal/domain/entity"

	"github.com/google/uuid"
)

// Generic messages returned by enumeration-resistant operations.
const (
	MsgPasswordResetRequested = "If an account exists for that email, a password reset link has been sent."
	MsgVerificationRequested  = "If an account exists for that email and is not yet verified, a verification link has been sent."
	MsgVerificationSent       = "Verification email sent."
	MsgEmailAlreadyVerified   = "Email is already verified."
	MsgEmailVerified          = "Email verified successfully."
	MsgPasswordReset          = "Password has been reset. Please log in with your new password."
)

// --- Input DTOs ---

// ClientInfo describes the client a session is created for.
type ClientInfo struct {
	IPAddress string
	UserAgent string
}

// RegisterInput defines the data required to register a new user.
type RegisterInput struct {
	Email    string
	Username string
	Password string
	Client   ClientInfo
}

// LoginInput defines the data required for a user to log in.
type LoginInput struct {
	Email    string
	Password string
	Client   ClientInfo
}

// RefreshTokenInput carries the refresh token to exchange.
type RefreshTokenInput struct {
	RefreshToken string
}

// LogoutInput carries the refresh token of the session to end.
type LogoutInput struct {
	RefreshToken string
}

// ForgotPasswordInput starts a password reset.
type ForgotPasswordInput struct {
	Email string
}

// ResetPasswordInput completes a password reset.
type ResetPasswordInput struct {
	Token       string
	NewPassword string
}

// ResendVerificationInput requests a fresh verification email for an address.
type ResendVerificationInput struct {
	Email string
}

// --- Output DTOs ---

// AuthOutput returns the generated tokens after a successful register or login.
type AuthOutput struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    time.Duration
	User         *entity.User
}

// RefreshTokenOutput returns a new access token. The refresh token is not rotated.
type RefreshTokenOutput struct {
	AccessToken string
	ExpiresIn   time.Duration
}

// MessageOutput is the response of operations that only report a status message.
type MessageOutput struct {
	Message string
}

// VerifyResetTokenOutput reports a usable reset token.
type VerifyResetTokenOutput struct {
	Valid bool
	Email string
}

// VerifyEmailOutput reports the outcome of an email verification.
type VerifyEmailOutput struct {
	Message         string
	AlreadyVerified bool
}

// AuthUsecase defines the authentication and session-lifecycle operations.
// This is the contract that the delivery layer (e.g., API handlers) will depend on.
type AuthUsecase interface {
	Register(ctx context.Context, input *RegisterInput) (*AuthOutput, error)
	Login(ctx context.Context, input *LoginInput) (*AuthOutput, error)
	RefreshAccessToken(ctx context.Context, input *RefreshTokenInput) (*RefreshTokenOutput, error)
	// Logout reports whether a session matched the presented refresh token.
	Logout(ctx context.Context, input *LogoutInput) (bool, error)

	ForgotPassword(ctx context.Context, input *ForgotPasswordInput) (*MessageOutput, error)
	ResetPassword(ctx context.Context, input *ResetPasswordInput) (*MessageOutput, error)
	VerifyResetToken(ctx context.Context, token string) (*VerifyResetTokenOutput, error)

	SendVerificationEmail(ctx context.Context, userID uuid.UUID) (*MessageOutput, error)
	VerifyEmail(ctx context.Context, token string) (*VerifyEmailOutput, error)
	ResendVerificationEmail(ctx context.Context, input *ResendVerificationInput) (*MessageOutput, error)

	// GetCurrentUser resolves the user behind an access token.
	GetCurrentUser(ctx context.Context, accessToken string) (*entity.User, error)
}
