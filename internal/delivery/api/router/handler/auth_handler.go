// Package handler contains the HTTP handlers for the API.
package handler

import (
	"log/slog"
	"net/http"

	"sentinel/internal/delivery/api/response"
	"sentinel/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// AuthHandlerParams holds dependencies for AuthHandler, injected by Fx.
type AuthHandlerParams struct {
	fx.In

	AuthUC usecase.AuthUsecase
	Logger *slog.Logger
}

// AuthHandler serves the public authentication endpoints.
type AuthHandler struct {
	authUC usecase.AuthUsecase
	logger *slog.Logger
}

// NewAuthHandler is the constructor for AuthHandler
func NewAuthHandler(params AuthHandlerParams) *AuthHandler {
	return &AuthHandler{
		authUC: params.AuthUC,
		logger: params.Logger,
	}
}

// RegisterRequest is the body of POST /auth/register.
// Format rules are enforced by the usecase so every caller gets the same messages.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,max=254"`
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required,max=256"`
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,max=254"`
	Password string `json:"password" validate:"required,max=256"`
}

// RefreshTokenRequest carries a refresh token.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// EmailRequest carries only an email address.
type EmailRequest struct {
	Email string `json:"email" validate:"required,max=254"`
}

// ResetPasswordRequest completes a password reset.
type ResetPasswordRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,max=256"`
}

// TokenRequest carries a one-time token.
type TokenRequest struct {
	Token string `json:"token" validate:"required"`
}

// Register handles the registration request.
func (h *AuthHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "Invalid registration input")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	output, err := h.authUC.Register(c.Request().Context(), &usecase.RegisterInput{
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
		Client:   clientInfo(c),
	})
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusCreated, newAuthResponse(output))
}

// Login handles the login request.
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "Invalid login input")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	output, err := h.authUC.Login(c.Request().Context(), &usecase.LoginInput{
		Email:    req.Email,
		Password: req.Password,
		Client:   clientInfo(c),
	})
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, newAuthResponse(output))
}

// RefreshToken exchanges a refresh token for a new access token.
func (h *AuthHandler) RefreshToken(c echo.Context) error {
	var req RefreshTokenRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "Invalid refresh token input")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	output, err := h.authUC.RefreshAccessToken(c.Request().Context(), &usecase.RefreshTokenInput{RefreshToken: req.RefreshToken})
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, &RefreshResponse{
		AccessToken: output.AccessToken,
		TokenType:   tokenTypeBearer,
		ExpiresIn:   int64(output.ExpiresIn.Seconds()),
	})
}

// Logout revokes the session of the presented refresh token. It succeeds even when nothing matched.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req RefreshTokenRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "Invalid logout input")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	revoked, err := h.authUC.Logout(c.Request().Context(), &usecase.LogoutInput{RefreshToken: req.RefreshToken})
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, &LogoutResponse{Message: "Logged out", Revoked: revoked})
}

// ForgotPassword starts a password reset. The response is the same for unknown addresses.
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req EmailRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "Invalid forgot password input")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	output, err := h.authUC.ForgotPassword(c.Request().Context(), &usecase.ForgotPasswordInput{Email: req.Email})
	if err != nil {
		return err
	}

	return response.Message(c, output.Message)
}

// ResetPassword sets a new password with a reset token.
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req ResetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "Invalid reset password input")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	output, err := h.authUC.ResetPassword(c.Request().Context(), &usecase.ResetPasswordInput{
		Token:       req.Token,
		NewPassword: req.NewPassword,
	})
	if err != nil {
		return err
	}

	return response.Message(c, output.Message)
}

// VerifyResetToken lets the client check a reset link before showing the password form.
func (h *AuthHandler) VerifyResetToken(c echo.Context) error {
	output, err := h.authUC.VerifyResetToken(c.Request().Context(), c.QueryParam("token"))
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, &VerifyResetTokenResponse{Valid: output.Valid, Email: output.Email})
}

// VerifyEmail consumes an email verification token.
func (h *AuthHandler) VerifyEmail(c echo.Context) error {
	var req TokenRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "Invalid verification input")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	output, err := h.authUC.VerifyEmail(c.Request().Context(), req.Token)
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, &VerifyEmailResponse{Message: output.Message, AlreadyVerified: output.AlreadyVerified})
}

// ResendVerification mails a fresh verification link. The response is the same for unknown addresses.
func (h *AuthHandler) ResendVerification(c echo.Context) error {
	var req EmailRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "Invalid resend verification input")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	output, err := h.authUC.ResendVerificationEmail(c.Request().Context(), &usecase.ResendVerificationInput{Email: req.Email})
	if err != nil {
		return err
	}

	return response.Message(c, output.Message)
}
