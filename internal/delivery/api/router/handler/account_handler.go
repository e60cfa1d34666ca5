package handler

import (
	"net/http"

	"sentinel/internal/delivery/api/middleware"
	"sentinel/internal/delivery/api/response"
	domainerrors "sentinel/internal/domain/errors"
	"sentinel/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// AccountHandlerParams holds dependencies for AccountHandler, injected by Fx.
type AccountHandlerParams struct {
	fx.In

	AuthUC    usecase.AuthUsecase
	AccountUC usecase.AccountUsecase
}

// AccountHandler serves the /me endpoints of the authenticated user.
type AccountHandler struct {
	authUC    usecase.AuthUsecase
	accountUC usecase.AccountUsecase
}

// NewAccountHandler is the constructor for AccountHandler
func NewAccountHandler(params AccountHandlerParams) *AccountHandler {
	return &AccountHandler{
		authUC:    params.AuthUC,
		accountUC: params.AccountUC,
	}
}

// ChangePasswordRequest is the body of PUT /me/password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"max=256"`
	NewPassword     string `json:"new_password" validate:"required,max=256"`
}

// ChangeEmailRequest is the body of PUT /me/email.
type ChangeEmailRequest struct {
	NewEmail string `json:"new_email" validate:"required,max=254"`
	Password string `json:"password" validate:"required,max=256"`
}

// Me returns the authenticated user.
func (h *AccountHandler) Me(c echo.Context) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return domainerrors.ErrUnauthorized
	}

	return response.Success(c, http.StatusOK, newUserResponse(user))
}

// SendVerificationEmail mails a verification link to the authenticated user.
func (h *AccountHandler) SendVerificationEmail(c echo.Context) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return domainerrors.ErrUnauthorized
	}

	output, err := h.authUC.SendVerificationEmail(c.Request().Context(), userID)
	if err != nil {
		return err
	}

	return response.Message(c, output.Message)
}

// ChangePassword replaces the password and ends every session.
func (h *AccountHandler) ChangePassword(c echo.Context) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return domainerrors.ErrUnauthorized
	}

	var req ChangePasswordRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "Invalid change password input")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.accountUC.ChangePassword(c.Request().Context(), &usecase.ChangePasswordInput{
		UserID:          userID,
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	}); err != nil {
		return err
	}

	return response.Message(c, "Password changed. Please log in again.")
}

// ChangeEmail moves the account to a new address, which then needs verification.
func (h *AccountHandler) ChangeEmail(c echo.Context) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return domainerrors.ErrUnauthorized
	}

	var req ChangeEmailRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "Invalid change email input")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.accountUC.ChangeEmail(c.Request().Context(), &usecase.ChangeEmailInput{
		UserID:   userID,
		NewEmail: req.NewEmail,
		Password: req.Password,
	})
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, newUserResponse(user))
}
