package handler

import (
	"net/http"

	"sentinel/internal/delivery/api/response"
	domainerrors "sentinel/internal/domain/errors"
	"sentinel/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// AdminHandler serves the admin-only lookups.
type AdminHandler struct {
	accountUC usecase.AccountUsecase
}

// NewAdminHandler is the constructor for AdminHandler
func NewAdminHandler(accountUC usecase.AccountUsecase) *AdminHandler {
	return &AdminHandler{accountUC: accountUC}
}

// GetUser returns any user by id.
func (h *AdminHandler) GetUser(c echo.Context) error {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return domainerrors.ErrValidationFailed.WithDetails("invalid user id")
	}

	user, err := h.accountUC.GetUser(c.Request().Context(), userID)
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, newUserResponse(user))
}
