package middleware

import (
	"slices"
	"strings"

	deliverycontext "sentinel/internal/delivery/context"
	"sentinel/internal/domain/entity"
	domainerrors "sentinel/internal/domain/errors"
	"sentinel/internal/errors"
	"sentinel/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	contextKeyUser = "auth.user"

	bearerPrefix = "Bearer "
)

// AuthMiddleware authenticates requests with an access token and authorizes them by role.
type AuthMiddleware struct {
	authUC usecase.AuthUsecase
}

// NewAuthMiddleware is the constructor for AuthMiddleware.
func NewAuthMiddleware(authUC usecase.AuthUsecase) *AuthMiddleware {
	return &AuthMiddleware{authUC: authUC}
}

// Authenticate resolves the bearer access token to an active user and stores it on the context.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
		if !ok {
			return errors.Wrap(domainerrors.ErrUnauthorized, "missing bearer token")
		}

		user, err := m.authUC.GetCurrentUser(c.Request().Context(), token)
		if err != nil {
			return err
		}

		c.Set(contextKeyUser, user)
		c.SetRequest(c.Request().WithContext(
			deliverycontext.WithUserID(c.Request().Context(), user.ID.String()),
		))

		return next(c)
	}
}

// RequireRole rejects authenticated users that hold none of the roles.
// It must be used AFTER the Authenticate middleware.
func (m *AuthMiddleware) RequireRole(roles ...entity.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, ok := GetUser(c)
			if !ok {
				return errors.Wrap(domainerrors.ErrUnauthorized, "role check without authentication")
			}

			if !slices.Contains(roles, user.Role) {
				return errors.Wrapf(domainerrors.ErrForbidden, "role %q not allowed", user.Role)
			}

			return next(c)
		}
	}
}

// GetUser returns the user set by Authenticate.
func GetUser(c echo.Context) (*entity.User, bool) {
	user, ok := c.Get(contextKeyUser).(*entity.User)

	return user, ok && user != nil
}

// GetUserID returns the id of the user set by Authenticate.
func GetUserID(c echo.Context) (uuid.UUID, bool) {
	user, ok := GetUser(c)
	if !ok {
		return uuid.Nil, false
	}

	return user.ID, true
}

func bearerToken(header string) (string, bool) {
	if len(header) <= len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return "", false
	}

	token := strings.TrimSpace(header[len(bearerPrefix):])

	return token, token != ""
}
