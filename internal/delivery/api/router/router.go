// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"sentinel/internal/delivery/api/middleware"
	"sentinel/internal/delivery/api/router/handler"
	"sentinel/internal/domain/entity"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	AuthHandler    *handler.AuthHandler
	AccountHandler *handler.AccountHandler
	SessionHandler *handler.SessionHandler
	AdminHandler   *handler.AdminHandler
	AuthMiddleware *middleware.AuthMiddleware
}

// router holds all the handlers that need to be registered.
type router struct {
	authHandler    *handler.AuthHandler
	accountHandler *handler.AccountHandler
	sessionHandler *handler.SessionHandler
	adminHandler   *handler.AdminHandler
	authMiddleware *middleware.AuthMiddleware
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		authHandler:    params.AuthHandler,
		accountHandler: params.AccountHandler,
		sessionHandler: params.SessionHandler,
		adminHandler:   params.AdminHandler,
		authMiddleware: params.AuthMiddleware,
	}
}

// RegisterRoutes sets up all the API routes for the application.
// throttle is applied to the credential-guessing and mail-sending endpoints.
func (r *router) RegisterRoutes(e *echo.Echo, throttle echo.MiddlewareFunc) {
	e.GET("/healthz", handler.HealthCheck)

	apiV1 := e.Group("/api/v1")

	authGroup := apiV1.Group("/auth")
	{
		authGroup.POST("/register", r.authHandler.Register, throttle)
		authGroup.POST("/login", r.authHandler.Login, throttle)
		authGroup.POST("/refresh", r.authHandler.RefreshToken)
		authGroup.POST("/logout", r.authHandler.Logout)
		authGroup.POST("/forgot-password", r.authHandler.ForgotPassword, throttle)
		authGroup.POST("/reset-password", r.authHandler.ResetPassword, throttle)
		authGroup.GET("/reset-password/verify", r.authHandler.VerifyResetToken, throttle)
		authGroup.POST("/verify-email", r.authHandler.VerifyEmail, throttle)
		authGroup.POST("/resend-verification", r.authHandler.ResendVerification, throttle)
	}

	meGroup := apiV1.Group("/me")
	meGroup.Use(r.authMiddleware.Authenticate)
	{
		meGroup.GET("", r.accountHandler.Me)
		meGroup.POST("/verification-email", r.accountHandler.SendVerificationEmail, throttle)
		meGroup.PUT("/password", r.accountHandler.ChangePassword, throttle)
		meGroup.PUT("/email", r.accountHandler.ChangeEmail, throttle)

		meGroup.GET("/sessions", r.sessionHandler.ListSessions)
		meGroup.DELETE("/sessions/:id", r.sessionHandler.RevokeSession)
		meGroup.POST("/logout-all", r.sessionHandler.LogoutAll)
	}

	adminGroup := apiV1.Group("/admin")
	adminGroup.Use(r.authMiddleware.Authenticate)                  // First, check if logged in
	adminGroup.Use(r.authMiddleware.RequireRole(entity.RoleAdmin)) // Then, check for the role
	{
		adminGroup.GET("/users/:id", r.adminHandler.GetUser)
	}
}
