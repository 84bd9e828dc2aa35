// Package handler contains the HTTP handlers for the application.
package handler

import (
	"log/slog"
	"net/http"
	"time"

	"authd/config"
	"authd/internal/delivery/http/cookie"
	"authd/internal/delivery/http/middleware"
	"authd/internal/delivery/http/response"
	"authd/internal/domain/entity"
	"authd/internal/domain/service"
	"authd/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// AuthHandler holds dependencies for authentication handlers.
type AuthHandler struct {
	uc       usecase.AuthUsecase
	tokenSvc service.TokenService
	cfg      *config.Config
	logger   *slog.Logger
}

// NewAuthHandler is the constructor for AuthHandler, injected by Fx.
func NewAuthHandler(uc usecase.AuthUsecase, tokenSvc service.TokenService, cfg *config.Config, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		uc:       uc,
		tokenSvc: tokenSvc,
		cfg:      cfg,
		logger:   logger,
	}
}

// --- Request / response shapes ---

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type userResponse struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

type loginResponse struct {
	User        userResponse `json:"user"`
	AccessToken string       `json:"accessToken"`
}

type refreshResponse struct {
	AccessToken string `json:"accessToken"`
}

// Register handles the user registration request.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid registration input")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	output, err := h.uc.Register(c.Request().Context(), &usecase.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	// The password hash never leaves the service.
	return response.Success(c, http.StatusOK, toUserResponse(output.User), "User registered successfully")
}

// Login handles the user login request and sets both token cookies.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid login input")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	output, err := h.uc.Login(c.Request().Context(), &usecase.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	// Cookie lifetimes mirror the token lifetimes so both expire together.
	c.SetCookie(cookie.NewAccessToken(h.cfg, output.AccessToken, h.tokenSvc.AccessTokenDuration()))
	c.SetCookie(cookie.NewRefreshToken(h.cfg, output.RefreshToken, h.tokenSvc.RefreshTokenDuration()))

	// The raw refresh token travels only in its cookie; the access token is
	// additionally echoed in the body for non-cookie clients.
	return response.Success(c, http.StatusOK, loginResponse{
		User:        toUserResponse(output.User),
		AccessToken: output.AccessToken,
	}, "Login successful")
}

// CurrentUser returns the identity record of the authenticated caller.
func (h *AuthHandler) CurrentUser(c echo.Context) error {
	userIDVal := c.Get(middleware.ContextKeyUserID)
	userID, ok := userIDVal.(uuid.UUID)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid user ID in token")
	}

	user, err := h.uc.CurrentUser(c.Request().Context(), userID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, toUserResponse(user), "")
}

// Refresh issues a new access token from the refresh token cookie.
func (h *AuthHandler) Refresh(c echo.Context) error {
	refreshCookie, err := c.Cookie(cookie.RefreshTokenName)
	if err != nil || refreshCookie.Value == "" {
		return response.Unauthorized(c, "UNAUTHORIZED", "Refresh token cookie is missing")
	}

	output, err := h.uc.Refresh(c.Request().Context(), &usecase.RefreshInput{
		RefreshToken: refreshCookie.Value,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	c.SetCookie(cookie.NewAccessToken(h.cfg, output.AccessToken, h.tokenSvc.AccessTokenDuration()))

	return response.Success(c, http.StatusOK, refreshResponse{AccessToken: output.AccessToken}, "Token refreshed")
}

// Logout revokes the session and clears both token cookies.
// Succeeds regardless of cookie state so a client can always reset.
func (h *AuthHandler) Logout(c echo.Context) error {
	var refreshToken string
	if refreshCookie, err := c.Cookie(cookie.RefreshTokenName); err == nil {
		refreshToken = refreshCookie.Value
	}

	// Cookies are cleared no matter what happens server-side, so the client
	// always ends up logged out.
	if err := h.uc.Logout(c.Request().Context(), &usecase.LogoutInput{RefreshToken: refreshToken}); err != nil {
		h.logger.Warn("Logout revocation failed", slog.Any("error", err))
	}

	c.SetCookie(cookie.Expire(h.cfg, cookie.AccessTokenName))
	c.SetCookie(cookie.Expire(h.cfg, cookie.RefreshTokenName))

	return response.Success(c, http.StatusOK, nil, "Logged out")
}

// Root is a liveness probe at the server root.
func Root(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"message": "Server running"})
}

// toUserResponse maps a domain user to its public shape. The password hash
// never appears in a response.
func toUserResponse(user *entity.User) userResponse {
	return userResponse{
		ID:        user.ID,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	}
}
