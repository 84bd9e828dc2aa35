package middleware

import (
	"net/http"

	"authd/internal/delivery/http/cookie"
	"authd/internal/delivery/http/response"
	"authd/internal/domain/service"

	"github.com/labstack/echo/v4"
)

// ContextKeyUserID is the echo context key carrying the authenticated user's ID.
const ContextKeyUserID = "userID"

// AuthMiddleware provides middleware for JWT authentication.
type AuthMiddleware struct {
	tokenSvc service.TokenService
}

// NewAuthMiddleware is the constructor for AuthMiddleware.
func NewAuthMiddleware(tokenSvc service.TokenService) *AuthMiddleware {
	return &AuthMiddleware{tokenSvc: tokenSvc}
}

// Authenticate validates the access token cookie before the handler runs.
// A missing cookie is a 401; a cookie that fails validation (bad signature,
// expired, wrong token class) is a 403.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		accessCookie, err := c.Cookie(cookie.AccessTokenName)
		if err != nil || accessCookie.Value == "" {
			return response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized", "access token cookie is missing")
		}

		claims, err := m.tokenSvc.ValidateAccessToken(accessCookie.Value)
		if err != nil {
			return response.Error(c, http.StatusForbidden, "INVALID_TOKEN", "Invalid token", "access token is invalid or expired")
		}

		// Set user info on the context for handlers to use
		c.Set(ContextKeyUserID, claims.UserID)

		return next(c)
	}
}
