// Package cookie centralizes the token transport cookies shared by the auth
// middleware and the auth handlers.
package cookie

import (
	"net/http"
	"time"

	"authd/config"
)

// Cookie names for the two token classes.
const (
	AccessTokenName  = "access_token"
	RefreshTokenName = "refresh_token"
)

// NewAccessToken builds the access token cookie. HttpOnly keeps the token
// out of reach of page scripts; SameSite=Lax blocks cross-site POSTs.
func NewAccessToken(cfg *config.Config, token string, ttl time.Duration) *http.Cookie {
	return newTokenCookie(cfg, AccessTokenName, token, ttl)
}

// NewRefreshToken builds the refresh token cookie.
func NewRefreshToken(cfg *config.Config, token string, ttl time.Duration) *http.Cookie {
	return newTokenCookie(cfg, RefreshTokenName, token, ttl)
}

// Expire builds an expired cookie that instructs the browser to drop the
// named cookie immediately.
func Expire(cfg *config.Config, name string) *http.Cookie {
	cookie := newTokenCookie(cfg, name, "", 0)
	cookie.MaxAge = -1

	return cookie
}

func newTokenCookie(cfg *config.Config, name, value string, ttl time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   cfg.Cookie.Domain,
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   cfg.Cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}
